package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/zfogg/wayfarer/cli/pkg/config"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// Version is reported in the User-Agent header
const Version = "0.1.0"

// UserAgent identifies the CLI to the backend
const UserAgent = "Wayfarer-CLI/" + Version

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-ID"

// ErrCircuitOpen is returned while the backend is considered unavailable
var ErrCircuitOpen = errors.New("api unavailable: too many consecutive failures, retry shortly")

var (
	mu         sync.RWMutex
	httpClient *resty.Client
	authToken  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*resty.Response]
)

// serverStatusError marks a 5xx response as a breaker failure without
// hiding the response from the caller.
type serverStatusError struct {
	status int
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("server responded %d", e.status)
}

func newRestyClient() *resty.Client {
	c := resty.New()

	baseURL := config.GetString("api.base_url")
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second

	c.SetBaseURL(baseURL)
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", UserAgent)
	c.SetHeader("Accept", "application/json")
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal

	c.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "request_id", req.Header.Get(RequestIDHeader))
		return nil
	})

	c.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})

	return c
}

func newLimiter() *rate.Limiter {
	perSecond := config.GetInt("api.rate_limit")
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := config.GetInt("api.rate_burst")
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func newBreaker() *gobreaker.CircuitBreaker[*resty.Response] {
	threshold := uint32(config.GetInt("api.breaker_failures"))
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "wayfarer-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("API circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
}

// Init initializes the HTTP client from configuration. An auth token set
// earlier is carried over.
func Init() {
	mu.Lock()
	defer mu.Unlock()

	httpClient = newRestyClient()
	if authToken != "" {
		httpClient.SetAuthToken(authToken)
	}
	limiter = newLimiter()
	breaker = newBreaker()
}

// Reset drops the client, its token and its breaker state
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	httpClient = nil
	authToken = ""
	limiter = nil
	breaker = nil
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	mu.RLock()
	c := httpClient
	mu.RUnlock()
	if c == nil {
		Init()
		mu.RLock()
		c = httpClient
		mu.RUnlock()
	}
	return c
}

// SetAuthToken sets the bearer token sent with every request
func SetAuthToken(token string) {
	c := GetClient()

	mu.Lock()
	defer mu.Unlock()
	authToken = token
	c.SetAuthToken(token)
}

// ClearAuthToken removes the bearer token
func ClearAuthToken() {
	mu.Lock()
	authToken = ""
	mu.Unlock()

	// Re-init the client to clear auth headers
	Init()
}

// AuthToken returns the bearer token currently installed
func AuthToken() string {
	mu.RLock()
	defer mu.RUnlock()
	return authToken
}

// Execute sends req through the client-side rate limiter and the circuit
// breaker. Transport errors and 5xx responses count as failures; the 5xx
// response itself is still returned so callers can parse the error body.
func Execute(req *resty.Request, method, path string) (*resty.Response, error) {
	GetClient()

	mu.RLock()
	l, b := limiter, breaker
	mu.RUnlock()

	if err := l.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := b.Execute(func() (*resty.Response, error) {
		resp, err := req.Execute(method, path)
		if err != nil {
			return resp, err
		}
		if resp.StatusCode() >= 500 {
			return resp, &serverStatusError{status: resp.StatusCode()}
		}
		return resp, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}

	var statusErr *serverStatusError
	if errors.As(err, &statusErr) {
		return resp, nil
	}

	return resp, err
}

// BreakerState reports the circuit breaker state
func BreakerState() gobreaker.State {
	GetClient()

	mu.RLock()
	defer mu.RUnlock()
	return breaker.State()
}
