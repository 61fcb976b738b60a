package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/config"
)

func setup(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config.Set("api.base_url", srv.URL)
	config.Set("api.rate_limit", 0)
	config.Set("api.breaker_failures", 3)
	Reset()
	t.Cleanup(Reset)
	return srv
}

func TestGetClientSingleton(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})

	client1 := GetClient()
	client2 := GetClient()
	require.NotNil(t, client1)
	assert.Same(t, client1, client2)
}

func TestClientDefaults(t *testing.T) {
	var gotAgent, gotRequestID string
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(RequestIDHeader)
	})

	_, err := Execute(GetClient().R(), resty.MethodGet, "/api/v1/regions")
	require.NoError(t, err)

	assert.Equal(t, UserAgent, gotAgent)
	_, parseErr := uuid.Parse(gotRequestID)
	assert.NoError(t, parseErr, "request id should be a uuid")
}

func TestExplicitRequestIDIsKept(t *testing.T) {
	var got string
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
	})

	_, err := Execute(GetClient().R().SetHeader(RequestIDHeader, "fixed-id"), resty.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", got)
}

func TestAuthTokenInjection(t *testing.T) {
	var got atomic.Value
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
	})

	SetAuthToken("token-123")
	assert.Equal(t, "token-123", AuthToken())

	_, err := Execute(GetClient().R(), resty.MethodGet, "/api/v1/auth/me")
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", got.Load())

	ClearAuthToken()
	assert.Empty(t, AuthToken())

	_, err = Execute(GetClient().R(), resty.MethodGet, "/api/v1/auth/me")
	require.NoError(t, err)
	assert.Equal(t, "", got.Load())
}

func TestTokenSurvivesReinit(t *testing.T) {
	var got string
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	})

	SetAuthToken("sticky")
	Init()

	_, err := Execute(GetClient().R(), resty.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sticky", got)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		resp, err := Execute(GetClient().R(), resty.MethodGet, "/api/v1/posts")
		require.NoError(t, err, "5xx responses are returned, not swallowed")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
	}

	assert.Equal(t, gobreaker.StateOpen, BreakerState())

	_, err := Execute(GetClient().R(), resty.MethodGet, "/api/v1/posts")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load(), "open breaker must not reach the server")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 10; i++ {
		resp, err := Execute(GetClient().R(), resty.MethodGet, "/api/v1/posts/missing")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	}
	assert.Equal(t, gobreaker.StateClosed, BreakerState())
}

func TestExecuteHonorsCanceledContext(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})
	config.Set("api.rate_limit", 1)
	config.Set("api.rate_burst", 1)
	Init()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Burst of one is consumed by the first call; the second must wait and
	// sees the canceled context.
	_, _ = Execute(GetClient().R(), resty.MethodGet, "/")
	_, err := Execute(GetClient().R().SetContext(ctx), resty.MethodGet, "/")
	assert.Error(t, err)
}
