package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/client"
	"github.com/zfogg/wayfarer/cli/pkg/validation"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeUnavailable ErrorType = "unavailable"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Validation errors
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeFileNotFound ErrorType = "file_not_found"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// Upload errors
	ErrorTypeUploadCount ErrorType = "upload_count"
	ErrorTypeUploadSize  ErrorType = "upload_size"
	ErrorTypeUploadType  ErrorType = "upload_type"

	ErrorTypeUnknown ErrorType = "unknown"
)

const loginHint = "Run 'wayfarer-cli auth login' to sign in."

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	RetryAfter int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// WithCause attaches the underlying error
func (e *CLIError) WithCause(cause error) *CLIError {
	e.Cause = cause
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check your internet connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// UnavailableError is returned while the client circuit breaker is open
func UnavailableError() *CLIError {
	err := NewCLIError(ErrorTypeUnavailable, "The Wayfarer API is temporarily unavailable", nil)
	err.Suggestion = "Several requests failed in a row. Wait a few seconds and retry."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = loginHint
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.Suggestion = loginHint
	return err
}

// UnauthorizedError creates an unauthorized error
func UnauthorizedError() *CLIError {
	err := NewCLIError(ErrorTypeUnauthorized, "You must be signed in to do that", nil)
	err.StatusCode = 401
	err.Suggestion = loginHint
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *CLIError {
	if message == "" {
		message = "Access denied"
	}
	err := NewCLIError(ErrorTypeForbidden, message, nil)
	err.StatusCode = 403
	err.Suggestion = "Contact a moderator if you believe this is an error."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	err := NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil)
	err.Suggestion = "Check the file path and try again."
	return err
}

// UploadCountError is returned when too many files are selected
func UploadCountError(count, max int) *CLIError {
	err := NewCLIError(ErrorTypeUploadCount,
		fmt.Sprintf("Too many files: %d selected (max: %d)", count, max),
		nil)
	err.Suggestion = fmt.Sprintf("Upload at most %d files at a time.", max)
	return err
}

// UploadSizeError is returned when a file exceeds the per-file limit
func UploadSizeError(name string, sizeMB float64, maxMB int) *CLIError {
	err := NewCLIError(ErrorTypeUploadSize,
		fmt.Sprintf("File too large: %s is %.1f MB (max: %d MB)", name, sizeMB, maxMB),
		nil)
	err.Suggestion = fmt.Sprintf("Resize or compress the image to under %d MB.", maxMB)
	return err
}

// UploadTypeError is returned for files whose content is not an accepted image
func UploadTypeError(name, mimeType string, allowed []string) *CLIError {
	err := NewCLIError(ErrorTypeUploadType,
		fmt.Sprintf("Unsupported file type: %s (%s)", name, mimeType),
		nil)
	err.Suggestion = "Supported types: " + strings.Join(allowed, ", ")
	return err
}

// ServerError creates a server error
func ServerError() *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// RateLimitError creates a rate limit error
func RateLimitError(retryAfter int) *CLIError {
	err := NewCLIError(ErrorTypeRateLimit,
		"Rate limit exceeded. Too many requests.",
		nil)
	err.RetryAfter = retryAfter
	err.Suggestion = fmt.Sprintf("Please wait %d seconds before trying again.", retryAfter)
	return err
}

// ConflictError creates a conflict error
func ConflictError(message string) *CLIError {
	err := NewCLIError(ErrorTypeConflict, message, nil)
	err.Suggestion = "This resource already exists. Try a different name or identifier."
	return err
}

// fromAPIError maps a backend error response onto a CLI error by status
func fromAPIError(apiErr *api.APIError) *CLIError {
	var cliErr *CLIError
	switch {
	case apiErr.StatusCode == 400 || apiErr.StatusCode == 422:
		cliErr = NewCLIError(ErrorTypeValidation, apiErr.Message, apiErr)
	case apiErr.StatusCode == 401:
		cliErr = UnauthorizedError()
	case apiErr.StatusCode == 403:
		cliErr = ForbiddenError(apiErr.Message)
	case apiErr.StatusCode == 404:
		cliErr = NewCLIError(ErrorTypeNotFound, apiErr.Message, apiErr)
	case apiErr.StatusCode == 409:
		cliErr = ConflictError(apiErr.Message)
	case apiErr.StatusCode == 413:
		cliErr = NewCLIError(ErrorTypeUploadSize, apiErr.Message, apiErr)
	case apiErr.StatusCode == 429:
		cliErr = RateLimitError(60)
	case apiErr.StatusCode >= 500:
		cliErr = ServerError()
	default:
		cliErr = NewCLIError(ErrorTypeUnknown, apiErr.Message, apiErr)
	}
	cliErr.Cause = apiErr
	cliErr.StatusCode = apiErr.StatusCode
	if cliErr.Message == "" {
		cliErr.Message = apiErr.Error()
	}
	return cliErr
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}

	var formErr *validation.FormError
	if errors.As(err, &formErr) {
		return NewCLIError(ErrorTypeValidation, "Invalid input: "+formErr.Error(), err)
	}

	if errors.Is(err, client.ErrCircuitOpen) {
		return UnavailableError().WithCause(err)
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.").WithCause(err)
	case strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not resolve the API host.").WithCause(err)
	case strings.Contains(errMsg, "context deadline exceeded"), strings.Contains(errMsg, "timeout"):
		return TimeoutError().WithCause(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	if cliErr.Type == ErrorTypeRateLimit && cliErr.RetryAfter > 0 {
		sb.WriteString(fmt.Sprintf("Retry in: %d seconds\n", cliErr.RetryAfter))
	}

	return sb.String()
}
