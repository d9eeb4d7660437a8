package maildraft

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrorCategory tells the retry loop what to do with a failed vendor call.
type ErrorCategory string

const (
	ErrorTransient ErrorCategory = "transient"  // retry: rate limit, overload, timeout
	ErrorPermanent ErrorCategory = "permanent"  // give up: bad key, unknown model
	ErrorUserInput ErrorCategory = "user_input" // give up: the prompt was rejected
)

// CategorizedError is implemented by vendor failures that know their
// category. StatusCode and RetryAfter are zero when the vendor gave none.
type CategorizedError interface {
	error
	Category() ErrorCategory
	StatusCode() int
	RetryAfter() time.Duration
}

// Error is the CategorizedError produced by the vendor adapters.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int
	RetryDelay time.Duration
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error             { return e.Cause }
func (e *Error) Category() ErrorCategory   { return e.Cat }
func (e *Error) StatusCode() int           { return e.Code }
func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

// NewTransientError reports a failure worth retrying.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewStatusError categorizes a vendor API failure by its HTTP status.
// retryAfter carries the vendor's Retry-After hint, if any.
func NewStatusError(msg string, code int, retryAfter time.Duration, cause error) *Error {
	return &Error{Msg: msg, Cat: CategorizeStatus(code), Code: code, RetryDelay: retryAfter, Cause: cause}
}

// CategorizeStatus maps an HTTP status onto an ErrorCategory. Unknown
// statuses are permanent.
func CategorizeStatus(code int) ErrorCategory {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500 && code < 600:
		return ErrorTransient
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ErrorUserInput
	default:
		return ErrorPermanent
	}
}

// CategoryOf returns the category of the first CategorizedError in err's
// chain, or "" when there is none.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category()
	}
	return ""
}

func IsTransient(err error) bool { return CategoryOf(err) == ErrorTransient }
func IsPermanent(err error) bool { return CategoryOf(err) == ErrorPermanent }
func IsUserInput(err error) bool { return CategoryOf(err) == ErrorUserInput }

// StatusCodeOf returns the vendor HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the vendor Retry-After hint carried by err, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// Failure modes of the language-model service.
var (
	ErrRateLimited = errors.New("model service rate limited")
	ErrUnavailable = errors.New("model service unavailable")
	ErrTimeout     = errors.New("model call timed out")
)

// ClassifyCallError maps a failed model call onto exactly one of
// ErrRateLimited, ErrUnavailable or ErrTimeout. The original error stays
// reachable through errors.Is and errors.As.
func ClassifyCallError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout) {
		return err
	}
	if StatusCodeOf(err) == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// ValidationError reports a request the pipeline cannot work from.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ServiceError reports a fatal model-service failure during a run.
// Fallback, when set, is a templated draft produced without the model.
type ServiceError struct {
	Stage    string
	Err      error
	Fallback string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error in %s: %v", e.Stage, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed history write.
type PersistenceError struct {
	UserID string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist history for %s: %v", e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
