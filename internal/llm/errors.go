package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a generation-service failure. Retry and cooldown
// decisions switch on the kind instead of matching error message text.
type ErrorKind string

const (
	KindRateLimited   ErrorKind = "rate_limited"
	KindTimeout       ErrorKind = "timeout"
	KindTransport     ErrorKind = "transport"
	KindInvalidOutput ErrorKind = "invalid_output"
	KindOther         ErrorKind = "other"
)

// ServiceError wraps a generation-service failure with its kind.
type ServiceError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func newServiceError(kind ErrorKind, msg string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the structured kind of err, or KindOther for errors that
// did not originate in the generation client.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindOther
}

// Retryable reports whether another attempt may succeed. Invalid output is
// retried once by the caller via re-prompting, not here; caller bugs are
// never retried.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindTimeout, KindTransport:
		return true
	default:
		return false
	}
}

// ErrInvalidOutput indicates the model response could not be parsed into
// the expected structured format.
var ErrInvalidOutput = errors.New("invalid model output format")
