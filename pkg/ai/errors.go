package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited maps upstream HTTP 429. The user should try again shortly.
	ErrRateLimited = errors.New("ai service rate limited")
	// ErrQuotaExhausted maps upstream HTTP 402. The service credits are spent.
	ErrQuotaExhausted = errors.New("ai service quota exhausted")
)

// StatusError reports a non-2xx upstream response that is neither a rate
// limit nor an exhausted quota.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ai service error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("ai service error %d", e.Code)
}

// errFromStatus classifies an upstream status code.
func errFromStatus(code int, message string) error {
	switch code {
	case 429:
		return ErrRateLimited
	case 402:
		return ErrQuotaExhausted
	default:
		return &StatusError{Code: code, Message: message}
	}
}
