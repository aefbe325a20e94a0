package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCacheMissing   = errors.New("rates cache not found")
	ErrMalformedCache = errors.New("rates cache is malformed")
	ErrNoBases        = errors.New("rates cache has no base currencies")
	ErrUpstreamResult = errors.New("rates api returned non-success result")

	ErrCodeRequired  = errors.New("currency code is required")
	ErrBaseNotCached = errors.New("currency is not a cached base")
	ErrQuoteNotFound = errors.New("currency not found")
	ErrInvalidAmount = errors.New("invalid amount")
)

// StatusError is returned by the transport when the remote side answers with status >= 400.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// ConnectivityError wraps network-level failures (DNS, refused connection, timeout).
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ValidationError reports bad user input or an unknown currency code.
type ValidationError struct {
	Code string
	Msg  string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Code)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

type MalformedCacheError struct {
	Base   string
	Reason string
}

func (e *MalformedCacheError) Error() string {
	return fmt.Sprintf("rates cache is malformed: base %q: %s", e.Base, e.Reason)
}

func (e *MalformedCacheError) Unwrap() error { return ErrMalformedCache }
