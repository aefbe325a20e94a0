package console

import (
	"errors"
	"fmt"
	"net/http"

	"fxconvert/internal/domain"
)

var statusMessages = map[int]string{
	http.StatusNotFound:            "API connection error",
	http.StatusInternalServerError: "API server error. Please try again later.",
	http.StatusServiceUnavailable:  "Service temporarily unavailable. Please try again later.",
}

// FormatError turns an error from the rate service into a message for the user.
func FormatError(err error) string {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		if msg, ok := statusMessages[statusErr.StatusCode]; ok {
			return msg
		}
		return fmt.Sprintf("HTTP error %d", statusErr.StatusCode)
	}

	var connErr *domain.ConnectivityError
	if errors.As(err, &connErr) {
		return "Cannot reach the exchange rate API. Check your network connection."
	}

	switch {
	case errors.Is(err, domain.ErrCacheMissing):
		return "No rates downloaded yet. Choose 3 to fetch them."
	case errors.Is(err, domain.ErrMalformedCache):
		return "The local rates file is damaged. Choose 3 to download it again."
	case errors.Is(err, domain.ErrNoBases):
		return "The local rates file is empty. Choose 3 to download it again."
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return "Error: " + vErr.Error()
	}
	return err.Error()
}
