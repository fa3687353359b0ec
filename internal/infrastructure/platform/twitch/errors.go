package twitchinfra

import (
	"errors"
	"fmt"
	"net/http"

	"twitchDeck/internal/domain"
)

// APIError is a non-2xx answer from Helix.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twitch: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("twitch: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Is makes a 401 match domain.ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is a 401 from Helix.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
