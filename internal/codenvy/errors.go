package codenvy

import (
	"fmt"
	"net/http"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
)

// APIError is a non-2xx answer from the platform.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap classifies the error for errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthentication
	default:
		return domain.ErrTransport
	}
}
