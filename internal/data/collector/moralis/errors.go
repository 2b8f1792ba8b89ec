package moralis

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoData is returned when the vendor answered 2xx with nothing usable in it.
var ErrNoData = errors.New("moralis: no data returned")

// APIError is a non-2xx vendor response.
type APIError struct {
	StatusCode int
	Endpoint   string
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moralis %s: %s", e.Endpoint, e.Message())
}

// Message is the user facing description of the failure.
func (e *APIError) Message() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Invalid API key. Please check your Moralis API key."
	case http.StatusForbidden:
		return "API key does not have permission to access this endpoint."
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Please wait a moment and try again."
	case http.StatusNotFound:
		return "Endpoint not found or token does not exist."
	}

	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return "API request failed: " + status
	}
	return fmt.Sprintf("API request failed: %s - %s", status, body)
}

// Unauthorized, RateLimited and NotFound classify the failure.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func (e *APIError) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }
