package remote

import (
	"fmt"
	"io"
	"net/http"

	addons "github.com/eugener/wpaddons/internal"
)

// APIError is a non-200 response from the addons API.
type APIError struct {
	StatusCode int
	Body       string
}

// Error returns a formatted error string including status and body.
func (e *APIError) Error() string {
	return fmt.Sprintf("addons api: HTTP %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match any API error with errors.Is(err, addons.ErrUpstream).
func (e *APIError) Unwrap() error { return addons.ErrUpstream }

// HTTPStatus returns the upstream HTTP status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// parseAPIError reads up to 4KB from the response body and returns an APIError.
func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}
