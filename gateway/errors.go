package gateway

import (
	"errors"
	"fmt"
)

// ErrDecode indicates the server returned a body that is not valid JSON.
var ErrDecode = errors.New("response body is not valid JSON")

// APIError is a failure reported by the server, either through an "error"
// field on a non-2xx response or a status envelope with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (http %d)", e.StatusCode)
	}
	return fmt.Sprintf("api error (http %d): %s", e.StatusCode, e.Message)
}
