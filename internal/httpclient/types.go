package httpclient

import "fmt"

// HTTPError is returned by Get for any upstream status other than 200
type HTTPError struct {
	StatusCode int
	// Message is the collapsed start of the response body, or the status text
	Message string
	URL     string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates an HTTPError for url
func NewHTTPError(statusCode int, url, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, URL: url}
}
