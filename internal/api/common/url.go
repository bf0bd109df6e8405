// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// GetURLParam extracts and decodes a path parameter. Surrounding whitespace is
// trimmed and an empty value is rejected. Inner spaces are kept since country
// names contain them.
func GetURLParam(r *http.Request, paramName string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, paramName))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", paramName)
	}

	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}
	return decoded, nil
}

// GetIntQuery parses an optional integer query parameter, returning fallback when absent
func GetIntQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
