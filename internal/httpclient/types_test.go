package httpclient_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := httpclient.NewHTTPError(404, "https://restcountries.com/v2/all", "Not Found")
	assert.Equal(t, "HTTP 404 for URL https://restcountries.com/v2/all: Not Found", err.Error())
	assert.Equal(t, 404, err.StatusCode)
}

func TestHTTPError_Wrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("fetching rates: %w", httpclient.NewHTTPError(502, "http://rates", "Bad Gateway"))

	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, 502, httpErr.StatusCode)
}
