package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

// ErrConnection is returned when the transport connection to a registry
// could not be established or completed. These failures are retried;
// HTTP status errors are not.
var ErrConnection = errors.New("connection error")

// NewHTTPClient creates an HTTP client with a standard timeout for
// registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// JoinURL joins a base URL with path segments, collapsing duplicate
// slashes at the boundaries. Segments are not percent-encoded.
func JoinURL(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		out += "/" + s
	}
	return out
}
