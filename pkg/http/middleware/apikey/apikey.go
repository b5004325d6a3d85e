package apikey

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// NewAPIKeyMiddleware gates a route on the X-API-Key header. An empty
// expected key means the server itself is misconfigured, which is a 500,
// not a 401: kiosks should not be told their key is wrong when no key was
// ever provisioned.
func NewAPIKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				slog.Error("API key not configured, rejecting upload")
				http.Error(w, "API key not configured", http.StatusInternalServerError)

				return
			}

			got := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
