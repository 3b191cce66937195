package api

import "net/http"

// apiKeyMiddleware guards a route group behind a shared X-API-Key secret.
// The router skips the guard entirely when authentication is disabled, so
// an empty expected key never reaches here.
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch key := r.Header.Get("X-API-Key"); {
			case key == "":
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
			case key != expectedKey:
				sendError(w, "Invalid API key", http.StatusUnauthorized)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
