package server

import (
	"net/http"
)

// CORS header values applied to every response.
const (
	allowOrigin      = "*"
	allowWildcard    = "*"
	allowCredentials = "true"
	preflightMaxAge  = "600"
)

// corsMiddleware permits every origin, method and header. Preflight requests
// are answered with 204 before routing.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Credentials", allowCredentials)
		h.Add("Vary", "Origin")

		if isPreflight(r) {
			method := r.Header.Get("Access-Control-Request-Method")
			if method == "" {
				method = allowWildcard
			}
			headers := r.Header.Get("Access-Control-Request-Headers")
			if headers == "" {
				headers = allowWildcard
			}
			h.Set("Access-Control-Allow-Methods", method)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", preflightMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.Set("Access-Control-Allow-Methods", allowWildcard)
		h.Set("Access-Control-Allow-Headers", allowWildcard)
		next.ServeHTTP(w, r)
	})
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions
}
