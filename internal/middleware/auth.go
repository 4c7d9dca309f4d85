package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	requestKey   contextKey = "request_info"
)

// requestInfo dibuat LoggingMiddleware; auth mengisi principal supaya
// access log di lapisan luar bisa membacanya.
type requestInfo struct {
	principal string
}

// publicPath reports paths that skip auth and rate limiting
func publicPath(p string) bool {
	return p == "/health" || p == "/metrics" || strings.HasPrefix(p, "/healthz/")
}

// APIKeyAuth validates API key from Authorization header. validKeys maps a
// principal name to its key; an empty map disables auth.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(validKeys) == 0 || r.Method == http.MethodOptions || publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			// constant-time comparison
			var principal string
			for name, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					principal = name
					break
				}
			}
			if principal == "" {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			if info, ok := r.Context().Value(requestKey).(*requestInfo); ok {
				info.principal = principal
			}
			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipalFromContext extracts the authenticated principal
func GetPrincipalFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(PrincipalKey).(string); ok {
		return p
	}
	return ""
}
