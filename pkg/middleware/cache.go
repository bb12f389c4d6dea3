package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks catalog GET responses as browser-cacheable for maxAge
// seconds. Non-GET methods pass through untouched so cart mutations are
// never cached.
func CacheControl(maxAge int) func(next http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
