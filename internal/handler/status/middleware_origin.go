package status

import (
	"net/http"
	"net/url"
	"strings"
)

// sameOrigin rejects requests a browser sent on behalf of another site. A
// request without an Origin header (curl, the console, scripts) passes.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := url.Parse(origin)
		if err != nil || !strings.EqualFold(u.Host, r.Host) {
			http.Error(w, "cross-origin request refused", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
