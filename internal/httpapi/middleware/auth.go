package middleware

import (
	"net/http"
	"strings"

	"github.com/mockllm/mockllm/internal/apierror"
)

// RequireBearer builds middleware that checks the Authorization header
// against whatever token() currently returns. token is read fresh on every
// request (not captured once) so a reload that changes server.auth or
// server.admin_auth takes effect immediately. An empty token disables the
// check entirely.
func RequireBearer(token func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			want := token()
			if want == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := bearerFrom(r.Header.Get("Authorization"))
			if got == "" || got != want {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerFrom(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSONError(w, apierror.New(apierror.Unauthorized, "missing or invalid bearer token"))
}
