package httpapi

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/avoronovs/papertrail/internal/httputil"
	"github.com/avoronovs/papertrail/internal/logging"
	"github.com/avoronovs/papertrail/internal/server/auth"
)

// Recovery converts handler panics into 500 responses so one bad request
// cannot take the server down.
func Recovery(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error(r.Context(), "panic in handler",
						"panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Auth validates the bearer token and stores the user id on the request
// context. Requests under /api/auth/ pass through unauthenticated.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/auth/") {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := auth.GetUserIDFromToken(token, secret)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}
