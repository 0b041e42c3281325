package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
)

// middlewareAuthentication rejects protected routes without a valid bearer
// credential. Every failure gets the same 401 body so callers cannot tell a
// missing credential from a bad one.
func middlewareAuthentication(auth Authenticator, public map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.Method][matchedRoutePath(r)]; ok {
				next.ServeHTTP(w, r)
				return
			}

			p := strings.Fields(r.Header.Get("Authorization"))
			if auth == nil || len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
				writeUnauthorized(w)
				return
			}

			principal, err := auth.Authenticate(r.Context(), p[1])
			if err != nil {
				slog.WarnContext(r.Context(), "bearer credential rejected", "path", matchedRoutePath(r), "error", err)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(token.SetAuth(r.Context(), principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
}
