package middleware

import (
	"net/http"
	"strings"

	"github.com/plantops/plantops-backend/api/responses"
	"github.com/plantops/plantops-backend/pkg/access"
	pkgAuth "github.com/plantops/plantops-backend/pkg/auth"
	"github.com/plantops/plantops-backend/pkg/config"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// viewer resolved through the access policy.
func Auth(cfg config.JWTConfig, policy *access.Policy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			viewer := policy.Viewer(claims.UserID, claims.Role)
			ctx := logg.WithActor(WithViewer(r.Context(), viewer), viewer.UserID, string(viewer.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" in any case, or a bare token.
func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw, raw != ""
}
