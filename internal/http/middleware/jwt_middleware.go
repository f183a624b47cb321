package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/diagnosis/homepro-bookings/internal/http/response"
	"github.com/diagnosis/homepro-bookings/pkg/auth"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireJWT rejects requests without a valid bearer token before any handler
// runs. The caller id is also stored under logger.UserIDKey for log lines.
func RequireJWT(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, response.MsgAuthRequired)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			claims, err := issuer.Parse(raw)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected bearer token", "error", err)
				response.Unauthorized(w, response.MsgInvalidToken)
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v, _ := r.Context().Value(CtxClaims).(*auth.Claims)
	return v
}

// UserID returns the authenticated caller id, or "" outside RequireJWT.
func UserID(r *http.Request) string {
	if c := Claims(r); c != nil {
		return c.UserID()
	}
	return ""
}
