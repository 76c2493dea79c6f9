package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/creator-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type claimsKey struct{}

// AuthRequired rejects requests without a valid access token and stores the
// caller's agency identity in the request context. It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			claims, err := jwtService.ParseClaims(r.Context(), token)
			if err != nil {
				if errors.Is(err, user.ErrInvalidToken) {
					response.Unauthorized(w, err.Error())
					return
				}
				response.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ClaimsFromContext returns the identity stored by AuthRequired.
func ClaimsFromContext(ctx context.Context) (user.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(user.Claims)
	return claims, ok
}

// WithClaims stores claims in ctx the way AuthRequired does.
func WithClaims(ctx context.Context, claims user.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}
