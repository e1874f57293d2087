package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
)

// AuthRequired accepts only access tokens that carry the tenant and employee claims.
// It runs after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if _, err := jwt.CallerFromContext(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
