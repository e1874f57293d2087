package jwt

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
)

var ErrMissingClaims = errors.New("company_id or employee_id claim is missing or invalid")

// CallerFromContext reads the access claims that jwtauth.Verifier stored in ctx.
func CallerFromContext(ctx context.Context) (AccessClaims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, _ := claims["company_id"].(string)
	employeeID, _ := claims["employee_id"].(string)
	if companyID == "" || employeeID == "" {
		return AccessClaims{}, ErrMissingClaims
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return AccessClaims{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Email:      email,
		Role:       employee.AccessRole(role),
	}, nil
}

// WithCaller returns ctx carrying an access token for c, as the Verifier middleware would.
// Background jobs and tests use it to call services on behalf of an employee.
func WithCaller(ctx context.Context, c AccessClaims) context.Context {
	token := jwt.New()
	_ = token.Set("user_id", c.EmployeeID)
	_ = token.Set("employee_id", c.EmployeeID)
	_ = token.Set("company_id", c.CompanyID)
	_ = token.Set("email", c.Email)
	_ = token.Set("role", string(c.Role))
	_ = token.Set("type", TokenTypeAccess)
	return jwtauth.NewContext(ctx, token, nil)
}
