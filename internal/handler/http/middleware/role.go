package middleware

import (
	"net/http"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
)

func requireRole(denied error, allowed ...employee.AccessRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := jwt.CallerFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			for _, role := range allowed {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.HandleError(w, denied)
		})
	}
}

// RequireAdmin lets only admins through.
var RequireAdmin = requireRole(auth.ErrAdminRequired, employee.AccessRoleAdmin)

// RequireAdminOrBookkeeper guards tenant-wide read access such as reports.
var RequireAdminOrBookkeeper = requireRole(auth.ErrReportAccess, employee.AccessRoleAdmin, employee.AccessRoleBookkeeper)

// RequireWriter rejects bookkeepers, who may read but never change data.
var RequireWriter = requireRole(auth.ErrWriteAccessRequired, employee.AccessRoleAdmin, employee.AccessRoleEmployee)
