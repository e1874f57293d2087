package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/middleware"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         AuthHandler
	TimeEntry    TimeEntryHandler
	Employee     EmployeeHandler
	Report       ReportHandler
	Settings     SettingsHandler
	Notification NotificationHandler
	Notify       NotifyHandler
}

func NewRouter(cfg *config.Config, jwtService jwt.Service, limiter *middleware.RateLimiter, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	// Notification-triggering writes share one sliding window per client.
	limited := limiter.Handler

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/invitations/accept", h.Auth.AcceptInvitation)
		})

		r.Route("/notifications", func(r chi.Router) {
			// EventSource cannot send an Authorization header; the stream checks its own short-lived token.
			r.Get("/stream", h.Notification.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
				r.Use(middleware.AuthRequired)
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Put("/read-all", h.Notification.MarkAllAsRead)
				r.Put("/{id}/read", h.Notification.MarkAsRead)
				r.Post("/sse-token", h.Notification.GetSSEToken)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/time-entries", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireWriter)
					r.Get("/today", h.TimeEntry.Today)
					r.Post("/clock-in", h.TimeEntry.ClockIn)
					r.Post("/clock-out", h.TimeEntry.ClockOut)
					r.Post("/breaks/start", h.TimeEntry.StartBreak)
					r.Post("/breaks/end", h.TimeEntry.EndBreak)
					r.With(limited).Post("/off-day", h.TimeEntry.ToggleOffDay)
					r.With(limited).Post("/vacation-requests", h.TimeEntry.RequestVacation)
					r.With(limited).Post("/change-requests", h.TimeEntry.SubmitChangeRequest)
					r.Get("/me", h.TimeEntry.ListMine)
					r.Get("/vacation-balance", h.TimeEntry.VacationBalance)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdminOrBookkeeper)
					r.Get("/", h.TimeEntry.List)
					r.Get("/{id}", h.TimeEntry.Get)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", h.TimeEntry.Create)
					r.Put("/{id}", h.TimeEntry.Save)
					r.Delete("/{id}", h.TimeEntry.Delete)
					r.With(limited).Post("/{id}/change-request/approve", h.TimeEntry.ApproveChangeRequest)
					r.With(limited).Post("/{id}/change-request/deny", h.TimeEntry.DenyChangeRequest)
					r.With(limited).Post("/{id}/vacation/approve", h.TimeEntry.ApproveVacation)
					r.With(limited).Post("/{id}/vacation/deny", h.TimeEntry.DenyVacation)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				// Employees may read their own record; the service enforces that.
				r.Get("/{id}", h.Employee.Get)

				r.With(middleware.RequireAdminOrBookkeeper).Get("/", h.Employee.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.With(limited).Post("/", h.Employee.Create)
					r.With(limited).Put("/{id}", h.Employee.Update)
					r.Delete("/{id}", h.Employee.Archive)
					r.Post("/{id}/restore", h.Employee.Restore)
					r.With(limited).Post("/{id}/invitation", h.Employee.ResendInvitation)
				})
			})

			r.Route("/reports/period", func(r chi.Router) {
				r.Use(middleware.RequireAdminOrBookkeeper)
				r.Get("/", h.Report.Period)
				r.Get("/export", h.Report.Export)
				r.With(middleware.RequireAdmin, limited).Post("/send", h.Report.Send)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.With(middleware.RequireAdmin).Put("/", h.Settings.Update)
			})

			r.Route("/notify", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Use(limited)
				r.Post("/change-request", h.Notify.ChangeRequest)
				r.Post("/change-request-resolved", h.Notify.ChangeRequestResolved)
				r.Post("/invitation", h.Notify.Invitation)
				r.Post("/period-report", h.Notify.PeriodReport)
				r.Post("/missing-clock-out", h.Notify.MissingClockOut)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
