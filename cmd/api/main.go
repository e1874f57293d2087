package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	appHTTP "github.com/punchcard-hq/punchcard-backend/internal/handler/http"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/middleware"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/cron"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/email"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/export"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/sse"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/punchcard-hq/punchcard-backend/internal/repository/postgresql"
	serviceAuth "github.com/punchcard-hq/punchcard-backend/internal/service/auth"
	employeeService "github.com/punchcard-hq/punchcard-backend/internal/service/employee"
	invitationService "github.com/punchcard-hq/punchcard-backend/internal/service/invitation"
	notificationService "github.com/punchcard-hq/punchcard-backend/internal/service/notification"
	reportService "github.com/punchcard-hq/punchcard-backend/internal/service/report"
	settingsService "github.com/punchcard-hq/punchcard-backend/internal/service/settings"
	timeEntryService "github.com/punchcard-hq/punchcard-backend/internal/service/timeentry"
	"github.com/punchcard-hq/punchcard-backend/migrations"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	})).With(slog.String("app", cfg.App.Name), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.Database.AutoMigrate {
		if err := migrations.Up(dsn); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		slog.Info("Database migrations applied")
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	clock := timecalc.SystemClock{}
	tx := postgresql.NewTransactor(db)

	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	timeEntryRepo := postgresql.NewTimeEntryRepository(db)
	alertRepo := postgresql.NewAlertRepository(db)
	refreshRepo := postgresql.NewRefreshTokenRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt: %w", err)
	}

	sender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	hub := sse.NewHub()
	dispatcher := notificationService.NewDispatcher(sender, notificationRepo, hub, employeeRepo, settingsRepo, clock)
	issuer := invitationService.NewIssuer(employeeRepo, cfg.App.FrontendURL, cfg.Invitation, clock)

	authSvc := serviceAuth.NewAuthService(employeeRepo, companyRepo, settingsRepo, refreshRepo, jwtService, tx, cfg.Invitation, clock)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, companyRepo, issuer, tx, dispatcher, cfg.Invitation, clock)
	settingsSvc := settingsService.NewSettingsService(settingsRepo, companyRepo, tx)
	timeEntrySvc := timeEntryService.NewTimeEntryService(timeEntryRepo, employeeRepo, settingsRepo, tx, dispatcher, clock)
	reportSvc := reportService.NewReportService(timeEntryRepo, employeeRepo, settingsRepo, export.NewRenderer(), dispatcher, clock)
	inboxSvc := notificationService.NewNotificationService(notificationRepo, hub)
	notifySvc := notificationService.NewNotifyService(dispatcher, cfg.App.FrontendURL, cfg.Invitation, clock)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go sweepRateLimiter(ctx, limiter, cfg.RateLimit.Window)

	scheduler := cron.NewScheduler()
	if cfg.Cron.Enabled {
		cron.NewMissingClockOutJob(settingsRepo, timeEntryRepo, alertRepo, employeeRepo, dispatcher, clock).
			Register(scheduler, cfg.Cron.MissingClockOutEvery, cfg.Cron.MissingClockOutTimeout)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(cfg, jwtService, limiter, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(jwtService, authSvc),
		TimeEntry:    appHTTP.NewTimeEntryHandler(timeEntrySvc),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
		Settings:     appHTTP.NewSettingsHandler(settingsSvc),
		Notification: appHTTP.NewNotificationHandler(inboxSvc, jwtService),
		Notify:       appHTTP.NewNotifyHandler(notifySvc, reportSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open SSE streams end when ctx is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "version", cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

// sweepRateLimiter drops idle clients so the limiter does not grow without bound.
func sweepRateLimiter(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
