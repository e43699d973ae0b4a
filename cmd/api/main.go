package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ydm-hris/attendance-gateway-go/internal/config"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	appHTTP "github.com/ydm-hris/attendance-gateway-go/internal/handler/http"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/cron"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/database"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/gateway"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/jwt"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/sse"
	gatewayRepo "github.com/ydm-hris/attendance-gateway-go/internal/repository/gateway"
	"github.com/ydm-hris/attendance-gateway-go/internal/repository/memory"
	"github.com/ydm-hris/attendance-gateway-go/internal/repository/postgresql"
	attendanceService "github.com/ydm-hris/attendance-gateway-go/internal/service/attendance"
	serviceAuth "github.com/ydm-hris/attendance-gateway-go/internal/service/auth"
	employeeService "github.com/ydm-hris/attendance-gateway-go/internal/service/employee"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", cfg.App.Name)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionStore, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := gateway.NewClient(cfg.Gateway.URL, cfg.Gateway.Timeout)

	employeeRepo := gatewayRepo.NewCachedEmployeeRepository(
		gatewayRepo.NewEmployeeRepository(client),
		cfg.Attendance.RosterCacheTTL,
	)
	attendanceRepo := gatewayRepo.NewAttendanceRepository(client)
	userGateway := gatewayRepo.NewUserGateway(client)

	policy, err := attendanceService.PolicyByName(cfg.Attendance.Visibility)
	if err != nil {
		return err
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, hub, policy, cfg.Attendance.SheetIdleTTL, cfg.Gateway.Timeout)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	authSvc := serviceAuth.NewAuthService(userGateway, sessionStore, JWTService, attendanceSvc, cfg.Session.TTL, cfg.Session.RememberTTL)

	scheduler := cron.NewScheduler(ctx)
	cron.NewHousekeepingJobs(attendanceSvc, authSvc).RegisterJobs(scheduler, cfg.Attendance.HousekeepingInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.CORSOrigins,
		},
		JWTService,
		authSvc,
		appHTTP.NewAuthHandler(JWTService, authSvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, authSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", server.Addr, "env", cfg.App.Env, "session_store", cfg.Session.Store)
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
	return server.Shutdown(shutdownCtx)
}

func newSessionStore(ctx context.Context, cfg *config.Config) (auth.SessionStore, func(), error) {
	if cfg.Session.Store != config.SessionStorePostgres {
		return memory.NewSessionStore(), func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return postgresql.NewSessionStore(db), db.Close, nil
}
