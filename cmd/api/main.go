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

	"github.com/cmlabs-hris/creator-payroll-go/internal/config"
	appHTTP "github.com/cmlabs-hris/creator-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/creator-payroll-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/creator-payroll-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "creator-payroll"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	configRepo := postgresql.NewPayrollConfigRepository(db)
	creatorRepo := postgresql.NewCreatorRepository(db)
	liveSessionRepo := postgresql.NewLiveSessionRepository(db, location)
	salesRepo := postgresql.NewSalesRepository(db)
	payoutRepo := postgresql.NewPayoutRepository(db)

	payrollSvc := payrollService.NewPayrollService(
		configRepo,
		creatorRepo,
		liveSessionRepo,
		salesRepo,
		payoutRepo,
		payrollService.Options{
			MaxConcurrency: cfg.Payroll.MaxConcurrency,
			RunTimeout:     cfg.Payroll.RunTimeout,
			Location:       location,
			Logger:         logger,
		},
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// a payroll run may take up to the configured run timeout
		WriteTimeout: cfg.Payroll.RunTimeout + 10*time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server running", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
