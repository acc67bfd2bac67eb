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

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/telemetry"
	activityLogService "github.com/cmlabs-hris/payroll-backend-go/internal/service/activitylog"
	attendanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/attendance"
	ledgerService "github.com/cmlabs-hris/payroll-backend-go/internal/service/ledger"
	salaryService "github.com/cmlabs-hris/payroll-backend-go/internal/service/salary"
	"github.com/go-chi/httplog/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	civil, err := clock.NewCivil(cfg.Attendance.TimeZone)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st.close(ctx)
	}()

	var locker lock.Locker = lock.NoopLocker{}
	if cfg.Redis.Addr != "" {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client)
	} else {
		slog.Warn("REDIS_ADDR not set, scheduled jobs run without a distributed lock")
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return err
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(
		st.transactor,
		st.attendance,
		st.employees,
		st.activityLogs,
		civil,
		attendanceService.Options{
			StreakWindow:    cfg.Attendance.StreakWindow,
			RetentionMonths: cfg.Attendance.RetentionMonths,
			RetentionBatch:  cfg.Attendance.RetentionBatch,
		},
	)
	ledgerSvc := ledgerService.NewLedgerService(
		st.transactor,
		st.paymentAccounts,
		st.transactions,
		st.activityLogs,
	)
	salarySvc := salaryService.NewSalaryService(
		st.transactor,
		st.salaries,
		st.employees,
		st.attendance,
		st.transactions,
		st.activityLogs,
		ledgerSvc,
		civil,
		emailService,
	)
	activityLogSvc := activityLogService.NewActivityLogService(st.activityLogs)

	scheduler := cron.NewScheduler(civil.Location(), locker, cron.Options{
		Timeout: cfg.Cron.JobTimeout,
		LockTTL: cfg.Redis.LockTTL,
	})
	if cfg.Cron.Enabled {
		jobs := cron.NewPayrollJobs(salarySvc, attendanceSvc)
		if err := jobs.RegisterJobs(scheduler, cron.Specs{
			Payroll:   cfg.Cron.PayrollSpec,
			Retention: cfg.Cron.RetentionSpec,
		}); err != nil {
			return err
		}
		scheduler.Start()
	}

	hub := sse.NewHub()
	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc, hub),
		Salary:      appHTTP.NewSalaryHandler(salarySvc, hub),
		Ledger:      appHTTP.NewLedgerHandler(ledgerSvc),
		ActivityLog: appHTTP.NewActivityLogHandler(activityLogSvc),
		Events:      appHTTP.NewEventsHandler(hub),
	}, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSOrigins,
		StoreTimeout:   cfg.App.StoreTimeout,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           otelhttp.NewHandler(router, "payroll-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "db_driver", cfg.Database.Driver, "time_zone", cfg.Attendance.TimeZone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if cfg.Cron.Enabled {
		scheduler.Stop(shutdownCtx)
	}

	slog.Info("Server stopped")
	return nil
}
