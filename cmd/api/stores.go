package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
)

// stores is the set of repositories backing the services, for one driver.
type stores struct {
	transactor      repository.Transactor
	employees       employee.EmployeeRepository
	attendance      attendance.AttendanceRepository
	salaries        salary.SalaryRepository
	paymentAccounts ledger.PaymentAccountRepository
	transactions    ledger.TransactionRepository
	activityLogs    activitylog.ActivityLogRepository
	close           func(ctx context.Context)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverMongoDB:
		return openMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*stores, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.DefaultPoolOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		transactor:      postgresql.NewTransactor(db),
		employees:       postgresql.NewEmployeeRepository(db),
		attendance:      postgresql.NewAttendanceRepository(db),
		salaries:        postgresql.NewSalaryRepository(db),
		paymentAccounts: postgresql.NewPaymentAccountRepository(db),
		transactions:    postgresql.NewTransactionRepository(db),
		activityLogs:    postgresql.NewActivityLogRepository(db),
		close:           func(context.Context) { db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*stores, error) {
	db, err := database.NewMongoDB(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB)
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	if !db.SupportsTransactions {
		slog.Warn("MongoDB deployment does not support transactions, writes run without them")
	}

	return &stores{
		transactor:      mongodb.NewTransactor(db),
		employees:       mongodb.NewEmployeeRepository(db),
		attendance:      mongodb.NewAttendanceRepository(db),
		salaries:        mongodb.NewSalaryRepository(db),
		paymentAccounts: mongodb.NewPaymentAccountRepository(db),
		transactions:    mongodb.NewTransactionRepository(db),
		activityLogs:    mongodb.NewActivityLogRepository(db),
		close: func(ctx context.Context) {
			if err := db.Close(ctx); err != nil {
				slog.Warn("Failed to close mongodb", "error", err)
			}
		},
	}, nil
}
