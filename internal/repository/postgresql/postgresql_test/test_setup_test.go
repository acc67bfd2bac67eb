package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testDB *database.DB

// openTestDB connects to TEST_DATABASE_URL once and applies the schema.
// Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testDB != nil {
		return testDB
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.DefaultPoolOptions)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, postgresql.Migrate(ctx, db))

	testDB = db
	return testDB
}

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`TRUNCATE TABLE activity_logs, transactions, salaries, payment_accounts, attendance, employees CASCADE`)
	require.NoError(t, err)
}

func createTestEmployee(t *testing.T, db *database.DB, name string, base int64, status string) string {
	t.Helper()
	id := uuid.Must(uuid.NewV7()).String()
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (id, name, email, base_salary, employment_status)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, fmt.Sprintf("%s@example.com", id), decimal.NewFromInt(base), status)
	require.NoError(t, err)
	return id
}
