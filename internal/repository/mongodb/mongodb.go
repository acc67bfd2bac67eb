// Package mongodb implements the domain repositories on MongoDB. Documents
// use string _id values (UUIDv7) so ids look the same under both drivers.
package mongodb

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collEmployees       = "employees"
	collAttendance      = "attendance"
	collSalaries        = "salaries"
	collPaymentAccounts = "payment_accounts"
	collTransactions    = "transactions"
	collActivityLogs    = "activity_logs"
)

// caseInsensitive matches strings ignoring case; the name index uses it too.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type transactor struct {
	db *database.MongoDB
}

func NewTransactor(db *database.MongoDB) repository.Transactor {
	return &transactor{db: db}
}

// WithinTransaction runs fn in a session transaction. On a standalone server
// fn runs directly and the unique indexes remain the only guard.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.db.SupportsTransactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.db.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique and lookup indexes every repository relies on.
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	indexes := map[string][]mongo.IndexModel{
		collAttendance: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		collSalaries: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "year", Value: -1}, {Key: "month_number", Value: -1}}},
		},
		collPaymentAccounts: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		},
		collTransactions: {
			{Keys: bson.D{{Key: "related_salary_id", Value: 1}}},
		},
		collActivityLogs: {
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
		},
		collEmployees: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// decimal.String never produces an unparsable literal
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
