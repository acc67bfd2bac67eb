package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type salaryDoc struct {
	ID               string               `bson:"_id"`
	EmployeeID       string               `bson:"employee_id"`
	Month            string               `bson:"month"`
	MonthNumber      int                  `bson:"month_number"`
	Year             int                  `bson:"year"`
	BasicSalary      primitive.Decimal128 `bson:"basic_salary"`
	Allowances       primitive.Decimal128 `bson:"allowances"`
	Deductions       primitive.Decimal128 `bson:"deductions"`
	NetSalary        primitive.Decimal128 `bson:"net_salary"`
	LateDays         int                  `bson:"late_days"`
	LateDeduction    primitive.Decimal128 `bson:"late_deduction"`
	Status           string               `bson:"status"`
	PaymentAccountID *string              `bson:"payment_account_id,omitempty"`
	TransactionID    *string              `bson:"transaction_id,omitempty"`
	PaidDate         *time.Time           `bson:"paid_date,omitempty"`
	PaidBy           *string              `bson:"paid_by,omitempty"`
	Notes            *string              `bson:"notes,omitempty"`
	CreatedBy        *string              `bson:"created_by,omitempty"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`

	Employee       []employeeDoc       `bson:"employee,omitempty"`
	PaymentAccount []paymentAccountDoc `bson:"payment_account,omitempty"`
}

func (d salaryDoc) toEntity() salary.Salary {
	s := salary.Salary{
		ID:               d.ID,
		EmployeeID:       d.EmployeeID,
		Month:            d.Month,
		Year:             d.Year,
		BasicSalary:      fromDecimal128(d.BasicSalary),
		Allowances:       fromDecimal128(d.Allowances),
		Deductions:       fromDecimal128(d.Deductions),
		NetSalary:        fromDecimal128(d.NetSalary),
		LateDays:         d.LateDays,
		LateDeduction:    fromDecimal128(d.LateDeduction),
		Status:           salary.Status(d.Status),
		PaymentAccountID: d.PaymentAccountID,
		TransactionID:    d.TransactionID,
		PaidDate:         d.PaidDate,
		PaidBy:           d.PaidBy,
		Notes:            d.Notes,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if len(d.Employee) > 0 {
		name := d.Employee[0].Name
		s.EmployeeName = &name
		s.EmployeeERPID = d.Employee[0].ERPID
	}
	if len(d.PaymentAccount) > 0 {
		name := d.PaymentAccount[0].Name
		s.PaymentAccountName = &name
	}
	return s
}

type salaryRepository struct {
	coll *mongo.Collection
}

func NewSalaryRepository(db *database.MongoDB) salary.SalaryRepository {
	return &salaryRepository{coll: db.Database.Collection(collSalaries)}
}

func (r *salaryRepository) Create(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	month, err := clock.ParseMonth(s.Month)
	if err != nil {
		return salary.Salary{}, salary.ErrInvalidMonth
	}
	id, err := newID()
	if err != nil {
		return salary.Salary{}, err
	}
	now := time.Now().UTC()

	doc := salaryDoc{
		ID:            id,
		EmployeeID:    s.EmployeeID,
		Month:         month.String(),
		MonthNumber:   int(month),
		Year:          s.Year,
		BasicSalary:   toDecimal128(s.BasicSalary),
		Allowances:    toDecimal128(s.Allowances),
		Deductions:    toDecimal128(s.Deductions),
		NetSalary:     toDecimal128(s.NetSalary),
		LateDays:      s.LateDays,
		LateDeduction: toDecimal128(s.LateDeduction),
		Status:        string(salary.StatusUnpaid),
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return salary.Salary{}, salary.ErrDuplicateSalaryRecord
		}
		return salary.Salary{}, fmt.Errorf("failed to create salary: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *salaryRepository) pipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collEmployees,
			"localField":   "employee_id",
			"foreignField": "_id",
			"as":           "employee",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collPaymentAccounts,
			"localField":   "payment_account_id",
			"foreignField": "_id",
			"as":           "payment_account",
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "year", Value: -1},
			{Key: "month_number", Value: -1},
			{Key: "employee.name", Value: 1},
		}}},
	}
}

func (r *salaryRepository) aggregate(ctx context.Context, match bson.M) ([]salary.Salary, error) {
	cur, err := r.coll.Aggregate(ctx, r.pipeline(match))
	if err != nil {
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}
	docs, err := decodeAll[salaryDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salaries: %w", err)
	}

	out := make([]salary.Salary, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *salaryRepository) GetByID(ctx context.Context, id string) (salary.Salary, error) {
	list, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return salary.Salary{}, err
	}
	if len(list) == 0 {
		return salary.Salary{}, salary.ErrSalaryNotFound
	}
	return list[0], nil
}

func (r *salaryRepository) UpdateUnpaid(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	update := bson.M{"$set": bson.M{
		"basic_salary":   toDecimal128(s.BasicSalary),
		"allowances":     toDecimal128(s.Allowances),
		"deductions":     toDecimal128(s.Deductions),
		"net_salary":     toDecimal128(s.NetSalary),
		"late_days":      s.LateDays,
		"late_deduction": toDecimal128(s.LateDeduction),
		"notes":          s.Notes,
		"updated_at":     time.Now().UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": s.ID, "status": string(salary.StatusUnpaid)}, update)
	if err != nil {
		return salary.Salary{}, fmt.Errorf("failed to update salary: %w", err)
	}
	if res.MatchedCount == 0 {
		return salary.Salary{}, r.conditionalMiss(ctx, s.ID, salary.ErrCannotModifyPaidRecord)
	}
	return r.GetByID(ctx, s.ID)
}

func (r *salaryRepository) MarkPaid(ctx context.Context, id string, payment salary.PaymentDetails) (salary.Salary, error) {
	paidDate := payment.PaidDate.UTC()
	update := bson.M{"$set": bson.M{
		"status":             string(salary.StatusPaid),
		"payment_account_id": payment.PaymentAccountID,
		"transaction_id":     payment.TransactionID,
		"paid_date":          paidDate,
		"paid_by":            payment.PaidBy,
		"updated_at":         time.Now().UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "status": string(salary.StatusUnpaid)}, update)
	if err != nil {
		return salary.Salary{}, fmt.Errorf("failed to mark salary paid: %w", err)
	}
	if res.MatchedCount == 0 {
		return salary.Salary{}, r.conditionalMiss(ctx, id, salary.ErrAlreadyPaid)
	}
	return r.GetByID(ctx, id)
}

func (r *salaryRepository) DeleteUnpaid(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "status": string(salary.StatusUnpaid)})
	if err != nil {
		return fmt.Errorf("failed to delete salary: %w", err)
	}
	if res.DeletedCount == 0 {
		return r.conditionalMiss(ctx, id, salary.ErrCannotDeletePaidRecord)
	}
	return nil
}

func (r *salaryRepository) conditionalMiss(ctx context.Context, id string, paidErr error) error {
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return salary.ErrSalaryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get salary by ID: %w", err)
	}
	return paidErr
}

func (r *salaryRepository) List(ctx context.Context, filter salary.Filter) ([]salary.Salary, error) {
	match := bson.M{}
	if filter.Month != "" {
		match["month"] = filter.Month
	}
	if filter.Year != 0 {
		match["year"] = filter.Year
	}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.EmployeeID != "" {
		match["employee_id"] = filter.EmployeeID
	}
	return r.aggregate(ctx, match)
}
