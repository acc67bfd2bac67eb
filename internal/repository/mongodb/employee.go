package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type employeeDoc struct {
	ID               string               `bson:"_id"`
	Name             string               `bson:"name"`
	Email            string               `bson:"email"`
	ERPID            *string              `bson:"erp_id,omitempty"`
	Department       *string              `bson:"department,omitempty"`
	Title            *string              `bson:"title,omitempty"`
	BaseSalary       primitive.Decimal128 `bson:"base_salary"`
	EmploymentStatus string               `bson:"employment_status"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

func (d employeeDoc) toEntity() employee.Employee {
	return employee.Employee{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		ERPID:            d.ERPID,
		Department:       d.Department,
		Title:            d.Title,
		BaseSalary:       fromDecimal128(d.BaseSalary),
		EmploymentStatus: employee.EmploymentStatus(d.EmploymentStatus),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func employeeToDoc(e employee.Employee) employeeDoc {
	return employeeDoc{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		ERPID:            e.ERPID,
		Department:       e.Department,
		Title:            e.Title,
		BaseSalary:       toDecimal128(e.BaseSalary),
		EmploymentStatus: string(e.EmploymentStatus),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type employeeRepository struct {
	coll *mongo.Collection
}

func NewEmployeeRepository(db *database.MongoDB) employee.EmployeeRepository {
	return &employeeRepository{coll: db.Database.Collection(collEmployees)}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var doc employeeDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return r.list(ctx, bson.M{"employment_status": string(employee.EmploymentStatusActive)})
}

func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	return r.list(ctx, bson.M{})
}

func (r *employeeRepository) list(ctx context.Context, filter bson.M) ([]employee.Employee, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	docs, err := decodeAll[employeeDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	employees := make([]employee.Employee, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, d.toEntity())
	}
	return employees, nil
}
