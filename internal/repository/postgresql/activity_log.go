package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type activityLogRepository struct {
	db *database.DB
}

func NewActivityLogRepository(db *database.DB) activitylog.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

const activityLogColumns = `
	id, action, target_type, target_id, description, previous_value, new_value,
	performed_by, user_id, created_at`

func scanEntry(row pgx.Row) (activitylog.Entry, error) {
	var (
		e        activitylog.Entry
		previous []byte
		next     []byte
	)
	err := row.Scan(
		&e.ID, &e.Action, &e.TargetType, &e.TargetID, &e.Description, &previous, &next,
		&e.PerformedBy, &e.UserID, &e.CreatedAt,
	)
	e.PreviousValue, e.NewValue = previous, next
	return e, err
}

// nullableJSON maps an empty value to SQL NULL rather than an invalid jsonb literal.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Create implements activitylog.ActivityLogRepository.
func (r *activityLogRepository) Create(ctx context.Context, entry activitylog.Entry) (activitylog.Entry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return activitylog.Entry{}, fmt.Errorf("failed to generate activity log id: %w", err)
	}

	query := `
		INSERT INTO activity_logs (
			id, action, target_type, target_id, description, previous_value, new_value,
			performed_by, user_id
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)
		RETURNING ` + activityLogColumns

	created, err := scanEntry(q.QueryRow(ctx, query,
		id.String(), entry.Action, entry.TargetType, entry.TargetID, entry.Description,
		nullableJSON(entry.PreviousValue), nullableJSON(entry.NewValue),
		entry.PerformedBy, entry.UserID,
	))
	if err != nil {
		return activitylog.Entry{}, fmt.Errorf("failed to create activity log: %w", err)
	}
	return created, nil
}

// List implements activitylog.ActivityLogRepository.
func (r *activityLogRepository) List(ctx context.Context, filter activitylog.Filter) ([]activitylog.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + activityLogColumns + ` FROM activity_logs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.TargetType != "" {
		query += fmt.Sprintf(" AND target_type = $%d", argIdx)
		args = append(args, filter.TargetType)
		argIdx++
	}
	if filter.TargetID != "" {
		query += fmt.Sprintf(" AND target_id = $%d", argIdx)
		args = append(args, filter.TargetID)
		argIdx++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, filter.Action)
		argIdx++
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []activitylog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}
	return entries, nil
}
