package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// activityLogDoc keeps snapshots as JSON text so they read back byte-for-byte.
type activityLogDoc struct {
	ID            string    `bson:"_id"`
	Action        string    `bson:"action"`
	TargetType    string    `bson:"target_type"`
	TargetID      *string   `bson:"target_id,omitempty"`
	Description   string    `bson:"description"`
	PreviousValue string    `bson:"previous_value,omitempty"`
	NewValue      string    `bson:"new_value,omitempty"`
	PerformedBy   string    `bson:"performed_by"`
	UserID        *string   `bson:"user_id,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d activityLogDoc) toEntity() activitylog.Entry {
	e := activitylog.Entry{
		ID:          d.ID,
		Action:      activitylog.Action(d.Action),
		TargetType:  activitylog.TargetType(d.TargetType),
		TargetID:    d.TargetID,
		Description: d.Description,
		PerformedBy: d.PerformedBy,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
	if d.PreviousValue != "" {
		e.PreviousValue = json.RawMessage(d.PreviousValue)
	}
	if d.NewValue != "" {
		e.NewValue = json.RawMessage(d.NewValue)
	}
	return e
}

type activityLogRepository struct {
	coll *mongo.Collection
}

func NewActivityLogRepository(db *database.MongoDB) activitylog.ActivityLogRepository {
	return &activityLogRepository{coll: db.Database.Collection(collActivityLogs)}
}

func (r *activityLogRepository) Create(ctx context.Context, entry activitylog.Entry) (activitylog.Entry, error) {
	id, err := newID()
	if err != nil {
		return activitylog.Entry{}, err
	}

	doc := activityLogDoc{
		ID:            id,
		Action:        string(entry.Action),
		TargetType:    string(entry.TargetType),
		TargetID:      entry.TargetID,
		Description:   entry.Description,
		PreviousValue: string(entry.PreviousValue),
		NewValue:      string(entry.NewValue),
		PerformedBy:   entry.PerformedBy,
		UserID:        entry.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return activitylog.Entry{}, fmt.Errorf("failed to create activity log: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *activityLogRepository) List(ctx context.Context, filter activitylog.Filter) ([]activitylog.Entry, error) {
	match := bson.M{}
	if filter.TargetType != "" {
		match["target_type"] = filter.TargetType
	}
	if filter.TargetID != "" {
		match["target_id"] = filter.TargetID
	}
	if filter.Action != "" {
		match["action"] = filter.Action
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, match, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	docs, err := decodeAll[activityLogDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode activity logs: %w", err)
	}

	out := make([]activitylog.Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
