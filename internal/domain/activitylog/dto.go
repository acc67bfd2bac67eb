package activitylog

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Filter struct {
	TargetType string `json:"target_type" validate:"omitempty,oneof=Salary Attendance PaymentAccount"`
	TargetID   string `json:"target_id"`
	Action     string `json:"action" validate:"omitempty,oneof=CREATE UPDATE DELETE PAYMENT SYSTEM"`
	Limit      int    `json:"limit" validate:"gte=0,max=500"`
}

func (f *Filter) Validate() error {
	if err := validator.Struct(f); err != nil {
		return err
	}
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	return nil
}

type EntryResponse struct {
	ID            string          `json:"id"`
	Action        string          `json:"action"`
	TargetType    string          `json:"target_type"`
	TargetID      *string         `json:"target_id,omitempty"`
	Description   string          `json:"description"`
	PreviousValue json.RawMessage `json:"previous_value,omitempty"`
	NewValue      json.RawMessage `json:"new_value,omitempty"`
	PerformedBy   string          `json:"performed_by"`
	UserID        *string         `json:"user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func ToResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		Action:        string(e.Action),
		TargetType:    string(e.TargetType),
		TargetID:      e.TargetID,
		Description:   e.Description,
		PreviousValue: e.PreviousValue,
		NewValue:      e.NewValue,
		PerformedBy:   e.PerformedBy,
		UserID:        e.UserID,
		CreatedAt:     e.CreatedAt,
	}
}
