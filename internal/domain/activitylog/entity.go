package activitylog

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionPayment Action = "PAYMENT"
	ActionSystem  Action = "SYSTEM"
)

type TargetType string

const (
	TargetSalary         TargetType = "Salary"
	TargetAttendance     TargetType = "Attendance"
	TargetPaymentAccount TargetType = "PaymentAccount"
)

type Entry struct {
	ID            string
	Action        Action
	TargetType    TargetType
	TargetID      *string
	Description   string
	PreviousValue json.RawMessage
	NewValue      json.RawMessage
	PerformedBy   string
	UserID        *string
	CreatedAt     time.Time
}

// Actor identifies who triggered a change. A zero Actor is the system.
type Actor struct {
	UserID string
	Name   string
}

func SystemActor() Actor {
	return Actor{Name: "System"}
}

func (a Actor) PerformedBy(fallback string) string {
	if a.Name != "" {
		return a.Name
	}
	return fallback
}

func (a Actor) UserIDPtr() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

// Snapshot marshals v for PreviousValue/NewValue. Values that cannot be
// marshalled are recorded as null.
func Snapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
