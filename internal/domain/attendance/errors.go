package attendance

import "errors"

// Attendance domain errors
var (
	// Mark errors
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrMustCheckInFirst  = errors.New("must check in first")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidTimeFormat = errors.New("time of day must be in HH:mm:ss format")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidStatus      = errors.New("invalid attendance status")
)
