package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Mark(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)

	// Admin
	Today(w http.ResponseWriter, r *http.Request)
	EmployeeStats(w http.ResponseWriter, r *http.Request)
	AllStats(w http.ResponseWriter, r *http.Request)
	AbsenceWarnings(w http.ResponseWriter, r *http.Request)
	OverrideStatus(w http.ResponseWriter, r *http.Request)
	Purge(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	events            EventPublisher
}

// NewAttendanceHandler accepts a nil events publisher.
func NewAttendanceHandler(attendanceService attendance.AttendanceService, events EventPublisher) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		events:            events,
	}
}

type markedEvent struct {
	EmployeeID string `json:"employee_id"`
	attendance.MarkResponse
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if claims.EmployeeID == "" {
		response.Forbidden(w, "Token is not linked to an employee")
		return
	}

	var req attendance.MarkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.Mark(r.Context(), claims.EmployeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	publish(h.events, EventAttendanceMarked, markedEvent{EmployeeID: claims.EmployeeID, MarkResponse: result})

	message := "Checked in successfully"
	if result.Action == string(attendance.ActionCheckOut) {
		message = "Checked out successfully"
	}
	response.SuccessWithMessage(w, message, result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if claims.EmployeeID == "" {
		response.Forbidden(w, "Token is not linked to an employee")
		return
	}

	result, err := h.attendanceService.History(r.Context(), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Report implements AttendanceHandler. Admins may report on any employee.
func (h *attendanceHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	year, err := queryInt(r, "year", "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req := attendance.ReportRequest{
		EmployeeID: claims.EmployeeID,
		Month:      queryParam(r, "month"),
		Year:       year,
	}
	if other := queryParam(r, "employeeId", "employee_id"); other != "" && other != claims.EmployeeID {
		if !claims.IsAdmin() {
			response.Forbidden(w, "Admin privilege required")
			return
		}
		req.EmployeeID = other
	}

	result, err := h.attendanceService.MonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// EmployeeStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.attendanceService.EmployeeStats(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AllStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) AllStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.LifetimeStats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AbsenceWarnings implements AttendanceHandler.
func (h *attendanceHandlerImpl) AbsenceWarnings(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.AbsenceWarnings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// OverrideStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.OverrideStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.OverrideStatus(r.Context(), actorFrom(claims), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	publish(h.events, EventAttendanceOverridden, result)
	response.SuccessWithMessage(w, "Attendance status updated", result)
}

// Purge implements AttendanceHandler.
func (h *attendanceHandlerImpl) Purge(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.PurgeExpired(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expired attendance purged", result)
}
