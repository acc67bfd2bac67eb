package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type SalaryHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Calculate(w http.ResponseWriter, r *http.Request)
	GenerateMonthly(w http.ResponseWriter, r *http.Request)
	OverallStats(w http.ResponseWriter, r *http.Request)
	EmployeeOverview(w http.ResponseWriter, r *http.Request)
	Slip(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService salary.SalaryService
	events        EventPublisher
}

func NewSalaryHandler(salaryService salary.SalaryService, events EventPublisher) SalaryHandler {
	return &salaryHandlerImpl{
		salaryService: salaryService,
		events:        events,
	}
}

func (h *salaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := salary.Filter{
		Month:      queryParam(r, "month"),
		Year:       year,
		Status:     queryParam(r, "status"),
		EmployeeID: queryParam(r, "employeeId", "employee_id"),
	}

	result, err := h.salaryService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req salary.CreateSalaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.Create(r.Context(), actorFrom(claims), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary record created", result)
}

func (h *salaryHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := salary.CalculationRequest{
		EmployeeID: queryParam(r, "employeeId", "employee_id"),
		Month:      queryParam(r, "month"),
		Year:       year,
	}

	result, err := h.salaryService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) GenerateMonthly(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.GenerateMonthly(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly salaries generated", result)
}

func (h *salaryHandlerImpl) OverallStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.OverallStats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) EmployeeOverview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.salaryService.EmployeeOverview(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) Slip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	result, err := h.salaryService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	var req salary.UpdateSalaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.salaryService.Update(r.Context(), actorFrom(claims), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record updated", result)
}

func (h *salaryHandlerImpl) Pay(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	var req salary.PaySalaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.salaryService.Pay(r.Context(), actorFrom(claims), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	publish(h.events, EventSalaryPaid, result.Salary)
	response.SuccessWithMessage(w, "Salary paid", result)
}

func (h *salaryHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	if err := h.salaryService.Delete(r.Context(), actorFrom(claims), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record deleted", nil)
}
