package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// ===== FAKE SERVICES =====

type fakeAttendanceService struct {
	attendance.AttendanceService

	markEmployeeID string
	markErr        error
	reportReq      attendance.ReportRequest
	overrideActor  activitylog.Actor
}

func (f *fakeAttendanceService) Mark(_ context.Context, employeeID string, req attendance.MarkRequest) (attendance.MarkResponse, error) {
	f.markEmployeeID = employeeID
	if f.markErr != nil {
		return attendance.MarkResponse{}, f.markErr
	}
	if err := req.Validate(); err != nil {
		return attendance.MarkResponse{}, err
	}
	return attendance.MarkResponse{Action: req.Action, Date: "2025-03-03", Time: "09:05:00", Status: "Present"}, nil
}

func (f *fakeAttendanceService) MonthlyReport(_ context.Context, req attendance.ReportRequest) (attendance.MonthlyReportResponse, error) {
	f.reportReq = req
	return attendance.MonthlyReportResponse{Month: req.Month, Year: req.Year}, nil
}

func (f *fakeAttendanceService) Today(context.Context) ([]attendance.AttendanceResponse, error) {
	return []attendance.AttendanceResponse{}, nil
}

func (f *fakeAttendanceService) OverrideStatus(_ context.Context, actor activitylog.Actor, req attendance.OverrideStatusRequest) (attendance.AttendanceResponse, error) {
	f.overrideActor = actor
	return attendance.AttendanceResponse{EmployeeID: req.EmployeeID, Date: req.Date, Status: req.Status}, nil
}

type fakeSalaryService struct {
	salary.SalaryService

	listFilter salary.Filter
	payReq     salary.PaySalaryRequest
	payErr     error
}

func (f *fakeSalaryService) List(_ context.Context, filter salary.Filter) (salary.ListSalaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return salary.ListSalaryResponse{}, err
	}
	f.listFilter = filter
	return salary.ListSalaryResponse{Salaries: []salary.SalaryResponse{}}, nil
}

func (f *fakeSalaryService) Pay(_ context.Context, _ activitylog.Actor, req salary.PaySalaryRequest) (salary.PaySalaryResponse, error) {
	f.payReq = req
	if f.payErr != nil {
		return salary.PaySalaryResponse{}, f.payErr
	}
	return salary.PaySalaryResponse{
		Salary: salary.SalaryResponse{ID: req.ID, Status: string(salary.StatusPaid), NetSalary: decimal.NewFromInt(29000)},
	}, nil
}

type fakeLedgerService struct {
	ledger.LedgerService
}

type fakeActivityLogService struct {
	activitylog.ActivityLogService
	filter activitylog.Filter
}

func (f *fakeActivityLogService) List(_ context.Context, filter activitylog.Filter) ([]activitylog.EntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	f.filter = filter
	return []activitylog.EntryResponse{}, nil
}

// ===== HELPERS =====

type testServer struct {
	router      http.Handler
	jwt         jwt.Service
	attendance  *fakeAttendanceService
	salary      *fakeSalaryService
	activityLog *fakeActivityLogService
	hub         *sse.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		jwt:         jwt.NewJWTService(handlerTestSecret, time.Hour),
		attendance:  &fakeAttendanceService{},
		salary:      &fakeSalaryService{},
		activityLog: &fakeActivityLogService{},
		hub:         sse.NewHub(),
	}
	s.router = NewRouter(s.jwt, Handlers{
		Attendance:  NewAttendanceHandler(s.attendance, s.hub),
		Salary:      NewSalaryHandler(s.salary, s.hub),
		Ledger:      NewLedgerHandler(&fakeLedgerService{}),
		ActivityLog: NewActivityLogHandler(s.activityLog),
		Events:      NewEventsHandler(s.hub),
	}, RouterOptions{StoreTimeout: 5 * time.Second})
	return s
}

func (s *testServer) token(t *testing.T, role jwt.Role, employeeID string) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(jwt.Claims{UserID: "user-1", Name: "Test User", EmployeeID: employeeID, Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response.Response
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// ===== TESTS =====

func TestRouter_Heartbeat(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/attendance/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := jwt.NewJWTService("another-secret", time.Hour)
	forged, _, err := other.GenerateAccessToken(jwt.Claims{UserID: "u", Role: jwt.RoleAdmin})
	require.NoError(t, err)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/salaries", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminRoutesRejectEmployees(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, jwt.RoleEmployee, "emp-1")

	for _, path := range []string{
		"/api/v1/salaries",
		"/api/v1/transactions",
		"/api/v1/activity-logs",
		"/api/v1/attendance/admin/today",
	} {
		rec, resp := s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		require.NotNil(t, resp.Error, path)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	}
}

func TestAttendanceHandler_MarkUsesTokenEmployee(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, jwt.RoleEmployee, "emp-42")

	rec, resp := s.do(t, http.MethodPost, "/api/v1/attendance/mark", token, map[string]string{"action": "check-in"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Checked in successfully", resp.Message)
	assert.Equal(t, "emp-42", s.attendance.markEmployeeID)
}

func TestAttendanceHandler_MarkConflict(t *testing.T) {
	s := newTestServer(t)
	s.attendance.markErr = attendance.ErrAlreadyCheckedIn
	token := s.token(t, jwt.RoleEmployee, "emp-42")

	rec, resp := s.do(t, http.MethodPost, "/api/v1/attendance/mark", token, map[string]string{"action": "check-in"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, attendance.ErrAlreadyCheckedIn.Error(), resp.Error.Message)
}

func TestAttendanceHandler_MarkInvalidAction(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, jwt.RoleEmployee, "emp-42")

	rec, _ := s.do(t, http.MethodPost, "/api/v1/attendance/mark", token, map[string]string{"action": "lunch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandler_MarkWithoutEmployee(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, jwt.RoleAdmin, "")

	rec, _ := s.do(t, http.MethodPost, "/api/v1/attendance/mark", token, map[string]string{"action": "check-in"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttendanceHandler_Report(t *testing.T) {
	s := newTestServer(t)

	employee := s.token(t, jwt.RoleEmployee, "emp-1")
	rec, _ := s.do(t, http.MethodGet, "/api/v1/attendance/report?month=March&year=2025", employee, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emp-1", s.attendance.reportReq.EmployeeID)
	assert.Equal(t, 2025, s.attendance.reportReq.Year)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/attendance/report?month=March&year=2025&employeeId=emp-2", employee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := s.token(t, jwt.RoleAdmin, "emp-9")
	rec, _ = s.do(t, http.MethodGet, "/api/v1/attendance/report?month=March&year=2025&employeeId=emp-2", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emp-2", s.attendance.reportReq.EmployeeID)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/attendance/report?month=March&year=soon", employee, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp.Error.Details, "year")
}

func TestAttendanceHandler_OverrideRecordsActor(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.RoleAdmin, "")

	rec, _ := s.do(t, http.MethodPut, "/api/v1/attendance/admin/override", admin, map[string]string{
		"employee_id": "emp-1", "date": "2025-03-03", "status": "Off",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", s.attendance.overrideActor.UserID)
	assert.Equal(t, "Test User", s.attendance.overrideActor.Name)
}

func TestSalaryHandler_ListFilters(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.RoleAdmin, "")

	rec, resp := s.do(t, http.MethodGet, "/api/v1/salaries?month=march&year=2025&status=Pending&employeeId=emp-1", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, salary.Filter{Month: "March", Year: 2025, Status: "Unpaid", EmployeeID: "emp-1"}, s.salary.listFilter)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/salaries?month=Smarch", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSalaryHandler_Pay(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.RoleAdmin, "")

	rec, resp := s.do(t, http.MethodPut, "/api/v1/salaries/sal-1/pay", admin, map[string]string{
		"payment_account_id": "JazzCash",
		"transaction_id":     "TX-1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "sal-1", s.salary.payReq.ID)
	assert.Equal(t, "JazzCash", s.salary.payReq.PaymentAccountID)

	s.salary.payErr = salary.ErrAlreadyPaid
	rec, _ = s.do(t, http.MethodPut, "/api/v1/salaries/sal-1/pay", admin, map[string]string{"payment_account_id": "JazzCash"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSalaryHandler_InvalidBody(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.RoleAdmin, "")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/salaries/sal-1/pay", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityLogHandler_List(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.RoleAdmin, "")

	rec, _ := s.do(t, http.MethodGet, "/api/v1/activity-logs?targetType=Salary&action=PAYMENT", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Salary", s.activityLog.filter.TargetType)
	assert.Equal(t, activitylog.DefaultListLimit, s.activityLog.filter.Limit)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/activity-logs?limit=many", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlers_PublishToAdminStream(t *testing.T) {
	s := newTestServer(t)
	events, cancel := s.hub.Subscribe(sse.TopicAdmin)
	defer cancel()

	rec, _ := s.do(t, http.MethodPost, "/api/v1/attendance/mark", s.token(t, jwt.RoleEmployee, "emp-42"), map[string]string{"action": "check-in"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/v1/salaries/sal-1/pay", s.token(t, jwt.RoleAdmin, ""), map[string]string{"payment_account_id": "JazzCash"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, events, 2)
	marked := <-events
	assert.Equal(t, EventAttendanceMarked, marked.Name)
	assert.Equal(t, "emp-42", marked.Data.(markedEvent).EmployeeID)
	paid := <-events
	assert.Equal(t, EventSalaryPaid, paid.Name)

	// Failed operations publish nothing.
	s.salary.payErr = salary.ErrAlreadyPaid
	rec, _ = s.do(t, http.MethodPut, "/api/v1/salaries/sal-1/pay", s.token(t, jwt.RoleAdmin, ""), map[string]string{"payment_account_id": "JazzCash"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, events)
}

func TestEventsHandler_Stream(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	rec, _ := s.do(t, http.MethodGet, "/api/v1/events/stream", s.token(t, jwt.RoleEmployee, "emp-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.token(t, jwt.RoleAdmin, ""))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		t.Helper()
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "connected", name)

	require.Eventually(t, func() bool { return s.hub.SubscriberCount(sse.TopicAdmin) == 1 }, time.Second, 10*time.Millisecond)
	s.hub.Publish(sse.TopicAdmin, sse.Event{Name: EventSalaryPaid, Data: map[string]string{"id": "sal-1"}})

	name, data := readEvent()
	assert.Equal(t, EventSalaryPaid, name)
	assert.JSONEq(t, `{"id":"sal-1"}`, data)
}
