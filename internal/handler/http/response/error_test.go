package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "is invalid"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create: %w", validator.ValidationErrors{{Field: "year", Message: "x"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid action", attendance.ErrInvalidAction, http.StatusBadRequest, "BAD_REQUEST"},
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.StatusConflict, "CONFLICT"},
		{"must check in first", attendance.ErrMustCheckInFirst, http.StatusConflict, "CONFLICT"},
		{"employee not found", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"salary not found", salary.ErrSalaryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already paid", salary.ErrAlreadyPaid, http.StatusConflict, "CONFLICT"},
		{"duplicate salary", fmt.Errorf("insert: %w", salary.ErrDuplicateSalaryRecord), http.StatusConflict, "CONFLICT"},
		{"invalid month", salary.ErrInvalidMonth, http.StatusBadRequest, "BAD_REQUEST"},
		{"account not found", ledger.ErrPaymentAccountNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"transient", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantKind, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{{Field: "payment_account_id", Message: "payment_account_id is required"}})

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "payment_account_id is required", body.Error.Details["payment_account_id"])
}
