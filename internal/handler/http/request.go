package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// actorFrom identifies the caller for activity log entries.
func actorFrom(claims jwt.Claims) activitylog.Actor {
	return activitylog.Actor{UserID: claims.UserID, Name: claims.Name}
}

// queryParam reads the first non-empty value among keys, so both
// employeeId and employee_id spellings are accepted.
func queryParam(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// queryInt parses an optional integer query parameter. A missing value
// yields 0.
func queryInt(r *http.Request, field string, keys ...string) (int, error) {
	raw := queryParam(r, keys...)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validator.ValidationErrors{{Field: field, Message: "must be an integer"}}
	}
	return n, nil
}
