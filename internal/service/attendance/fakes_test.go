package attendance

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
)

type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) ListActive(context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) List(context.Context) ([]employee.Employee, error) {
	return slices.Clone(r.employees), nil
}

// fakeAttendanceRepo keys records by employee and date like the unique index.
type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
	seq     int
	deletes []int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]attendance.Attendance)}
}

func key(employeeID, date string) string { return employeeID + "|" + date }

func (r *fakeAttendanceRepo) put(a attendance.Attendance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		r.seq++
		a.ID = fmt.Sprintf("att-%d", r.seq)
	}
	r.records[key(a.EmployeeID, a.Date)] = a
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.ID == id {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID, date string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[key(employeeID, date)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *fakeAttendanceRepo) CheckIn(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(a.EmployeeID, a.Date)
	existing, ok := r.records[k]
	if ok && existing.HasCheckedIn() {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
	if ok {
		a.ID = existing.ID
	} else {
		r.seq++
		a.ID = fmt.Sprintf("att-%d", r.seq)
	}
	r.records[k] = a
	return a, nil
}

func (r *fakeAttendanceRepo) CheckOut(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(a.EmployeeID, a.Date)
	existing, ok := r.records[k]
	if !ok || existing.HasCheckedOut() {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	r.records[k] = a
	return a, nil
}

func (r *fakeAttendanceRepo) UpsertStatus(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(a.EmployeeID, a.Date)
	if existing, ok := r.records[k]; ok {
		existing.SetStatus(a.Status)
		r.records[k] = existing
		return existing, nil
	}
	r.seq++
	a.ID = fmt.Sprintf("att-%d", r.seq)
	r.records[k] = a
	return a, nil
}

func (r *fakeAttendanceRepo) sorted(keep func(attendance.Attendance) bool, desc bool) []attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b attendance.Attendance) int {
		if desc {
			return cmp.Compare(b.Date, a.Date)
		}
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

func (r *fakeAttendanceRepo) ListByEmployee(_ context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	out := r.sorted(func(a attendance.Attendance) bool { return a.EmployeeID == employeeID }, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListByEmployeeBetween(_ context.Context, employeeID, from, to string) ([]attendance.Attendance, error) {
	return r.sorted(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && a.Date >= from && a.Date <= to
	}, false), nil
}

func (r *fakeAttendanceRepo) ListByDate(_ context.Context, date string) ([]attendance.Attendance, error) {
	return r.sorted(func(a attendance.Attendance) bool { return a.Date == date }, false), nil
}

func (r *fakeAttendanceRepo) SummarizeByEmployee(_ context.Context, employeeID string) (attendance.Summary, error) {
	return attendance.Summarize(r.sorted(func(a attendance.Attendance) bool { return a.EmployeeID == employeeID }, true)), nil
}

func (r *fakeAttendanceRepo) SummarizeAll(context.Context) ([]attendance.EmployeeSummary, error) {
	byEmployee := map[string][]attendance.Attendance{}
	for _, a := range r.sorted(func(attendance.Attendance) bool { return true }, false) {
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}
	var out []attendance.EmployeeSummary
	for id, records := range byEmployee {
		out = append(out, attendance.EmployeeSummary{EmployeeID: id, Summary: attendance.Summarize(records)})
	}
	slices.SortFunc(out, func(a, b attendance.EmployeeSummary) int { return cmp.Compare(a.EmployeeID, b.EmployeeID) })
	return out, nil
}

func (r *fakeAttendanceRepo) CountLate(_ context.Context, employeeID, monthPrefix string) (int, error) {
	n := 0
	for _, a := range r.sorted(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && strings.HasPrefix(a.Date, monthPrefix)
	}, false) {
		if a.Status == attendance.StatusLate {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttendanceRepo) DeleteBefore(_ context.Context, date string, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, a := range r.records {
		if n == limit {
			break
		}
		if a.Date < date {
			delete(r.records, k)
			n++
		}
	}
	r.deletes = append(r.deletes, n)
	return n, nil
}

type fakeLogRepo struct {
	entries []activitylog.Entry
}

func (r *fakeLogRepo) Create(_ context.Context, e activitylog.Entry) (activitylog.Entry, error) {
	e.ID = fmt.Sprintf("log-%d", len(r.entries)+1)
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *fakeLogRepo) List(context.Context, activitylog.Filter) ([]activitylog.Entry, error) {
	return slices.Clone(r.entries), nil
}
