package salary

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/email"
	"github.com/google/uuid"
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

// fakeAttendanceRepo only answers CountLate; payroll reads nothing else.
type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	lates map[string]int // "employeeID|YYYY-MM"
	calls int
}

func (r *fakeAttendanceRepo) CountLate(_ context.Context, employeeID, monthPrefix string) (int, error) {
	r.calls++
	return r.lates[employeeID+"|"+monthPrefix], nil
}

// fakeSalaryRepo enforces one record per employee and period.
type fakeSalaryRepo struct {
	mu      sync.Mutex
	records map[string]salary.Salary
	seq     int
	failFor string
}

func newFakeSalaryRepo() *fakeSalaryRepo {
	return &fakeSalaryRepo{records: make(map[string]salary.Salary)}
}

func (r *fakeSalaryRepo) Create(_ context.Context, s salary.Salary) (salary.Salary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.EmployeeID == r.failFor {
		return salary.Salary{}, errors.New("connection reset")
	}
	for _, existing := range r.records {
		if existing.EmployeeID == s.EmployeeID && existing.Month == s.Month && existing.Year == s.Year {
			return salary.Salary{}, salary.ErrDuplicateSalaryRecord
		}
	}
	r.seq++
	s.ID = fmt.Sprintf("sal-%d", r.seq)
	r.records[s.ID] = s
	return s, nil
}

func (r *fakeSalaryRepo) GetByID(_ context.Context, id string) (salary.Salary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.records[id]
	if !ok {
		return salary.Salary{}, salary.ErrSalaryNotFound
	}
	return s, nil
}

func (r *fakeSalaryRepo) UpdateUnpaid(_ context.Context, s salary.Salary) (salary.Salary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.records[s.ID]
	if !ok {
		return salary.Salary{}, salary.ErrSalaryNotFound
	}
	if current.IsPaid() {
		return salary.Salary{}, salary.ErrCannotModifyPaidRecord
	}
	r.records[s.ID] = s
	return s, nil
}

func (r *fakeSalaryRepo) MarkPaid(_ context.Context, id string, p salary.PaymentDetails) (salary.Salary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.records[id]
	if !ok {
		return salary.Salary{}, salary.ErrSalaryNotFound
	}
	if s.IsPaid() {
		return salary.Salary{}, salary.ErrAlreadyPaid
	}
	paidDate, paidBy, accountID := p.PaidDate, p.PaidBy, p.PaymentAccountID
	s.Status = salary.StatusPaid
	s.PaymentAccountID = &accountID
	s.TransactionID = p.TransactionID
	s.PaidDate = &paidDate
	s.PaidBy = &paidBy
	r.records[id] = s
	return s, nil
}

func (r *fakeSalaryRepo) DeleteUnpaid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.records[id]
	if !ok {
		return salary.ErrSalaryNotFound
	}
	if s.IsPaid() {
		return salary.ErrCannotDeletePaidRecord
	}
	delete(r.records, id)
	return nil
}

func (r *fakeSalaryRepo) List(_ context.Context, f salary.Filter) ([]salary.Salary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []salary.Salary
	for _, s := range r.records {
		if f.EmployeeID != "" && s.EmployeeID != f.EmployeeID {
			continue
		}
		if f.Month != "" && s.Month != f.Month {
			continue
		}
		if f.Year != 0 && s.Year != f.Year {
			continue
		}
		if f.Status != "" && string(s.Status) != f.Status {
			continue
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b salary.Salary) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

type fakeAccountRepo struct {
	accounts []ledger.PaymentAccount
}

func (r *fakeAccountRepo) Create(_ context.Context, a ledger.PaymentAccount) (ledger.PaymentAccount, error) {
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Name, a.Name) {
			return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNameExists
		}
	}
	a.ID = uuid.NewString()
	r.accounts = append(r.accounts, a)
	return a, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (ledger.PaymentAccount, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
}

func (r *fakeAccountRepo) GetByName(_ context.Context, name string) (ledger.PaymentAccount, error) {
	for _, a := range r.accounts {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return ledger.PaymentAccount{}, ledger.ErrPaymentAccountNotFound
}

func (r *fakeAccountRepo) List(_ context.Context, activeOnly bool) ([]ledger.PaymentAccount, error) {
	var out []ledger.PaymentAccount
	for _, a := range r.accounts {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type fakeTxRepo struct {
	txs []ledger.Transaction
}

func (r *fakeTxRepo) Create(_ context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	t.ID = fmt.Sprintf("tx-%d", len(r.txs)+1)
	r.txs = append(r.txs, t)
	return t, nil
}

func (r *fakeTxRepo) List(context.Context, ledger.TransactionFilter) ([]ledger.Transaction, error) {
	return slices.Clone(r.txs), nil
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

func (r *fakeLogRepo) actions() []activitylog.Action {
	out := make([]activitylog.Action, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type sentPayslip struct {
	to   string
	data email.SalaryPaidData
}

type fakeNotifier struct {
	sent []sentPayslip
	err  error
}

func (n *fakeNotifier) SendSalaryPaid(_ context.Context, to string, data email.SalaryPaidData) error {
	n.sent = append(n.sent, sentPayslip{to: to, data: data})
	return n.err
}
