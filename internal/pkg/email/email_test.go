package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	failures int
	calls    int
	bodies   []string
	to       [][]string
}

func (r *recordingSender) DialAndSend(msgs ...*gomail.Message) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("smtp unavailable")
	}
	for _, m := range msgs {
		var sb strings.Builder
		if _, err := m.WriteTo(&sb); err != nil {
			return err
		}
		r.bodies = append(r.bodies, sb.String())
		r.to = append(r.to, m.GetHeader("To"))
	}
	return nil
}

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{Host: "smtp.test", Port: 587, From: "payroll@example.com", FromName: "Payroll"}
}

func sampleData() SalaryPaidData {
	return SalaryPaidData{
		EmployeeName:   "Ayesha Khan",
		Month:          "March",
		Year:           2025,
		BasicSalary:    "30000.00",
		Allowances:     "0.00",
		Deductions:     "1000.00",
		NetSalary:      "29000.00",
		PaymentAccount: "JazzCash",
		TransactionID:  "TX-1",
		PaidDate:       "2025-04-01",
	}
}

func TestSendSalaryPaid_RendersTemplate(t *testing.T) {
	sender := &recordingSender{}
	svc, err := newEmailService(testConfig(), sender, 0)
	require.NoError(t, err)

	err = svc.SendSalaryPaid(context.Background(), "ayesha@example.com", sampleData())
	require.NoError(t, err)

	require.Len(t, sender.bodies, 1)
	assert.Equal(t, []string{"ayesha@example.com"}, sender.to[0])
	body := sender.bodies[0]
	assert.Contains(t, body, "Subject: Salary paid for March 2025")
	assert.Contains(t, body, "Ayesha Khan")
	assert.Contains(t, body, "29000.00")
	assert.Contains(t, body, "TX-1")
}

func TestSendSalaryPaid_RetriesTransientFailures(t *testing.T) {
	sender := &recordingSender{failures: 2}
	svc, err := newEmailService(testConfig(), sender, 0)
	require.NoError(t, err)

	err = svc.SendSalaryPaid(context.Background(), "ayesha@example.com", sampleData())
	require.NoError(t, err)
	assert.Equal(t, 3, sender.calls)
}

func TestSendSalaryPaid_GivesUpAfterMaxRetries(t *testing.T) {
	sender := &recordingSender{failures: 10}
	svc, err := newEmailService(testConfig(), sender, 0)
	require.NoError(t, err)

	err = svc.SendSalaryPaid(context.Background(), "ayesha@example.com", sampleData())
	require.Error(t, err)
	assert.Equal(t, maxRetries, sender.calls)
}

func TestSendSalaryPaid_SkipsWithoutSMTP(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{})
	require.NoError(t, err)

	assert.NoError(t, svc.SendSalaryPaid(context.Background(), "ayesha@example.com", sampleData()))
}
