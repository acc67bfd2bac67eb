package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Sender delivers a single composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SalaryPaidData fills templates/salary_paid.html.
type SalaryPaidData struct {
	EmployeeName   string
	Month          string
	Year           int
	BasicSalary    string
	Allowances     string
	Deductions     string
	NetSalary      string
	PaymentAccount string
	TransactionID  string
	PaidDate       string
}

type EmailService struct {
	cfg       config.SMTPConfig
	sender    Sender
	templates *template.Template
	cb        *gobreaker.CircuitBreaker
	backoff   time.Duration
}

// NewEmailService creates a new email service instance. With no SMTP host
// configured, messages are logged and dropped.
func NewEmailService(cfg config.SMTPConfig) (*EmailService, error) {
	var sender Sender
	if cfg.Host != "" {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return newEmailService(cfg, sender, time.Second)
}

func newEmailService(cfg config.SMTPConfig, sender Sender, backoff time.Duration) (*EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	settings := gobreaker.Settings{
		Name:        "SMTP",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &EmailService{
		cfg:       cfg,
		sender:    sender,
		templates: tmpl,
		cb:        gobreaker.NewCircuitBreaker(settings),
		backoff:   backoff,
	}, nil
}

// SendSalaryPaid sends the payslip notice for a paid salary.
func (s *EmailService) SendSalaryPaid(ctx context.Context, to string, data SalaryPaidData) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "salary_paid.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(ctx, to, fmt.Sprintf("Salary paid for %s %d", data.Month, data.Year), body.String())
}

func (s *EmailService) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.sender == nil {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		_, err := s.cb.Execute(func() (interface{}, error) {
			return nil, s.sender.DialAndSend(m)
		})
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff << (attempt - 1)):
			}
		}
	}

	return fmt.Errorf("failed to send email: %w", lastErr)
}
