package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// StoreTimeout bounds each request's context.
	StoreTimeout time.Duration
}

type Handlers struct {
	Attendance  AttendanceHandler
	Salary      SalaryHandler
	Ledger      LedgerHandler
	ActivityLog ActivityLogHandler
	// Events is optional; without it the stream route is not mounted.
	Events EventsHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		// Long-lived, so outside the request timeout
		if h.Events != nil {
			r.With(middleware.AdminOnly).Get("/events/stream", h.Events.Stream)
		}

		r.Group(func(r chi.Router) {
			if opts.StoreTimeout > 0 {
				r.Use(chiMiddleware.Timeout(opts.StoreTimeout))
			}

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/mark", h.Attendance.Mark)
				r.Get("/history", h.Attendance.History)
				r.Get("/report", h.Attendance.Report)

				// Admin only
				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/today", h.Attendance.Today)
					r.Get("/stats/{id}", h.Attendance.EmployeeStats)
					r.Get("/all-stats", h.Attendance.AllStats)
					r.Get("/absence-warnings", h.Attendance.AbsenceWarnings)
					r.Put("/override", h.Attendance.OverrideStatus)
					r.Post("/purge", h.Attendance.Purge)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/salaries", func(r chi.Router) {
					r.Get("/", h.Salary.List)
					r.Post("/", h.Salary.Create)
					r.Get("/calculate", h.Salary.Calculate)
					r.Post("/generate-monthly", h.Salary.GenerateMonthly)
					r.Get("/overall/stats", h.Salary.OverallStats)
					r.Get("/employee/{id}/overall", h.Salary.EmployeeOverview)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/slip", h.Salary.Slip)
						r.Put("/", h.Salary.Update)
						r.Put("/pay", h.Salary.Pay)
						r.Delete("/", h.Salary.Delete)
					})
				})

				r.Route("/payment-accounts", func(r chi.Router) {
					r.Get("/", h.Ledger.ListPaymentAccounts)
					r.Post("/", h.Ledger.CreatePaymentAccount)
				})

				r.Get("/transactions", h.Ledger.ListTransactions)
				r.Get("/activity-logs", h.ActivityLog.List)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})
	return r
}
