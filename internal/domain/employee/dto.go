package employee

import "github.com/shopspring/decimal"

type EmployeeBrief struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	ERPID            *string         `json:"erp_id,omitempty"`
	Department       *string         `json:"department,omitempty"`
	Title            *string         `json:"title,omitempty"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	EmploymentStatus string          `json:"employment_status"`
	JoinDate         string          `json:"join_date"`
}

func ToBrief(e Employee) EmployeeBrief {
	return EmployeeBrief{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		ERPID:            e.ERPID,
		Department:       e.Department,
		Title:            e.Title,
		BaseSalary:       e.BaseSalary,
		EmploymentStatus: string(e.EmploymentStatus),
		JoinDate:         e.CreatedAt.Format("2006-01-02"),
	}
}
