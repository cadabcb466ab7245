package payroll

import (
	"fmt"
	"time"

	"gdp/internal/domain/ledger"
)

type Deduction struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Payslip struct {
	ID             string      `json:"id"`
	EmployeeID     string      `json:"employeeId"`
	EmployeeName   string      `json:"employeeName"`
	EmployeeEmail  string      `json:"employeeEmail,omitempty"`
	EmployeeCedula string      `json:"employeeCedula,omitempty"`
	PayrollRunID   string      `json:"payrollRunId"`
	PayPeriod      string      `json:"payPeriod"`
	BaseSalary     float64     `json:"baseSalary"`
	OvertimeHours  float64     `json:"overtimeHours"`
	OvertimePay    float64     `json:"overtimePay"`
	TotalEarnings  float64     `json:"totalEarnings"`
	Deductions     []Deduction `json:"deductions"`
	NetSalary      float64     `json:"netSalary"`
	GeneratedDate  time.Time   `json:"generatedDate"`
}

func (p Payslip) TotalDeductions() float64 {
	total := 0.0
	for _, d := range p.Deductions {
		total += d.Amount
	}
	return total
}

type Run struct {
	ID                 string     `json:"id"`
	PayPeriod          string     `json:"payPeriod"`
	Period             Period     `json:"period"`
	Status             string     `json:"status"`
	TotalAmount        float64    `json:"totalAmount"`
	EmployeesProcessed int        `json:"employeesProcessed"`
	ProcessingDate     *time.Time `json:"processingDate,omitempty"`
	Failure            string     `json:"failure,omitempty"`
	Lines              []RunLine  `json:"lines"`
	PayslipsGenerated  []Payslip  `json:"payslipsGenerated"`
}

// RunLine is what the operator picked for one employee in a run.
type RunLine struct {
	EmployeeID    string  `json:"employeeId" validate:"required"`
	OvertimeHours float64 `json:"overtimeHours" validate:"gte=0"`
	ApplyTSS      bool    `json:"applyTss"`
}

type Period struct {
	Year      int `json:"year" validate:"gte=2000,lte=2100"`
	Month     int `json:"month" validate:"gte=1,lte=12"`
	Fortnight int `json:"fortnight" validate:"gte=1,lte=2"`
}

// Label renders the period the way payslips show it, e.g. "Julio 2024 - 1ra Quincena".
func (p Period) Label() string {
	suffix := "1ra Quincena"
	if p.Fortnight == 2 {
		suffix = "2da Quincena"
	}
	return fmt.Sprintf("%s %d - %s", ledger.SpanishMonth(p.Month), p.Year, suffix)
}

// PeriodFor returns the fortnight containing t.
func PeriodFor(t time.Time) Period {
	p := Period{Year: t.Year(), Month: int(t.Month()), Fortnight: 1}
	if t.Day() > 15 {
		p.Fortnight = 2
	}
	return p
}

type RunRequest struct {
	Period Period    `json:"period"`
	Lines  []RunLine `json:"lines" validate:"min=1,dive"`
}

// Employee is the slice of an employee record a run needs.
type Employee struct {
	ID     string
	Cedula string
	Name   string
	Email  string
	Salary float64
}
