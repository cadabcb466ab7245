package payroll

import (
	"gdp/internal/platform/money"
	"gdp/internal/platform/policy"
)

const (
	DeductionAFP = "AFP (Pensión)"
	DeductionSFS = "SFS (Salud)"
	DeductionISR = "ISR (Impuesto Sobre la Renta)"
)

type PayslipInput struct {
	MonthlySalary float64 `json:"monthlySalary" validate:"gte=0"`
	OvertimeHours float64 `json:"overtimeHours" validate:"gte=0"`
	ApplyTSS      bool    `json:"applyTss"`
}

// Breakdown is the unrounded result of one fortnight. Round with Payslip before storing.
type Breakdown struct {
	BaseSalary  float64 `json:"baseSalary"`
	HourlyRate  float64 `json:"hourlyRate"`
	OvertimePay float64 `json:"overtimePay"`
	Gross       float64 `json:"gross"`
	AFP         float64 `json:"afp"`
	SFS         float64 `json:"sfs"`
	ISR         float64 `json:"isr"`
	Net         float64 `json:"net"`
}

type Calculator struct {
	rules policy.Payroll
}

func NewCalculator(rules policy.Payroll) *Calculator {
	return &Calculator{rules: rules}
}

func (c *Calculator) Rules() policy.Payroll {
	return c.rules
}

func (c *Calculator) HourlyRate(monthlySalary float64) float64 {
	return monthlySalary / c.rules.WorkingDaysPerMonth / c.rules.HoursPerDay
}

func (c *Calculator) Fortnight(in PayslipInput) Breakdown {
	b := Breakdown{
		BaseSalary: in.MonthlySalary / 2,
		HourlyRate: c.HourlyRate(in.MonthlySalary),
	}
	b.OvertimePay = in.OvertimeHours * b.HourlyRate * c.rules.OvertimeMultiplier
	b.Gross = b.BaseSalary + b.OvertimePay
	if in.ApplyTSS {
		b.AFP = b.Gross * c.rules.AFPRate
		b.SFS = b.Gross * c.rules.SFSRate
	}
	b.ISR = c.FortnightISR(b.Gross, b.AFP+b.SFS)
	b.Net = b.Gross - b.AFP - b.SFS - b.ISR
	return b
}

// FortnightISR annualizes the fortnight, applies the brackets and divides back.
func (c *Calculator) FortnightISR(gross, tss float64) float64 {
	periods := c.rules.PeriodsPerYear
	taxable := gross*periods - tss*periods
	isr := AnnualISR(c.rules.ISRBrackets, taxable) / periods
	if isr < 0 {
		return 0
	}
	return isr
}

// AnnualISR applies progressive brackets sorted by From. The fixed amount of each bracket
// is the tax accumulated by the ones below it.
func AnnualISR(brackets []policy.Bracket, taxable float64) float64 {
	tax := 0.0
	for i, b := range brackets {
		if taxable <= b.From {
			break
		}
		upper := taxable
		if i+1 < len(brackets) && brackets[i+1].From < taxable {
			upper = brackets[i+1].From
		}
		tax += (upper - b.From) * b.Rate
	}
	return tax
}

// Deductions lists the non-zero amounts in AFP, SFS, ISR order, rounded to cents.
func (b Breakdown) Deductions() []Deduction {
	var out []Deduction
	for _, d := range []Deduction{
		{Name: DeductionAFP, Amount: b.AFP},
		{Name: DeductionSFS, Amount: b.SFS},
		{Name: DeductionISR, Amount: b.ISR},
	} {
		d.Amount = money.Round2(d.Amount)
		if d.Amount <= 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Payslip rounds the breakdown for persistence. Net is gross minus the rounded deduction
// lines so the stored payslip adds up to the cent.
func (b Breakdown) Payslip(overtimeHours float64) Payslip {
	deductions := b.Deductions()
	amounts := make([]float64, 0, len(deductions))
	for _, d := range deductions {
		amounts = append(amounts, d.Amount)
	}
	gross := money.Round2(b.Gross)
	return Payslip{
		BaseSalary:    money.Round2(b.BaseSalary),
		OvertimeHours: overtimeHours,
		OvertimePay:   money.Round2(b.OvertimePay),
		TotalEarnings: gross,
		Deductions:    deductions,
		NetSalary:     money.Sub(gross, amounts...),
	}
}
