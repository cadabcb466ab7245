package payroll

import (
	"math"
	"testing"

	"gdp/internal/platform/policy"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func newCalc() *Calculator {
	return NewCalculator(policy.Default().Payroll)
}

func TestFortnightWithOvertimeAndNoTSS(t *testing.T) {
	b := newCalc().Fortnight(PayslipInput{MonthlySalary: 16000, OvertimeHours: 5})

	if b.BaseSalary != 8000 {
		t.Fatalf("expected base 8000, got %v", b.BaseSalary)
	}
	if !near(b.HourlyRate, 16000/23.83/8) {
		t.Fatalf("unexpected hourly rate %v", b.HourlyRate)
	}
	if !near(b.OvertimePay, 5*(16000/23.83/8)*1.35) {
		t.Fatalf("unexpected overtime pay %v", b.OvertimePay)
	}
	if b.AFP != 0 || b.SFS != 0 || b.ISR != 0 {
		t.Fatalf("expected no deductions, got %+v", b)
	}
	if b.Net != b.Gross {
		t.Fatalf("expected net == gross, got %v vs %v", b.Net, b.Gross)
	}

	p := b.Payslip(5)
	if p.TotalEarnings != 8566.51 || p.NetSalary != 8566.51 || p.OvertimePay != 566.51 {
		t.Fatalf("unexpected rounded payslip %+v", p)
	}
	if len(p.Deductions) != 0 {
		t.Fatalf("expected no deduction lines, got %+v", p.Deductions)
	}
}

func TestFortnightTopBracketWithTSS(t *testing.T) {
	b := newCalc().Fortnight(PayslipInput{MonthlySalary: 100000, ApplyTSS: true})

	if !near(b.AFP, 1435) || !near(b.SFS, 1520) {
		t.Fatalf("unexpected tss: afp=%v sfs=%v", b.AFP, b.SFS)
	}
	// (50000-2955)*24 = 1,129,080 taxable; 79,775.15 + 25% over 867,123 = 145,264.40 a year.
	if !near(b.ISR, 145264.40/24) {
		t.Fatalf("unexpected isr %v", b.ISR)
	}
	if !near(b.Net, 50000-2955-145264.40/24) {
		t.Fatalf("unexpected net %v", b.Net)
	}

	p := b.Payslip(0)
	names := []string{DeductionAFP, DeductionSFS, DeductionISR}
	if len(p.Deductions) != 3 {
		t.Fatalf("expected 3 deductions, got %+v", p.Deductions)
	}
	for i, d := range p.Deductions {
		if d.Name != names[i] {
			t.Fatalf("deduction %d: expected %s, got %s", i, names[i], d.Name)
		}
	}
	if p.Deductions[2].Amount != 6052.68 {
		t.Fatalf("expected isr 6052.68, got %v", p.Deductions[2].Amount)
	}
	if p.NetSalary != 40992.32 {
		t.Fatalf("expected net 40992.32, got %v", p.NetSalary)
	}
}

func TestFortnightISRWithoutTSSUsesFullGross(t *testing.T) {
	b := newCalc().Fortnight(PayslipInput{MonthlySalary: 60000})
	// 720,000 taxable: 31,216.35 + 20% over 624,329.
	if !near(b.ISR, (31216.35+0.20*(720000-624329))/24) {
		t.Fatalf("unexpected isr %v", b.ISR)
	}
	p := b.Payslip(0)
	if len(p.Deductions) != 1 || p.Deductions[0].Name != DeductionISR {
		t.Fatalf("expected only ISR, got %+v", p.Deductions)
	}
}

func TestAnnualISRBracketEdges(t *testing.T) {
	brackets := policy.Default().Payroll.ISRBrackets
	cases := []struct {
		taxable float64
		want    float64
	}{
		{0, 0},
		{416220, 0},
		{624329, 31216.35},
		{867123, 79775.15},
		{-1000, 0},
	}
	for _, tc := range cases {
		if got := AnnualISR(brackets, tc.taxable); !near(got, tc.want) {
			t.Fatalf("taxable %v: expected %v, got %v", tc.taxable, tc.want, got)
		}
	}
}

func TestNetNeverExceedsGross(t *testing.T) {
	calc := newCalc()
	for _, salary := range []float64{0, 1, 7000, 16000, 35000, 52000, 75000, 150000, 1_000_000} {
		for _, overtime := range []float64{0, 3, 40} {
			for _, tss := range []bool{false, true} {
				b := calc.Fortnight(PayslipInput{MonthlySalary: salary, OvertimeHours: overtime, ApplyTSS: tss})
				if b.Net > b.Gross {
					t.Fatalf("salary %v overtime %v tss %v: net %v > gross %v", salary, overtime, tss, b.Net, b.Gross)
				}
				p := b.Payslip(overtime)
				if !near(p.NetSalary, p.TotalEarnings-p.TotalDeductions()) {
					t.Fatalf("stored payslip does not add up: %+v", p)
				}
			}
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := (Period{Year: 2024, Month: 7, Fortnight: 1}).Label(); got != "Julio 2024 - 1ra Quincena" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (Period{Year: 2025, Month: 12, Fortnight: 2}).Label(); got != "Diciembre 2025 - 2da Quincena" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestDeductionsDropSubCentAmounts(t *testing.T) {
	b := Breakdown{BaseSalary: 500, Gross: 500, AFP: 0.004, SFS: 14.35, ISR: 0.003}
	got := b.Deductions()
	if len(got) != 1 || got[0].Name != DeductionSFS || got[0].Amount != 14.35 {
		t.Fatalf("unexpected deductions: %+v", got)
	}
	if p := b.Payslip(0); p.NetSalary != 485.65 {
		t.Fatalf("expected net 485.65, got %v", p.NetSalary)
	}
}
