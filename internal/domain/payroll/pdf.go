package payroll

import (
	"fmt"
	"strings"

	"gdp/internal/platform/money"
	"gdp/internal/platform/pdfdoc"
)

func RenderPayslipPDF(p Payslip) ([]byte, error) {
	doc := pdfdoc.New("Volante de Pago Quincenal", "Período de Pago: "+p.PayPeriod)
	doc.Row("Empleado:", p.EmployeeName)
	if p.EmployeeCedula != "" {
		doc.Row("Cédula:", p.EmployeeCedula)
	}
	doc.Row("Fecha de Generación:", p.GeneratedDate.Format("2006-01-02"))

	doc.Heading("Ingresos de la Quincena")
	doc.Row("Salario Base Quincenal:", money.Format(p.BaseSalary))
	if p.OvertimeHours > 0 {
		doc.Row(fmt.Sprintf("Horas Extras (%.2f h):", p.OvertimeHours), money.Format(p.OvertimePay))
	}
	doc.Total("Total Ingresos Quincenales:", money.Format(p.TotalEarnings))

	doc.Heading("Deducciones")
	if len(p.Deductions) == 0 {
		doc.Text("Sin deducciones.")
	}
	for _, d := range p.Deductions {
		doc.Row(d.Name+":", money.Format(d.Amount))
	}
	doc.Total("Total Deducciones:", money.Format(p.TotalDeductions()))

	doc.Space()
	doc.Total("Salario Neto Quincenal (A Percibir):", money.Format(p.NetSalary))
	return doc.Bytes()
}

func PayslipFileName(p Payslip) string {
	clean := func(s string) string { return strings.Join(strings.Fields(s), "_") }
	return fmt.Sprintf("Volante-%s-%s.pdf", clean(p.EmployeeName), clean(p.PayPeriod))
}
