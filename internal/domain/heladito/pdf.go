package heladito

import (
	"fmt"
	"strings"

	"gdp/internal/platform/money"
	"gdp/internal/platform/pdfdoc"
)

func RenderReportPDF(r Report) ([]byte, error) {
	doc := pdfdoc.New("Reporte Financiero Mensual - Mi Heladito", r.Label)

	doc.Heading("Ingresos")
	for _, item := range r.Entry.Incomes {
		doc.Row(item.Source, money.Format(item.Amount))
	}
	doc.Total("Total Ingresos:", money.Format(r.Distribution.TotalIncome))

	doc.Heading("Gastos")
	for _, item := range r.Entry.Expenses {
		doc.Row(item.Remark, money.Format(item.Amount))
	}
	doc.Total("Total Gastos:", money.Format(r.Distribution.TotalExpense))

	doc.Space()
	doc.Total("Ganancia Neta:", money.Format(r.Distribution.Profit))

	doc.Heading("Distribución de Ganancias")
	d := r.Distribution
	doc.Row(d.PartnerA.Name+":", money.Format(d.PartnerA.Amount))
	doc.Row(d.PartnerB.Name+":", money.Format(d.PartnerB.Amount))
	doc.Row(d.BusinessAccount+" (inicial):", money.Format(d.BusinessShare))

	if len(r.Entry.InvestmentPurchases) > 0 {
		doc.Heading("Compras de Inversión")
		for _, item := range r.Entry.InvestmentPurchases {
			doc.Row(item.Remark, money.Format(item.Amount))
		}
		doc.Total("Total Compras de Inversión:", money.Format(d.InvestmentTotal))
	}
	doc.Space()
	doc.Total(d.BusinessAccount+" (final):", money.Format(d.FinalBusinessShare))
	return doc.Bytes()
}

func RenderRunPDF(run PayrollRun) ([]byte, error) {
	doc := pdfdoc.New("Nómina Mi Heladito", "Período: "+run.PayPeriod)
	rows := make([][]string, 0, len(run.Payslips))
	for _, slip := range run.Payslips {
		days := "N/A"
		if slip.DaysWorked != nil {
			days = fmt.Sprintf("%g", *slip.DaysWorked)
		}
		rows = append(rows, []string{slip.WorkerName, slip.WorkerType, days, money.Plain(slip.NetPayment)})
	}
	doc.Table([]string{"Trabajador", "Tipo", "Días", "Pago (DOP)"}, []float64{0.4, 0.2, 0.15, 0.25}, rows)
	doc.Space()
	doc.Total("Total Pagado:", money.Format(run.TotalAmountPaid))
	return doc.Bytes()
}

func RunFileName(run PayrollRun) string {
	return "Nomina_MiHeladito_" + strings.Join(strings.Fields(run.PayPeriod), "_") + ".pdf"
}
