package reports

import (
	"fmt"
	"strings"

	"gdp/internal/platform/money"
	"gdp/internal/platform/pdfdoc"
	"gdp/internal/platform/sheet"
)

func RenderPDF(r Report) ([]byte, error) {
	doc := pdfdoc.New("REPORTE DE "+strings.ToUpper(r.Label), r.OperationalName)

	doc.Heading("Ingresos")
	for _, item := range r.Incomes {
		doc.Row(item.Source, money.Format(item.Amount))
	}
	doc.Total("Total Ingresos:", money.Format(r.TotalIncome))

	doc.Heading("Gastos")
	for _, item := range r.Expenses {
		doc.Row(item.Remark, money.Format(item.Amount))
	}
	doc.Total("Total General Gastos:", money.Format(r.TotalExpense))

	if r.Pounds != nil {
		doc.Space()
		doc.Row("Libras del mes:", fmt.Sprintf("%.2f lbs", *r.Pounds))
	}

	doc.Heading("Distribución de Ganancias")
	doc.Total("Total de Ganancias:", money.Format(r.Profit))
	for _, share := range r.Shares {
		doc.Row(fmt.Sprintf("%s (%.0f%%):", share.Name, share.Share*100), money.Format(share.Amount))
	}
	return doc.Bytes()
}

func PDFFileName(r Report) string {
	return "Reporte_" + strings.ReplaceAll(r.Label, " ", "_") + ".pdf"
}

// RenderXLSX writes the month and, when given, the history sheet.
func RenderXLSX(r Report, history []HistoryItem) ([]byte, error) {
	rows := [][]any{}
	for _, item := range r.Incomes {
		rows = append(rows, []any{"Ingreso", item.Source, money.Round2(item.Amount)})
	}
	for _, item := range r.Expenses {
		kind := "Gasto"
		if item.IsAutomatic {
			kind = "Gasto automático"
		}
		rows = append(rows, []any{kind, item.Remark, money.Round2(item.Amount)})
	}
	rows = append(rows,
		[]any{"", "Total Ingresos", money.Round2(r.TotalIncome)},
		[]any{"", "Total Gastos", money.Round2(r.TotalExpense)},
		[]any{"", "Total de Ganancias", money.Round2(r.Profit)},
	)
	for _, share := range r.Shares {
		rows = append(rows, []any{"Distribución", share.Name, money.Round2(share.Amount)})
	}

	tables := []sheet.Table{{
		Name:    r.Label,
		Headers: []string{"Tipo", "Concepto", "Monto (DOP)"},
		Rows:    rows,
		Widths:  []float64{18, 40, 16},
	}}
	if len(history) > 0 {
		hist := make([][]any, 0, len(history))
		for _, h := range history {
			hist = append(hist, []any{h.Period, h.Incomes, h.Expenses, h.Profit})
		}
		tables = append(tables, sheet.Table{
			Name:    "Historial",
			Headers: []string{"Período", "Ingresos", "Gastos", "Ganancia"},
			Rows:    hist,
			Widths:  []float64{20, 16, 16, 16},
		})
	}
	return sheet.Write(tables...)
}

func XLSXFileName(r Report) string {
	return "Reporte_" + strings.ReplaceAll(r.Label, " ", "_") + ".xlsx"
}
