package subagents

import (
	"fmt"
	"strings"

	"gdp/internal/platform/money"
	"gdp/internal/platform/pdfdoc"
)

func RenderStatementPDF(st Statement) ([]byte, error) {
	title := "Estado de Cuenta - Conduces Pendientes"
	switch {
	case st.IsPaid && st.Subagent.PaymentModel == ModelMonthlyAggregate:
		title = "Comprobante de Pago - Mensual Agregado"
	case st.IsPaid:
		title = "Comprobante de Pago - Conduces"
	case st.Subagent.PaymentModel == ModelMonthlyAggregate:
		title = "Reporte Pendiente - Mensual Agregado"
	}
	doc := pdfdoc.New(title, st.Subagent.Name+" ("+st.Subagent.Code+") - "+st.Label)
	doc.Row("Modelo de pago:", st.Subagent.PaymentModel)
	doc.Row("Tarifa por libra:", money.Format(st.Subagent.RatePerPound))

	if len(st.Conduces) > 0 {
		rows := make([][]string, 0, len(st.Conduces))
		for _, c := range st.Conduces {
			weight := "-"
			if c.TotalWeightPounds != nil {
				weight = fmt.Sprintf("%.2f", *c.TotalWeightPounds)
			}
			kind := "Calculado"
			if c.PaymentType == PaymentDirect {
				kind = "Directo"
			}
			rows = append(rows, []string{c.Date, c.ConduceIdentifier, weight, kind, money.Plain(c.CalculatedPayment)})
		}
		doc.Space()
		doc.Table([]string{"Fecha", "Conduce", "Peso (lbs)", "Tipo", "Monto (DOP)"},
			[]float64{0.15, 0.35, 0.15, 0.15, 0.2}, rows)
	}
	if st.Payment != nil && st.Payment.TotalWeightForMonth != nil {
		doc.Row("Peso total registrado:", fmt.Sprintf("%.2f lbs", *st.Payment.TotalWeightForMonth))
	}

	doc.Space()
	label := "GRAN TOTAL A PAGAR:"
	if st.IsPaid {
		label = "GRAN TOTAL PAGADO:"
		doc.Row("Fecha de pago:", st.Payment.ProcessingDate.Format("2006-01-02"))
		if st.Payment.VoucherFileName != "" {
			doc.Row("Comprobante:", st.Payment.VoucherFileName)
		}
	}
	doc.Total(label, money.Format(st.Total))
	return doc.Bytes()
}

func StatementFileName(st Statement) string {
	status := "_Pendiente"
	if st.IsPaid {
		status = "_Pagado"
	}
	return "Reporte_Pago_" + strings.Join(strings.Fields(st.Subagent.Name), "_") + "_" +
		strings.ReplaceAll(st.Label, " ", "_") + status + ".pdf"
}
