package loans

import (
	"strings"

	"gdp/internal/platform/money"
	"gdp/internal/platform/pdfdoc"
)

// RenderReceiptPDF prints the receipt for one payment.
func RenderReceiptPDF(l Summary, p Payment) ([]byte, error) {
	doc := pdfdoc.New("Recibo de Pago de Préstamo", l.Name+" - "+l.Lender)
	doc.Row("Fecha de pago:", p.PaymentDate)
	doc.Row("Recibo No.:", p.ID)
	doc.Space()
	doc.Row("Monto pagado:", money.Format(p.AmountPaid))
	doc.Row("Interés:", money.Format(p.InterestPaid))
	doc.Row("Capital:", money.Format(p.PrincipalPaid))
	doc.Total("Balance restante:", money.Format(p.RemainingBalance))
	if p.Notes != "" {
		doc.Space()
		doc.Text("Notas: " + p.Notes)
	}
	return doc.Bytes()
}

func ReceiptFileName(l Summary, p Payment) string {
	return "Recibo_" + strings.Join(strings.Fields(l.Name), "_") + "_" + p.PaymentDate + ".pdf"
}
