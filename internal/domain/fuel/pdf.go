package fuel

import (
	"fmt"

	"gdp/internal/platform/money"
	"gdp/internal/platform/pdfdoc"
)

func RenderMonthPDF(t MonthTotals, entries []Entry) ([]byte, error) {
	doc := pdfdoc.New("Registro de Combustible", t.Label)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		gallons, cost, kmpg := "-", "-", "-"
		if e.GallonsAdded != nil {
			gallons = fmt.Sprintf("%.2f", *e.GallonsAdded)
		}
		if e.TotalFuelCost != nil {
			cost = money.Plain(*e.TotalFuelCost)
		}
		if e.EfficiencyKmpg != nil {
			kmpg = fmt.Sprintf("%.2f", *e.EfficiencyKmpg)
		}
		rows = append(rows, []string{e.Date, e.Vehicle, fmt.Sprintf("%.1f", e.TotalKilometersThisLog), gallons, cost, kmpg})
	}
	doc.Table([]string{"Fecha", "Vehículo", "Km", "Galones", "Costo", "Km/Gal"},
		[]float64{0.15, 0.25, 0.12, 0.14, 0.2, 0.14}, rows)
	doc.Space()
	doc.Row("Kilómetros recorridos:", fmt.Sprintf("%.1f", t.TotalKm))
	doc.Row("Galones:", fmt.Sprintf("%.2f", t.TotalGallons))
	if t.AverageKmpg != nil {
		doc.Row("Rendimiento promedio:", fmt.Sprintf("%.2f km/gal", *t.AverageKmpg))
	}
	doc.Total("Costo total:", money.Format(t.TotalCost))
	return doc.Bytes()
}
