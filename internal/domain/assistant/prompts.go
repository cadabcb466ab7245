package assistant

import (
	"fmt"
	"strings"

	"gdp/internal/domain/payroll"
	"gdp/internal/platform/ai"
	"gdp/internal/platform/money"
)

var chatOptions = ai.TextOptions{
	SystemInstruction: `Eres un asistente de nómina servicial y conciso.
Responde preguntas relacionadas con temas generales de nómina en República Dominicana.
No proporciones asesoramiento financiero ni proceses datos reales de nómina.
Mantén tus respuestas breves y fáciles de entender. Usa moneda DOP (Pesos Dominicanos) si mencionas cantidades.
Recuerda que los pagos pueden ser quincenales.
A veces, por procesos internos de la empresa, las deducciones de TSS (AFP y SFS) pueden no aplicarse en un volante de pago específico; esto es temporal.`,
	Temperature: 0.5,
	TopK:        32,
	TopP:        0.9,
}

var (
	explainOptions = ai.TextOptions{Temperature: 0.3}
	commentOptions = ai.TextOptions{Temperature: 0.6, TopK: 40, TopP: 0.9}
)

const (
	reportTemperature  float32 = 0.1
	conduceTemperature float32 = 0.0
)

func findDeduction(p payroll.Payslip, name string) (payroll.Deduction, bool) {
	for _, d := range p.Deductions {
		if d.Name == name {
			return d, true
		}
	}
	return payroll.Deduction{}, false
}

func payslipPrompt(p payroll.Payslip) string {
	var b strings.Builder
	cedula := p.EmployeeCedula
	if cedula == "" {
		cedula = "N/A"
	}
	fmt.Fprintf(&b, `Eres un asistente de nómina servicial. Explica los siguientes detalles del volante de pago QUINCENAL en términos simples y claros para un empleado en República Dominicana.
Concéntrate en la claridad y desglosa brevemente a dónde va el dinero. Sé empático y tranquilizador. Usa el formato de moneda DOP.
IMPORTANTE: El empleado recibe pagos quincenales. El "Salario Base Quincenal" es la mitad de su salario mensual.

Detalles del Volante de Pago para %s (%s) para el período %s:
- Salario Base Quincenal: %s
`, p.EmployeeName, cedula, p.PayPeriod, money.Format(p.BaseSalary))
	if p.OvertimePay > 0 {
		fmt.Fprintf(&b, "- Horas Extras: %.2f horas, %s\n", p.OvertimeHours, money.Format(p.OvertimePay))
	}
	fmt.Fprintf(&b, "- Total Ingresos Quincenales: %s\n- Detalle de Deducciones:\n", money.Format(p.TotalEarnings))
	if len(p.Deductions) == 0 {
		b.WriteString("  - Ninguna\n")
	}
	for _, d := range p.Deductions {
		fmt.Fprintf(&b, "  - %s: %s\n", d.Name, money.Format(d.Amount))
	}
	fmt.Fprintf(&b, "- Total Deducciones: %s\n- Salario Neto Quincenal (Pago a recibir): %s\n\n",
		money.Format(p.TotalDeductions()), money.Format(p.NetSalary))

	b.WriteString(`Proporciona una explicación breve siguiendo estos puntos:
1. Salario Base Quincenal: explica que es la mitad del salario mensual.
2. Ingresos por Horas Extras (si aplica): explica cómo se suman al Salario Base para obtener el "Total Ingresos Quincenales".
3. Deducciones Aplicadas:
`)
	afp, hasAFP := findDeduction(p, payroll.DeductionAFP)
	sfs, hasSFS := findDeduction(p, payroll.DeductionSFS)
	if hasAFP && hasSFS {
		fmt.Fprintf(&b, "   - Se aplicaron las deducciones de la seguridad social (TSS): AFP (fondo de pensión) %s y SFS (seguro de salud) %s.\n",
			money.Format(afp.Amount), money.Format(sfs.Amount))
	} else {
		b.WriteString("   - En este volante las deducciones de AFP (pensión) y SFS (salud) no se aplicaron, por una configuración interna de esta nómina.\n")
	}
	if isr, ok := findDeduction(p, payroll.DeductionISR); ok {
		fmt.Fprintf(&b, "   - ISR (Impuesto Sobre la Renta): %s, calculado sobre tus ingresos.\n", money.Format(isr.Amount))
	} else {
		b.WriteString("   - No se aplicó ISR en esta quincena, probablemente porque tus ingresos no alcanzaron el mínimo imponible.\n")
	}
	b.WriteString(`4. Salario Neto Quincenal: explica que es el dinero que recibes en tu cuenta, el "Total Ingresos Quincenales" menos el "Total Deducciones".`)
	return b.String()
}

func reportInstructions(sources []string) string {
	quoted := make([]string, len(sources))
	for i, s := range sources {
		quoted[i] = `"` + s + `"`
	}
	return `Analiza la imagen de un reporte financiero mensual. Extrae los datos y devuélvelos en formato JSON con dos claves: "expenses" e "incomes".

Para "expenses":
- Cada gasto individual es un objeto con "remark" (descripción, ej: "IMPUESTOS", "local", "luz") y "amount" (monto numérico).
- Ignora líneas de "TOTAL GENERAL" y subtotales.
- No incluyas gastos "NOMINA" ni "NOMINA subagente"; la aplicación los agrega automáticamente.

Para "incomes":
- Busca solo estas fuentes: ` + strings.Join(quoted, ", ") + `.
- Cada una es un objeto con "source" (el nombre exacto) y "amount" (monto numérico). Omite las que no encuentres.

Ejemplo:
{"expenses":[{"remark":"IMPUESTOS","amount":787.01},{"remark":"luz","amount":3134.14}],"incomes":[{"source":"PAQUETERIA LOCAL","amount":114.58}]}

Los montos son números con punto decimal y sin separadores de miles. No incluyas títulos, fechas ni la distribución de ganancias.
Si la imagen no es un reporte financiero devuelve {"expenses":[],"incomes":[]}.`
}

const conduceInstructions = `Analiza la tabla del documento (imagen o PDF), un reporte de conduces de un subagente.
Devuelve un array JSON con un objeto por fila de datos con las claves "fecha" (string), "peso" (number), "paquetes" (number) y "monto" (number).
- La columna CONDUCE es la fecha. Normalízala a YYYY-MM-DD si es posible; si no, déjala como está.
- PESO es el peso, PAQUETES la cantidad de paquetes y MONTO el monto declarado.
- Ignora encabezados y totales como "GRAND TOTAL".
- Los números no llevan comas ni símbolos de moneda.
- Si una celda está vacía o no se puede interpretar, omite esa clave.
- El nombre del subagente en el documento no importa.
- Si no hay filas válidas devuelve [].

Ejemplo:
[{"fecha":"2024-05-03","peso":2.00,"paquetes":2,"monto":435.01},{"fecha":"2024-05-08","peso":7.09,"paquetes":4,"monto":1721.28}]`

func commentPrompt(description string, debit, credit *float64) string {
	kind, amount := "Ingreso (Crédito)", 0.0
	if debit != nil && *debit > 0 {
		kind, amount = "Egreso (Débito)", *debit
	} else if credit != nil {
		amount = *credit
	}
	return fmt.Sprintf(`Eres un asistente para la entrada de datos de transacciones bancarias.
Transacción:
- Descripción: %q
- Tipo: %s
- Monto: %s

Sugiere un comentario breve y claro que justifique la transacción, adecuado para un registro contable.

Ejemplos:
- Descripción="Pago de factura #123 a Proveedor X", Tipo=Egreso: "Pago factura #123 a Proveedor X por servicios/productos."
- Descripción="CR X TRANSFER", Tipo=Ingreso: "Transferencia recibida de cliente por servicios." (si la descripción es vaga, infiere una causa común)
- Descripción="Deposito en efectivo", Tipo=Ingreso: "Depósito en efectivo en cuenta."
- Descripción="Pago salario Juan Perez", Tipo=Egreso: "Pago de salario a Juan Perez correspondiente a QX Mes."

Sugerencia de Comentario:`, description, kind, money.Format(amount))
}
