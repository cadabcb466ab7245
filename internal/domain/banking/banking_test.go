package banking

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gdp/internal/platform/metrics"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

func amount(v float64) *float64 { return &v }

func issueFields(t *testing.T, err error) []string {
	t.Helper()
	verr, ok := validate.AsError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	out := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		out = append(out, issue.Field)
	}
	return out
}

func TestCheck(t *testing.T) {
	base := Transaction{Date: "2025-06-05", Description: "Pago luz", Comment: "Factura junio"}

	tx := base
	_, err := Check(tx)
	require.Contains(t, issueFields(t, err), "debit")

	tx = base
	tx.Debit, tx.Credit = amount(10), amount(5)
	require.Contains(t, issueFields(t, err2(Check(tx))), "credit")

	tx = base
	tx.Debit = amount(1500)
	require.Contains(t, issueFields(t, err2(Check(tx))), "category")

	tx.Category = CategoryOther
	require.Contains(t, issueFields(t, err2(Check(tx))), "customCategory")

	tx.CustomCategory = "Mantenimiento"
	tx.Comment = " "
	require.Contains(t, issueFields(t, err2(Check(tx))), "comment")

	tx.Comment = "Reparación"
	ok, err := Check(tx)
	require.NoError(t, err)
	require.True(t, ok.IsDebit)
	require.Nil(t, ok.Credit)

	credit := base
	credit.Credit = amount(900)
	credit.Debit = amount(0)
	ok, err = Check(credit)
	require.NoError(t, err)
	require.False(t, ok.IsDebit)
	require.Nil(t, ok.Debit)
}

func err2(_ Transaction, err error) error { return err }

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2025-06-05": "2025-06-05",
		"05/06/2025": "2025-06-05",
		"5-6-25":     "2025-06-05",
		"06/25/2025": "2025-06-25",
		"31.12.24":   "2024-12-31",
	}
	for in, want := range cases {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		require.Equal(t, want, got.Format("2006-01-02"), in)
	}
	for _, bad := range []string{"", "hoy", "31/02/2025", "13/13/2025"} {
		_, ok := ParseDate(bad)
		require.False(t, ok, bad)
	}
}

const statement = `05/06/2025
REF001
CREDITO POR TRANSFERENCIA
CR
RD$ 1.447,00
25.000,00
06/06/2025
REF002
PAGO SERVICIO ELECTRICO
DB
3,250.50
21,749.50
fecha mala
REF003
DEPOSITO
CR
100
100
07/06/2025
REF004`

func TestParsePaste(t *testing.T) {
	txs, result := ParsePaste(statement)
	require.Len(t, txs, 2)
	require.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	require.Contains(t, result.Errors[0], "Fecha inválida")
	require.Contains(t, result.Errors[1], "Bloque incompleto")

	require.Equal(t, "2025-06-05", txs[0].Date)
	require.Equal(t, 1447.0, *txs[0].Credit)
	require.Nil(t, txs[0].Debit)
	require.Equal(t, 25000.0, txs[0].Balance)
	require.Equal(t, "Importado de lote: CREDITO POR TRANSFERENCIA", txs[0].Comment)

	require.True(t, txs[1].IsDebit)
	require.Equal(t, 3250.5, *txs[1].Debit)
}

func TestImportPasteAndExport(t *testing.T) {
	m := metrics.New()
	svc := NewService(store.NewMemory(), m)
	ctx := context.Background()

	result, err := svc.ImportPaste(ctx, statement)
	require.NoError(t, err)
	require.Equal(t, 2, result.Success)

	list, err := svc.List(ctx, "2025-06")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "2025-06-06", list[0].Date)

	totals := Summarize(list)
	require.Equal(t, 1447.0, totals.Credits)
	require.Equal(t, 3250.5, totals.Debits)
	require.Equal(t, -1803.5, totals.Net)
	require.Equal(t, 3250.5, totals.ByCategory["Sin categoría"])

	data, err := ExportXLSX(list)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Transacciones")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "REF002", rows[1][1])
}
