package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gdp/internal/domain/payroll"
	"gdp/internal/platform/ai"
	"gdp/internal/platform/policy"
	"gdp/internal/platform/validate"
)

type fakeGenerator struct {
	text        string
	raw         string
	err         error
	prompt      string
	opts        ai.TextOptions
	temperature float32
}

func (f *fakeGenerator) SuggestText(_ context.Context, prompt string, opts ai.TextOptions) (string, error) {
	f.prompt, f.opts = prompt, opts
	return f.text, f.err
}

func (f *fakeGenerator) ExtractStructuredData(_ context.Context, _ []byte, _, instructions string, temperature float32) (json.RawMessage, error) {
	f.prompt, f.temperature = instructions, temperature
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func newTestService(gen *fakeGenerator) *Service {
	return NewService(gen, policy.Default().MonthlyReport.IncomeSources)
}

func TestChat(t *testing.T) {
	gen := &fakeGenerator{text: "La TSS incluye AFP y SFS."}
	svc := newTestService(gen)

	answer, err := svc.Chat(context.Background(), "  ¿Qué es la TSS?  ")
	require.NoError(t, err)
	require.Equal(t, "La TSS incluye AFP y SFS.", answer)
	require.Equal(t, "¿Qué es la TSS?", gen.prompt)
	require.Contains(t, gen.opts.SystemInstruction, "República Dominicana")
	require.Equal(t, float32(0.5), gen.opts.Temperature)

	_, err = svc.Chat(context.Background(), "   ")
	_, ok := validate.AsError(err)
	require.True(t, ok)
}

func TestExplainPayslipMentionsMissingTSS(t *testing.T) {
	gen := &fakeGenerator{text: "explicación"}
	svc := newTestService(gen)
	slip := payroll.Payslip{
		EmployeeName:  "Laura",
		PayPeriod:     "Julio 2024 - 1ra Quincena",
		BaseSalary:    12500,
		TotalEarnings: 12500,
		NetSalary:     12500,
	}
	_, err := svc.ExplainPayslip(context.Background(), slip)
	require.NoError(t, err)
	require.Contains(t, gen.prompt, "Laura (N/A)")
	require.Contains(t, gen.prompt, "no se aplicaron")
	require.Contains(t, gen.prompt, "No se aplicó ISR")

	slip.Deductions = []payroll.Deduction{
		{Name: payroll.DeductionAFP, Amount: 358.75},
		{Name: payroll.DeductionSFS, Amount: 380},
	}
	_, err = svc.ExplainPayslip(context.Background(), slip)
	require.NoError(t, err)
	require.Contains(t, gen.prompt, "DOP 358.75")
	require.Contains(t, gen.prompt, "DOP 738.75")
}

func TestSuggestBankComment(t *testing.T) {
	gen := &fakeGenerator{text: "\"Depósito de cliente.\"\n"}
	svc := newTestService(gen)
	credit := 1447.0

	comment, err := svc.SuggestBankComment(context.Background(), "CR X TRANSFER", nil, &credit)
	require.NoError(t, err)
	require.Equal(t, "Depósito de cliente.", strings.TrimSpace(comment))
	require.Contains(t, gen.prompt, "Ingreso (Crédito)")
	require.Contains(t, gen.prompt, "DOP 1,447.00")

	_, err = svc.SuggestBankComment(context.Background(), "", nil, nil)
	verr, ok := validate.AsError(err)
	require.True(t, ok)
	require.Len(t, verr.Issues, 2)
}

func TestExtractFinancialReportFilters(t *testing.T) {
	gen := &fakeGenerator{raw: `{
		"expenses": [
			{"remark": "IMPUESTOS", "amount": 787.01},
			{"remark": "Nomina", "amount": 20000},
			{"remark": "NOMINA SUBAGENTE", "amount": 5000},
			{"remark": "luz", "amount": "3134.14"},
			{"amount": 10}
		],
		"incomes": [
			{"source": "PAQUETERIA LOCAL", "amount": 114.58},
			{"source": "VENTAS", "amount": 99}
		]
	}`}
	svc := newTestService(gen)

	got, err := svc.ExtractFinancialReport(context.Background(), []byte("img"), "image/jpeg")
	require.NoError(t, err)
	require.Len(t, got.Expenses, 1)
	require.Equal(t, "IMPUESTOS", got.Expenses[0].Remark)
	require.Len(t, got.Incomes, 1)
	require.Equal(t, 114.58, got.Incomes[0].Amount)
	require.Equal(t, float32(0.1), gen.temperature)
	require.Contains(t, gen.prompt, `"GANANCIA PAQUETERIA COURRIER"`)

	_, err = svc.ExtractFinancialReport(context.Background(), []byte("x"), "text/plain")
	require.True(t, errors.Is(err, ErrUnsupportedFile))
}

func TestExtractConduces(t *testing.T) {
	gen := &fakeGenerator{raw: `[
		{"fecha": "2024-05-03", "peso": 2.0, "paquetes": 2, "monto": 435.01},
		{"fecha": "8-may", "peso": "7,09"},
		{"peso": 1, "paquetes": 1}
	]`}
	svc := newTestService(gen)

	rows, err := svc.ExtractConduces(context.Background(), []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "2024-05-03", rows[0].Date)
	require.Equal(t, 2, *rows[0].Packages)
	require.Equal(t, 435.01, *rows[0].Declared)
	require.Nil(t, rows[1].Weight)
	require.Equal(t, float32(0), gen.temperature)

	gen.raw = `"no table"`
	_, err = svc.ExtractConduces(context.Background(), []byte("x"), "image/png")
	require.ErrorIs(t, err, ai.ErrMalformed)

	gen.err = ai.ErrUnavailable
	_, err = svc.ExtractConduces(context.Background(), []byte("x"), "image/png")
	require.ErrorIs(t, err, ai.ErrUnavailable)
}
