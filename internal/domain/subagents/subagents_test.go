package subagents

import (
	"context"
	"errors"
	"testing"
	"time"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/metrics"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

func f(v float64) *float64 { return &v }

func newTestService() *Service {
	svc := NewService(store.NewMemory(), metrics.New())
	svc.now = func() time.Time { return time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestParseConduceDate(t *testing.T) {
	cases := map[string]string{
		"2024-05-03":   "2024-05-03",
		"3-may-24":     "2024-05-03",
		"03 mayo 2024": "2024-05-03",
		"8.MAY.2024":   "2024-05-08",
		"15-dic":       "2023-12-15",
	}
	for in, want := range cases {
		got, ok := ParseConduceDate(in, 2023)
		if !ok || got.Format("2006-01-02") != want {
			t.Fatalf("ParseConduceDate(%q) = %v, %v; want %s", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "mayo", "31-feb-24", "3-xyz-24", "05/03/2024"} {
		if _, ok := ParseConduceDate(bad, 2023); ok {
			t.Fatalf("ParseConduceDate(%q) expected failure", bad)
		}
	}
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, Subagent{Code: "SA01", Name: "Wendy", PaymentModel: ModelPerConduce, RatePerPound: 25}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, Subagent{Code: "sa01", Name: "Otro", PaymentModel: ModelPerConduce})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
	_, err = svc.Create(ctx, Subagent{Code: "SA02", Name: "X", PaymentModel: "Semanal"})
	if _, ok := validate.AsError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPerConducePaymentFlow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sub, err := svc.Create(ctx, Subagent{Code: "SA01", Name: "Wendy", PaymentModel: ModelPerConduce, RatePerPound: 25})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	calc, err := svc.AddConduce(ctx, sub.ID, Conduce{Date: "2024-05-03", PaymentType: PaymentCalculated, TotalWeightPounds: f(7.5)})
	if err != nil {
		t.Fatalf("add calculated: %v", err)
	}
	if calc.CalculatedPayment != 187.5 {
		t.Fatalf("expected 187.5, got %v", calc.CalculatedPayment)
	}
	if _, err := svc.AddConduce(ctx, sub.ID, Conduce{Date: "2024-05-10", PaymentType: PaymentDirect, DirectPaymentAmount: f(300)}); err != nil {
		t.Fatalf("add direct: %v", err)
	}
	if _, err := svc.AddConduce(ctx, sub.ID, Conduce{Date: "2024-06-01", PaymentType: PaymentCalculated, TotalWeightPounds: f(2)}); err != nil {
		t.Fatalf("add june: %v", err)
	}
	_, err = svc.AddConduce(ctx, sub.ID, Conduce{Date: "2024-05-11", PaymentType: PaymentDirect})
	if verr, ok := validate.AsError(err); !ok || verr.Issues[0].Field != "directPaymentAmount" {
		t.Fatalf("expected directPaymentAmount error, got %v", err)
	}

	pending, err := svc.Pending(ctx, "2024-05")
	if err != nil || len(pending) != 1 || pending[0].Total != 487.5 {
		t.Fatalf("unexpected pending: %+v, %v", pending, err)
	}

	payment, err := svc.PayConduces(ctx, sub.ID, "2024-05", "voucher.jpg")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if payment.TotalAmountPaid != 487.5 || len(payment.ConduceDocIDsIncluded) != 2 {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if _, err := svc.PayConduces(ctx, sub.ID, "2024-05", ""); !errors.Is(err, ErrNothingToPay) {
		t.Fatalf("expected ErrNothingToPay, got %v", err)
	}
	if err := svc.DeleteConduce(ctx, sub.ID, calc.ID); !errors.Is(err, ErrConducePaid) {
		t.Fatalf("expected ErrConducePaid, got %v", err)
	}

	may, err := svc.Conduces(ctx, sub.ID, "2024-05")
	if err != nil {
		t.Fatalf("conduces: %v", err)
	}
	for _, c := range may {
		if !c.IsPaid || c.PaymentRunID != payment.ID {
			t.Fatalf("expected conduce marked paid: %+v", c)
		}
	}

	total, err := svc.MonthTotal(ctx, ledger.Month{Year: 2024, Month: 5})
	if err != nil || total != 487.5 {
		t.Fatalf("unexpected month total %v, %v", total, err)
	}
	pounds, err := svc.MonthPounds(ctx, ledger.Month{Year: 2024, Month: 5})
	if err != nil || pounds != 7.5 {
		t.Fatalf("unexpected month pounds %v, %v", pounds, err)
	}

	st, err := svc.Statement(ctx, sub.ID, "2024-05")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !st.IsPaid || len(st.Conduces) != 2 || st.Total != 487.5 {
		t.Fatalf("unexpected statement: %+v", st)
	}
	pdf, err := RenderStatementPDF(st)
	if err != nil || string(pdf[:5]) != "%PDF-" {
		t.Fatalf("statement pdf: %v", err)
	}
	if name := StatementFileName(st); name != "Reporte_Pago_Wendy_Mayo_2024_Pagado.pdf" {
		t.Fatalf("unexpected file name %q", name)
	}

	if err := svc.Delete(ctx, sub.ID); !errors.Is(err, ErrSubagentInUse) {
		t.Fatalf("expected ErrSubagentInUse, got %v", err)
	}
}

func TestAggregatePayment(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sub, err := svc.Create(ctx, Subagent{Code: "AG", Name: "Wellington", PaymentModel: ModelMonthlyAggregate, RatePerPound: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.PayConduces(ctx, sub.ID, "2024-05", ""); !errors.Is(err, ErrWrongPaymentModel) {
		t.Fatalf("expected ErrWrongPaymentModel, got %v", err)
	}
	p, err := svc.PayAggregate(ctx, sub.ID, "2024-05", 150.25, "")
	if err != nil {
		t.Fatalf("pay aggregate: %v", err)
	}
	if p.TotalAmountPaid != 3005 || *p.TotalWeightForMonth != 150.25 {
		t.Fatalf("unexpected payment: %+v", p)
	}
	if _, err := svc.PayAggregate(ctx, sub.ID, "2024-05", 10, ""); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestImportConduces(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sub, _ := svc.Create(ctx, Subagent{Code: "SA01", Name: "Wendy", PaymentModel: ModelPerConduce, RatePerPound: 10})
	packages := 4
	result, err := svc.ImportConduces(ctx, sub.ID, 2024, "reporte.pdf", []ImportRow{
		{Date: "3-may", Weight: f(2), Packages: &packages, Declared: f(435.01)},
		{Date: "2024-05-08", Weight: f(7.09)},
		{Date: "ayer", Weight: f(1)},
		{Date: "2024-05-09"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Success != 2 || result.Skipped != 2 || len(result.Errors) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.FirstDate != "2024-05-03" {
		t.Fatalf("unexpected first date %q", result.FirstDate)
	}
	if result.Conduces[1].CalculatedPayment != 70.9 {
		t.Fatalf("unexpected payment %v", result.Conduces[1].CalculatedPayment)
	}
	if result.Conduces[0].Notes != "Importado de reporte.pdf" || *result.Conduces[0].NumberOfPackages != 4 {
		t.Fatalf("unexpected conduce %+v", result.Conduces[0])
	}
}
