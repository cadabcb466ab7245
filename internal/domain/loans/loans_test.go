package loans

import (
	"context"
	"errors"
	"testing"
	"time"

	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

func TestValidateLoan(t *testing.T) {
	cases := []struct {
		initial, payment, interest float64
		ok                         bool
	}{
		{10000, 2000, 500, true},
		{10000, 2000, 0, true},
		{0, 2000, 500, false},
		{10000, 0, 0, false},
		{10000, 500, 500, false},
		{10000, 500, 800, false},
	}
	for _, tc := range cases {
		err := ValidateLoan(tc.initial, tc.payment, tc.interest)
		if tc.ok && err != nil {
			t.Fatalf("ValidateLoan(%v,%v,%v) unexpected error: %v", tc.initial, tc.payment, tc.interest, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidLoan) {
			t.Fatalf("ValidateLoan(%v,%v,%v) expected ErrInvalidLoan, got %v", tc.initial, tc.payment, tc.interest, err)
		}
	}
}

func TestPaymentStepAmortizes(t *testing.T) {
	balance := 10000.0
	want := []float64{8500, 7000, 5500, 4000, 2500, 1000, 0}
	for i, expected := range want {
		step, err := PaymentStep(balance, 2000, 500)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if step.NewBalance != expected {
			t.Fatalf("step %d: expected balance %v, got %v", i, expected, step.NewBalance)
		}
		balance = step.NewBalance
	}
	if _, err := PaymentStep(balance, 2000, 500); !errors.Is(err, ErrLoanSettled) {
		t.Fatalf("expected ErrLoanSettled, got %v", err)
	}
}

func TestPaymentStepCapsInterestAtBalance(t *testing.T) {
	step, err := PaymentStep(300, 2000, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.InterestPaid != 300 || step.PrincipalPaid != 1700 || step.NewBalance != 0 {
		t.Fatalf("unexpected step: %+v", step)
	}
}

func TestRegisterPaymentTracksBalance(t *testing.T) {
	svc := NewService(store.NewMemory())
	svc.now = func() time.Time { return time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	loan, err := svc.Create(ctx, Loan{
		Name: "Camión", Lender: "Banreservas", InitialAmount: 3000,
		MonthlyPaymentAmount: 2000, MonthlyInterestAmount: 500, StartDate: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := svc.RegisterPayment(ctx, loan.ID, PaymentRequest{PaymentDate: "2025-02-01"})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if first.RemainingBalance != 1500 {
		t.Fatalf("expected 1500 remaining, got %v", first.RemainingBalance)
	}
	second, err := svc.RegisterPayment(ctx, loan.ID, PaymentRequest{})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if second.PaymentDate != "2025-03-05" || second.RemainingBalance != 0 {
		t.Fatalf("unexpected second payment: %+v", second)
	}
	if _, err := svc.RegisterPayment(ctx, loan.ID, PaymentRequest{}); !errors.Is(err, ErrLoanSettled) {
		t.Fatalf("expected ErrLoanSettled, got %v", err)
	}

	summary, err := svc.Get(ctx, loan.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !summary.IsPaidOff || summary.PaymentsMade != 2 || summary.ProgressPercent != 100 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.TotalInterestPaid != 1000 || summary.TotalPaid != 4000 {
		t.Fatalf("unexpected totals: %+v", summary)
	}

	pdf, err := RenderReceiptPDF(summary, second)
	if err != nil || string(pdf[:5]) != "%PDF-" {
		t.Fatalf("receipt pdf: %v", err)
	}

	if err := svc.Delete(ctx, loan.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if payments, _ := svc.Payments(ctx, loan.ID); len(payments) != 0 {
		t.Fatalf("expected payments removed, got %d", len(payments))
	}
}

func TestCreateRejectsBadTerms(t *testing.T) {
	svc := NewService(store.NewMemory())
	_, err := svc.Create(context.Background(), Loan{
		Name: "X", Lender: "Y", InitialAmount: 1000,
		MonthlyPaymentAmount: 100, MonthlyInterestAmount: 100, StartDate: "2025-01-01",
	})
	verr, ok := validate.AsError(err)
	if !ok || verr.Issues[0].Field != "terms" {
		t.Fatalf("expected terms validation error, got %v", err)
	}
}

func TestRegisterPaymentRejectsEarlierDate(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	loan, err := svc.Create(ctx, Loan{
		Name: "Furgoneta", Lender: "Popular", InitialAmount: 10000,
		MonthlyPaymentAmount: 2000, MonthlyInterestAmount: 500, StartDate: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.RegisterPayment(ctx, loan.ID, PaymentRequest{PaymentDate: "2025-03-01"}); err != nil {
		t.Fatalf("march payment: %v", err)
	}
	_, err = svc.RegisterPayment(ctx, loan.ID, PaymentRequest{PaymentDate: "2025-02-01"})
	verr, ok := validate.AsError(err)
	if !ok || verr.Issues[0].Field != "paymentDate" {
		t.Fatalf("expected paymentDate validation error, got %v", err)
	}

	sameDay, err := svc.RegisterPayment(ctx, loan.ID, PaymentRequest{PaymentDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("same-day payment: %v", err)
	}
	if sameDay.RemainingBalance != 7000 {
		t.Fatalf("expected 7000 remaining, got %v", sameDay.RemainingBalance)
	}

	summary, err := svc.Get(ctx, loan.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if summary.PaymentsMade != 2 || summary.CurrentBalance != 7000 || summary.TotalPrincipalPaid != 3000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
