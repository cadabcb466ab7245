package receivables

import (
	"context"
	"errors"
	"testing"

	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

func TestBalancesAndMarkPaid(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	jamao, err := svc.CreateDebtor(ctx, Debtor{Name: " JAMAO "})
	if err != nil {
		t.Fatalf("create debtor: %v", err)
	}
	if jamao.Name != "JAMAO" {
		t.Fatalf("expected trimmed name, got %q", jamao.Name)
	}
	var ids []string
	for _, amount := range []float64{4028.77, 3233.79, 4337.95} {
		r, err := svc.Create(ctx, Receivable{DebtorID: jamao.ID, Date: "2025-06-05", Amount: amount})
		if err != nil {
			t.Fatalf("create receivable: %v", err)
		}
		ids = append(ids, r.ID)
	}
	if err := svc.SetPaid(ctx, ids[:2], true); err != nil {
		t.Fatalf("set paid: %v", err)
	}

	balances, err := svc.Balances(ctx)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected 1 balance, got %d", len(balances))
	}
	b := balances[0]
	if b.Outstanding != 4337.95 || b.Paid != 7262.56 || b.OpenCount != 1 {
		t.Fatalf("unexpected balance: %+v", b)
	}

	if err := svc.DeleteDebtor(ctx, jamao.ID); !errors.Is(err, ErrDebtorInUse) {
		t.Fatalf("expected ErrDebtorInUse, got %v", err)
	}
}

func TestCreateRejectsUnknownDebtor(t *testing.T) {
	svc := NewService(store.NewMemory())
	_, err := svc.Create(context.Background(), Receivable{DebtorID: "missing", Date: "2025-06-05", Amount: 10})
	verr, ok := validate.AsError(err)
	if !ok || verr.Issues[0].Field != "debtorId" {
		t.Fatalf("expected debtorId validation error, got %v", err)
	}
}

func TestCreateValidatesAmount(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()
	d, _ := svc.CreateDebtor(ctx, Debtor{Name: "JAMAO"})
	_, err := svc.Create(ctx, Receivable{DebtorID: d.ID, Date: "2025-06-05", Amount: 0})
	if _, ok := validate.AsError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}
