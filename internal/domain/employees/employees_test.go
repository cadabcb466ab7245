package employees

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gdp/internal/domain/payroll"
	cryptoutil "gdp/internal/platform/crypto"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func laura() Employee {
	return Employee{
		Cedula:            "402-1320426-2",
		Name:              "Laura Michelle Cruceta Gil",
		Email:             "laura@example.com",
		Department:        "Operaciones",
		Role:              "Auxiliar",
		Salary:            16000,
		BankAccountNumber: "9606364407",
		BankName:          "Banreservas",
		HireDate:          "2023-03-01",
	}
}

func TestCreateUsesCedulaAndEncryptsAccount(t *testing.T) {
	repo := store.NewMemory()
	crypto, err := cryptoutil.New(testKey)
	if err != nil {
		t.Fatalf("crypto: %v", err)
	}
	svc := NewService(repo, crypto)
	ctx := context.Background()

	created, err := svc.Create(ctx, laura())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "402-1320426-2" {
		t.Fatalf("expected cédula id, got %s", created.ID)
	}

	raw, err := repo.Get(ctx, store.Employees, created.ID)
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if bytes.Contains(raw, []byte("9606364407")) {
		t.Fatal("bank account stored in clear text")
	}
	var stored map[string]any
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := stored["bankAccountNumber"]; ok {
		t.Fatal("plain bank account field must not be stored")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", got, created)
	}

	if _, err := svc.Create(ctx, laura()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	crypto, _ := cryptoutil.New("")
	svc := NewService(store.NewMemory(), crypto)
	_, err := svc.Create(context.Background(), Employee{Salary: -1, Email: "nope", HireDate: "01/02/2024"})
	verr, ok := validate.AsError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	var fields []string
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	joined := strings.Join(fields, ",")
	for _, f := range []string{"cedula", "name", "salary", "email", "hireDate"} {
		if !strings.Contains(joined, f) {
			t.Fatalf("expected issue for %s, got %s", f, joined)
		}
	}
}

func TestUpdateAndPayrollEmployee(t *testing.T) {
	crypto, _ := cryptoutil.New("")
	svc := NewService(store.NewMemory(), crypto)
	ctx := context.Background()
	if _, err := svc.Create(ctx, laura()); err != nil {
		t.Fatalf("create: %v", err)
	}

	changed := laura()
	changed.Salary = 18000
	if _, err := svc.Update(ctx, "402-1320426-2", changed); err != nil {
		t.Fatalf("update: %v", err)
	}
	emp, err := svc.PayrollEmployee(ctx, "402-1320426-2")
	if err != nil {
		t.Fatalf("payroll employee: %v", err)
	}
	if emp.Salary != 18000 || emp.Email != "laura@example.com" {
		t.Fatalf("unexpected payroll view %+v", emp)
	}

	if _, err := svc.Update(ctx, "missing", changed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.PayrollEmployee(ctx, "missing"); !errors.Is(err, payroll.ErrEmployeeNotFound) {
		t.Fatalf("expected payroll.ErrEmployeeNotFound, got %v", err)
	}
}
