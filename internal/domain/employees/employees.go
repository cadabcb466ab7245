package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gdp/internal/domain/payroll"
	cryptoutil "gdp/internal/platform/crypto"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

var (
	ErrNotFound  = errors.New("employee not found")
	ErrDuplicate = errors.New("an employee with this cédula already exists")
)

type Employee struct {
	ID                string  `json:"id"`
	Cedula            string  `json:"cedula" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	Email             string  `json:"email" validate:"omitempty,email"`
	Department        string  `json:"department"`
	Role              string  `json:"role"`
	Salary            float64 `json:"salary" validate:"gte=0"`
	BankAccountNumber string  `json:"bankAccountNumber"`
	BankName          string  `json:"bankName"`
	HireDate          string  `json:"hireDate" validate:"omitempty,datetime=2006-01-02"`
}

func (e Employee) Validate() error {
	return validate.Struct(e).Err()
}

// record is the stored shape: the bank account only exists encrypted.
type record struct {
	ID             string  `json:"id"`
	Cedula         string  `json:"cedula"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Department     string  `json:"department"`
	Role           string  `json:"role"`
	Salary         float64 `json:"salary"`
	BankAccountEnc []byte  `json:"bankAccountEnc,omitempty"`
	BankName       string  `json:"bankName"`
	HireDate       string  `json:"hireDate"`
}

type Service struct {
	records *store.Collection[record]
	crypto  *cryptoutil.Service
}

func NewService(repo store.Repository, crypto *cryptoutil.Service) *Service {
	return &Service{
		records: store.NewCollection(repo, store.Employees, func(r *record) *string { return &r.ID }),
		crypto:  crypto,
	}
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(records))
	for _, r := range records {
		emp, err := s.fromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	r, err := s.records.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return s.fromRecord(r)
}

// Create uses the cédula as the employee id.
func (s *Service) Create(ctx context.Context, emp Employee) (Employee, error) {
	emp = normalize(emp)
	emp.ID = emp.Cedula
	if err := emp.Validate(); err != nil {
		return Employee{}, err
	}
	r, err := s.toRecord(emp)
	if err != nil {
		return Employee{}, err
	}
	if _, err := s.records.Create(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return Employee{}, ErrDuplicate
		}
		return Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return emp, nil
}

// Update replaces every field but the id.
func (s *Service) Update(ctx context.Context, id string, emp Employee) (Employee, error) {
	emp = normalize(emp)
	emp.ID = id
	if emp.Cedula == "" {
		emp.Cedula = id
	}
	if err := emp.Validate(); err != nil {
		return Employee{}, err
	}
	r, err := s.toRecord(emp)
	if err != nil {
		return Employee{}, err
	}
	if _, err := s.records.Update(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return emp, nil
}

func (s *Service) PayrollEmployee(ctx context.Context, id string) (payroll.Employee, error) {
	emp, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return payroll.Employee{}, err
	}
	return payroll.Employee{ID: emp.ID, Cedula: emp.Cedula, Name: emp.Name, Email: emp.Email, Salary: emp.Salary}, nil
}

func (s *Service) toRecord(emp Employee) (record, error) {
	enc, err := s.crypto.EncryptString(emp.BankAccountNumber)
	if err != nil {
		return record{}, fmt.Errorf("encrypt bank account: %w", err)
	}
	return record{
		ID:             emp.ID,
		Cedula:         emp.Cedula,
		Name:           emp.Name,
		Email:          emp.Email,
		Department:     emp.Department,
		Role:           emp.Role,
		Salary:         emp.Salary,
		BankAccountEnc: enc,
		BankName:       emp.BankName,
		HireDate:       emp.HireDate,
	}, nil
}

func (s *Service) fromRecord(r record) (Employee, error) {
	account, err := s.crypto.DecryptString(r.BankAccountEnc)
	if err != nil {
		return Employee{}, fmt.Errorf("decrypt bank account of %s: %w", r.ID, err)
	}
	return Employee{
		ID:                r.ID,
		Cedula:            r.Cedula,
		Name:              r.Name,
		Email:             r.Email,
		Department:        r.Department,
		Role:              r.Role,
		Salary:            r.Salary,
		BankAccountNumber: account,
		BankName:          r.BankName,
		HireDate:          r.HireDate,
	}, nil
}

func normalize(emp Employee) Employee {
	emp.Cedula = strings.TrimSpace(emp.Cedula)
	emp.Name = strings.TrimSpace(emp.Name)
	emp.Email = strings.TrimSpace(emp.Email)
	emp.BankAccountNumber = strings.TrimSpace(emp.BankAccountNumber)
	return emp
}
