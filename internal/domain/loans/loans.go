// Package loans tracks company loans with a fixed monthly payment and fixed monthly interest.
package loans

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotFound    = errors.New("loan not found")
	ErrInvalidLoan = errors.New("invalid loan terms")
	ErrLoanSettled = errors.New("loan is already paid off")
)

type Loan struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name" validate:"required"`
	Lender                string  `json:"lender" validate:"required"`
	InitialAmount         float64 `json:"initialAmount"`
	MonthlyPaymentAmount  float64 `json:"monthlyPaymentAmount"`
	MonthlyInterestAmount float64 `json:"monthlyInterestAmount" validate:"gte=0"`
	StartDate             string  `json:"startDate" validate:"required,datetime=2006-01-02"`
}

type Payment struct {
	ID               string  `json:"id"`
	LoanID           string  `json:"loanId"`
	PaymentDate      string  `json:"paymentDate"`
	AmountPaid       float64 `json:"amountPaid"`
	PrincipalPaid    float64 `json:"principalPaid"`
	InterestPaid     float64 `json:"interestPaid"`
	RemainingBalance float64 `json:"remainingBalance"`
	Notes            string  `json:"notes,omitempty"`
}

// Step is one month of amortization.
type Step struct {
	AmountPaid    float64
	InterestPaid  float64
	PrincipalPaid float64
	NewBalance    float64
}

// ValidateLoan checks the loan terms: a positive principal and payment, and interest
// strictly below the payment so every payment reduces the balance.
func ValidateLoan(initial, payment, interest float64) error {
	switch {
	case initial <= 0:
		return fmt.Errorf("%w: initial amount must be greater than zero", ErrInvalidLoan)
	case payment <= 0:
		return fmt.Errorf("%w: monthly payment must be greater than zero", ErrInvalidLoan)
	case interest < 0:
		return fmt.Errorf("%w: monthly interest must not be negative", ErrInvalidLoan)
	case interest >= payment:
		return fmt.Errorf("%w: monthly interest must be lower than the monthly payment", ErrInvalidLoan)
	}
	return nil
}

// PaymentStep applies one fixed payment to balance.
func PaymentStep(balance, payment, interest float64) (Step, error) {
	if balance <= 0 {
		return Step{}, ErrLoanSettled
	}
	interestPaid := math.Min(balance, interest)
	principal := payment - interestPaid
	return Step{
		AmountPaid:    payment,
		InterestPaid:  interestPaid,
		PrincipalPaid: principal,
		NewBalance:    math.Max(0, balance-principal),
	}, nil
}

// Summary is a loan with its running position.
type Summary struct {
	Loan
	CurrentBalance     float64 `json:"currentBalance"`
	TotalPaid          float64 `json:"totalPaid"`
	TotalInterestPaid  float64 `json:"totalInterestPaid"`
	TotalPrincipalPaid float64 `json:"totalPrincipalPaid"`
	PaymentsMade       int     `json:"paymentsMade"`
	ProgressPercent    float64 `json:"progressPercent"`
	LastPaymentDate    string  `json:"lastPaymentDate,omitempty"`
	IsPaidOff          bool    `json:"isPaidOff"`
}
