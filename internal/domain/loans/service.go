package loans

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gdp/internal/platform/money"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

type PaymentRequest struct {
	PaymentDate string `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	Notes       string `json:"notes"`
}

type Service struct {
	loans    *store.Collection[Loan]
	payments *store.Collection[Payment]
	now      func() time.Time
}

func NewService(repo store.Repository) *Service {
	return &Service{
		loans:    store.NewCollection(repo, store.Loans, func(l *Loan) *string { return &l.ID }),
		payments: store.NewCollection(repo, store.LoanPayments, func(p *Payment) *string { return &p.ID }),
		now:      time.Now,
	}
}

func checkLoan(l Loan) error {
	issues := validate.Struct(l)
	if err := ValidateLoan(l.InitialAmount, l.MonthlyPaymentAmount, l.MonthlyInterestAmount); err != nil {
		_, reason, _ := strings.Cut(err.Error(), ": ")
		issues.Add("terms", reason)
	}
	return issues.Err()
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	loans, err := s.loans.All(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, err
	}
	byLoan := make(map[string][]Payment)
	for _, p := range payments {
		byLoan[p.LoanID] = append(byLoan[p.LoanID], p)
	}
	out := make([]Summary, 0, len(loans))
	for _, l := range loans {
		out = append(out, Summarize(l, byLoan[l.ID]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Summary, error) {
	l, err := s.loans.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Summary{}, ErrNotFound
	}
	if err != nil {
		return Summary{}, err
	}
	payments, err := s.Payments(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(l, payments), nil
}

func (s *Service) Create(ctx context.Context, l Loan) (Loan, error) {
	if err := checkLoan(l); err != nil {
		return Loan{}, err
	}
	l.ID = ""
	return s.loans.Create(ctx, l)
}

// Update changes the loan terms. Registered payments keep the balances they were
// recorded with.
func (s *Service) Update(ctx context.Context, id string, l Loan) (Loan, error) {
	if err := checkLoan(l); err != nil {
		return Loan{}, err
	}
	l.ID = id
	saved, err := s.loans.Update(ctx, l)
	if errors.Is(err, store.ErrNotFound) {
		return Loan{}, ErrNotFound
	}
	return saved, err
}

// Delete removes the loan and its payment history.
func (s *Service) Delete(ctx context.Context, id string) error {
	payments, err := s.Payments(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if err := s.payments.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete loan payment %s: %w", p.ID, err)
		}
	}
	return s.loans.Delete(ctx, id)
}

// Payments returns the loan's payments oldest first.
func (s *Service) Payments(ctx context.Context, loanID string) ([]Payment, error) {
	all, err := s.payments.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Payment, 0)
	for _, p := range all {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	// Same-day payments chain by balance: a later payment never leaves more owed.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PaymentDate != out[j].PaymentDate {
			return out[i].PaymentDate < out[j].PaymentDate
		}
		return out[i].RemainingBalance > out[j].RemainingBalance
	})
	return out, nil
}

// RegisterPayment applies one monthly payment to the current balance.
func (s *Service) RegisterPayment(ctx context.Context, loanID string, req PaymentRequest) (Payment, error) {
	if err := validate.Struct(req).Err(); err != nil {
		return Payment{}, err
	}
	summary, err := s.Get(ctx, loanID)
	if err != nil {
		return Payment{}, err
	}
	step, err := PaymentStep(summary.CurrentBalance, summary.MonthlyPaymentAmount, summary.MonthlyInterestAmount)
	if err != nil {
		return Payment{}, err
	}
	date := req.PaymentDate
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	if date < summary.LastPaymentDate {
		var issues validate.Issues
		issues.Add("paymentDate", "must not be before the last payment ("+summary.LastPaymentDate+")")
		return Payment{}, issues.Err()
	}
	return s.payments.Create(ctx, Payment{
		LoanID:           loanID,
		PaymentDate:      date,
		AmountPaid:       money.Round2(step.AmountPaid),
		PrincipalPaid:    money.Round2(step.PrincipalPaid),
		InterestPaid:     money.Round2(step.InterestPaid),
		RemainingBalance: money.Round2(step.NewBalance),
		Notes:            strings.TrimSpace(req.Notes),
	})
}

func (s *Service) Payment(ctx context.Context, loanID, paymentID string) (Payment, error) {
	p, err := s.payments.Get(ctx, paymentID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.LoanID != loanID) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

// Summarize folds payments (oldest first) into the loan's current position.
func Summarize(l Loan, payments []Payment) Summary {
	s := Summary{Loan: l, CurrentBalance: l.InitialAmount}
	for _, p := range payments {
		s.TotalPaid += p.AmountPaid
		s.TotalInterestPaid += p.InterestPaid
		s.TotalPrincipalPaid += p.PrincipalPaid
		s.CurrentBalance = p.RemainingBalance
		s.LastPaymentDate = p.PaymentDate
		s.PaymentsMade++
	}
	s.TotalPaid = money.Round2(s.TotalPaid)
	s.TotalInterestPaid = money.Round2(s.TotalInterestPaid)
	s.TotalPrincipalPaid = money.Round2(s.TotalPrincipalPaid)
	if l.InitialAmount > 0 {
		s.ProgressPercent = money.Round2((l.InitialAmount - s.CurrentBalance) / l.InitialAmount * 100)
	}
	s.IsPaidOff = s.CurrentBalance <= 0
	return s
}
