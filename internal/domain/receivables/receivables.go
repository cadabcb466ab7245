// Package receivables tracks money owed to the company by its debtors.
package receivables

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"gdp/internal/platform/money"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

var (
	ErrDebtorNotFound     = errors.New("debtor not found")
	ErrReceivableNotFound = errors.New("receivable not found")
	ErrDebtorInUse        = errors.New("debtor has receivables")
)

type Debtor struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

func (d Debtor) Validate() error { return validate.Struct(d).Err() }

type Receivable struct {
	ID       string  `json:"id"`
	DebtorID string  `json:"debtorId" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	IsPaid   bool    `json:"isPaid"`
	Notes    string  `json:"notes,omitempty"`
}

func (r Receivable) Validate() error { return validate.Struct(r).Err() }

// Balance is the position of one debtor.
type Balance struct {
	Debtor      Debtor  `json:"debtor"`
	Outstanding float64 `json:"outstanding"`
	Paid        float64 `json:"paid"`
	OpenCount   int     `json:"openCount"`
}

type Service struct {
	debtors     *store.Collection[Debtor]
	receivables *store.Collection[Receivable]
}

func NewService(repo store.Repository) *Service {
	return &Service{
		debtors:     store.NewCollection(repo, store.Debtors, func(d *Debtor) *string { return &d.ID }),
		receivables: store.NewCollection(repo, store.Receivables, func(r *Receivable) *string { return &r.ID }),
	}
}

func (s *Service) Debtors(ctx context.Context) ([]Debtor, error) {
	return s.debtors.All(ctx)
}

func (s *Service) CreateDebtor(ctx context.Context, d Debtor) (Debtor, error) {
	d.ID = ""
	d.Name = strings.TrimSpace(d.Name)
	return s.debtors.Create(ctx, d)
}

func (s *Service) UpdateDebtor(ctx context.Context, id string, d Debtor) (Debtor, error) {
	d.ID = id
	d.Name = strings.TrimSpace(d.Name)
	saved, err := s.debtors.Update(ctx, d)
	if errors.Is(err, store.ErrNotFound) {
		return Debtor{}, ErrDebtorNotFound
	}
	return saved, err
}

// DeleteDebtor refuses to orphan receivables.
func (s *Service) DeleteDebtor(ctx context.Context, id string) error {
	list, err := s.List(ctx, id)
	if err != nil {
		return err
	}
	if len(list) > 0 {
		return ErrDebtorInUse
	}
	return s.debtors.Delete(ctx, id)
}

// List returns receivables oldest first, optionally for one debtor.
func (s *Service) List(ctx context.Context, debtorID string) ([]Receivable, error) {
	all, err := s.receivables.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Receivable, 0, len(all))
	for _, r := range all {
		if debtorID == "" || r.DebtorID == debtorID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Service) Create(ctx context.Context, r Receivable) (Receivable, error) {
	if err := s.checkDebtor(ctx, r.DebtorID); err != nil {
		return Receivable{}, err
	}
	r.ID = ""
	r.Amount = money.Round2(r.Amount)
	return s.receivables.Create(ctx, r)
}

func (s *Service) Update(ctx context.Context, id string, r Receivable) (Receivable, error) {
	if err := s.checkDebtor(ctx, r.DebtorID); err != nil {
		return Receivable{}, err
	}
	r.ID = id
	r.Amount = money.Round2(r.Amount)
	saved, err := s.receivables.Update(ctx, r)
	if errors.Is(err, store.ErrNotFound) {
		return Receivable{}, ErrReceivableNotFound
	}
	return saved, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.receivables.Delete(ctx, id)
}

// SetPaid flags the given receivables in one batch.
func (s *Service) SetPaid(ctx context.Context, ids []string, paid bool) error {
	patches := make([]store.Patch, 0, len(ids))
	for _, id := range ids {
		patches = append(patches, store.Patch{ID: id, Fields: map[string]json.RawMessage{"isPaid": store.Field(paid)}})
	}
	return s.receivables.Patch(ctx, patches)
}

// Balances returns the outstanding position of every debtor.
func (s *Service) Balances(ctx context.Context) ([]Balance, error) {
	debtors, err := s.debtors.All(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]Balance, 0, len(debtors))
	for _, d := range debtors {
		var open, paid []Receivable
		for _, r := range all {
			if r.DebtorID != d.ID {
				continue
			}
			if r.IsPaid {
				paid = append(paid, r)
			} else {
				open = append(open, r)
			}
		}
		amount := func(r Receivable) float64 { return r.Amount }
		out = append(out, Balance{
			Debtor:      d,
			Outstanding: money.Round2(money.Sum(open, amount)),
			Paid:        money.Round2(money.Sum(paid, amount)),
			OpenCount:   len(open),
		})
	}
	return out, nil
}

func (s *Service) checkDebtor(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.debtors.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		var issues validate.Issues
		issues.Add("debtorId", "unknown debtor")
		return issues.Err()
	}
	return err
}
