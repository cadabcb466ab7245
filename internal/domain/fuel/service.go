package fuel

import (
	"context"
	"errors"
	"sort"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/money"
	"gdp/internal/platform/store"
)

type Service struct {
	entries *store.Collection[Entry]
}

func NewService(repo store.Repository) *Service {
	return &Service{entries: store.NewCollection(repo, store.FuelLogEntries, func(e *Entry) *string { return &e.ID })}
}

// List returns entries newest first, optionally limited to one YYYY-MM month.
func (s *Service) List(ctx context.Context, month string) ([]Entry, error) {
	all, err := s.entries.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all
	if month != "" {
		m, err := ledger.ParseMonth(month)
		if err != nil {
			return nil, err
		}
		out = make([]Entry, 0, len(all))
		for _, e := range all {
			if m.Contains(e.Date) {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	e, err := s.entries.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *Service) Create(ctx context.Context, e Entry) (Entry, error) {
	e, err := Normalize(e)
	if err != nil {
		return Entry{}, err
	}
	e.ID = ""
	return s.entries.Create(ctx, e)
}

func (s *Service) Update(ctx context.Context, id string, e Entry) (Entry, error) {
	e, err := Normalize(e)
	if err != nil {
		return Entry{}, err
	}
	e.ID = id
	saved, err := s.entries.Update(ctx, e)
	if errors.Is(err, store.ErrNotFound) {
		return Entry{}, ErrNotFound
	}
	return saved, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}

// MonthTotals aggregates a month of entries.
type MonthTotals struct {
	Month          string   `json:"month"`
	Label          string   `json:"label"`
	TotalKm        float64  `json:"totalKm"`
	TotalGallons   float64  `json:"totalGallons"`
	TotalCost      float64  `json:"totalCost"`
	AverageKmpg    *float64 `json:"averageKmpg,omitempty"`
	RefuelCount    int      `json:"refuelCount"`
	EntriesInMonth int      `json:"entriesInMonth"`
}

func Totals(month ledger.Month, entries []Entry) MonthTotals {
	t := MonthTotals{Month: month.Key(), Label: month.Label(), EntriesInMonth: len(entries)}
	t.TotalKm = money.Sum(entries, func(e Entry) float64 { return e.TotalKilometersThisLog })
	t.TotalGallons = money.Sum(entries, func(e Entry) float64 { return value(e.GallonsAdded) })
	t.TotalCost = money.Sum(entries, func(e Entry) float64 { return value(e.TotalFuelCost) })
	for _, e := range entries {
		if e.RefueledThisLog {
			t.RefuelCount++
		}
	}
	if t.TotalGallons > 0 {
		avg := money.Round2(t.TotalKm / t.TotalGallons)
		t.AverageKmpg = &avg
	}
	return t
}

// MonthReport returns the month's entries with their totals.
func (s *Service) MonthReport(ctx context.Context, month string) (MonthTotals, []Entry, error) {
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return MonthTotals{}, nil, err
	}
	entries, err := s.List(ctx, month)
	if err != nil {
		return MonthTotals{}, nil, err
	}
	return Totals(m, entries), entries, nil
}
