package banking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/metrics"
	"gdp/internal/platform/money"
	"gdp/internal/platform/sheet"
	"gdp/internal/platform/store"
)

type Service struct {
	txs     *store.Collection[Transaction]
	metrics *metrics.Collector
}

func NewService(repo store.Repository, m *metrics.Collector) *Service {
	return &Service{
		txs:     store.NewCollection(repo, store.BankTransactions, func(t *Transaction) *string { return &t.ID }),
		metrics: m,
	}
}

// List returns transactions newest first, optionally within one YYYY-MM month.
func (s *Service) List(ctx context.Context, month string) ([]Transaction, error) {
	all, err := s.txs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all
	if month != "" {
		m, err := ledger.ParseMonth(month)
		if err != nil {
			return nil, err
		}
		out = make([]Transaction, 0, len(all))
		for _, t := range all {
			if m.Contains(t.Date) {
				out = append(out, t)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	t, err := s.txs.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Transaction{}, ErrNotFound
	}
	return t, err
}

func (s *Service) Create(ctx context.Context, t Transaction) (Transaction, error) {
	t, err := Check(t)
	if err != nil {
		return Transaction{}, err
	}
	t.ID = ""
	return s.txs.Create(ctx, t)
}

func (s *Service) Update(ctx context.Context, id string, t Transaction) (Transaction, error) {
	t, err := Check(t)
	if err != nil {
		return Transaction{}, err
	}
	t.ID = id
	saved, err := s.txs.Update(ctx, t)
	if errors.Is(err, store.ErrNotFound) {
		return Transaction{}, ErrNotFound
	}
	return saved, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.txs.Delete(ctx, id)
}

// ImportPaste parses pasted statement text and stores every well-formed block. Imported
// debits are saved without a category for later review.
func (s *Service) ImportPaste(ctx context.Context, text string) (ImportResult, error) {
	parsed, result := ParsePaste(text)
	for _, t := range parsed {
		if _, err := s.txs.Create(ctx, t); err != nil {
			return result, fmt.Errorf("save imported transaction: %w", err)
		}
		result.Success++
	}
	s.metrics.Add(metrics.ImportRecordsSaved, result.Success)
	s.metrics.Add(metrics.ImportRecordsSkipped, result.Skipped)
	return result, nil
}

type Totals struct {
	Credits    float64            `json:"credits"`
	Debits     float64            `json:"debits"`
	Net        float64            `json:"net"`
	ByCategory map[string]float64 `json:"byCategory"`
}

func Summarize(txs []Transaction) Totals {
	t := Totals{ByCategory: map[string]float64{}}
	for _, tx := range txs {
		switch {
		case positive(tx.Credit):
			t.Credits += *tx.Credit
		case positive(tx.Debit):
			t.Debits += *tx.Debit
			category := tx.Category
			if category == CategoryOther && tx.CustomCategory != "" {
				category = tx.CustomCategory
			}
			if category == "" {
				category = "Sin categoría"
			}
			t.ByCategory[category] = money.Round2(t.ByCategory[category] + *tx.Debit)
		}
	}
	t.Credits = money.Round2(t.Credits)
	t.Debits = money.Round2(t.Debits)
	t.Net = money.Sub(t.Credits, t.Debits)
	return t
}

// ExportXLSX writes the transactions and a per-category summary.
func ExportXLSX(txs []Transaction) ([]byte, error) {
	rows := make([][]any, 0, len(txs))
	for _, t := range txs {
		var debit, credit any = "", ""
		if positive(t.Debit) {
			debit = *t.Debit
		}
		if positive(t.Credit) {
			credit = *t.Credit
		}
		category := t.Category
		if category == CategoryOther {
			category = t.CustomCategory
		}
		rows = append(rows, []any{t.Date, t.ReferenceNumber, t.Description, t.Code, debit, credit, t.Balance, category, t.Comment})
	}

	totals := Summarize(txs)
	summary := [][]any{{"Créditos", totals.Credits}, {"Débitos", totals.Debits}, {"Neto", totals.Net}}
	categories := make([]string, 0, len(totals.ByCategory))
	for c := range totals.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		summary = append(summary, []any{c, totals.ByCategory[c]})
	}

	return sheet.Write(
		sheet.Table{
			Name:    "Transacciones",
			Headers: []string{"Fecha", "Referencia", "Descripción", "Código", "Débito", "Crédito", "Balance", "Categoría", "Comentario"},
			Rows:    rows,
			Widths:  []float64{12, 14, 40, 10, 14, 14, 14, 18, 40},
		},
		sheet.Table{Name: "Resumen", Headers: []string{"Concepto", "Monto"}, Rows: summary, Widths: []float64{30, 16}},
	)
}
