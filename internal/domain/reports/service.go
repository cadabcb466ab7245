package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/policy"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

// SubagentLedger reports what was paid to subagents in a month.
type SubagentLedger interface {
	MonthTotal(ctx context.Context, month ledger.Month) (float64, error)
	MonthPounds(ctx context.Context, month ledger.Month) (float64, error)
}

type Service struct {
	rules     policy.MonthlyReport
	entries   *store.Objects[Entry]
	subagents SubagentLedger
}

func NewService(rules policy.MonthlyReport, repo store.Repository, subagents SubagentLedger) *Service {
	return &Service{
		rules:     rules,
		entries:   store.NewObjects[Entry](repo, store.ManualReportEntries),
		subagents: subagents,
	}
}

func (s *Service) Rules() policy.MonthlyReport {
	return s.rules
}

func (s *Service) Monthly(ctx context.Context, month string) (Report, error) {
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return Report{}, err
	}
	all, err := s.entries.All(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load report entries: %w", err)
	}
	subTotal, err := s.subagents.MonthTotal(ctx, m)
	if err != nil {
		return Report{}, fmt.Errorf("load subagent payments: %w", err)
	}
	pounds, err := s.yearPounds(ctx, all, m.Year)
	if err != nil {
		return Report{}, err
	}
	return buildReport(s.rules, m, all[m.Key()], subTotal, pounds[m.Month-1].Pounds), nil
}

// Save replaces the month's manual expenses and incomes. Automatic lines are ignored,
// zero incomes are dropped and income sources must be the configured ones.
func (s *Service) Save(ctx context.Context, month string, entry Entry) (Report, error) {
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return Report{}, err
	}
	var issues validate.Issues
	var manual []ledger.ExpenseItem
	for _, item := range entry.Expenses {
		if !item.IsAutomatic {
			item.Category = ledger.CategoryManual
			manual = append(manual, item)
		}
	}
	var incomes []ledger.IncomeItem
	for i, item := range entry.Incomes {
		if item.Amount == 0 {
			continue
		}
		if !knownSource(s.rules, strings.TrimSpace(item.Source)) {
			issues.Add(fmt.Sprintf("incomes[%d].source", i), "must be one of: "+strings.Join(s.rules.IncomeSources, ", "))
		}
		incomes = append(incomes, item)
	}
	checked := Entry{
		Expenses: ledger.CheckExpenses("expenses", "exp", manual, &issues),
		Incomes:  ledger.CheckIncomes("incomes", "inc", incomes, &issues),
	}
	if err := issues.Err(); err != nil {
		return Report{}, err
	}

	existing, _, err := s.entries.Get(ctx, m.Key())
	if err != nil {
		return Report{}, fmt.Errorf("load report entry: %w", err)
	}
	checked.ManualPounds = existing.ManualPounds
	if err := s.entries.Put(ctx, m.Key(), checked); err != nil {
		return Report{}, fmt.Errorf("save report entry: %w", err)
	}
	return s.Monthly(ctx, m.Key())
}

// History summarizes every month with manual data, newest first.
func (s *Service) History(ctx context.Context) ([]HistoryItem, error) {
	all, err := s.entries.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load report entries: %w", err)
	}
	out := make([]HistoryItem, 0, len(all))
	for key, entry := range all {
		if !entry.hasManualData() {
			continue
		}
		m, err := ledger.ParseMonth(key)
		if err != nil {
			continue
		}
		subTotal, err := s.subagents.MonthTotal(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("load subagent payments: %w", err)
		}
		out = append(out, historyItem(s.rules, m, entry, subTotal))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

// MonthPounds is one row of the yearly pounds table. Manual values override the weight
// derived from subagent payments.
type MonthPounds struct {
	Month  string   `json:"month"`
	Pounds *float64 `json:"pounds"`
	Manual bool     `json:"manual"`
}

func (s *Service) YearPounds(ctx context.Context, year int) ([]MonthPounds, error) {
	all, err := s.entries.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load report entries: %w", err)
	}
	return s.yearPounds(ctx, all, year)
}

// SaveYearPounds stores the manual pounds table for year. Months left nil fall back to the
// derived weight.
func (s *Service) SaveYearPounds(ctx context.Context, year int, pounds map[string]*float64) ([]MonthPounds, error) {
	var issues validate.Issues
	for name, v := range pounds {
		if monthIndex(name) < 0 {
			issues.Add("pounds."+name, "is not a month name")
		} else if v != nil && *v < 0 {
			issues.Add("pounds."+name, "must be at least 0")
		}
	}
	if err := issues.Err(); err != nil {
		return nil, err
	}
	all, err := s.entries.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load report entries: %w", err)
	}
	key := canonicalPoundsKey(all, year)
	entry := all[key]
	entry.ManualPounds = pounds
	if err := s.entries.Put(ctx, key, entry); err != nil {
		return nil, fmt.Errorf("save pounds: %w", err)
	}
	all[key] = entry
	return s.yearPounds(ctx, all, year)
}

func (s *Service) yearPounds(ctx context.Context, all map[string]Entry, year int) ([]MonthPounds, error) {
	manual := all[canonicalPoundsKey(all, year)].ManualPounds
	out := make([]MonthPounds, 12)
	for i := range out {
		name := ledger.SpanishMonth(i + 1)
		out[i].Month = name
		if v, ok := manual[name]; ok && v != nil {
			value := *v
			out[i].Pounds = &value
			out[i].Manual = true
			continue
		}
		derived, err := s.subagents.MonthPounds(ctx, ledger.Month{Year: year, Month: i + 1})
		if err != nil {
			return nil, fmt.Errorf("load subagent pounds: %w", err)
		}
		if derived > 0 {
			out[i].Pounds = &derived
		}
	}
	return out, nil
}

// canonicalPoundsKey is the first month of year whose entry carries a pounds table,
// January when none does.
func canonicalPoundsKey(all map[string]Entry, year int) string {
	for month := 1; month <= 12; month++ {
		key := ledger.Month{Year: year, Month: month}.Key()
		if all[key].ManualPounds != nil {
			return key
		}
	}
	return ledger.Month{Year: year, Month: 1}.Key()
}

func monthIndex(name string) int {
	for i := 1; i <= 12; i++ {
		if ledger.SpanishMonth(i) == name {
			return i - 1
		}
	}
	return -1
}

// Extracted is a financial report read from an image, already filtered to manual
// expenses and known income sources.
type Extracted struct {
	Expenses []ledger.ExpenseItem
	Incomes  []ledger.IncomeItem
}

// ImportExtracted replaces the month's manual lines with extracted ones.
func (s *Service) ImportExtracted(ctx context.Context, month string, data Extracted) (Report, error) {
	entry := Entry{Incomes: []ledger.IncomeItem{}}
	for _, item := range data.Expenses {
		item.ID = ledger.NewItemID("img-exp")
		item.IsAutomatic = false
		entry.Expenses = append(entry.Expenses, item)
	}
	for _, source := range s.rules.IncomeSources {
		for _, item := range data.Incomes {
			if item.Source == source {
				item.ID = ledger.NewItemID("img-inc")
				entry.Incomes = append(entry.Incomes, item)
				break
			}
		}
	}
	return s.Save(ctx, month, entry)
}
