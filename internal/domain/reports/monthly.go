// Package reports builds the GDP monthly report: manual income and expense entries, the
// automatic subagent expense, and the split of the month's profit between the partners.
package reports

import (
	"gdp/internal/domain/ledger"
	"gdp/internal/platform/money"
	"gdp/internal/platform/policy"
)

const autoSubagentExpenseID = "auto-subagentes"

// Entry is what is stored per YYYY-MM. ManualPounds holds the yearly pounds table, keyed
// by Spanish month name, on one canonical entry per year.
type Entry struct {
	Expenses     []ledger.ExpenseItem `json:"expenses"`
	Incomes      []ledger.IncomeItem  `json:"incomes"`
	ManualPounds map[string]*float64  `json:"manualPoundsForSelectedYear,omitempty"`
}

func (e Entry) hasManualData() bool {
	for _, item := range e.Expenses {
		if !item.IsAutomatic {
			return true
		}
	}
	return len(e.Incomes) > 0
}

type Share struct {
	Name   string  `json:"name"`
	Share  float64 `json:"share"`
	Amount float64 `json:"amount"`
}

type Summary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Profit       float64 `json:"profit"`
	Shares       []Share `json:"shares"`
}

// Distribute totals the month and splits the profit by the partners' shares. Only the
// configured income sources count as income; the subagent total is an expense on top of
// the manual ones.
func Distribute(rules policy.MonthlyReport, incomes []ledger.IncomeItem, subagentTotal float64, manual []ledger.ExpenseItem) Summary {
	var counted []ledger.IncomeItem
	for _, item := range incomes {
		if knownSource(rules, item.Source) {
			counted = append(counted, item)
		}
	}
	var manualOnly []ledger.ExpenseItem
	for _, item := range manual {
		if !item.IsAutomatic {
			manualOnly = append(manualOnly, item)
		}
	}
	s := Summary{
		TotalIncome:  ledger.TotalIncomes(counted),
		TotalExpense: subagentTotal + ledger.TotalExpenses(manualOnly),
	}
	s.Profit = s.TotalIncome - s.TotalExpense
	for _, party := range rules.Parties {
		s.Shares = append(s.Shares, Share{Name: party.Name, Share: party.Share, Amount: s.Profit * party.Share})
	}
	return s
}

func knownSource(rules policy.MonthlyReport, source string) bool {
	for _, known := range rules.IncomeSources {
		if known == source {
			return true
		}
	}
	return false
}

// Report is the month as shown and exported.
type Report struct {
	Month           string               `json:"month"`
	Label           string               `json:"label"`
	OperationalName string               `json:"operationalName"`
	Expenses        []ledger.ExpenseItem `json:"expenses"`
	Incomes         []ledger.IncomeItem  `json:"incomes"`
	SubagentTotal   float64              `json:"subagentTotal"`
	Pounds          *float64             `json:"pounds,omitempty"`
	Summary
}

func buildReport(rules policy.MonthlyReport, m ledger.Month, entry Entry, subagentTotal float64, pounds *float64) Report {
	expenses := make([]ledger.ExpenseItem, 0, len(entry.Expenses)+1)
	if subagentTotal > 0 {
		expenses = append(expenses, ledger.ExpenseItem{
			ID:          autoSubagentExpenseID,
			Remark:      "NOMINA Subagentes",
			Amount:      subagentTotal,
			IsAutomatic: true,
			Category:    ledger.CategorySubagents,
		})
	}
	for _, item := range entry.Expenses {
		if !item.IsAutomatic {
			expenses = append(expenses, item)
		}
	}
	incomes := entry.Incomes
	if incomes == nil {
		incomes = []ledger.IncomeItem{}
	}
	return Report{
		Month:           m.Key(),
		Label:           m.Label(),
		OperationalName: rules.OperationalName,
		Expenses:        expenses,
		Incomes:         incomes,
		SubagentTotal:   subagentTotal,
		Pounds:          pounds,
		Summary:         Distribute(rules, entry.Incomes, subagentTotal, entry.Expenses),
	}
}

// HistoryItem summarizes one month that has manual data.
type HistoryItem struct {
	Month    string  `json:"month"`
	Period   string  `json:"period"`
	Incomes  float64 `json:"incomes"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

func historyItem(rules policy.MonthlyReport, m ledger.Month, entry Entry, subagentTotal float64) HistoryItem {
	s := Distribute(rules, entry.Incomes, subagentTotal, entry.Expenses)
	return HistoryItem{
		Month:    m.Key(),
		Period:   m.Label(),
		Incomes:  money.Round2(s.TotalIncome),
		Expenses: money.Round2(s.TotalExpense),
		Profit:   money.Round2(s.Profit),
	}
}
