// Package ledger holds the line items and month keys shared by the monthly reports.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gdp/internal/platform/money"
	"gdp/internal/platform/validate"
)

const (
	CategoryManual    = "manual"
	CategorySubagents = "subagents"
	CategoryPayroll   = "payroll"
)

var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

type ExpenseItem struct {
	ID          string  `json:"id"`
	Remark      string  `json:"remark"`
	Amount      float64 `json:"amount"`
	IsAutomatic bool    `json:"isAutomatic,omitempty"`
	Category    string  `json:"category,omitempty"`
}

type IncomeItem struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
}

func TotalExpenses(items []ExpenseItem) float64 {
	return money.Sum(items, func(e ExpenseItem) float64 { return e.Amount })
}

func TotalIncomes(items []IncomeItem) float64 {
	return money.Sum(items, func(i IncomeItem) float64 { return i.Amount })
}

// CheckExpenses requires a remark and a non-zero amount on every item and fills
// missing ids and categories.
func CheckExpenses(field, idPrefix string, items []ExpenseItem, issues *validate.Issues) []ExpenseItem {
	out := make([]ExpenseItem, 0, len(items))
	for i, item := range items {
		item.Remark = strings.TrimSpace(item.Remark)
		if item.Remark == "" {
			issues.Add(fmt.Sprintf("%s[%d].remark", field, i), "is required")
		}
		if item.Amount == 0 {
			issues.Add(fmt.Sprintf("%s[%d].amount", field, i), "must not be zero")
		}
		if item.ID == "" {
			item.ID = NewItemID(idPrefix)
		}
		if item.Category == "" {
			item.Category = CategoryManual
		}
		out = append(out, item)
	}
	return out
}

func CheckIncomes(field, idPrefix string, items []IncomeItem, issues *validate.Issues) []IncomeItem {
	out := make([]IncomeItem, 0, len(items))
	for i, item := range items {
		item.Source = strings.TrimSpace(item.Source)
		if item.Source == "" {
			issues.Add(fmt.Sprintf("%s[%d].source", field, i), "is required")
		}
		if item.Amount == 0 {
			issues.Add(fmt.Sprintf("%s[%d].amount", field, i), "must not be zero")
		}
		if item.ID == "" {
			item.ID = NewItemID(idPrefix)
		}
		out = append(out, item)
	}
	return out
}

func NewItemID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// SpanishMonth returns the month name for 1..12, or "" otherwise.
func SpanishMonth(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return spanishMonths[month-1]
}

// Month is a calendar month, keyed as "YYYY-MM" in the object stores.
type Month struct {
	Year  int
	Month int
}

func ParseMonth(key string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(key))
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: int(t.Month())}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Label renders "Agosto 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", SpanishMonth(m.Month), m.Year)
}

// Contains reports whether an ISO date (YYYY-MM-DD or RFC3339) falls in the month.
func (m Month) Contains(date string) bool {
	return strings.HasPrefix(strings.TrimSpace(date), m.Key())
}
