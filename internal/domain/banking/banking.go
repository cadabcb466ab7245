// Package banking records the company's bank account movements with a justification for
// each one.
package banking

import (
	"errors"
	"strings"

	"gdp/internal/platform/validate"
)

var ErrNotFound = errors.New("bank transaction not found")

const (
	CategorySubagentPayment = "Pago subagente"
	CategoryPayroll         = "Nómina"
	CategoryTaxes           = "Impuestos"
	CategoryOffice          = "Pago oficina"
	CategoryInternet        = "Internet"
	CategoryPower           = "Luz"
	CategoryFleet           = "Flota"
	CategoryConduce         = "Pago conduce"
	CategoryOther           = "Otro"
)

var Categories = []string{
	CategorySubagentPayment, CategoryPayroll, CategoryTaxes, CategoryOffice,
	CategoryInternet, CategoryPower, CategoryFleet, CategoryConduce, CategoryOther,
}

type Transaction struct {
	ID              string   `json:"id"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	ReferenceNumber string   `json:"referenceNumber"`
	Description     string   `json:"description" validate:"required"`
	Code            string   `json:"code"`
	Debit           *float64 `json:"debit"`
	Credit          *float64 `json:"credit"`
	Balance         float64  `json:"balance"`
	Comment         string   `json:"comment"`
	IsDebit         bool     `json:"isDebit"`
	Category        string   `json:"category,omitempty"`
	CustomCategory  string   `json:"customCategory,omitempty"`
}

func positive(p *float64) bool { return p != nil && *p > 0 }

// Amount is the signed movement: negative for debits.
func (t Transaction) Amount() float64 {
	if positive(t.Debit) {
		return -*t.Debit
	}
	if positive(t.Credit) {
		return *t.Credit
	}
	return 0
}

// Check validates t and normalizes the debit/credit pair. Exactly one side carries an
// amount; debits need a category and "Otro" needs a custom one.
func Check(t Transaction) (Transaction, error) {
	issues := validate.Struct(t)
	debit, credit := positive(t.Debit), positive(t.Credit)
	switch {
	case !debit && !credit:
		issues.Add("debit", "a debit or credit amount is required")
	case debit && credit:
		issues.Add("credit", "only one of debit or credit may be set")
	}
	issues.Required("comment", t.Comment)
	if debit {
		if t.Category == "" {
			issues.Add("category", "is required for debits")
		} else if !knownCategory(t.Category) {
			issues.Add("category", "must be one of: "+strings.Join(Categories, ", "))
		}
	}
	if t.Category == CategoryOther {
		issues.Required("customCategory", t.CustomCategory)
	}
	if err := issues.Err(); err != nil {
		return Transaction{}, err
	}

	t.Comment = strings.TrimSpace(t.Comment)
	t.IsDebit = debit
	if debit {
		t.Credit = nil
	} else {
		t.Debit = nil
	}
	if t.Category != CategoryOther {
		t.CustomCategory = ""
	}
	return t, nil
}

func knownCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}
