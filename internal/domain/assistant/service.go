// Package assistant turns model replies into data the rest of the application can trust:
// chat answers, payslip explanations, bank comment suggestions and documents read into
// report lines or subagent conduces.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"gdp/internal/domain/ledger"
	"gdp/internal/domain/payroll"
	"gdp/internal/domain/reports"
	"gdp/internal/domain/subagents"
	"gdp/internal/platform/ai"
	"gdp/internal/platform/validate"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

var (
	imageTypes   = []string{"image/jpeg", "image/png", "image/webp"}
	conduceTypes = append(append([]string{}, imageTypes...), "application/pdf")
)

// Automatic payroll lines the model sometimes copies from the source document.
var automaticRemarks = map[string]bool{
	"NOMINA":           true,
	"NOMINA SUBAGENTE": true,
}

type Service struct {
	gen     ai.Generator
	sources []string
}

func NewService(gen ai.Generator, incomeSources []string) *Service {
	return &Service{gen: gen, sources: incomeSources}
}

func (s *Service) Chat(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		var issues validate.Issues
		issues.Add("question", "is required")
		return "", issues.Err()
	}
	return s.gen.SuggestText(ctx, question, chatOptions)
}

func (s *Service) ExplainPayslip(ctx context.Context, p payroll.Payslip) (string, error) {
	return s.gen.SuggestText(ctx, payslipPrompt(p), explainOptions)
}

func (s *Service) SuggestBankComment(ctx context.Context, description string, debit, credit *float64) (string, error) {
	var issues validate.Issues
	if strings.TrimSpace(description) == "" {
		issues.Add("description", "is required")
	}
	if (debit == nil || *debit <= 0) && (credit == nil || *credit <= 0) {
		issues.Add("amount", "debit or credit must be greater than 0")
	}
	if err := issues.Err(); err != nil {
		return "", err
	}
	text, err := s.gen.SuggestText(ctx, commentPrompt(description, debit, credit), commentOptions)
	if err != nil {
		return "", err
	}
	return strings.Trim(text, "\" "), nil
}

// ExtractFinancialReport reads a monthly report image. Automatic payroll lines and
// unknown income sources are dropped, as is any entry whose fields have the wrong type.
func (s *Service) ExtractFinancialReport(ctx context.Context, data []byte, mimeType string) (reports.Extracted, error) {
	if !accepts(imageTypes, mimeType) {
		return reports.Extracted{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, mimeType)
	}
	raw, err := s.gen.ExtractStructuredData(ctx, data, mimeType, reportInstructions(s.sources), reportTemperature)
	if err != nil {
		return reports.Extracted{}, err
	}
	var reply struct {
		Expenses []json.RawMessage `json:"expenses"`
		Incomes  []json.RawMessage `json:"incomes"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return reports.Extracted{}, ai.ErrMalformed
	}

	out := reports.Extracted{Expenses: []ledger.ExpenseItem{}, Incomes: []ledger.IncomeItem{}}
	for _, item := range reply.Expenses {
		var e struct {
			Remark *string  `json:"remark"`
			Amount *float64 `json:"amount"`
		}
		if json.Unmarshal(item, &e) != nil || e.Remark == nil || e.Amount == nil {
			continue
		}
		remark := strings.TrimSpace(*e.Remark)
		if remark == "" || automaticRemarks[strings.ToUpper(remark)] {
			continue
		}
		out.Expenses = append(out.Expenses, ledger.ExpenseItem{Remark: remark, Amount: *e.Amount, Category: ledger.CategoryManual})
	}
	for _, item := range reply.Incomes {
		var in struct {
			Source *string  `json:"source"`
			Amount *float64 `json:"amount"`
		}
		if json.Unmarshal(item, &in) != nil || in.Source == nil || in.Amount == nil {
			continue
		}
		if accepts(s.sources, *in.Source) {
			out.Incomes = append(out.Incomes, ledger.IncomeItem{Source: *in.Source, Amount: *in.Amount})
		}
	}
	return out, nil
}

// ExtractConduces reads a subagent's conduce table. Rows without a date are dropped;
// non-numeric cells are left empty.
func (s *Service) ExtractConduces(ctx context.Context, data []byte, mimeType string) ([]subagents.ImportRow, error) {
	if !accepts(conduceTypes, mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, mimeType)
	}
	raw, err := s.gen.ExtractStructuredData(ctx, data, mimeType, conduceInstructions, conduceTemperature)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		var single map[string]any
		if json.Unmarshal(raw, &single) != nil {
			return nil, ai.ErrMalformed
		}
		return []subagents.ImportRow{}, nil
	}

	out := make([]subagents.ImportRow, 0, len(rows))
	for _, row := range rows {
		date, ok := row["fecha"]
		if !ok || date == nil {
			continue
		}
		r := subagents.ImportRow{
			Date:     fmt.Sprint(date),
			Weight:   number(row["peso"]),
			Declared: number(row["monto"]),
		}
		if n := number(row["paquetes"]); n != nil {
			packages := int(math.Round(*n))
			r.Packages = &packages
		}
		out = append(out, r)
	}
	return out, nil
}

func number(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func accepts(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
