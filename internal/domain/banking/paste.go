package banking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gdp/internal/platform/money"
)

// linesPerTransaction is the shape of the bank portal's copy-paste export: date,
// reference, description, code, amount, balance.
const linesPerTransaction = 6

var (
	dmyDate        = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})$`)
	creditKeywords = []string{"credito", "crédito", "deposito", "depósito", "abono"}
)

// ImportResult reports a bulk import record by record.
type ImportResult struct {
	Success int      `json:"success"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ParsePaste splits pasted statement text into transactions. Blocks with a bad date,
// amount or balance are skipped with a message; an incomplete trailing block is skipped too.
func ParsePaste(text string) ([]Transaction, ImportResult) {
	result := ImportResult{Errors: []string{}}
	raw := strings.Split(strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil, result
	}

	var out []Transaction
	for i := 0; i < len(lines); i += linesPerTransaction {
		if i+linesPerTransaction > len(lines) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Bloque incompleto al final (líneas %d-%d). Se omitió 1 transacción.", i+1, len(lines)))
			result.Skipped++
			break
		}
		dateStr, ref, desc, code, amountStr, balanceStr :=
			lines[i], lines[i+1], lines[i+2], lines[i+3], lines[i+4], lines[i+5]

		date, ok := ParseDate(dateStr)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Línea %d: Fecha inválida '%s'.", i+1, dateStr))
			result.Skipped++
			continue
		}
		amount, ok := money.ParseAmount(amountStr)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Línea %d: Monto inválido '%s'.", i+5, amountStr))
			result.Skipped++
			continue
		}
		balance, ok := money.ParseAmount(balanceStr)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Línea %d: Balance inválido '%s'.", i+6, balanceStr))
			result.Skipped++
			continue
		}

		tx := Transaction{
			Date:            date.Format("2006-01-02"),
			ReferenceNumber: ref,
			Description:     desc,
			Code:            code,
			Balance:         balance,
			Comment:         "Importado de lote: " + desc,
		}
		if isCredit(desc) {
			tx.Credit = &amount
		} else {
			tx.Debit = &amount
			tx.IsDebit = true
		}
		out = append(out, tx)
	}
	return out, result
}

func isCredit(desc string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ParseDate reads ISO dates and day-first D/M/Y dates, falling back to month-first when
// the second part cannot be a month. Two-digit years are 20xx.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	m := dmyDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	p1, _ := strconv.Atoi(m[1])
	p2, _ := strconv.Atoi(m[2])
	yearPart := m[3]
	if len(yearPart) == 2 {
		yearPart = "20" + yearPart
	}
	year, _ := strconv.Atoi(yearPart)

	day, month := p1, p2
	if p2 > 12 {
		day, month = p2, p1
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
