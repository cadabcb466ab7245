package subagents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/metrics"
	"gdp/internal/platform/money"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

type Service struct {
	subagents *store.Collection[Subagent]
	conduces  *store.Collection[Conduce]
	payments  *store.Collection[MonthlyPayment]
	metrics   *metrics.Collector
	now       func() time.Time
}

func NewService(repo store.Repository, m *metrics.Collector) *Service {
	return &Service{
		subagents: store.NewCollection(repo, store.Subagents, func(s *Subagent) *string { return &s.ID }),
		conduces:  store.NewCollection(repo, store.ConduceDocuments, func(c *Conduce) *string { return &c.ID }),
		payments:  store.NewCollection(repo, store.SubagentMonthlyPayments, func(p *MonthlyPayment) *string { return &p.ID }),
		metrics:   m,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]Subagent, error) {
	return s.subagents.All(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Subagent, error) {
	sub, err := s.subagents.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Subagent{}, ErrNotFound
	}
	return sub, err
}

func (s *Service) Create(ctx context.Context, sub Subagent) (Subagent, error) {
	sub.ID = ""
	sub.Code = strings.TrimSpace(sub.Code)
	if err := s.checkCode(ctx, sub); err != nil {
		return Subagent{}, err
	}
	return s.subagents.Create(ctx, sub)
}

func (s *Service) Update(ctx context.Context, id string, sub Subagent) (Subagent, error) {
	sub.ID = id
	sub.Code = strings.TrimSpace(sub.Code)
	if err := s.checkCode(ctx, sub); err != nil {
		return Subagent{}, err
	}
	saved, err := s.subagents.Update(ctx, sub)
	if errors.Is(err, store.ErrNotFound) {
		return Subagent{}, ErrNotFound
	}
	return saved, err
}

// Delete removes a subagent that has no history.
func (s *Service) Delete(ctx context.Context, id string) error {
	conduces, err := s.Conduces(ctx, id, "")
	if err != nil {
		return err
	}
	payments, err := s.Payments(ctx, id)
	if err != nil {
		return err
	}
	if len(conduces) > 0 || len(payments) > 0 {
		return ErrSubagentInUse
	}
	return s.subagents.Delete(ctx, id)
}

func (s *Service) checkCode(ctx context.Context, sub Subagent) error {
	all, err := s.subagents.All(ctx)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID != sub.ID && strings.EqualFold(other.Code, sub.Code) {
			return ErrDuplicateCode
		}
	}
	return nil
}

// Conduces returns the subagent's conduces oldest first, optionally within one month.
func (s *Service) Conduces(ctx context.Context, subagentID, month string) ([]Conduce, error) {
	var m *ledger.Month
	if month != "" {
		parsed, err := ledger.ParseMonth(month)
		if err != nil {
			return nil, err
		}
		m = &parsed
	}
	all, err := s.conduces.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Conduce, 0)
	for _, c := range all {
		if subagentID != "" && c.SubagentID != subagentID {
			continue
		}
		if m != nil && !m.Contains(c.Date) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Service) AddConduce(ctx context.Context, subagentID string, c Conduce) (Conduce, error) {
	sub, err := s.Get(ctx, subagentID)
	if err != nil {
		return Conduce{}, err
	}
	issues := validate.Struct(c)
	amount, err := ConducePayment(c, sub.RatePerPound)
	if verr, ok := validate.AsError(err); ok {
		issues = append(issues, verr.Issues...)
	}
	if err := issues.Err(); err != nil {
		return Conduce{}, err
	}

	c.ID = ""
	c.SubagentID = sub.ID
	c.ConduceIdentifier = strings.TrimSpace(c.ConduceIdentifier)
	c.CalculatedPayment = money.Round2(amount)
	c.IsPaid = false
	c.PaymentRunID = ""
	if c.PaymentType == PaymentDirect && c.TotalWeightPounds != nil && *c.TotalWeightPounds <= 0 {
		c.TotalWeightPounds = nil
	}
	return s.conduces.Create(ctx, c)
}

// DeleteConduce removes a pending conduce. Paid conduces belong to a payment.
func (s *Service) DeleteConduce(ctx context.Context, subagentID, id string) error {
	c, err := s.conduces.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && c.SubagentID != subagentID) {
		return ErrConduceNotFound
	}
	if err != nil {
		return err
	}
	if c.IsPaid {
		return ErrConducePaid
	}
	return s.conduces.Delete(ctx, id)
}

// PendingGroup is the unpaid work of one subagent.
type PendingGroup struct {
	Subagent Subagent  `json:"subagent"`
	Conduces []Conduce `json:"conduces"`
	Total    float64   `json:"total"`
}

// Pending returns unpaid conduces per subagent, optionally within one month.
func (s *Service) Pending(ctx context.Context, month string) ([]PendingGroup, error) {
	subs, err := s.subagents.All(ctx)
	if err != nil {
		return nil, err
	}
	conduces, err := s.Conduces(ctx, "", month)
	if err != nil {
		return nil, err
	}
	out := make([]PendingGroup, 0)
	for _, sub := range subs {
		group := PendingGroup{Subagent: sub, Conduces: []Conduce{}}
		for _, c := range conduces {
			if c.SubagentID == sub.ID && !c.IsPaid {
				group.Conduces = append(group.Conduces, c)
			}
		}
		if len(group.Conduces) == 0 {
			continue
		}
		group.Total = money.Round2(money.Sum(group.Conduces, func(c Conduce) float64 { return c.CalculatedPayment }))
		out = append(out, group)
	}
	return out, nil
}

// Payments returns the subagent's payments, most recent month first.
func (s *Service) Payments(ctx context.Context, subagentID string) ([]MonthlyPayment, error) {
	all, err := s.payments.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyPayment, 0)
	for _, p := range all {
		if subagentID == "" || p.SubagentID == subagentID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MonthYear > out[j].MonthYear })
	return out, nil
}

// MonthTotal is the total paid to all subagents for month. It feeds the monthly report.
func (s *Service) MonthTotal(ctx context.Context, month ledger.Month) (float64, error) {
	all, err := s.payments.All(ctx)
	if err != nil {
		return 0, err
	}
	var inMonth []MonthlyPayment
	for _, p := range all {
		if p.MonthYear == month.Key() {
			inMonth = append(inMonth, p)
		}
	}
	return money.Round2(money.Sum(inMonth, func(p MonthlyPayment) float64 { return p.TotalAmountPaid })), nil
}

// MonthPounds is the weight paid for in month: the declared weight of aggregate payments
// plus the weight of every conduce settled by a per-conduce payment.
func (s *Service) MonthPounds(ctx context.Context, month ledger.Month) (float64, error) {
	payments, err := s.payments.All(ctx)
	if err != nil {
		return 0, err
	}
	conduces, err := s.conduces.All(ctx)
	if err != nil {
		return 0, err
	}
	weights := make(map[string]float64, len(conduces))
	for _, c := range conduces {
		if c.TotalWeightPounds != nil {
			weights[c.ID] = *c.TotalWeightPounds
		}
	}
	total := 0.0
	for _, p := range payments {
		if p.MonthYear != month.Key() {
			continue
		}
		if p.TotalWeightForMonth != nil {
			total += *p.TotalWeightForMonth
			continue
		}
		for _, id := range p.ConduceDocIDsIncluded {
			total += weights[id]
		}
	}
	return money.Round2(total), nil
}

// PayConduces settles every pending conduce of the month for a per-conduce subagent.
func (s *Service) PayConduces(ctx context.Context, subagentID, month, voucherFileName string) (MonthlyPayment, error) {
	sub, err := s.Get(ctx, subagentID)
	if err != nil {
		return MonthlyPayment{}, err
	}
	if sub.PaymentModel != ModelPerConduce {
		return MonthlyPayment{}, ErrWrongPaymentModel
	}
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return MonthlyPayment{}, err
	}
	conduces, err := s.Conduces(ctx, sub.ID, m.Key())
	if err != nil {
		return MonthlyPayment{}, err
	}
	var pending []Conduce
	for _, c := range conduces {
		if !c.IsPaid {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return MonthlyPayment{}, ErrNothingToPay
	}

	payment := MonthlyPayment{
		ID:              s.payments.NewID(),
		SubagentID:      sub.ID,
		MonthYear:       m.Key(),
		TotalAmountPaid: money.Round2(money.Sum(pending, func(c Conduce) float64 { return c.CalculatedPayment })),
		ProcessingDate:  s.now().UTC(),
		VoucherFileName: strings.TrimSpace(voucherFileName),
	}
	patches := make([]store.Patch, 0, len(pending))
	for _, c := range pending {
		payment.ConduceDocIDsIncluded = append(payment.ConduceDocIDsIncluded, c.ID)
		patches = append(patches, store.Patch{ID: c.ID, Fields: map[string]json.RawMessage{
			"isPaid":       store.Field(true),
			"paymentRunId": store.Field(payment.ID),
		}})
	}
	payment, err = s.payments.Create(ctx, payment)
	if err != nil {
		return MonthlyPayment{}, err
	}
	if err := s.conduces.Patch(ctx, patches); err != nil {
		return MonthlyPayment{}, fmt.Errorf("mark conduces paid: %w", err)
	}
	return payment, nil
}

// PayAggregate registers the month's payment for an aggregate-weight subagent.
func (s *Service) PayAggregate(ctx context.Context, subagentID, month string, weight float64, voucherFileName string) (MonthlyPayment, error) {
	sub, err := s.Get(ctx, subagentID)
	if err != nil {
		return MonthlyPayment{}, err
	}
	if sub.PaymentModel != ModelMonthlyAggregate {
		return MonthlyPayment{}, ErrWrongPaymentModel
	}
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return MonthlyPayment{}, err
	}
	if weight <= 0 {
		var issues validate.Issues
		issues.Add("totalWeightForMonth", "must be greater than 0")
		return MonthlyPayment{}, issues.Err()
	}
	existing, err := s.paymentFor(ctx, sub.ID, m)
	if err != nil {
		return MonthlyPayment{}, err
	}
	if existing != nil {
		return MonthlyPayment{}, ErrAlreadyPaid
	}
	return s.payments.Create(ctx, MonthlyPayment{
		SubagentID:          sub.ID,
		MonthYear:           m.Key(),
		TotalAmountPaid:     money.Round2(weight * sub.RatePerPound),
		TotalWeightForMonth: &weight,
		ProcessingDate:      s.now().UTC(),
		VoucherFileName:     strings.TrimSpace(voucherFileName),
	})
}

func (s *Service) paymentFor(ctx context.Context, subagentID string, m ledger.Month) (*MonthlyPayment, error) {
	payments, err := s.Payments(ctx, subagentID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.MonthYear == m.Key() {
			return &p, nil
		}
	}
	return nil, nil
}

// Statement is a subagent's month: the payment when there is one, else what is pending.
type Statement struct {
	Subagent Subagent        `json:"subagent"`
	Month    string          `json:"month"`
	Label    string          `json:"label"`
	Payment  *MonthlyPayment `json:"payment,omitempty"`
	Conduces []Conduce       `json:"conduces"`
	Total    float64         `json:"total"`
	IsPaid   bool            `json:"isPaid"`
}

func (s *Service) Statement(ctx context.Context, subagentID, month string) (Statement, error) {
	sub, err := s.Get(ctx, subagentID)
	if err != nil {
		return Statement{}, err
	}
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return Statement{}, err
	}
	payment, err := s.paymentFor(ctx, sub.ID, m)
	if err != nil {
		return Statement{}, err
	}
	conduces, err := s.Conduces(ctx, sub.ID, m.Key())
	if err != nil {
		return Statement{}, err
	}

	st := Statement{Subagent: sub, Month: m.Key(), Label: m.Label(), Payment: payment, Conduces: []Conduce{}, IsPaid: payment != nil}
	for _, c := range conduces {
		switch {
		case payment != nil && c.PaymentRunID == payment.ID:
			st.Conduces = append(st.Conduces, c)
		case payment == nil && !c.IsPaid:
			st.Conduces = append(st.Conduces, c)
		}
	}
	if payment != nil {
		st.Total = payment.TotalAmountPaid
	} else {
		st.Total = money.Round2(money.Sum(st.Conduces, func(c Conduce) float64 { return c.CalculatedPayment }))
	}
	return st, nil
}

// ImportRow is one row read off a scanned conduce report.
type ImportRow struct {
	Date     string
	Weight   *float64
	Packages *int
	Declared *float64
}

type ImportResult struct {
	Success   int       `json:"success"`
	Skipped   int       `json:"skipped"`
	Errors    []string  `json:"errors"`
	Conduces  []Conduce `json:"conduces"`
	FirstDate string    `json:"firstDate,omitempty"`
}

// ImportConduces stores imported rows as calculated conduces. Rows without a positive
// weight or with an unreadable date are reported and skipped.
func (s *Service) ImportConduces(ctx context.Context, subagentID string, contextYear int, source string, rows []ImportRow) (ImportResult, error) {
	result := ImportResult{Errors: []string{}, Conduces: []Conduce{}}
	if _, err := s.Get(ctx, subagentID); err != nil {
		return result, err
	}
	for i, row := range rows {
		if row.Weight == nil || *row.Weight <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Fila %d: peso inválido.", i+1))
			result.Skipped++
			continue
		}
		date, ok := ParseConduceDate(row.Date, contextYear)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Fila %d: fecha inválida '%s'.", i+1, row.Date))
			result.Skipped++
			continue
		}
		c, err := s.AddConduce(ctx, subagentID, Conduce{
			ConduceIdentifier: "Importado: " + row.Date,
			Date:              date.Format("2006-01-02"),
			PaymentType:       PaymentCalculated,
			TotalWeightPounds: row.Weight,
			NumberOfPackages:  row.Packages,
			DeclaredValue:     row.Declared,
			Notes:             "Importado de " + source,
		})
		if err != nil {
			return result, err
		}
		if result.FirstDate == "" {
			result.FirstDate = c.Date
		}
		result.Conduces = append(result.Conduces, c)
		result.Success++
	}
	s.metrics.Add(metrics.ImportRecordsSaved, result.Success)
	s.metrics.Add(metrics.ImportRecordsSkipped, result.Skipped)
	return result, nil
}
