package heladito

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/money"
	"gdp/internal/platform/policy"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

const (
	WorkerPartTime   = "Medio Tiempo"
	WorkerContractor = "Pago Fijo"

	RunStatusCompleted = "Completed"
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
	ErrRunNotFound    = errors.New("mi heladito payroll run not found")
)

type ReportEntry struct {
	Expenses            []ledger.ExpenseItem `json:"expenses"`
	Incomes             []ledger.IncomeItem  `json:"incomes"`
	InvestmentPurchases []ledger.ExpenseItem `json:"investmentPurchases"`
}

type Report struct {
	Month        string       `json:"month"`
	Label        string       `json:"label"`
	Entry        ReportEntry  `json:"entry"`
	Distribution Distribution `json:"distribution"`
}

type Worker struct {
	ID         string  `json:"id"`
	Name       string  `json:"name" validate:"required"`
	WorkerType string  `json:"workerType" validate:"required"`
	BaseAmount float64 `json:"baseAmount" validate:"gte=0"`
}

func (w Worker) Validate() error {
	issues := validate.Struct(w)
	if w.WorkerType != "" && w.WorkerType != WorkerPartTime && w.WorkerType != WorkerContractor {
		issues.Add("workerType", fmt.Sprintf("must be one of: %s, %s", WorkerPartTime, WorkerContractor))
	}
	return issues.Err()
}

type Payslip struct {
	ID                string   `json:"id"`
	PayrollRunID      string   `json:"payrollRunId"`
	WorkerID          string   `json:"workerId"`
	WorkerName        string   `json:"workerName"`
	WorkerType        string   `json:"workerType"`
	PayPeriod         string   `json:"payPeriod"`
	DaysWorked        *float64 `json:"daysWorked,omitempty"`
	BaseMonthlySalary *float64 `json:"baseMonthlySalary,omitempty"`
	NetPayment        float64  `json:"netPayment"`
}

type PayrollRun struct {
	ID              string    `json:"id"`
	Month           string    `json:"month"`
	PayPeriod       string    `json:"payPeriod"`
	Status          string    `json:"status"`
	TotalAmountPaid float64   `json:"totalAmountPaid"`
	Payslips        []Payslip `json:"payslips"`
	ProcessingDate  time.Time `json:"processingDate"`
}

type RunLine struct {
	WorkerID   string   `json:"workerId" validate:"required"`
	DaysWorked *float64 `json:"daysWorked,omitempty" validate:"omitempty,gte=0,lte=31"`
}

type RunRequest struct {
	Month string    `json:"month" validate:"required"`
	Lines []RunLine `json:"lines" validate:"min=1,dive"`
}

type Service struct {
	rules   policy.Heladito
	reports *store.Objects[ReportEntry]
	workers *store.Collection[Worker]
	runs    *store.Collection[PayrollRun]
	now     func() time.Time
}

func NewService(rules policy.Heladito, repo store.Repository) *Service {
	return &Service{
		rules:   rules,
		reports: store.NewObjects[ReportEntry](repo, store.HeladitoReportEntries),
		workers: store.NewCollection(repo, store.HeladitoWorkers, func(w *Worker) *string { return &w.ID }),
		runs:    store.NewCollection(repo, store.HeladitoPayrollRuns, func(r *PayrollRun) *string { return &r.ID }),
		now:     time.Now,
	}
}

// Report returns the month's entry (empty when nothing was saved) with its distribution.
func (s *Service) Report(ctx context.Context, monthKey string) (Report, error) {
	month, err := ledger.ParseMonth(monthKey)
	if err != nil {
		return Report{}, err
	}
	entry, _, err := s.reports.Get(ctx, month.Key())
	if err != nil {
		return Report{}, fmt.Errorf("load mi heladito report: %w", err)
	}
	return s.buildReport(month, entry), nil
}

func (s *Service) SaveReport(ctx context.Context, monthKey string, entry ReportEntry) (Report, error) {
	month, err := ledger.ParseMonth(monthKey)
	if err != nil {
		return Report{}, err
	}
	var issues validate.Issues
	entry.Expenses = ledger.CheckExpenses("expenses", "mh-exp", entry.Expenses, &issues)
	entry.Incomes = ledger.CheckIncomes("incomes", "mh-inc", entry.Incomes, &issues)
	entry.InvestmentPurchases = ledger.CheckExpenses("investmentPurchases", "mh-inv", entry.InvestmentPurchases, &issues)
	if err := issues.Err(); err != nil {
		return Report{}, err
	}
	if err := s.reports.Put(ctx, month.Key(), entry); err != nil {
		return Report{}, fmt.Errorf("save mi heladito report: %w", err)
	}
	return s.buildReport(month, entry), nil
}

func (s *Service) buildReport(month ledger.Month, entry ReportEntry) Report {
	if entry.Expenses == nil {
		entry.Expenses = []ledger.ExpenseItem{}
	}
	if entry.Incomes == nil {
		entry.Incomes = []ledger.IncomeItem{}
	}
	if entry.InvestmentPurchases == nil {
		entry.InvestmentPurchases = []ledger.ExpenseItem{}
	}
	return Report{
		Month: month.Key(),
		Label: month.Label(),
		Entry: entry,
		Distribution: Distribute(s.rules,
			ledger.TotalIncomes(entry.Incomes),
			ledger.TotalExpenses(entry.Expenses),
			ledger.TotalExpenses(entry.InvestmentPurchases)),
	}
}

func (s *Service) ListWorkers(ctx context.Context) ([]Worker, error) {
	return s.workers.All(ctx)
}

func (s *Service) CreateWorker(ctx context.Context, w Worker) (Worker, error) {
	w.ID = ""
	return s.workers.Create(ctx, w)
}

func (s *Service) UpdateWorker(ctx context.Context, id string, w Worker) (Worker, error) {
	w.ID = id
	saved, err := s.workers.Update(ctx, w)
	if errors.Is(err, store.ErrNotFound) {
		return Worker{}, ErrWorkerNotFound
	}
	return saved, err
}

func (s *Service) DeleteWorker(ctx context.Context, id string) error {
	return s.workers.Delete(ctx, id)
}

// Payment is the amount owed to a worker for a month: part-time workers earn their monthly
// base pro-rated by days worked, contractors their flat fee.
func (s *Service) Payment(w Worker, daysWorked float64) float64 {
	if w.WorkerType == WorkerContractor {
		return w.BaseAmount
	}
	return w.BaseAmount / s.rules.PartTimeDays * daysWorked
}

func (s *Service) CreateRun(ctx context.Context, req RunRequest) (PayrollRun, error) {
	issues := validate.Struct(req)
	month, err := ledger.ParseMonth(req.Month)
	if req.Month != "" && err != nil {
		issues.Add("month", "must be in YYYY-MM format")
	}
	if err := issues.Err(); err != nil {
		return PayrollRun{}, err
	}

	run := PayrollRun{
		ID:             s.runs.NewID(),
		Month:          month.Key(),
		PayPeriod:      month.Label(),
		Status:         RunStatusCompleted,
		ProcessingDate: s.now().UTC(),
	}
	for i, line := range req.Lines {
		w, err := s.workers.Get(ctx, line.WorkerID)
		if errors.Is(err, store.ErrNotFound) {
			issues.Add(fmt.Sprintf("lines[%d].workerId", i), "unknown worker")
			continue
		}
		if err != nil {
			return PayrollRun{}, err
		}
		slip := Payslip{
			ID:           fmt.Sprintf("mhps-%s-%s", w.ID, run.ID),
			PayrollRunID: run.ID,
			WorkerID:     w.ID,
			WorkerName:   w.Name,
			WorkerType:   w.WorkerType,
			PayPeriod:    run.PayPeriod,
		}
		if w.WorkerType == WorkerPartTime {
			days := s.rules.PartTimeDays
			if line.DaysWorked != nil {
				days = *line.DaysWorked
			}
			base := w.BaseAmount
			slip.DaysWorked = &days
			slip.BaseMonthlySalary = &base
			slip.NetPayment = money.Round2(s.Payment(w, days))
		} else {
			slip.NetPayment = money.Round2(s.Payment(w, 0))
		}
		run.Payslips = append(run.Payslips, slip)
	}
	if err := issues.Err(); err != nil {
		return PayrollRun{}, err
	}
	run.TotalAmountPaid = money.Sum(run.Payslips, func(p Payslip) float64 { return p.NetPayment })
	return s.runs.Create(ctx, run)
}

func (s *Service) ListRuns(ctx context.Context) ([]PayrollRun, error) {
	return s.runs.All(ctx)
}

func (s *Service) GetRun(ctx context.Context, id string) (PayrollRun, error) {
	run, err := s.runs.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return PayrollRun{}, ErrRunNotFound
	}
	return run, err
}

func (s *Service) DeleteRun(ctx context.Context, id string) error {
	return s.runs.Delete(ctx, id)
}
