package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gdp/internal/platform/email"
	"gdp/internal/platform/metrics"
	"gdp/internal/platform/money"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

// EmployeeDirectory resolves the employees picked for a run.
type EmployeeDirectory interface {
	PayrollEmployee(ctx context.Context, id string) (Employee, error)
}

// Runner executes run processing, either queued or inline.
type Runner interface {
	Enqueue(jobType, key string, run func(context.Context) (any, error)) bool
	RunNow(ctx context.Context, jobType, key string, run func(context.Context) (any, error)) (any, error)
}

type Service struct {
	calc      *Calculator
	runs      *store.Collection[Run]
	employees EmployeeDirectory
	jobs      Runner
	mailer    email.Mailer
	metrics   *metrics.Collector
	now       func() time.Time
}

func NewService(calc *Calculator, repo store.Repository, employees EmployeeDirectory, jobs Runner, mailer email.Mailer, m *metrics.Collector) *Service {
	return &Service{
		calc:      calc,
		runs:      store.NewCollection(repo, store.PayrollRuns, func(r *Run) *string { return &r.ID }),
		employees: employees,
		jobs:      jobs,
		mailer:    mailer,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *Service) Calculator() *Calculator {
	return s.calc
}

// Preview computes one payslip without persisting anything.
func (s *Service) Preview(in PayslipInput) (Breakdown, Payslip) {
	b := s.calc.Fortnight(in)
	return b, b.Payslip(in.OvertimeHours)
}

func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	return s.runs.All(ctx)
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	run, err := s.runs.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// CreateRun stores a Pending run and processes it. With wait set the run is processed
// before returning; otherwise it is queued and the Pending run is returned.
func (s *Service) CreateRun(ctx context.Context, req RunRequest, wait bool) (Run, error) {
	if err := checkRequest(req); err != nil {
		return Run{}, err
	}
	run, err := s.runs.Create(ctx, Run{
		PayPeriod: req.Period.Label(),
		Period:    req.Period,
		Status:    RunStatusPending,
		Lines:     req.Lines,
	})
	if err != nil {
		return Run{}, fmt.Errorf("create payroll run: %w", err)
	}
	return s.schedule(ctx, run, wait)
}

// Reprocess replaces the period and lines of an existing run and computes it again
// under the same id.
func (s *Service) Reprocess(ctx context.Context, id string, req RunRequest, wait bool) (Run, error) {
	if err := checkRequest(req); err != nil {
		return Run{}, err
	}
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Run{}, err
	}
	if run.Status == RunStatusProcessing {
		return Run{}, ErrRunInProgress
	}
	run.PayPeriod = req.Period.Label()
	run.Period = req.Period
	run.Lines = req.Lines
	run.Status = RunStatusPending
	run.Failure = ""
	if run, err = s.runs.Update(ctx, run); err != nil {
		return Run{}, fmt.Errorf("update payroll run: %w", err)
	}
	return s.schedule(ctx, run, wait)
}

func (s *Service) DeleteRun(ctx context.Context, id string) error {
	return s.runs.Delete(ctx, id)
}

func (s *Service) Payslip(ctx context.Context, runID, payslipID string) (Payslip, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return Payslip{}, err
	}
	for _, p := range run.PayslipsGenerated {
		if p.ID == payslipID {
			return p, nil
		}
	}
	return Payslip{}, ErrPayslipNotFound
}

func (s *Service) PayslipPDF(ctx context.Context, runID, payslipID string) ([]byte, string, error) {
	p, err := s.Payslip(ctx, runID, payslipID)
	if err != nil {
		return nil, "", err
	}
	data, err := RenderPayslipPDF(p)
	if err != nil {
		return nil, "", err
	}
	return data, PayslipFileName(p), nil
}

// SendPayslip mails the payslip PDF to the employee's address on the payslip.
func (s *Service) SendPayslip(ctx context.Context, runID, payslipID string) error {
	p, err := s.Payslip(ctx, runID, payslipID)
	if err != nil {
		return err
	}
	if p.EmployeeEmail == "" {
		return ErrNoRecipient
	}
	data, err := RenderPayslipPDF(p)
	if err != nil {
		return err
	}
	err = s.mailer.Send(ctx, email.Message{
		To:      p.EmployeeEmail,
		Subject: fmt.Sprintf("Volante de Pago - %s - %s", p.PayPeriod, p.EmployeeName),
		Body: fmt.Sprintf("Hola %s,\n\nAdjunto encontrarás tu volante de pago correspondiente al período: %s.\n\nSaludos.",
			p.EmployeeName, p.PayPeriod),
		Attachments: []email.Attachment{{Name: PayslipFileName(p), ContentType: "application/pdf", Data: data}},
	})
	if err != nil {
		return fmt.Errorf("send payslip %s: %w", p.ID, err)
	}
	s.metrics.Inc(metrics.PayslipsEmailed)
	return nil
}

func (s *Service) schedule(ctx context.Context, run Run, wait bool) (Run, error) {
	id := run.ID
	process := func(ctx context.Context) (any, error) {
		processed, err := s.process(ctx, id)
		return map[string]any{"runId": id, "status": processed.Status, "totalAmount": processed.TotalAmount}, err
	}
	if !wait && s.jobs.Enqueue(JobProcessRun, id, process) {
		return run, nil
	}
	if _, err := s.jobs.RunNow(ctx, JobProcessRun, id, process); err != nil {
		slog.Warn("payroll run failed", "runId", id, "err", err)
	}
	return s.GetRun(ctx, id)
}

func (s *Service) process(ctx context.Context, id string) (Run, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Run{}, err
	}
	run.Status = RunStatusProcessing
	if run, err = s.runs.Update(ctx, run); err != nil {
		return run, err
	}

	payslips, calcErr := s.computePayslips(ctx, run)
	processed := s.now().UTC()
	run.ProcessingDate = &processed
	if calcErr != nil {
		run.Status = RunStatusFailed
		run.Failure = calcErr.Error()
		s.metrics.Inc(metrics.PayrollRunsFailed)
		if _, err := s.runs.Update(ctx, run); err != nil {
			return run, errors.Join(calcErr, err)
		}
		return run, calcErr
	}

	run.PayslipsGenerated = payslips
	run.EmployeesProcessed = len(payslips)
	run.TotalAmount = money.Sum(payslips, func(p Payslip) float64 { return p.NetSalary })
	run.Status = RunStatusCompleted
	run.Failure = ""
	s.metrics.Inc(metrics.PayrollRunsCompleted)
	return s.runs.Update(ctx, run)
}

func (s *Service) computePayslips(ctx context.Context, run Run) ([]Payslip, error) {
	generated := s.now().UTC()
	out := make([]Payslip, 0, len(run.Lines))
	for _, line := range run.Lines {
		emp, err := s.employees.PayrollEmployee(ctx, line.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", line.EmployeeID, err)
		}
		p := s.calc.Fortnight(PayslipInput{
			MonthlySalary: emp.Salary,
			OvertimeHours: line.OvertimeHours,
			ApplyTSS:      line.ApplyTSS,
		}).Payslip(line.OvertimeHours)
		p.ID = fmt.Sprintf("ps-%s-%s", emp.ID, run.ID)
		p.EmployeeID = emp.ID
		p.EmployeeName = emp.Name
		p.EmployeeEmail = emp.Email
		p.EmployeeCedula = emp.Cedula
		p.PayrollRunID = run.ID
		p.PayPeriod = run.PayPeriod
		p.GeneratedDate = generated
		out = append(out, p)
	}
	return out, nil
}

func checkRequest(req RunRequest) error {
	issues := validate.Struct(req)
	seen := map[string]bool{}
	for i, line := range req.Lines {
		if seen[line.EmployeeID] {
			issues.Add(fmt.Sprintf("lines[%d].employeeId", i), "is selected more than once")
		}
		seen[line.EmployeeID] = true
	}
	return issues.Err()
}
