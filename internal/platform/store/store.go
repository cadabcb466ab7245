// Package store is the persistence collaborator: a flat JSON document store keyed by
// collection name, plus keyed object stores for per-month report entries.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")
)

// Collection names.
const (
	Employees               = "employees"
	PayrollRuns             = "payrollRuns"
	Subagents               = "subagents"
	ConduceDocuments        = "conduceDocuments"
	SubagentMonthlyPayments = "subagentMonthlyPayments"
	FuelLogEntries          = "fuelLogEntries"
	BankTransactions        = "bankTransactions"
	HeladitoWorkers         = "miHeladitoWorkers"
	HeladitoPayrollRuns     = "miHeladitoPayrollRuns"
	Debtors                 = "debtors"
	Receivables             = "receivables"
	Loans                   = "loans"
	LoanPayments            = "loanPayments"
	AppUsers                = "appUsers"
	JobRuns                 = "jobRuns"
	AuditEvents             = "auditEvents"
)

// Object store keys.
const (
	ManualReportEntries   = "manualReportEntries"
	HeladitoReportEntries = "miHeladitoReportEntries"
	IdempotencyKeys       = "idempotencyKeys"
)

// Patch is a partial record: top-level fields in Fields replace the stored ones.
type Patch struct {
	ID     string
	Fields map[string]json.RawMessage
}

// Repository is implemented by the in-memory and Postgres stores. Every call is atomic on
// its own; callers that need read-modify-write across calls get last-write-wins.
type Repository interface {
	FetchAll(ctx context.Context, collection string) ([]json.RawMessage, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	SaveNew(ctx context.Context, collection, id string, body json.RawMessage) error
	Update(ctx context.Context, collection, id string, body json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	BatchUpdate(ctx context.Context, collection string, patches []Patch) error
	FetchObjectStore(ctx context.Context, key string) (map[string]json.RawMessage, error)
	UpdateObjectStore(ctx context.Context, key string, data map[string]json.RawMessage) error
	PutObjectEntry(ctx context.Context, key, entryKey string, body json.RawMessage) error
	Ping(ctx context.Context) error
}

func mergeFields(body json.RawMessage, fields map[string]json.RawMessage) (json.RawMessage, error) {
	current := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &current); err != nil {
		return nil, err
	}
	for k, v := range fields {
		current[k] = v
	}
	return json.Marshal(current)
}
