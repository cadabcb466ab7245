// Package subagents manages the courier's subagents, the delivery notes (conduces) they
// submit and the monthly payments that settle them.
package subagents

import (
	"errors"
	"time"

	"gdp/internal/platform/validate"
)

const (
	ModelPerConduce       = "Pago por Conduce"
	ModelMonthlyAggregate = "Peso Agregado Mensual"

	PaymentCalculated = "calculated"
	PaymentDirect     = "direct"
)

var (
	ErrNotFound          = errors.New("subagent not found")
	ErrConduceNotFound   = errors.New("conduce not found")
	ErrPaymentNotFound   = errors.New("subagent payment not found")
	ErrDuplicateCode     = errors.New("subagent code already exists")
	ErrSubagentInUse     = errors.New("subagent has conduces or payments")
	ErrConducePaid       = errors.New("conduce is already paid")
	ErrNothingToPay      = errors.New("no pending conduces for the month")
	ErrAlreadyPaid       = errors.New("month is already paid")
	ErrWrongPaymentModel = errors.New("operation does not match the subagent payment model")
)

type Subagent struct {
	ID              string  `json:"id"`
	Code            string  `json:"code" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	PaymentModel    string  `json:"paymentModel" validate:"required"`
	RatePerPound    float64 `json:"ratePerPound" validate:"gte=0"`
	LocationOrNotes string  `json:"locationOrNotes,omitempty"`
}

func (s Subagent) Validate() error {
	issues := validate.Struct(s)
	if s.PaymentModel != "" && s.PaymentModel != ModelPerConduce && s.PaymentModel != ModelMonthlyAggregate {
		issues.Add("paymentModel", "must be one of: "+ModelPerConduce+", "+ModelMonthlyAggregate)
	}
	return issues.Err()
}

type Conduce struct {
	ID                  string   `json:"id"`
	SubagentID          string   `json:"subagentId"`
	ConduceIdentifier   string   `json:"conduceIdentifier"`
	Date                string   `json:"date" validate:"required,datetime=2006-01-02"`
	PaymentType         string   `json:"paymentType" validate:"required,oneof=calculated direct"`
	TotalWeightPounds   *float64 `json:"totalWeightPounds,omitempty"`
	DirectPaymentAmount *float64 `json:"directPaymentAmount,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	CalculatedPayment   float64  `json:"calculatedPayment"`
	PaymentRunID        string   `json:"paymentRunId,omitempty"`
	IsPaid              bool     `json:"isPaid"`
	NumberOfPackages    *int     `json:"numberOfPackages,omitempty"`
	DeclaredValue       *float64 `json:"declaredValue,omitempty"`
}

type MonthlyPayment struct {
	ID                    string    `json:"id"`
	SubagentID            string    `json:"subagentId"`
	MonthYear             string    `json:"monthYear"`
	TotalAmountPaid       float64   `json:"totalAmountPaid"`
	ConduceDocIDsIncluded []string  `json:"conduceDocIdsIncluded,omitempty"`
	TotalWeightForMonth   *float64  `json:"totalWeightForMonth,omitempty"`
	ProcessingDate        time.Time `json:"processingDate"`
	VoucherFileName       string    `json:"voucherFileName,omitempty"`
}

// ConducePayment is what a conduce is worth: weight × rate, or the amount entered directly.
func ConducePayment(c Conduce, ratePerPound float64) (float64, error) {
	var issues validate.Issues
	switch c.PaymentType {
	case PaymentCalculated:
		if c.TotalWeightPounds == nil || *c.TotalWeightPounds <= 0 {
			issues.Add("totalWeightPounds", "must be greater than 0")
			break
		}
		return *c.TotalWeightPounds * ratePerPound, nil
	case PaymentDirect:
		if c.DirectPaymentAmount == nil || *c.DirectPaymentAmount <= 0 {
			issues.Add("directPaymentAmount", "must be greater than 0")
			break
		}
		return *c.DirectPaymentAmount, nil
	default:
		issues.Add("paymentType", "must be one of: calculated, direct")
	}
	return 0, issues.Err()
}
