// Package fuel keeps the vehicle fuel log: trip segments read off the odometer and the
// refuels that close them.
package fuel

import (
	"errors"
	"fmt"
	"strings"

	"gdp/internal/platform/validate"
)

var ErrNotFound = errors.New("fuel log entry not found")

var FuelTypes = []string{"Gasolina Regular", "Gasolina Premium", "Diesel", "Gas GLP"}

type Segment struct {
	ID              string  `json:"id,omitempty"`
	Description     string  `json:"description"`
	StartKmOdometer float64 `json:"startKmOdometer"`
	EndKmOdometer   float64 `json:"endKmOdometer"`
	SegmentKm       float64 `json:"segmentKm"`
}

type Entry struct {
	ID                     string    `json:"id"`
	Date                   string    `json:"date" validate:"required,datetime=2006-01-02"`
	Vehicle                string    `json:"vehicle,omitempty"`
	Segments               []Segment `json:"segments"`
	TotalKilometersThisLog float64   `json:"totalKilometersThisLog"`
	RefueledThisLog        bool      `json:"refueledThisLog"`
	GallonsAdded           *float64  `json:"gallonsAdded,omitempty"`
	TotalFuelCost          *float64  `json:"totalFuelCost,omitempty"`
	CostPerGallon          *float64  `json:"costPerGallon,omitempty"`
	FuelType               string    `json:"fuelType,omitempty"`
	HasInvoice             bool      `json:"hasInvoice"`
	InvoiceNumber          string    `json:"invoiceNumber,omitempty"`
	EfficiencyKmpg         *float64  `json:"efficiencyKmpg,omitempty"`
	Notes                  string    `json:"notes,omitempty"`
}

// Summary is the derived part of an entry.
type Summary struct {
	TotalKm       float64
	KmPerGallon   *float64
	CostPerGallon *float64
}

// Summarize totals the segments and derives efficiency and unit cost. Each segment needs a
// description and an end reading past its start.
func Summarize(segments []Segment, refueled bool, gallons, cost float64) (Summary, error) {
	var issues validate.Issues
	if len(segments) == 0 {
		issues.Add("segments", "must have at least 1 item(s)")
	}
	var s Summary
	for i, seg := range segments {
		if strings.TrimSpace(seg.Description) == "" {
			issues.Add(fmt.Sprintf("segments[%d].description", i), "is required")
		}
		if seg.EndKmOdometer <= seg.StartKmOdometer {
			issues.Add(fmt.Sprintf("segments[%d].endKmOdometer", i), "must be greater than startKmOdometer")
			continue
		}
		s.TotalKm += seg.EndKmOdometer - seg.StartKmOdometer
	}
	if err := issues.Err(); err != nil {
		return Summary{}, err
	}
	if refueled && gallons > 0 {
		kmpg := s.TotalKm / gallons
		s.KmPerGallon = &kmpg
		if cost > 0 {
			unit := cost / gallons
			s.CostPerGallon = &unit
		}
	}
	return s, nil
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Normalize validates e and fills its derived fields.
func Normalize(e Entry) (Entry, error) {
	issues := validate.Struct(e)
	gallons, cost := value(e.GallonsAdded), value(e.TotalFuelCost)
	if e.RefueledThisLog {
		if gallons <= 0 {
			issues.Add("gallonsAdded", "must be greater than 0")
		}
		if cost <= 0 {
			issues.Add("totalFuelCost", "must be greater than 0")
		}
		if e.FuelType != "" && !validFuelType(e.FuelType) {
			issues.Add("fuelType", "must be one of: "+strings.Join(FuelTypes, ", "))
		}
	}
	if e.HasInvoice && strings.TrimSpace(e.InvoiceNumber) == "" {
		issues.Add("invoiceNumber", "is required when hasInvoice is set")
	}
	summary, err := Summarize(e.Segments, e.RefueledThisLog, gallons, cost)
	if verr, ok := validate.AsError(err); ok {
		issues = append(issues, verr.Issues...)
	}
	if err := issues.Err(); err != nil {
		return Entry{}, err
	}

	for i := range e.Segments {
		e.Segments[i].Description = strings.TrimSpace(e.Segments[i].Description)
		e.Segments[i].SegmentKm = e.Segments[i].EndKmOdometer - e.Segments[i].StartKmOdometer
		if e.Segments[i].ID == "" {
			e.Segments[i].ID = fmt.Sprintf("seg-%d", i+1)
		}
	}
	e.TotalKilometersThisLog = summary.TotalKm
	e.EfficiencyKmpg = summary.KmPerGallon
	e.CostPerGallon = summary.CostPerGallon
	if !e.RefueledThisLog {
		e.GallonsAdded, e.TotalFuelCost, e.FuelType = nil, nil, ""
	}
	if !e.HasInvoice {
		e.InvoiceNumber = ""
	}
	return e, nil
}

func validFuelType(t string) bool {
	for _, ft := range FuelTypes {
		if ft == t {
			return true
		}
	}
	return false
}
