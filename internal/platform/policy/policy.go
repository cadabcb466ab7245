// Package policy holds the business constants behind payroll, profit sharing and the
// monthly report. They are tax-law and partnership decisions, so they are loaded from a
// YAML document and only default to the values in force when the system was built.
package policy

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Bracket applies Rate to the part of annual taxable income above From.
type Bracket struct {
	From float64 `yaml:"from"`
	Rate float64 `yaml:"rate"`
}

type Payroll struct {
	WorkingDaysPerMonth float64   `yaml:"workingDaysPerMonth"`
	HoursPerDay         float64   `yaml:"hoursPerDay"`
	OvertimeMultiplier  float64   `yaml:"overtimeMultiplier"`
	PeriodsPerYear      float64   `yaml:"periodsPerYear"`
	AFPRate             float64   `yaml:"afpRate"`
	SFSRate             float64   `yaml:"sfsRate"`
	ISRBrackets         []Bracket `yaml:"isrBrackets"`
}

type Heladito struct {
	MinReinvestment float64 `yaml:"minReinvestment"`
	PartnersShare   float64 `yaml:"partnersShare"`
	BusinessShare   float64 `yaml:"businessShare"`
	PartnerA        string  `yaml:"partnerA"`
	PartnerB        string  `yaml:"partnerB"`
	BusinessAccount string  `yaml:"businessAccount"`
	PartTimeDays    float64 `yaml:"partTimeDays"`
}

type Party struct {
	Name  string  `yaml:"name"`
	Share float64 `yaml:"share"`
}

type MonthlyReport struct {
	OperationalName string   `yaml:"operationalName"`
	IncomeSources   []string `yaml:"incomeSources"`
	Parties         []Party  `yaml:"parties"`
}

type Policy struct {
	Payroll       Payroll       `yaml:"payroll"`
	Heladito      Heladito      `yaml:"heladito"`
	MonthlyReport MonthlyReport `yaml:"monthlyReport"`
}

func Default() Policy {
	return Policy{
		Payroll: Payroll{
			WorkingDaysPerMonth: 23.83,
			HoursPerDay:         8,
			OvertimeMultiplier:  1.35,
			PeriodsPerYear:      24,
			AFPRate:             0.0287,
			SFSRate:             0.0304,
			ISRBrackets: []Bracket{
				{From: 0, Rate: 0},
				{From: 416220.00, Rate: 0.15},
				{From: 624329.00, Rate: 0.20},
				{From: 867123.00, Rate: 0.25},
			},
		},
		Heladito: Heladito{
			MinReinvestment: 50000,
			PartnersShare:   0.60,
			BusinessShare:   0.40,
			PartnerA:        "Denny Rondon",
			PartnerB:        "Gisan Camilo",
			BusinessAccount: "Mi Heladito (Para Inversión)",
			PartTimeDays:    30,
		},
		MonthlyReport: MonthlyReport{
			OperationalName: "FOXPAC MOCA",
			IncomeSources:   []string{"PAQUETERIA LOCAL", "GANANCIA PAQUETERIA COURRIER"},
			Parties: []Party{
				{Name: "ACC MULTISERVICES SRL", Share: 0.35},
				{Name: "GRUPO DENNY R PEREZ EIRL", Share: 0.65},
			},
		},
	}
}

// Load reads the policy file at path over the defaults. An empty path yields Default().
func Load(path string) (Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	sort.SliceStable(p.Payroll.ISRBrackets, func(i, j int) bool {
		return p.Payroll.ISRBrackets[i].From < p.Payroll.ISRBrackets[j].From
	})
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	var errs []error
	pr := p.Payroll
	if pr.WorkingDaysPerMonth <= 0 || pr.HoursPerDay <= 0 {
		errs = append(errs, errors.New("payroll: workingDaysPerMonth and hoursPerDay must be positive"))
	}
	if pr.PeriodsPerYear <= 0 {
		errs = append(errs, errors.New("payroll: periodsPerYear must be positive"))
	}
	if pr.AFPRate < 0 || pr.SFSRate < 0 || pr.OvertimeMultiplier < 0 {
		errs = append(errs, errors.New("payroll: rates must not be negative"))
	}
	if len(pr.ISRBrackets) == 0 || pr.ISRBrackets[0].From != 0 {
		errs = append(errs, errors.New("payroll: isrBrackets must start at 0"))
	}

	h := p.Heladito
	if h.MinReinvestment < 0 {
		errs = append(errs, errors.New("heladito: minReinvestment must not be negative"))
	}
	if !sharesTotalOne(h.PartnersShare + h.BusinessShare) {
		errs = append(errs, errors.New("heladito: partnersShare + businessShare must equal 1"))
	}
	if h.PartTimeDays <= 0 {
		errs = append(errs, errors.New("heladito: partTimeDays must be positive"))
	}

	total := 0.0
	for _, party := range p.MonthlyReport.Parties {
		total += party.Share
	}
	if len(p.MonthlyReport.Parties) == 0 || !sharesTotalOne(total) {
		errs = append(errs, errors.New("monthlyReport: party shares must add up to 1"))
	}
	if len(p.MonthlyReport.IncomeSources) == 0 {
		errs = append(errs, errors.New("monthlyReport: at least one income source is required"))
	}
	return errors.Join(errs...)
}

func sharesTotalOne(v float64) bool {
	return v > 0.9999 && v < 1.0001
}
