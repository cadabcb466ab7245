// Package heladito runs the books of Mi Heladito: the monthly profit report with its
// partner split, and the payroll of its part-time and fixed-fee workers.
package heladito

import "gdp/internal/platform/policy"

type Share struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Distribution struct {
	TotalIncome        float64 `json:"totalIncome"`
	TotalExpense       float64 `json:"totalExpense"`
	Profit             float64 `json:"profit"`
	FixedPortion       float64 `json:"fixedPortion"`
	Remainder          float64 `json:"remainder"`
	PartnersPool       float64 `json:"partnersPool"`
	PartnerA           Share   `json:"partnerA"`
	PartnerB           Share   `json:"partnerB"`
	BusinessAccount    string  `json:"businessAccount"`
	BusinessShare      float64 `json:"businessShare"`
	InvestmentTotal    float64 `json:"investmentTotal"`
	FinalBusinessShare float64 `json:"finalBusinessShare"`
}

// Distribute splits the month's profit. Up to the minimum reinvestment (and any loss) all
// of it stays with the business; above it the remainder is shared between the partners
// and the business. Investment purchases come out of the business share, which may turn
// negative.
func Distribute(rules policy.Heladito, income, expense, investments float64) Distribution {
	d := Distribution{
		TotalIncome:     income,
		TotalExpense:    expense,
		Profit:          income - expense,
		PartnerA:        Share{Name: rules.PartnerA},
		PartnerB:        Share{Name: rules.PartnerB},
		BusinessAccount: rules.BusinessAccount,
		InvestmentTotal: investments,
	}
	if d.Profit <= rules.MinReinvestment {
		d.BusinessShare = d.Profit
	} else {
		d.FixedPortion = rules.MinReinvestment
		d.Remainder = d.Profit - d.FixedPortion
		d.PartnersPool = d.Remainder * rules.PartnersShare
		d.PartnerA.Amount = d.PartnersPool / 2
		d.PartnerB.Amount = d.PartnersPool / 2
		d.BusinessShare = d.FixedPortion + d.Remainder*rules.BusinessShare
	}
	d.FinalBusinessShare = d.BusinessShare - investments
	return d
}
