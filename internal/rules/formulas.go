package rules

import (
	"math"

	"github.com/stevehiehn/calcengine/internal/mathx"
)

// incomeTaxOld applies the old-regime slabs. The 50000 standard deduction is
// expected to be applied already.
func incomeTaxOld(p params) float64 {
	income := p["taxable_income"]
	switch {
	case income <= 250000:
		return 0
	case income <= 500000:
		return (income - 250000) * 0.05
	case income <= 1000000:
		return 12500 + (income-500000)*0.20
	default:
		return 12500 + 100000 + (income-1000000)*0.30
	}
}

func incomeTaxNew(p params) float64 {
	taxable := math.Max(0, p["taxable_income"]-75000)
	switch {
	case taxable <= 300000:
		return 0
	case taxable <= 700000:
		return (taxable - 300000) * 0.05
	case taxable <= 1000000:
		return 20000 + (taxable-700000)*0.10
	case taxable <= 1200000:
		return 20000 + 30000 + (taxable-1000000)*0.15
	case taxable <= 1500000:
		return 20000 + 30000 + 30000 + (taxable-1200000)*0.20
	default:
		return 20000 + 30000 + 30000 + 60000 + (taxable-1500000)*0.30
	}
}

// emi is P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate.
func emi(p params) float64 {
	principal, annualRate, months := p["principal"], p["annual_rate"], p["tenure_months"]
	if annualRate == 0 {
		return principal / months
	}
	r := annualRate / 12 / 100
	growth := math.Pow(1+r, months)
	return mathx.Round(principal*r*growth/(growth-1), 2)
}

// sipFutureValue is the annuity-due future value P*((1+r)^n - 1)/r*(1+r).
func sipFutureValue(p params) float64 {
	monthly, annualRate, years := p["monthly_investment"], p["annual_rate"], p["years"]
	if annualRate == 0 {
		return monthly * years * 12
	}
	r := annualRate / 12 / 100
	n := years * 12
	return mathx.Round(monthly*((math.Pow(1+r, n)-1)/r)*(1+r), 2)
}

func cagr(p params) float64 {
	initial, final, years := p["initial_value"], p["final_value"], p["years"]
	if years == 0 || initial == 0 {
		return 0
	}
	return mathx.Round((math.Pow(final/initial, 1/years)-1)*100, 2)
}

func lumpsumFutureValue(p params) float64 {
	rate := p["annual_rate"] / 100
	return mathx.Round(p["principal"]*math.Pow(1+rate, p["years"]), 2)
}
