// Package core provides the domain types and billing math for the revenue
// forecast engine.
//
// This file normalizes amounts across billing cadences. Every contract or
// invoice amount is tied to a frequency (monthly, quarterly, annual); the
// forecast works in a common monthly unit, so callers convert through here.
package core

// monthsPerPeriod maps a billing frequency to the number of months one
// invoiced amount covers.
var monthsPerPeriod = map[BillingFrequency]float64{
	Monthly:   1,
	Quarterly: 3,
	Annual:    12,
}

// MonthlyAmount converts a periodic amount to its monthly equivalent:
// monthly stays unchanged, quarterly divides by 3, annual divides by 12.
//
// It returns ok=false instead of failing when amount is not a finite
// non-negative number or the frequency is unknown. Callers substitute 0 in
// that case so aggregates are never polluted by NaN or infinities.
func MonthlyAmount(amount float64, freq BillingFrequency) (float64, bool) {
	months, known := monthsPerPeriod[freq]
	if !known || !IsFiniteNonNegative(amount) {
		return 0, false
	}
	return amount / months, true
}

// AnnualAmount is the inverse of MonthlyAmount for callers working in annual
// terms: monthly multiplies by 12, quarterly by 4, annual stays unchanged.
func AnnualAmount(amount float64, freq BillingFrequency) (float64, bool) {
	months, known := monthsPerPeriod[freq]
	if !known || !IsFiniteNonNegative(amount) {
		return 0, false
	}
	return amount * (12 / months), true
}
