package forecast

import (
	"errors"
	"sort"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

// ErrZeroReferenceTime is returned when Compute is called without a usable
// reference time. Data-quality problems never produce an error; an invalid
// call contract does.
var ErrZeroReferenceTime = errors.New("zero reference time")

// Engine turns a contract snapshot and an invoice ledger into a forecast.
// It is a pure, stateless transformation: the reference time is injected per
// call, inputs are read-only and every result is freshly allocated, so a
// single Engine is safe for concurrent use.
type Engine struct {
	fyStartMonth time.Month
}

// NewEngine builds an engine. startMonth selects the first month of the
// fiscal year; values outside 1-12 fall back to January (calendar year).
func NewEngine(startMonth time.Month) *Engine {
	if startMonth < time.January || startMonth > time.December {
		startMonth = time.January
	}
	return &Engine{fyStartMonth: startMonth}
}

// Compute resolves per-client recurring revenue, aggregates it and projects
// it over the fixed horizons and the remainder of the fiscal year.
//
// Projections assume a stable run-rate: flat recurring revenue with no churn,
// no expansion and no new clients. Empty inputs yield a zeroed result rather
// than an error, so a partial dataset still renders a usable forecast.
func (e *Engine) Compute(now time.Time, contracts []core.Contract, invoices []core.Invoice) (core.ForecastData, error) {
	if now.IsZero() {
		return core.ForecastData{}, ErrZeroReferenceTime
	}

	rows := resolveClients(contracts, invoices)

	// Descending by estimate for display; stable so ties preserve the
	// resolver's deterministic order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MRREstimate > rows[j].MRREstimate
	})

	var totalMRR float64
	for _, row := range rows {
		totalMRR += row.MRREstimate
	}

	fyStart := fiscalYearStart(now, e.fyStartMonth)
	monthsLeft := monthsRemaining(now, e.fyStartMonth)
	ytd := invoicedYTD(invoices, fyStart, now)

	var remaining float64
	if monthsLeft > 0 {
		remaining = totalMRR * float64(monthsLeft)
	}

	for i := range rows {
		if totalMRR > 0 {
			rows[i].PercentOfTotal = rows[i].MRREstimate / totalMRR
		}
		if monthsLeft > 0 {
			rows[i].ForecastFY = rows[i].MRREstimate * float64(monthsLeft)
		}
	}

	return core.ForecastData{
		ForecastM1:  totalMRR,
		ForecastM3:  totalMRR * 3,
		ForecastM6:  totalMRR * 6,
		ForecastM12: totalMRR * 12,

		FiscalYear:          fyStart.Year(),
		MonthsRemainingFY:   monthsLeft,
		InvoicedYTD:         ytd,
		ForecastRemainingFY: remaining,
		TotalEstimateFY:     ytd + remaining,

		TotalMRR: totalMRR,
		Clients:  rows,
	}, nil
}
