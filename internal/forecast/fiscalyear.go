package forecast

import (
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

// fiscalYearStart returns the first day of the fiscal year containing now.
// The fiscal year is labeled by the calendar year it starts in.
func fiscalYearStart(now time.Time, startMonth time.Month) time.Time {
	start := time.Date(now.Year(), startMonth, 1, 0, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}

// monthsRemaining counts the whole calendar months left in the fiscal year.
// Convention: the current month counts as remaining, since it is not yet
// fully invoiced. The result is always in [1, 12] for any now.
func monthsRemaining(now time.Time, startMonth time.Month) int {
	start := fiscalYearStart(now, startMonth)
	elapsed := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	return 12 - elapsed
}

// invoicedYTD sums the net amount of every non-cancelled invoice dated
// within [fyStart, now], regardless of revenue category. Malformed amounts
// contribute 0 so the total stays clean.
func invoicedYTD(invoices []core.Invoice, fyStart, now time.Time) float64 {
	var total float64
	for _, inv := range invoices {
		if !inv.Counted() {
			continue
		}
		if inv.InvoiceDate.Before(fyStart) || inv.InvoiceDate.After(now) {
			continue
		}
		if !core.IsFiniteNonNegative(inv.AmountNet) {
			continue
		}
		total += inv.AmountNet
	}
	return total
}
