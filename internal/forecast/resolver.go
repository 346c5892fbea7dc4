// Package forecast reconciles the contract snapshot and the invoice ledger
// into forward-looking recurring revenue estimates.
//
// This file resolves the best-available monthly recurring revenue per client.
// The cross-source join is a priority-fallback chain, not a relational join:
// the latest recurring invoice wins, the active contract is the fallback, and
// clients with neither signal are excluded entirely.
package forecast

import (
	"sort"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

// authoritativeContracts picks at most one active contract per client.
// When a client has several active contracts the most recently started one
// wins; equal start dates fall back to the greatest contract id so the
// choice never depends on input order.
func authoritativeContracts(contracts []core.Contract) map[string]core.Contract {
	best := make(map[string]core.Contract)
	for _, c := range contracts {
		if !c.IsActive() {
			continue
		}
		cur, ok := best[c.ClientID]
		if !ok || moreAuthoritative(c, cur) {
			best[c.ClientID] = c
		}
	}
	return best
}

func moreAuthoritative(a, b core.Contract) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	return a.ContractID > b.ContractID
}

// recurringByClient groups the invoices that may act as a recurring revenue
// signal. Non-recurring and cancelled invoices never make it in here.
func recurringByClient(invoices []core.Invoice) map[string][]core.Invoice {
	byClient := make(map[string][]core.Invoice)
	for _, inv := range invoices {
		if inv.IsRecurringSignal() {
			byClient[inv.ClientID] = append(byClient[inv.ClientID], inv)
		}
	}
	return byClient
}

// latestInvoice selects the invoice with the latest date, ties broken by the
// highest amount so the selection is deterministic.
func latestInvoice(invs []core.Invoice) core.Invoice {
	best := invs[0]
	for _, inv := range invs[1:] {
		if inv.InvoiceDate.After(best.InvoiceDate) {
			best = inv
			continue
		}
		if inv.InvoiceDate.Equal(best.InvoiceDate) && inv.AmountNet > best.AmountNet {
			best = inv
		}
	}
	return best
}

// inferFrequency estimates the billing cadence from invoice spacing when no
// active contract states one. The median gap between consecutive recurring
// invoices maps to the closest cadence; a single invoice defaults to monthly.
func inferFrequency(invs []core.Invoice) core.BillingFrequency {
	if len(invs) < 2 {
		return core.Monthly
	}

	dates := make([]time.Time, len(invs))
	for i, inv := range invs {
		dates[i] = inv.InvoiceDate
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, dates[i].Sub(dates[i-1]).Hours()/24)
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]

	switch {
	case median >= 300:
		return core.Annual
	case median >= 75:
		return core.Quarterly
	default:
		return core.Monthly
	}
}

// resolveClients produces one row per client holding at least one recurring
// invoice or one active contract. Client ids are walked in sorted order so
// the output never depends on map iteration order.
func resolveClients(contracts []core.Contract, invoices []core.Invoice) []core.ClientForecastRow {
	byContract := authoritativeContracts(contracts)
	byInvoice := recurringByClient(invoices)

	seen := make(map[string]bool, len(byContract)+len(byInvoice))
	ids := make([]string, 0, len(byContract)+len(byInvoice))
	for id := range byContract {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range byInvoice {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rows := make([]core.ClientForecastRow, 0, len(ids))
	for _, id := range ids {
		contract, hasContract := byContract[id]
		invs := byInvoice[id]

		row := core.ClientForecastRow{ClientID: id}
		if hasContract {
			row.ClientName = contract.ClientName
			row.ContractName = contract.Product
			row.Billing = contract.Billing
		}

		switch {
		case len(invs) > 0:
			last := latestInvoice(invs)
			freq := contract.Billing
			if !hasContract {
				freq = inferFrequency(invs)
				row.ClientName = last.ClientName
				row.Billing = freq
			}
			mrr, ok := core.MonthlyAmount(last.AmountNet, freq)
			if !ok {
				mrr = 0
			}
			date := last.InvoiceDate
			row.Source = core.SourceInvoice
			row.LastInvoiceDate = &date
			row.LastInvoiceAmount = last.AmountNet
			row.MRREstimate = mrr

		case hasContract:
			mrr := contract.CurrentMRR
			if !core.IsFiniteNonNegative(mrr) {
				mrr = 0
			}
			row.Source = core.SourceContract
			row.LastInvoiceDate = nil
			row.LastInvoiceAmount = mrr
			row.MRREstimate = mrr

		default:
			// No verifiable recurring revenue: the client is excluded,
			// not emitted as a zero row.
			continue
		}

		rows = append(rows, row)
	}

	return rows
}
