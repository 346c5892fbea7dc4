package forecast

import (
	"testing"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

func TestMonthsRemaining(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		startMonth time.Month
		want       int
	}{
		{"january calendar year", date(2024, 1, 15), time.January, 12},
		{"august calendar year", date(2024, 8, 24), time.January, 5},
		{"december calendar year", date(2024, 12, 31), time.January, 1},
		{"july fiscal start, in july", date(2024, 7, 1), time.July, 12},
		{"july fiscal start, in june next year", date(2025, 6, 10), time.July, 1},
		{"july fiscal start, in december", date(2024, 12, 5), time.July, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := monthsRemaining(tt.now, tt.startMonth); got != tt.want {
				t.Errorf("monthsRemaining(%v, %v) = %d, want %d", tt.now, tt.startMonth, got, tt.want)
			}
		})
	}
}

func TestFiscalYearStart(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		startMonth time.Month
		want       time.Time
	}{
		{"calendar year", date(2024, 8, 24), time.January, date(2024, 1, 1)},
		{"before fiscal start rolls back", date(2024, 3, 10), time.July, date(2023, 7, 1)},
		{"after fiscal start stays", date(2024, 9, 10), time.July, date(2024, 7, 1)},
		{"exactly on fiscal start", date(2024, 7, 1), time.July, date(2024, 7, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fiscalYearStart(tt.now, tt.startMonth); !got.Equal(tt.want) {
				t.Errorf("fiscalYearStart(%v, %v) = %v, want %v", tt.now, tt.startMonth, got, tt.want)
			}
		})
	}
}

func TestInvoicedYTD(t *testing.T) {
	fyStart := date(2024, 1, 1)
	now := date(2024, 8, 24)

	invoices := []core.Invoice{
		recurringInvoice("a", 100, date(2024, 2, 1)),
		// any category counts toward YTD
		{ClientID: "a", InvoiceDate: date(2024, 3, 1), AmountNet: 50, Category: core.RevenueNonRecurring, Status: core.InvoicePaid},
		{ClientID: "a", InvoiceDate: date(2024, 4, 1), AmountNet: 25, Category: core.RevenueOther, Status: core.InvoicePending},
		// cancelled excluded
		{ClientID: "a", InvoiceDate: date(2024, 5, 1), AmountNet: 999, Category: core.RevenueRecurring, Status: core.InvoiceCancelled},
		// outside the window
		recurringInvoice("a", 300, date(2023, 12, 31)),
		recurringInvoice("a", 300, date(2024, 9, 1)),
	}

	if got, want := invoicedYTD(invoices, fyStart, now), 175.0; got != want {
		t.Errorf("invoicedYTD() = %v, want %v", got, want)
	}
}

func TestInvoicedYTD_BoundariesInclusive(t *testing.T) {
	fyStart := date(2024, 1, 1)
	now := date(2024, 8, 24)

	invoices := []core.Invoice{
		recurringInvoice("a", 10, fyStart),
		recurringInvoice("a", 20, now),
	}

	if got, want := invoicedYTD(invoices, fyStart, now), 30.0; got != want {
		t.Errorf("invoicedYTD() = %v, want %v (both boundaries inclusive)", got, want)
	}
}
