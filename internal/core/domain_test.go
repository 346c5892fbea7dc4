package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestContractValidate(t *testing.T) {
	valid := Contract{
		ClientID:   "c-001",
		ClientName: "Acme SL",
		ContractID: "ct-001",
		Status:     ContractActive,
		Billing:    Monthly,
		CurrentMRR: 500,
		StartDate:  time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(c Contract) Contract
		wantErr error
	}{
		{"valid contract", func(c Contract) Contract { return c }, nil},
		{"empty client id", func(c Contract) Contract { c.ClientID = "  "; return c }, ErrEmptyClientID},
		{"bad frequency", func(c Contract) Contract { c.Billing = "weekly"; return c }, ErrInvalidFrequency},
		{"negative mrr", func(c Contract) Contract { c.CurrentMRR = -1; return c }, ErrInvalidAmount},
		{"NaN mrr", func(c Contract) Contract { c.CurrentMRR = math.NaN(); return c }, ErrInvalidAmount},
		{"zero start date", func(c Contract) Contract { c.StartDate = time.Time{}; return c }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvoiceValidate(t *testing.T) {
	valid := Invoice{
		ClientID:    "c-001",
		ClientName:  "Acme SL",
		InvoiceDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		AmountNet:   150,
		Category:    RevenueRecurring,
		Status:      InvoicePaid,
	}

	tests := []struct {
		name    string
		mutate  func(i Invoice) Invoice
		wantErr error
	}{
		{"valid invoice", func(i Invoice) Invoice { return i }, nil},
		{"empty client id", func(i Invoice) Invoice { i.ClientID = ""; return i }, ErrEmptyClientID},
		{"zero date", func(i Invoice) Invoice { i.InvoiceDate = time.Time{}; return i }, ErrInvalidDate},
		{"bad category", func(i Invoice) Invoice { i.Category = "setup_fee"; return i }, ErrInvalidCategory},
		{"infinite amount", func(i Invoice) Invoice { i.AmountNet = math.Inf(1); return i }, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvoiceIsRecurringSignal(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		inv  Invoice
		want bool
	}{
		{"recurring paid", Invoice{Category: RevenueRecurring, Status: InvoicePaid, InvoiceDate: date}, true},
		{"recurring pending", Invoice{Category: RevenueRecurring, Status: InvoicePending, InvoiceDate: date}, true},
		{"recurring cancelled", Invoice{Category: RevenueRecurring, Status: InvoiceCancelled, InvoiceDate: date}, false},
		{"non_recurring", Invoice{Category: RevenueNonRecurring, Status: InvoicePaid, InvoiceDate: date}, false},
		{"other", Invoice{Category: RevenueOther, Status: InvoicePaid, InvoiceDate: date}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.IsRecurringSignal(); got != tt.want {
				t.Errorf("IsRecurringSignal() = %v, want %v", got, tt.want)
			}
		})
	}
}
