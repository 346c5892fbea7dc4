package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Monthly   BillingFrequency = "monthly"
	Quarterly BillingFrequency = "quarterly"
	Annual    BillingFrequency = "annual"
)

const (
	ContractActive    ContractStatus = "active"
	ContractCancelled ContractStatus = "cancelled"
	ContractFinished  ContractStatus = "finished"
)

const (
	RevenueRecurring    RevenueCategory = "recurring"
	RevenueNonRecurring RevenueCategory = "non_recurring"
	RevenueOther        RevenueCategory = "other"
)

const (
	InvoicePaid      InvoiceStatus = "paid"
	InvoicePending   InvoiceStatus = "pending"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type (
	BillingFrequency string
	ContractStatus   string
	RevenueCategory  string
	InvoiceStatus    string

	// Contract is one row of the contract snapshot table. CurrentMRR is the
	// monthly recurring figure as of now; it excludes variable usage revenue
	// and one-off setup fees.
	Contract struct {
		ClientID   string
		ClientName string
		ContractID string
		Status     ContractStatus
		Product    string
		Billing    BillingFrequency
		CurrentMRR float64
		StartDate  time.Time
	}

	// Invoice is one row of the invoice ledger. Invoices are immutable
	// historical facts; nothing in this codebase mutates them.
	Invoice struct {
		ClientID    string
		ClientName  string
		InvoiceDate time.Time
		AmountNet   float64
		Category    RevenueCategory
		Status      InvoiceStatus
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyClientID    = errors.New("empty client id")
	ErrInvalidFrequency = errors.New("invalid billing frequency")
	ErrInvalidCategory  = errors.New("invalid revenue category")
	ErrInvalidDate      = errors.New("invalid date")
)

// IsActive reports whether the contract participates in forecasting.
func (c Contract) IsActive() bool {
	return c.Status == ContractActive
}

func (f BillingFrequency) Validate() error {
	switch f {
	case Monthly, Quarterly, Annual:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (rc RevenueCategory) Validate() error {
	switch rc {
	case RevenueRecurring, RevenueNonRecurring, RevenueOther:
		return nil
	default:
		return ErrInvalidCategory
	}
}

func (c Contract) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return ErrEmptyClientID
	}
	if err := c.Billing.Validate(); err != nil {
		return err
	}
	if !IsFiniteNonNegative(c.CurrentMRR) {
		return ErrInvalidAmount
	}
	if c.StartDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (i Invoice) Validate() error {
	if strings.TrimSpace(i.ClientID) == "" {
		return ErrEmptyClientID
	}
	if i.InvoiceDate.IsZero() {
		return ErrInvalidDate
	}
	if err := i.Category.Validate(); err != nil {
		return err
	}
	if !IsFiniteNonNegative(i.AmountNet) {
		return ErrInvalidAmount
	}
	return nil
}

// IsRecurringSignal reports whether this invoice may feed the recurring
// revenue estimate. Cancelled invoices never count.
func (i Invoice) IsRecurringSignal() bool {
	return i.Category == RevenueRecurring && i.Status != InvoiceCancelled
}

// Counted reports whether the invoice contributes to year-to-date totals.
func (i Invoice) Counted() bool {
	return i.Status != InvoiceCancelled
}

// IsFiniteNonNegative reports whether v is a usable monetary amount.
// NaN, infinities and negative values pollute aggregates and are rejected.
func IsFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
