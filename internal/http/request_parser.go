// Package http provides the HTTP server and handler implementations.
//
// This file implements parsing and validation of request payloads and query
// parameters shared across handlers.

package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

// invoiceRequest is the wire shape of POST /api/invoices.
type invoiceRequest struct {
	ClientID    string  `json:"clientId"`
	ClientName  string  `json:"clientName"`
	InvoiceDate string  `json:"invoiceDate"`
	AmountNet   float64 `json:"amountNet"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
}

// ParseInvoiceRequest decodes and validates an invoice payload. Category
// defaults to recurring and status to paid, matching what the billing system
// emits for the common case.
func ParseInvoiceRequest(r *http.Request) (core.Invoice, error) {
	var req invoiceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return core.Invoice{}, err
	}

	invoiceDate, err := parseDate(req.InvoiceDate)
	if err != nil {
		return core.Invoice{}, core.ErrInvalidDate
	}

	if req.Category == "" {
		req.Category = string(core.RevenueRecurring)
	}
	if req.Status == "" {
		req.Status = string(core.InvoicePaid)
	}

	inv := core.Invoice{
		ClientID:    strings.TrimSpace(req.ClientID),
		ClientName:  strings.TrimSpace(req.ClientName),
		InvoiceDate: invoiceDate,
		AmountNet:   req.AmountNet,
		Category:    core.RevenueCategory(req.Category),
		Status:      core.InvoiceStatus(req.Status),
	}
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, err
	}

	return inv, nil
}

// ParseReferenceTime extracts the optional "at" query parameter. An absent
// parameter means now; a present but malformed one is an error, not a silent
// fallback.
func ParseReferenceTime(query url.Values, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(query.Get("at"))
	if v == "" {
		return now, nil
	}
	return parseDate(v)
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
