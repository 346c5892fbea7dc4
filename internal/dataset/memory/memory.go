// Package memory provides an in-memory dataset backend, optionally seeded
// from JSON fixture files. It backs local development and tests where no
// SQLite database is wanted.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

type Store struct {
	mu        sync.Mutex
	contracts []core.Contract
	invoices  []core.Invoice
}

func New(contracts []core.Contract, invoices []core.Invoice) *Store {
	return &Store{
		contracts: append([]core.Contract(nil), contracts...),
		invoices:  append([]core.Invoice(nil), invoices...),
	}
}

// NewFromFiles seeds the store from base/contracts.json and
// base/invoices.json. Missing or unreadable files leave the respective
// collection empty; the dashboard renders a "no data" state instead of
// failing.
func NewFromFiles(base string) *Store {
	var contracts []core.Contract
	var invoices []core.Invoice
	readJSON(filepath.Join(base, "contracts.json"), &contracts)
	readJSON(filepath.Join(base, "invoices.json"), &invoices)
	return New(contracts, invoices)
}

func (s *Store) ListContracts(_ context.Context) ([]core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Contract(nil), s.contracts...), nil
}

func (s *Store) ListInvoices(_ context.Context) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Invoice(nil), s.invoices...), nil
}

// AppendInvoice stores the invoice and returns a synthetic row reference.
func (s *Store) AppendInvoice(_ context.Context, inv core.Invoice) (string, error) {
	if err := inv.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, inv)
	return fmt.Sprintf("mem:%d", len(s.invoices)), nil
}

// SaveSnapshot is a no-op for the memory backend; snapshots only matter when
// a durable store keeps trend history.
func (s *Store) SaveSnapshot(_ context.Context, _ time.Time, _ core.ForecastData) error {
	return nil
}

func readJSON(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("Failed to parse seed file", "path", path, "error", err)
	}
}
