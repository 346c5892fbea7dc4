package dataset

import (
	"context"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

// Ports for the data-loading collaborators. The engine itself never touches
// storage; these interfaces feed it validated, typed collections.
type (
	ContractSource interface {
		// ListContracts returns the full contract snapshot.
		ListContracts(ctx context.Context) ([]core.Contract, error)
	}

	InvoiceSource interface {
		// ListInvoices returns the full invoice ledger.
		ListInvoices(ctx context.Context) ([]core.Invoice, error)
	}

	InvoiceWriter interface {
		// AppendInvoice stores a new ledger row and returns its reference.
		AppendInvoice(ctx context.Context, inv core.Invoice) (ref string, err error)
	}

	// SnapshotWriter persists computed forecasts for trend history.
	SnapshotWriter interface {
		SaveSnapshot(ctx context.Context, at time.Time, data core.ForecastData) error
	}
)
