package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"

	_ "modernc.org/sqlite"
)

// Dates are stored as RFC 3339 text so lexical ordering matches chronological
// ordering in SQL.
const dateLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListContracts implements dataset.ContractSource
func (r *SQLiteRepository) ListContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT contract_id, client_id, client_name, status, product, billing_frequency, current_mrr, start_date
		FROM contracts
		ORDER BY client_id, contract_id`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []core.Contract
	for rows.Next() {
		var c core.Contract
		var startDate string
		if err := rows.Scan(&c.ContractID, &c.ClientID, &c.ClientName, &c.Status, &c.Product, &c.Billing, &c.CurrentMRR, &startDate); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		c.StartDate, err = time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("parse contract start date %q: %w", startDate, err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}

	return contracts, nil
}

// ListInvoices implements dataset.InvoiceSource
func (r *SQLiteRepository) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, client_name, invoice_date, amount_net, revenue_category, status
		FROM invoices
		ORDER BY client_id, invoice_date`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.Invoice
	for rows.Next() {
		var inv core.Invoice
		var invoiceDate string
		if err := rows.Scan(&inv.ClientID, &inv.ClientName, &invoiceDate, &inv.AmountNet, &inv.Category, &inv.Status); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.InvoiceDate, err = time.Parse(dateLayout, invoiceDate)
		if err != nil {
			return nil, fmt.Errorf("parse invoice date %q: %w", invoiceDate, err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return invoices, nil
}

// AppendInvoice implements dataset.InvoiceWriter
func (r *SQLiteRepository) AppendInvoice(ctx context.Context, inv core.Invoice) (string, error) {
	if err := inv.Validate(); err != nil {
		return "", fmt.Errorf("validate invoice: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (client_id, client_name, invoice_date, amount_net, revenue_category, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ClientID, inv.ClientName, inv.InvoiceDate.Format(dateLayout), inv.AmountNet, string(inv.Category), string(inv.Status))
	if err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("invoice insert id: %w", err)
	}

	slog.InfoContext(ctx, "Invoice saved to SQLite",
		"id", id,
		"client_id", inv.ClientID,
		"amount_net", inv.AmountNet,
		"category", inv.Category)

	return strconv.FormatInt(id, 10), nil
}

// GetInvoice retrieves a single ledger row by its reference.
func (r *SQLiteRepository) GetInvoice(ctx context.Context, ref string) (core.Invoice, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("parse invoice ref %q: %w", ref, err)
	}

	var inv core.Invoice
	var invoiceDate string
	err = r.db.QueryRowContext(ctx, `
		SELECT client_id, client_name, invoice_date, amount_net, revenue_category, status
		FROM invoices
		WHERE id = ?`, id).
		Scan(&inv.ClientID, &inv.ClientName, &invoiceDate, &inv.AmountNet, &inv.Category, &inv.Status)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice by ref: %w", err)
	}

	inv.InvoiceDate, err = time.Parse(dateLayout, invoiceDate)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("parse invoice date %q: %w", invoiceDate, err)
	}

	return inv, nil
}

// UpsertContract replaces the snapshot row keyed by contract id. The contract
// snapshot is a mirror of the billing system, so last write wins.
func (r *SQLiteRepository) UpsertContract(ctx context.Context, c core.Contract) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate contract: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contracts (contract_id, client_id, client_name, status, product, billing_frequency, current_mrr, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(contract_id) DO UPDATE SET
			client_id = excluded.client_id,
			client_name = excluded.client_name,
			status = excluded.status,
			product = excluded.product,
			billing_frequency = excluded.billing_frequency,
			current_mrr = excluded.current_mrr,
			start_date = excluded.start_date`,
		c.ContractID, c.ClientID, c.ClientName, string(c.Status), c.Product, string(c.Billing), c.CurrentMRR, c.StartDate.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("upsert contract: %w", err)
	}

	slog.InfoContext(ctx, "Contract snapshot updated",
		"contract_id", c.ContractID,
		"client_id", c.ClientID,
		"status", c.Status)

	return nil
}

// SaveSnapshot implements dataset.SnapshotWriter
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, at time.Time, data core.ForecastData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal forecast payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO forecast_snapshots (taken_at, fiscal_year, months_remaining_fy, total_mrr, invoiced_ytd, forecast_remaining_fy, total_estimate_fy, client_count, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at.Format(dateLayout), data.FiscalYear, data.MonthsRemainingFY, data.TotalMRR,
		data.InvoicedYTD, data.ForecastRemainingFY, data.TotalEstimateFY, len(data.Clients), string(payload))
	if err != nil {
		return fmt.Errorf("insert forecast snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Forecast snapshot saved",
		"taken_at", at.Format(dateLayout),
		"fiscal_year", data.FiscalYear,
		"total_mrr", data.TotalMRR,
		"clients", len(data.Clients))

	return nil
}

// LatestSnapshotAt returns when the most recent snapshot was taken.
// Returns the zero time when no snapshot exists yet.
func (r *SQLiteRepository) LatestSnapshotAt(ctx context.Context) (time.Time, error) {
	var takenAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT taken_at FROM forecast_snapshots
		ORDER BY taken_at DESC
		LIMIT 1`).Scan(&takenAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest snapshot: %w", err)
	}

	at, err := time.Parse(dateLayout, takenAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot time %q: %w", takenAt, err)
	}

	return at, nil
}
