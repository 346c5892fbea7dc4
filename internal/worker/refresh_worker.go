package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/amqp"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/dataset"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/forecast"
)

// RefreshWorker recomputes the forecast when the ledger changes and persists
// snapshots for trend history. It consumes invoice upsert events from AMQP
// and additionally snapshots on a cron schedule, so history accrues even on
// days without new invoices.
type RefreshWorker struct {
	contracts dataset.ContractSource
	invoices  dataset.InvoiceSource
	snapshots dataset.SnapshotWriter
	engine    *forecast.Engine
}

func NewRefreshWorker(
	contracts dataset.ContractSource,
	invoices dataset.InvoiceSource,
	snapshots dataset.SnapshotWriter,
	engine *forecast.Engine,
) *RefreshWorker {
	return &RefreshWorker{
		contracts: contracts,
		invoices:  invoices,
		snapshots: snapshots,
		engine:    engine,
	}
}

// HandleInvoiceUpsert processes a single invoice upsert event from AMQP.
func (w *RefreshWorker) HandleInvoiceUpsert(ctx context.Context, msg *amqp.InvoiceUpsertMessage) error {
	slog.InfoContext(ctx, "Processing invoice upsert message",
		"ref", msg.Ref,
		"client_id", msg.ClientID)

	if err := w.Snapshot(ctx, time.Now()); err != nil {
		return fmt.Errorf("snapshot after invoice upsert: %w", err)
	}

	return nil
}

// Snapshot computes the forecast at the given reference time and persists it.
func (w *RefreshWorker) Snapshot(ctx context.Context, now time.Time) error {
	contracts, err := w.contracts.ListContracts(ctx)
	if err != nil {
		return fmt.Errorf("load contracts: %w", err)
	}

	invoices, err := w.invoices.ListInvoices(ctx)
	if err != nil {
		return fmt.Errorf("load invoices: %w", err)
	}

	data, err := w.engine.Compute(now, contracts, invoices)
	if err != nil {
		return fmt.Errorf("compute forecast: %w", err)
	}

	if err := w.snapshots.SaveSnapshot(ctx, now, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Forecast snapshot taken",
		"taken_at", now.Format(time.RFC3339),
		"total_mrr", data.TotalMRR,
		"clients", len(data.Clients))

	return nil
}

// StartupCheck takes an initial snapshot when the stored history is missing
// or stale. This is a backup mechanism in case AMQP messages or cron runs
// were missed while the worker was down.
func (w *RefreshWorker) StartupCheck(ctx context.Context) error {
	reader, ok := w.snapshots.(interface {
		LatestSnapshotAt(ctx context.Context) (time.Time, error)
	})
	if !ok {
		slog.InfoContext(ctx, "Snapshot store keeps no history, skipping startup check")
		return nil
	}

	latest, err := reader.LatestSnapshotAt(ctx)
	if err != nil {
		return fmt.Errorf("read latest snapshot time: %w", err)
	}

	if !latest.IsZero() && time.Since(latest) < 24*time.Hour {
		slog.InfoContext(ctx, "Snapshot history is fresh",
			"latest", latest.Format(time.RFC3339))
		return nil
	}

	slog.InfoContext(ctx, "Snapshot history missing or stale, taking snapshot",
		"latest", latest.Format(time.RFC3339))
	return w.Snapshot(ctx, time.Now())
}

// ScheduleSnapshots registers the periodic snapshot job and starts the
// scheduler. The returned cron must be stopped by the caller on shutdown.
func (w *RefreshWorker) ScheduleSnapshots(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if err := w.Snapshot(ctx, time.Now()); err != nil {
			slog.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule snapshot job: %w", err)
	}

	c.Start()
	slog.InfoContext(ctx, "Snapshot schedule started", "spec", spec)

	return c, nil
}
