package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/amqp"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/cache"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/dataset"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/forecast"
)

// ForecastService orchestrates forecast computation across storage, the
// in-memory cache and AMQP. It owns no forecast semantics of its own; those
// live in the forecast package.
type ForecastService struct {
	contracts  dataset.ContractSource
	invoices   dataset.InvoiceSource
	writer     dataset.InvoiceWriter
	engine     *forecast.Engine
	cache      *cache.LRUCache[core.ForecastData]
	amqpClient *amqp.Client

	// generation invalidates cached forecasts after a ledger write without
	// having to enumerate cache keys.
	generation atomic.Uint64
}

func NewForecastService(
	contracts dataset.ContractSource,
	invoices dataset.InvoiceSource,
	writer dataset.InvoiceWriter,
	engine *forecast.Engine,
	forecastCache *cache.LRUCache[core.ForecastData],
	amqpClient *amqp.Client,
) *ForecastService {
	return &ForecastService{
		contracts:  contracts,
		invoices:   invoices,
		writer:     writer,
		engine:     engine,
		cache:      forecastCache,
		amqpClient: amqpClient,
	}
}

// Forecast computes the forecast for the given reference time, serving from
// cache when the ledger has not changed since the last computation.
func (s *ForecastService) Forecast(ctx context.Context, now time.Time) (core.ForecastData, error) {
	key := s.cacheKey(now)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Forecast served from cache", "key", key)
			return data, nil
		}
	}

	data, err := s.compute(ctx, now)
	if err != nil {
		return core.ForecastData{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}

	return data, nil
}

// IngestInvoice validates and appends a ledger row, publishes the upsert
// event and invalidates cached forecasts.
func (s *ForecastService) IngestInvoice(ctx context.Context, inv core.Invoice) (string, error) {
	if err := inv.Validate(); err != nil {
		return "", fmt.Errorf("validate invoice: %w", err)
	}

	ref, err := s.writer.AppendInvoice(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("append invoice: %w", err)
	}

	s.generation.Add(1)

	// Publish async upsert message (non-blocking)
	if err := s.publishUpsertMessage(ctx, ref, inv.ClientID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invoice upsert message",
			"ref", ref, "error", err)
		// Don't fail the request - invoice is saved locally
	}

	return ref, nil
}

func (s *ForecastService) compute(ctx context.Context, now time.Time) (core.ForecastData, error) {
	contracts, err := s.contracts.ListContracts(ctx)
	if err != nil {
		return core.ForecastData{}, fmt.Errorf("load contracts: %w", err)
	}

	invoices, err := s.invoices.ListInvoices(ctx)
	if err != nil {
		return core.ForecastData{}, fmt.Errorf("load invoices: %w", err)
	}

	data, err := s.engine.Compute(now, contracts, invoices)
	if err != nil {
		return core.ForecastData{}, fmt.Errorf("compute forecast: %w", err)
	}

	slog.InfoContext(ctx, "Forecast computed",
		"reference_time", now.Format(time.RFC3339),
		"total_mrr", data.TotalMRR,
		"clients", len(data.Clients))

	return data, nil
}

// cacheKey buckets by calendar day: months remaining and year-to-date totals
// only shift at day granularity. The generation counter rolls the whole
// keyspace forward after a write.
func (s *ForecastService) cacheKey(now time.Time) string {
	return fmt.Sprintf("forecast:g%d:%s", s.generation.Load(), now.Format("2006-01-02"))
}

func (s *ForecastService) publishUpsertMessage(ctx context.Context, ref, clientID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping upsert message")
		return nil
	}

	return s.amqpClient.PublishInvoiceUpsert(ctx, ref, clientID)
}

// Close closes the AMQP connection. Storage is owned by the caller.
func (s *ForecastService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close forecast service: %w", err)
		}
	}
	return nil
}
