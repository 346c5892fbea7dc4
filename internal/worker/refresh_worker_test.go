package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/amqp"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/dataset/memory"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/forecast"
)

// snapshotRecorder captures saved snapshots and optionally reports a latest
// snapshot time for the startup check.
type snapshotRecorder struct {
	mu     sync.Mutex
	saved  []core.ForecastData
	latest time.Time
	err    error
}

func (r *snapshotRecorder) SaveSnapshot(_ context.Context, _ time.Time, data core.ForecastData) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, data)
	return nil
}

func (r *snapshotRecorder) LatestSnapshotAt(_ context.Context) (time.Time, error) {
	return r.latest, nil
}

func (r *snapshotRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func testWorker(recorder *snapshotRecorder) *RefreshWorker {
	store := memory.New([]core.Contract{{
		ClientID:   "acme",
		ContractID: "c-1",
		Status:     core.ContractActive,
		Billing:    core.Monthly,
		CurrentMRR: 500,
		StartDate:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}}, nil)
	return NewRefreshWorker(store, store, recorder, forecast.NewEngine(time.January))
}

func TestRefreshWorker_Snapshot(t *testing.T) {
	recorder := &snapshotRecorder{}
	w := testWorker(recorder)

	now := time.Date(2024, 8, 24, 6, 0, 0, 0, time.UTC)
	if err := w.Snapshot(context.Background(), now); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if recorder.count() != 1 {
		t.Fatalf("saved %d snapshots, want 1", recorder.count())
	}
	if recorder.saved[0].TotalMRR != 500 {
		t.Errorf("snapshot TotalMRR = %v, want 500", recorder.saved[0].TotalMRR)
	}
}

func TestRefreshWorker_SnapshotPropagatesError(t *testing.T) {
	recorder := &snapshotRecorder{err: errors.New("disk full")}
	w := testWorker(recorder)

	if err := w.Snapshot(context.Background(), time.Now()); err == nil {
		t.Error("Snapshot() should propagate storage errors")
	}
}

func TestRefreshWorker_HandleInvoiceUpsert(t *testing.T) {
	recorder := &snapshotRecorder{}
	w := testWorker(recorder)

	msg := amqp.NewInvoiceUpsertMessage("42", "acme")
	if err := w.HandleInvoiceUpsert(context.Background(), msg); err != nil {
		t.Fatalf("HandleInvoiceUpsert() error = %v", err)
	}

	if recorder.count() != 1 {
		t.Errorf("saved %d snapshots, want 1", recorder.count())
	}
}

func TestRefreshWorker_StartupCheck(t *testing.T) {
	t.Run("stale history triggers snapshot", func(t *testing.T) {
		recorder := &snapshotRecorder{latest: time.Now().Add(-48 * time.Hour)}
		w := testWorker(recorder)

		if err := w.StartupCheck(context.Background()); err != nil {
			t.Fatalf("StartupCheck() error = %v", err)
		}
		if recorder.count() != 1 {
			t.Errorf("saved %d snapshots, want 1", recorder.count())
		}
	})

	t.Run("fresh history is left alone", func(t *testing.T) {
		recorder := &snapshotRecorder{latest: time.Now().Add(-time.Hour)}
		w := testWorker(recorder)

		if err := w.StartupCheck(context.Background()); err != nil {
			t.Fatalf("StartupCheck() error = %v", err)
		}
		if recorder.count() != 0 {
			t.Errorf("saved %d snapshots, want 0", recorder.count())
		}
	})

	t.Run("empty history triggers snapshot", func(t *testing.T) {
		recorder := &snapshotRecorder{}
		w := testWorker(recorder)

		if err := w.StartupCheck(context.Background()); err != nil {
			t.Fatalf("StartupCheck() error = %v", err)
		}
		if recorder.count() != 1 {
			t.Errorf("saved %d snapshots, want 1", recorder.count())
		}
	})
}

// noHistoryWriter deliberately lacks LatestSnapshotAt.
type noHistoryWriter struct {
	saved int
}

func (w *noHistoryWriter) SaveSnapshot(_ context.Context, _ time.Time, _ core.ForecastData) error {
	w.saved++
	return nil
}

func TestRefreshWorker_StartupCheckWithoutHistory(t *testing.T) {
	writer := &noHistoryWriter{}
	store := memory.New(nil, nil)
	w := NewRefreshWorker(store, store, writer, forecast.NewEngine(time.January))

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck() error = %v", err)
	}
	if writer.saved != 0 {
		t.Errorf("saved %d snapshots, want 0 when the store keeps no history", writer.saved)
	}
}
