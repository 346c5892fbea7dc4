package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
)

type fakeProvider struct {
	data      core.ForecastData
	err       error
	ingested  []core.Invoice
	ingestErr error
	lastAt    time.Time
}

func (f *fakeProvider) Forecast(_ context.Context, now time.Time) (core.ForecastData, error) {
	f.lastAt = now
	return f.data, f.err
}

func (f *fakeProvider) IngestInvoice(_ context.Context, inv core.Invoice) (string, error) {
	if f.ingestErr != nil {
		return "", f.ingestErr
	}
	f.ingested = append(f.ingested, inv)
	return "42", nil
}

func newTestServer(provider ForecastProvider) *Server {
	return NewServer(":0", provider)
}

func TestHandleForecast(t *testing.T) {
	provider := &fakeProvider{data: core.ForecastData{
		TotalMRR:   1500,
		FiscalYear: 2024,
		Clients:    []core.ClientForecastRow{{ClientID: "acme", MRREstimate: 1500}},
	}}
	server := newTestServer(provider)
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var data core.ForecastData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if data.TotalMRR != 1500 {
		t.Errorf("totalMRR = %v, want 1500", data.TotalMRR)
	}
	if len(data.Clients) != 1 || data.Clients[0].ClientID != "acme" {
		t.Errorf("unexpected clients payload: %+v", data.Clients)
	}
}

func TestHandleForecast_ReferenceTime(t *testing.T) {
	provider := &fakeProvider{}
	server := newTestServer(provider)
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?at=2024-03-15", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !provider.lastAt.Equal(want) {
		t.Errorf("reference time = %v, want %v", provider.lastAt, want)
	}
}

func TestHandleForecast_BadReferenceTime(t *testing.T) {
	server := newTestServer(&fakeProvider{})
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?at=not-a-date", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleForecast_ProviderError(t *testing.T) {
	server := newTestServer(&fakeProvider{err: errors.New("storage down")})
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "storage down") {
		t.Error("internal error details must not leak to clients")
	}
}

func TestHandleForecast_MethodNotAllowed(t *testing.T) {
	server := newTestServer(&fakeProvider{})
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q, want %q", allow, http.MethodGet)
	}
}

func TestHandleForecastClients(t *testing.T) {
	provider := &fakeProvider{data: core.ForecastData{
		TotalMRR: 1500,
		Clients: []core.ClientForecastRow{
			{ClientID: "acme", MRREstimate: 1000},
			{ClientID: "globex", MRREstimate: 500},
		},
	}}
	server := newTestServer(provider)
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/clients", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var rows []core.ClientForecastRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].ClientID != "acme" || rows[1].ClientID != "globex" {
		t.Errorf("unexpected row order: %+v", rows)
	}
}

func TestHandleCreateInvoice(t *testing.T) {
	provider := &fakeProvider{}
	server := newTestServer(provider)
	defer server.Shutdown(context.Background())

	body := `{"clientId":"acme","invoiceDate":"2024-08-01","amountNet":300,"category":"recurring"}`
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["ref"] != "42" {
		t.Errorf("ref = %q, want %q", resp["ref"], "42")
	}

	if len(provider.ingested) != 1 {
		t.Fatalf("ingested %d invoices, want 1", len(provider.ingested))
	}
	inv := provider.ingested[0]
	if inv.ClientID != "acme" || inv.AmountNet != 300 {
		t.Errorf("unexpected invoice: %+v", inv)
	}
	if inv.Status != core.InvoicePaid {
		t.Errorf("status should default to paid, got %q", inv.Status)
	}
}

func TestHandleCreateInvoice_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing client", `{"invoiceDate":"2024-08-01","amountNet":300}`},
		{"bad date", `{"clientId":"acme","invoiceDate":"soon","amountNet":300}`},
		{"negative amount", `{"clientId":"acme","invoiceDate":"2024-08-01","amountNet":-5}`},
		{"unknown field", `{"clientId":"acme","invoiceDate":"2024-08-01","amountNet":300,"surprise":true}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			server := newTestServer(provider)
			defer server.Shutdown(context.Background())

			req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			server.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
			if len(provider.ingested) != 0 {
				t.Error("invalid invoice must not reach the provider")
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(&fakeProvider{})
	defer server.Shutdown(context.Background())

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestSuspiciousRequestRejected(t *testing.T) {
	server := newTestServer(&fakeProvider{})
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?path=etc/passwd", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	server := newTestServer(&fakeProvider{})
	defer server.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
