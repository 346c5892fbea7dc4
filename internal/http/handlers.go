package http

import (
	"log/slog"
	"net/http"
	"time"
)

// handleForecast serves the full forecast: aggregates, horizons, fiscal-year
// completion and the per-client breakdown.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError(http.MethodGet).Write(w)
		return
	}

	at, err := ParseReferenceTime(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError("invalid 'at' parameter, expected RFC 3339 or YYYY-MM-DD").Write(w)
		return
	}

	data, err := s.provider.Forecast(r.Context(), at)
	if err != nil {
		slog.ErrorContext(r.Context(), "Forecast computation failed", "error", err)
		InternalServerError("forecast computation failed").Write(w)
		return
	}

	NewJSONResponse().Body(data).Write(w)
}

// handleForecastClients serves only the per-client rows, for dashboards that
// render the table independently of the headline figures.
func (s *Server) handleForecastClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError(http.MethodGet).Write(w)
		return
	}

	at, err := ParseReferenceTime(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError("invalid 'at' parameter, expected RFC 3339 or YYYY-MM-DD").Write(w)
		return
	}

	data, err := s.provider.Forecast(r.Context(), at)
	if err != nil {
		slog.ErrorContext(r.Context(), "Forecast computation failed", "error", err)
		InternalServerError("forecast computation failed").Write(w)
		return
	}

	NewJSONResponse().Body(data.Clients).Write(w)
}

// handleCreateInvoice appends a row to the invoice ledger.
func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError(http.MethodPost).Write(w)
		return
	}

	inv, err := ParseInvoiceRequest(r)
	if err != nil {
		slog.WarnContext(r.Context(), "Invalid invoice payload", "error", err)
		UnprocessableEntityError("invalid invoice: " + err.Error()).Write(w)
		return
	}

	ref, err := s.provider.IngestInvoice(r.Context(), inv)
	if err != nil {
		slog.ErrorContext(r.Context(), "Invoice ingestion failed", "error", err, "client_id", inv.ClientID)
		InternalServerError("failed to store invoice").Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Body(map[string]string{"ref": ref}).
		Write(w)
}
