package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/middleware/ratelimit"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/middleware/security"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/middleware/trace"
)

// ForecastProvider is what the handlers need from the service layer.
type ForecastProvider interface {
	Forecast(ctx context.Context, now time.Time) (core.ForecastData, error)
	IngestInvoice(ctx context.Context, inv core.Invoice) (string, error)
}

type Server struct {
	http.Server
	provider ForecastProvider

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, provider ForecastProvider) *Server {
	detector := security.NewDetector()
	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s := &Server{
		provider:    provider,
		detector:    detector,
		rateLimiter: limiter,
		tracer:      tracer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/forecast", s.handleForecast)
	mux.HandleFunc("/api/forecast/clients", s.handleForecastClients)
	mux.HandleFunc("/api/invoices", s.handleCreateInvoice)

	var handler http.Handler = mux
	handler = s.withSuspicionCheck(handler)
	handler = limiter.Middleware(detector.ExtractClientIP)(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// withSuspicionCheck rejects requests that match known probe patterns before
// they reach a handler.
func (s *Server) withSuspicionCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
