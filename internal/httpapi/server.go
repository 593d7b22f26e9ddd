// Package httpapi serves the operational HTTP surface: liveness of the
// sync loop, the last pass summary and Prometheus metrics.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"cdr.dev/slog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/service"
)

// StatusProvider reports the most recent sync pass.
// *service.StatusTracker implements it.
type StatusProvider interface {
	Last() (service.PassResult, bool)
	Passes() int
}

type Dependencies struct {
	Logger   slog.Logger
	Addr     string
	Status   StatusProvider
	Gatherer prometheus.Gatherer
}

type Server struct {
	httpServer *http.Server
	logger     slog.Logger
	mux        *http.ServeMux
	status     StatusProvider
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger: d.Logger,
		mux:    mux,
		status: d.Status,
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type healthResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// handleHealthz is 200 only once a pass has finished cleanly.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	last, ok := s.status.Last()
	switch {
	case !ok:
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Reason: "no pass finished yet"})
	case last.Err != nil:
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Reason: last.Err.Error()})
	default:
		writeJSON(w, http.StatusOK, healthResponse{OK: true})
	}
}

type statusResponse struct {
	Passes   int                 `json:"passes"`
	LastPass *service.PassResult `json:"last_pass,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{Passes: s.status.Passes()}
	if last, ok := s.status.Last(); ok {
		resp.LastPass = &last
		if last.Err != nil {
			resp.Error = last.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
