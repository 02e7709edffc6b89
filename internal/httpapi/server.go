// v0
// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/exchange"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/telemetry"
)

// Snapshotter returns the latest timestep record.
type Snapshotter interface {
	Snapshot() (telemetry.Record, bool)
}

// Deps are the read-only views the server reports on.
type Deps struct {
	Snapshot        Snapshotter
	ControllerState func() string
	ExchangeStats   func() exchange.Stats
	Gatherer        prometheus.Gatherer
	AccessLog       io.Writer
}

type StatusResponse struct {
	ControllerState string            `json:"controllerState"`
	Exchange        exchange.Stats    `json:"exchange"`
	Latest          *telemetry.Record `json:"latest,omitempty"`
}

type Server struct {
	lg   *slog.Logger
	deps Deps
	http *http.Server
}

func NewServer(addr string, deps Deps, lg *slog.Logger) *Server {
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{lg: lg, deps: deps}
	s.http = &http.Server{Addr: addr, Handler: s.routes()}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	var h http.Handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(r)
	if s.deps.AccessLog != nil {
		h = handlers.LoggingHandler(s.deps.AccessLog, h)
	}
	s.lg.Info("http routes registered")
	return h
}

func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Start() error {
	s.lg.Info("http start", "bind", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.lg.Info("http stop")
	return s.http.Shutdown(ctx)
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	var resp StatusResponse
	if s.deps.ControllerState != nil {
		resp.ControllerState = s.deps.ControllerState()
	}
	if s.deps.ExchangeStats != nil {
		resp.Exchange = s.deps.ExchangeStats()
	}
	if s.deps.Snapshot != nil {
		if rec, ok := s.deps.Snapshot.Snapshot(); ok {
			resp.Latest = &rec
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.lg.Warn("status encode", "err", err)
	}
}
