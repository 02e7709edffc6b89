// v0
// internal/httpapi/server_test.go
package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/exchange"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/telemetry"
)

type fixedSnapshot struct {
	rec telemetry.Record
	ok  bool
}

func (f fixedSnapshot) Snapshot() (telemetry.Record, bool) { return f.rec, f.ok }

func newTestServer(t *testing.T, snap fixedSnapshot) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "venting_opening_factor", Help: "test"})
	g.Set(0.5)
	reg.MustRegister(g)
	return NewServer(":0", Deps{
		Snapshot:        snap,
		ControllerState: func() string { return "Ready" },
		ExchangeStats:   func() exchange.Stats { return exchange.Stats{VariableLookups: 1, ActuatorLookups: 1, Writes: 9} },
		Gatherer:        reg,
	}, nil)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, fixedSnapshot{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	t.Run("before first step", func(t *testing.T) {
		srv := newTestServer(t, fixedSnapshot{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status=%d", rec.Code)
		}
		var body StatusResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Latest != nil {
			t.Fatalf("expected no latest record, got %+v", body.Latest)
		}
		if body.ControllerState != "Ready" || body.Exchange.Writes != 9 {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("with record", func(t *testing.T) {
		srv := newTestServer(t, fixedSnapshot{rec: telemetry.Record{ZoneID: "zone-A", Step: 7, OpeningFactor: 0.25}, ok: true})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		var body StatusResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Latest == nil || body.Latest.Step != 7 || body.Latest.OpeningFactor != 0.25 {
			t.Fatalf("unexpected latest %+v", body.Latest)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, fixedSnapshot{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "venting_opening_factor 0.5") {
		t.Fatalf("metric missing from exposition:\n%s", rec.Body.String())
	}
}
