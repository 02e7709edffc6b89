// v0
// internal/metrics/metrics.go
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/telemetry"
)

// Metrics exposes the simulation state to Prometheus. It is a telemetry sink
// so the runner feeds it like any other consumer.
type Metrics struct {
	zoneRH        *prometheus.GaugeVec
	outdoorRH     *prometheus.GaugeVec
	openingFactor *prometheus.GaugeVec
	exchangeReady *prometheus.GaugeVec
	timesteps     *prometheus.CounterVec
	sinkErrors    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		zoneRH: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "venting_zone_relative_humidity_percent",
			Help: "Zone node relative humidity seen by the controller.",
		}, []string{"zone"}),
		outdoorRH: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "venting_outdoor_relative_humidity_percent",
			Help: "Outdoor relative humidity at the current timestep.",
		}, []string{"zone"}),
		openingFactor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "venting_opening_factor",
			Help: "Venting opening factor applied to the window (0 closed, 1 open).",
		}, []string{"zone"}),
		exchangeReady: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "venting_exchange_ready",
			Help: "1 once the host data exchange reports ready.",
		}, []string{"zone"}),
		timesteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "venting_timesteps_total",
			Help: "Simulated timesteps completed.",
		}, []string{"zone"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "venting_telemetry_errors_total",
			Help: "Telemetry publish failures by sink.",
		}, []string{"sink"}),
	}
	for _, c := range []prometheus.Collector{m.zoneRH, m.outdoorRH, m.openingFactor, m.exchangeReady, m.timesteps, m.sinkErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Publish(_ context.Context, rec telemetry.Record) error {
	m.zoneRH.WithLabelValues(rec.ZoneID).Set(rec.ZoneRH)
	m.outdoorRH.WithLabelValues(rec.ZoneID).Set(rec.OutdoorRH)
	m.openingFactor.WithLabelValues(rec.ZoneID).Set(rec.OpeningFactor)
	ready := 0.0
	if rec.ExchangeReady {
		ready = 1
	}
	m.exchangeReady.WithLabelValues(rec.ZoneID).Set(ready)
	m.timesteps.WithLabelValues(rec.ZoneID).Inc()
	return nil
}

// Counted wraps s so its failures are counted under name.
func (m *Metrics) Counted(name string, s telemetry.Sink) telemetry.Sink {
	return countedSink{name: name, inner: s, errs: m.sinkErrors}
}

type countedSink struct {
	name  string
	inner telemetry.Sink
	errs  *prometheus.CounterVec
}

func (c countedSink) Publish(ctx context.Context, rec telemetry.Record) error {
	err := c.inner.Publish(ctx, rec)
	if err != nil {
		c.errs.WithLabelValues(c.name).Inc()
	}
	return err
}
