// v0
// internal/telemetry/sink.go
package telemetry

import (
	"context"
	"errors"
	"time"
)

// Record is the per-timestep document published by the simulation.
type Record struct {
	RunID         string    `json:"runId"`
	ZoneID        string    `json:"zoneId"`
	Step          int       `json:"step"`
	SimHours      float64   `json:"simHours"`
	Timestamp     time.Time `json:"timestamp"`
	ZoneRH        float64   `json:"zoneRhPct"`
	OutdoorRH     float64   `json:"outdoorRhPct"`
	OpeningFactor float64   `json:"openingFactor"`
	ExchangeReady bool      `json:"exchangeReady"`
	Actuated      bool      `json:"actuated"`
}

// Sink receives timestep records.
type Sink interface {
	Publish(ctx context.Context, rec Record) error
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
