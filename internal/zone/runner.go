// v0
// internal/zone/runner.go
package zone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/exchange"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/plugin"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/telemetry"
)

// ErrCallbackStatus is returned when a plugin callback reports a non-zero status.
var ErrCallbackStatus = errors.New("plugin callback returned non-zero status")

// Callback is a plugin entry point invoked once per timestep.
type Callback func() (int, error)

// RunConfig controls the timestep loop.
type RunConfig struct {
	RunID       string
	ZoneID      string
	Steps       int           // 0 runs until the context is cancelled
	WarmupSteps int           // timesteps before the data exchange reports ready
	Pace        time.Duration // wall time per timestep, 0 runs flat out
}

// Runner is the host side of the plugin: it owns the zone model, publishes
// its humidity into the registry and applies the actuated opening factor.
type Runner struct {
	lg    *slog.Logger
	cfg   RunConfig
	model *Model
	reg   *exchange.Registry
	sink  telemetry.Sink

	beforePredictor []Callback

	mu   sync.Mutex
	last telemetry.Record
	has  bool
}

// NewRunner registers the zone node variable and the window actuator in reg.
func NewRunner(cfg RunConfig, model *Model, reg *exchange.Registry, sink telemetry.Sink, lg *slog.Logger) (*Runner, error) {
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.WarmupSteps < 0 {
		return nil, fmt.Errorf("warmup steps must be >= 0, got %d", cfg.WarmupSteps)
	}
	if err := reg.RegisterVariable(plugin.SensorName, plugin.SensorKey, model.RH()); err != nil {
		return nil, err
	}
	if err := reg.RegisterActuator(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey, 0, 1); err != nil {
		return nil, err
	}
	return &Runner{lg: lg, cfg: cfg, model: model, reg: reg, sink: sink}, nil
}

// OnBeginTimestepBeforePredictor registers cb for the start of each timestep.
func (r *Runner) OnBeginTimestepBeforePredictor(cb Callback) {
	r.beforePredictor = append(r.beforePredictor, cb)
}

// SetSink replaces the telemetry sink; call it before Run.
func (r *Runner) SetSink(s telemetry.Sink) { r.sink = s }

func (r *Runner) RunID() string { return r.cfg.RunID }

// Run drives the timestep loop. A callback failure ends the run with an
// error; cancelling ctx ends it cleanly.
func (r *Runner) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.cfg.Pace > 0 {
		t := time.NewTicker(r.cfg.Pace)
		defer t.Stop()
		tick = t.C
	}
	r.lg.Info("simulation started", "runId", r.cfg.RunID, "zoneId", r.cfg.ZoneID, "steps", r.cfg.Steps,
		"warmup", r.cfg.WarmupSteps, "step", r.model.Step().String(), "pace", r.cfg.Pace.String())

	for step := 0; r.cfg.Steps == 0 || step < r.cfg.Steps; step++ {
		if ctx.Err() != nil {
			r.lg.Info("simulation stopped", "step", step)
			return nil
		}
		if step > 0 && tick != nil {
			select {
			case <-ctx.Done():
				r.lg.Info("simulation stopped", "step", step)
				return nil
			case <-tick:
			}
		}
		if err := r.timestep(ctx, step); err != nil {
			r.lg.Error("simulation aborted", "step", step, "err", err)
			return err
		}
	}
	r.lg.Info("simulation complete", "steps", r.cfg.Steps)
	return nil
}

func (r *Runner) timestep(ctx context.Context, step int) error {
	if step >= r.cfg.WarmupSteps {
		r.reg.SetReady(true)
	}
	rh := r.model.RH()
	out := r.model.OutdoorRH()
	if err := r.reg.SetVariable(plugin.SensorName, plugin.SensorKey, rh); err != nil {
		return err
	}

	for i, cb := range r.beforePredictor {
		status, err := cb()
		if err != nil {
			return fmt.Errorf("step %d: callback %d: %w", step, i, err)
		}
		if status != plugin.StatusOK {
			return fmt.Errorf("step %d: callback %d: %w (%d)", step, i, ErrCallbackStatus, status)
		}
	}

	factor, actuated := r.reg.Actuated(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey)
	if !actuated {
		factor = 0
	}
	rec := telemetry.Record{
		RunID:         r.cfg.RunID,
		ZoneID:        r.cfg.ZoneID,
		Step:          step,
		SimHours:      r.model.SimTime().Hours(),
		Timestamp:     time.Now().UTC(),
		ZoneRH:        rh,
		OutdoorRH:     out,
		OpeningFactor: factor,
		ExchangeReady: r.reg.APIDataFullyReady(),
		Actuated:      actuated,
	}
	r.model.Integrate(factor)

	r.mu.Lock()
	r.last, r.has = rec, true
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.Publish(ctx, rec); err != nil {
			r.lg.Warn("telemetry publish failed", "step", step, "err", err)
		}
	}
	return nil
}

// Snapshot returns the most recent timestep record.
func (r *Runner) Snapshot() (telemetry.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.has
}
