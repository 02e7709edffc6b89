// v0
// internal/plugin/controller.go
package plugin

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Callback status codes returned to the host.
const (
	StatusOK     = 0
	StatusFailed = 1
)

// ErrInvalidHandle is returned when the host hands back a handle it never issued.
var ErrInvalidHandle = errors.New("host returned an invalid handle")

// State is the handle resolution state of a Controller.
type State int

const (
	AwaitingHandles State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case AwaitingHandles:
		return "AwaitingHandles"
	case Ready:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller opens a zone window for natural venting as humidity rises.
// It is driven by the host once per timestep from a single goroutine.
type Controller struct {
	ex  Exchange
	lg  *slog.Logger
	st  State
	rh  SensorHandle
	act ActuatorHandle
}

func NewController(ex Exchange, lg *slog.Logger) *Controller {
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{ex: ex, lg: lg, st: AwaitingHandles}
}

// State returns the current resolution state.
func (c *Controller) State() State { return c.st }

// Handles returns the resolved handles; ok is false until the controller is Ready.
func (c *Controller) Handles() (SensorHandle, ActuatorHandle, bool) {
	return c.rh, c.act, c.st == Ready
}

// OnBeginTimestepBeforePredictor is the per-timestep entry point. Until the
// host reports its data exchange ready it does nothing and returns StatusOK.
// Any lookup, read or write failure is returned to the host with StatusFailed.
func (c *Controller) OnBeginTimestepBeforePredictor() (int, error) {
	if c.st == AwaitingHandles {
		if !c.ex.APIDataFullyReady() {
			return StatusOK, nil
		}
		if err := c.resolve(); err != nil {
			return StatusFailed, err
		}
	}

	rh, err := c.ex.VariableValue(c.rh)
	if err != nil {
		return StatusFailed, fmt.Errorf("read %s: %w", c.rh, err)
	}
	factor := OpeningFactor(rh)
	if err := c.ex.SetActuatorValue(c.act, factor); err != nil {
		return StatusFailed, fmt.Errorf("write %s: %w", c.act, err)
	}
	c.lg.Debug("venting actuated", "rh", rh, "factor", factor)
	return StatusOK, nil
}

// resolve looks both handles up and commits them together.
func (c *Controller) resolve() error {
	rh, err := c.ex.VariableHandle(SensorName, SensorKey)
	if err != nil {
		return fmt.Errorf("variable handle %q/%q: %w", SensorName, SensorKey, err)
	}
	if !rh.Valid() {
		return fmt.Errorf("variable handle %q/%q: %w", SensorName, SensorKey, ErrInvalidHandle)
	}
	act, err := c.ex.ActuatorHandle(ActuatorComponent, ActuatorControl, ActuatorKey)
	if err != nil {
		return fmt.Errorf("actuator handle %q/%q/%q: %w", ActuatorComponent, ActuatorControl, ActuatorKey, err)
	}
	if !act.Valid() {
		return fmt.Errorf("actuator handle %q/%q/%q: %w", ActuatorComponent, ActuatorControl, ActuatorKey, ErrInvalidHandle)
	}
	c.rh, c.act, c.st = rh, act, Ready
	c.lg.Info("handles resolved", "sensor", rh.String(), "actuator", act.String())
	return nil
}
