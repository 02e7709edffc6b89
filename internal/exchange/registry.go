// v0
// internal/exchange/registry.go
package exchange

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/plugin"
)

var (
	ErrNotReady         = errors.New("data exchange not ready")
	ErrVariableNotFound = errors.New("output variable not found")
	ErrActuatorNotFound = errors.New("actuator not found")
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrInvalidValue     = errors.New("invalid actuator value")
	ErrDuplicate        = errors.New("already registered")
)

type variable struct {
	name, key string
	value     float64
}

type actuator struct {
	component, control, key string
	lower, upper            float64
	value                   float64
	actuated                bool
}

// Stats counts calls against the registry.
type Stats struct {
	VariableLookups int `json:"variableLookups"`
	ActuatorLookups int `json:"actuatorLookups"`
	Reads           int `json:"reads"`
	Writes          int `json:"writes"`
}

// Registry is an in-process data exchange for a single simulation run.
// Names are matched case-insensitively and handles are issued from 1.
type Registry struct {
	lg *slog.Logger

	mu        sync.Mutex
	ready     bool
	variables []variable
	actuators []actuator
	varIdx    map[string]int
	actIdx    map[string]int
	stats     Stats
}

var _ plugin.Exchange = (*Registry)(nil)

func NewRegistry(lg *slog.Logger) *Registry {
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{lg: lg, varIdx: map[string]int{}, actIdx: map[string]int{}}
}

func varKey(name, key string) string {
	return strings.ToUpper(strings.TrimSpace(name)) + "|" + strings.ToUpper(strings.TrimSpace(key))
}

func actKey(component, control, key string) string {
	return strings.ToUpper(strings.TrimSpace(component)) + "|" +
		strings.ToUpper(strings.TrimSpace(control)) + "|" +
		strings.ToUpper(strings.TrimSpace(key))
}

// RegisterVariable adds an output variable with its initial value.
func (r *Registry) RegisterVariable(name, key string, initial float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := varKey(name, key)
	if _, ok := r.varIdx[k]; ok {
		return fmt.Errorf("variable %s/%s: %w", name, key, ErrDuplicate)
	}
	r.variables = append(r.variables, variable{name: name, key: key, value: initial})
	r.varIdx[k] = len(r.variables)
	r.lg.Info("variable registered", "name", name, "key", key, "handle", len(r.variables))
	return nil
}

// RegisterActuator adds an actuator whose writes are clamped to [lower, upper].
func (r *Registry) RegisterActuator(component, control, key string, lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("actuator %s/%s/%s: lower %.3f above upper %.3f", component, control, key, lower, upper)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := actKey(component, control, key)
	if _, ok := r.actIdx[k]; ok {
		return fmt.Errorf("actuator %s/%s/%s: %w", component, control, key, ErrDuplicate)
	}
	r.actuators = append(r.actuators, actuator{component: component, control: control, key: key, lower: lower, upper: upper})
	r.actIdx[k] = len(r.actuators)
	r.lg.Info("actuator registered", "component", component, "control", control, "key", key, "handle", len(r.actuators))
	return nil
}

// SetReady flips the readiness flag reported to plugins.
func (r *Registry) SetReady(ready bool) {
	r.mu.Lock()
	changed := r.ready != ready
	r.ready = ready
	r.mu.Unlock()
	if changed {
		r.lg.Info("data exchange readiness", "ready", ready)
	}
}

func (r *Registry) APIDataFullyReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func (r *Registry) VariableHandle(name, key string) (plugin.SensorHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.VariableLookups++
	if !r.ready {
		return plugin.SensorHandle{}, ErrNotReady
	}
	id, ok := r.varIdx[varKey(name, key)]
	if !ok {
		return plugin.SensorHandle{}, fmt.Errorf("%s/%s: %w", name, key, ErrVariableNotFound)
	}
	return plugin.NewSensorHandle(id), nil
}

func (r *Registry) ActuatorHandle(component, control, key string) (plugin.ActuatorHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.ActuatorLookups++
	if !r.ready {
		return plugin.ActuatorHandle{}, ErrNotReady
	}
	id, ok := r.actIdx[actKey(component, control, key)]
	if !ok {
		return plugin.ActuatorHandle{}, fmt.Errorf("%s/%s/%s: %w", component, control, key, ErrActuatorNotFound)
	}
	return plugin.NewActuatorHandle(id), nil
}

func (r *Registry) VariableValue(h plugin.SensorHandle) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID() < 1 || h.ID() > len(r.variables) {
		return 0, fmt.Errorf("%s: %w", h, ErrInvalidHandle)
	}
	r.stats.Reads++
	return r.variables[h.ID()-1].value, nil
}

func (r *Registry) SetActuatorValue(h plugin.ActuatorHandle, value float64) error {
	if math.IsNaN(value) {
		return fmt.Errorf("%s: %w: NaN", h, ErrInvalidValue)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID() < 1 || h.ID() > len(r.actuators) {
		return fmt.Errorf("%s: %w", h, ErrInvalidHandle)
	}
	a := &r.actuators[h.ID()-1]
	clamped := math.Min(math.Max(value, a.lower), a.upper)
	if clamped != value {
		r.lg.Warn("actuator value clamped", "actuator", a.key, "value", value, "clamped", clamped)
	}
	a.value = clamped
	a.actuated = true
	r.stats.Writes++
	return nil
}

// SetVariable updates a variable value from the host side.
func (r *Registry) SetVariable(name, key string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.varIdx[varKey(name, key)]
	if !ok {
		return fmt.Errorf("%s/%s: %w", name, key, ErrVariableNotFound)
	}
	r.variables[id-1].value = value
	return nil
}

// Actuated returns the value last written to an actuator. ok is false if the
// actuator is unknown or no plugin has written it yet.
func (r *Registry) Actuated(component, control, key string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.actIdx[actKey(component, control, key)]
	if !ok {
		return 0, false
	}
	a := r.actuators[id-1]
	return a.value, a.actuated
}

// Stats returns a copy of the call counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
