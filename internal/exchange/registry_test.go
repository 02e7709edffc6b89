// v0
// internal/exchange/registry_test.go
package exchange

import (
	"errors"
	"math"
	"testing"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/plugin"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	if err := r.RegisterVariable(plugin.SensorName, plugin.SensorKey, 40); err != nil {
		t.Fatalf("register variable: %v", err)
	}
	if err := r.RegisterActuator(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey, 0, 1); err != nil {
		t.Fatalf("register actuator: %v", err)
	}
	return r
}

func TestRegistryLookupsRequireReadiness(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.VariableHandle(plugin.SensorName, plugin.SensorKey); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, err := r.ActuatorHandle(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	r.SetReady(true)
	if !r.APIDataFullyReady() {
		t.Fatalf("expected ready")
	}
	h, err := r.VariableHandle("system node relative humidity", "ZONE 1 NODE")
	if err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if !h.Valid() {
		t.Fatalf("invalid handle %v", h)
	}
}

func TestRegistryUnknownNames(t *testing.T) {
	r := newTestRegistry(t)
	r.SetReady(true)
	if _, err := r.VariableHandle("Zone Mean Air Temperature", "Zone 1"); !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("expected ErrVariableNotFound, got %v", err)
	}
	if _, err := r.ActuatorHandle(plugin.ActuatorComponent, plugin.ActuatorControl, "Zn001:Wall002:Win001"); !errors.Is(err, ErrActuatorNotFound) {
		t.Fatalf("expected ErrActuatorNotFound, got %v", err)
	}
	if got := r.Stats(); got.VariableLookups != 1 || got.ActuatorLookups != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestRegistryReadWrite(t *testing.T) {
	r := newTestRegistry(t)
	r.SetReady(true)
	sh, _ := r.VariableHandle(plugin.SensorName, plugin.SensorKey)
	ah, _ := r.ActuatorHandle(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey)

	if err := r.SetVariable(plugin.SensorName, plugin.SensorKey, 55.5); err != nil {
		t.Fatalf("set variable: %v", err)
	}
	v, err := r.VariableValue(sh)
	if err != nil || v != 55.5 {
		t.Fatalf("value=%v err=%v", v, err)
	}

	if _, ok := r.Actuated(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey); ok {
		t.Fatalf("actuator reported as written before any write")
	}
	tests := []struct {
		in, want float64
	}{
		{0.25, 0.25},
		{1.7, 1},
		{-0.3, 0},
	}
	for _, tc := range tests {
		if err := r.SetActuatorValue(ah, tc.in); err != nil {
			t.Fatalf("set actuator %v: %v", tc.in, err)
		}
		got, ok := r.Actuated(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey)
		if !ok || got != tc.want {
			t.Fatalf("write %v: got %v ok=%v want %v", tc.in, got, ok, tc.want)
		}
	}
	if err := r.SetActuatorValue(ah, math.NaN()); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if got := r.Stats(); got.Reads != 1 || got.Writes != 3 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestRegistryInvalidHandles(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.VariableValue(plugin.SensorHandle{}); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle, got %v", err)
	}
	if err := r.SetActuatorValue(plugin.NewActuatorHandle(42), 0.5); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestRegistryRejectsDuplicatesAndBadLimits(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.RegisterVariable(plugin.SensorName, "zone 1 node", 0); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := r.RegisterActuator("Schedule:Constant", "Schedule Value", "S", 1, 0); err == nil {
		t.Fatalf("expected error for inverted limits")
	}
}

func TestRegistryDrivesController(t *testing.T) {
	r := newTestRegistry(t)
	c := plugin.NewController(r, nil)

	if _, err := c.OnBeginTimestepBeforePredictor(); err != nil {
		t.Fatalf("unexpected error before ready: %v", err)
	}
	if got := r.Stats(); got.VariableLookups != 0 {
		t.Fatalf("lookup attempted before ready: %+v", got)
	}

	r.SetReady(true)
	for _, rh := range []float64{20, 42.5, 75} {
		_ = r.SetVariable(plugin.SensorName, plugin.SensorKey, rh)
		if status, err := c.OnBeginTimestepBeforePredictor(); status != plugin.StatusOK || err != nil {
			t.Fatalf("rh %v: status=%d err=%v", rh, status, err)
		}
		got, _ := r.Actuated(plugin.ActuatorComponent, plugin.ActuatorControl, plugin.ActuatorKey)
		if want := plugin.OpeningFactor(rh); got != want {
			t.Fatalf("rh %v: actuated %v want %v", rh, got, want)
		}
	}
	if got := r.Stats(); got.VariableLookups != 1 || got.ActuatorLookups != 1 {
		t.Fatalf("expected one lookup each, got %+v", got)
	}
}
