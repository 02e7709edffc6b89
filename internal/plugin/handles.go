// v0
// internal/plugin/handles.go
package plugin

import "fmt"

// SensorHandle identifies an output variable registered by the host.
// The zero value is never issued by a host and means "unresolved".
type SensorHandle struct{ id int }

// ActuatorHandle identifies an actuator registered by the host.
// The zero value is never issued by a host and means "unresolved".
type ActuatorHandle struct{ id int }

// NewSensorHandle wraps a host-assigned variable identifier.
func NewSensorHandle(id int) SensorHandle { return SensorHandle{id: id} }

// NewActuatorHandle wraps a host-assigned actuator identifier.
func NewActuatorHandle(id int) ActuatorHandle { return ActuatorHandle{id: id} }

func (h SensorHandle) ID() int        { return h.id }
func (h SensorHandle) Valid() bool    { return h.id > 0 }
func (h SensorHandle) String() string { return fmt.Sprintf("sensor#%d", h.id) }

func (h ActuatorHandle) ID() int        { return h.id }
func (h ActuatorHandle) Valid() bool    { return h.id > 0 }
func (h ActuatorHandle) String() string { return fmt.Sprintf("actuator#%d", h.id) }

// Exchange is the data exchange surface a host simulation offers to plugins.
type Exchange interface {
	// APIDataFullyReady reports whether variables and actuators can be looked up.
	APIDataFullyReady() bool
	VariableHandle(name, key string) (SensorHandle, error)
	ActuatorHandle(component, control, key string) (ActuatorHandle, error)
	VariableValue(h SensorHandle) (float64, error)
	SetActuatorValue(h ActuatorHandle, value float64) error
}

// Lookup names used by the venting controller.
const (
	SensorName = "System Node Relative Humidity"
	SensorKey  = "Zone 1 Node"

	ActuatorComponent = "AirFlow Network Window/Door Opening"
	ActuatorControl   = "Venting Opening Factor"
	ActuatorKey       = "Zn001:Wall001:Win001"
)
