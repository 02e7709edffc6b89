// v0
// internal/zone/model.go
package zone

import (
	"math"
	"time"
)

// Params describes the single-zone moisture balance.
type Params struct {
	Step             time.Duration // simulated timestep
	InitialRH        float64       // zone relative humidity at t=0, percent
	OutdoorMean      float64       // daily mean outdoor relative humidity, percent
	OutdoorAmplitude float64       // half swing of the daily outdoor cycle, percent
	GainPctPerHour   float64       // internal moisture gains (occupants, cooking) as RH rise per hour
	Alpha            float64       // infiltration exchange rate, 1/s
	Beta             float64       // venting exchange rate at a fully open window, 1/s
}

// Model integrates zone RH one timestep at a time. It is not safe for
// concurrent use; the Runner owns it.
type Model struct {
	p   Params
	rh  float64
	sim time.Duration
}

func NewModel(p Params) *Model {
	if p.Step <= 0 {
		p.Step = 10 * time.Minute
	}
	return &Model{p: p, rh: clampRH(p.InitialRH)}
}

func (m *Model) RH() float64            { return m.rh }
func (m *Model) SimTime() time.Duration { return m.sim }
func (m *Model) Step() time.Duration    { return m.p.Step }

// OutdoorRH is the outdoor humidity at the current simulated time. It peaks
// around 06:00 and bottoms out around 18:00.
func (m *Model) OutdoorRH() float64 {
	hours := math.Mod(m.sim.Hours(), 24)
	return clampRH(m.p.OutdoorMean + m.p.OutdoorAmplitude*math.Cos(2*math.Pi*(hours-6)/24))
}

// Integrate advances the model by one step with the window opened by factor.
func (m *Model) Integrate(factor float64) {
	if math.IsNaN(factor) {
		factor = 0
	}
	factor = math.Min(math.Max(factor, 0), 1)
	dt := m.p.Step.Seconds()
	out := m.OutdoorRH()

	m.rh += math.Min(m.p.Alpha*dt, 1) * (out - m.rh)
	m.rh += m.p.GainPctPerHour * m.p.Step.Hours()
	m.rh += math.Min(factor*m.p.Beta*dt, 1) * (out - m.rh)
	m.rh = clampRH(m.rh)
	m.sim += m.p.Step
}

func clampRH(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}
