// Package agent maps telemetry snapshots to motor commands. Two agents
// are provided: a scripted goalkeeper demo and a policy-driven agent fed
// by an external action source.
package agent

import "github.com/gaspersavle/FuzbAISim/internal/simclient"

// Agent turns one telemetry snapshot into the motor commands for this tick.
type Agent interface {
	ProcessData(record *simclient.TelemetryRecord) []simclient.MotorCommand
}

// Exploration tracks a multiplicatively decaying exploration rate with a
// floor, as used by the training loop's action selection.
type Exploration struct {
	Rate  float64
	Decay float64
	Min   float64
}

// NewExploration returns the default schedule: start fully random, decay
// by 0.5% per update, keep at least 10% randomness.
func NewExploration() *Exploration {
	return &Exploration{Rate: 1.0, Decay: 0.995, Min: 0.1}
}

// Step decays the rate and returns the value in effect before the decay.
func (e *Exploration) Step() float64 {
	rate := e.Rate
	e.Rate *= e.Decay
	if e.Rate < e.Min {
		e.Rate = e.Min
	}
	return rate
}
