// Package simstub is an in-process stand-in for the foosball simulator's
// HTTP API, used for local development and integration tests. Physics is
// deliberately crude: rods slew toward their commanded targets and the
// ball integrates straight-line motion with wall bounces and goals.
package simstub

import (
	"context"
	"sync"
	"time"

	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

// Drive-to-rod mapping per motor bank. The red bank counts rods from the
// red goal, the blue bank mirrors it from the opposite end.
var (
	redDriveToRod  = map[int]int{1: 0, 2: 1, 3: 3, 4: 5}
	blueDriveToRod = map[int]int{1: 7, 2: 6, 3: 4, 4: 2}
)

// Goal mouth half-height in millimeters around the field center line.
const goalHalfWidth = 100.0

// rodTarget is the latest accepted command for one rod.
type rodTarget struct {
	translation float64 // [0,1]
	transVel    float64
	rotation    float64 // [-1,1], scaled to degrees on report
	rotVel      float64
}

// Table is the simulated table state. All methods are safe for
// concurrent use.
type Table struct {
	mu    sync.RWMutex
	geo   *geometry.Table
	score [2]int

	ballX, ballY   float64
	ballVX, ballVY float64

	positions [simclient.NumRods]float64 // calibrated [0,1]
	angles    [simclient.NumRods]float64 // degrees [-32,32]
	targets   [simclient.NumRods]rodTarget
}

// NewTable creates a table with the ball centered and rods at rest.
func NewTable(geo *geometry.Table) *Table {
	t := &Table{geo: geo}
	t.reset()
	return t
}

func (t *Table) reset() {
	t.ballX = t.geo.Field.DimensionX / 2
	t.ballY = t.geo.Field.DimensionY / 2
	t.ballVX, t.ballVY = 0, 0
	for i := range t.positions {
		t.positions[i] = 0.5
		t.angles[i] = 0
		t.targets[i] = rodTarget{translation: 0.5}
	}
}

// SetBall places the ball, mainly for tests and scripted scenarios.
func (t *Table) SetBall(x, y, vx, vy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ballX, t.ballY = x, y
	t.ballVX, t.ballVY = vx, vy
}

// Score returns the current (red, blue) goal count.
func (t *Table) Score() [2]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.score
}

// Apply stores motor commands for one bank; unknown drives are ignored,
// matching the forgiving behavior of the real simulator.
func (t *Table) Apply(blue bool, commands []simclient.MotorCommand) {
	mapping := redDriveToRod
	if blue {
		mapping = blueDriveToRod
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cmd := range commands {
		rod, ok := mapping[cmd.DriveID]
		if !ok {
			continue
		}
		cmd = cmd.Clamp()
		t.targets[rod] = rodTarget{
			translation: cmd.TranslationTargetPosition,
			transVel:    cmd.TranslationVelocity,
			rotation:    cmd.RotationTargetPosition,
			rotVel:      cmd.RotationVelocity,
		}
	}
}

// Advance integrates the table by dt: rods slew toward their targets and
// the ball moves, bounces, and scores.
func (t *Table) Advance(dt time.Duration) {
	sec := dt.Seconds()
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.positions {
		tgt := t.targets[i]
		// Translation velocity 1.0 covers the travel in one second.
		t.positions[i] = approach(t.positions[i], tgt.translation, tgt.transVel*sec)
		// Rotation is reported in calibrated degrees.
		t.angles[i] = approach(t.angles[i], tgt.rotation*32, tgt.rotVel*32*sec)
	}

	// Ball velocities are in m/s, positions in mm.
	t.ballX += t.ballVX * 1000 * sec
	t.ballY += t.ballVY * 1000 * sec

	if t.ballY < 0 {
		t.ballY, t.ballVY = -t.ballY, -t.ballVY
	}
	if t.ballY > t.geo.Field.DimensionY {
		t.ballY = 2*t.geo.Field.DimensionY - t.ballY
		t.ballVY = -t.ballVY
	}

	center := t.geo.Field.DimensionY / 2
	inMouth := t.ballY > center-goalHalfWidth && t.ballY < center+goalHalfWidth
	switch {
	case t.ballX < 0 && inMouth:
		// Past the red goal line: blue scores.
		t.score[1]++
		t.resetBall()
	case t.ballX > t.geo.Field.DimensionX && inMouth:
		t.score[0]++
		t.resetBall()
	case t.ballX < 0:
		t.ballX, t.ballVX = -t.ballX, -t.ballVX
	case t.ballX > t.geo.Field.DimensionX:
		t.ballX = 2*t.geo.Field.DimensionX - t.ballX
		t.ballVX = -t.ballVX
	}
}

func (t *Table) resetBall() {
	t.ballX = t.geo.Field.DimensionX / 2
	t.ballY = t.geo.Field.DimensionY / 2
	t.ballVX, t.ballVY = 0, 0
}

// Telemetry renders the current state as the simulator would report it,
// duplicated across both camera views.
func (t *Table) Telemetry() *simclient.TelemetryRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	view := simclient.CamData{
		BallX:            t.ballX,
		BallY:            t.ballY,
		BallVX:           t.ballVX,
		BallVY:           t.ballVY,
		BallSize:         120,
		RodPositionCalib: append([]float64(nil), t.positions[:]...),
		RodAngle:         append([]float64(nil), t.angles[:]...),
	}
	return &simclient.TelemetryRecord{
		CamData: []simclient.CamData{view, view},
		Score:   t.score,
	}
}

// Run advances the table on a fixed interval until ctx is cancelled.
func (t *Table) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Advance(interval)
		}
	}
}

// approach moves cur toward target by at most step.
func approach(cur, target, step float64) float64 {
	if step <= 0 {
		return cur
	}
	diff := target - cur
	if diff > step {
		return cur + step
	}
	if diff < -step {
		return cur - step
	}
	return target
}
