package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

// telemetry builds a one-view record with uniform rod state.
func telemetry(bx, by, vx, vy float64) *simclient.TelemetryRecord {
	positions := make([]float64, simclient.NumRods)
	angles := make([]float64, simclient.NumRods)
	for i := range positions {
		positions[i] = 0.5
	}
	return &simclient.TelemetryRecord{CamData: []simclient.CamData{{
		BallX: bx, BallY: by, BallVX: vx, BallVY: vy,
		RodPositionCalib: positions,
		RodAngle:         angles,
	}}}
}

func restingFrame() Frame {
	return Frame{
		Prev: telemetry(605, 350, 0, 0),
		Cur:  telemetry(605, 350, 0, 0),
	}
}

func TestStabilityBaseline(t *testing.T) {
	s := NewStabilityShaper(geometry.TeamRed)
	assert.InDelta(t, s.Baseline(), s.Reward(restingFrame()), 1e-9)
	assert.InDelta(t, 0.1, s.Baseline(), 1e-9)
}

func TestStabilityBallMovingBonus(t *testing.T) {
	s := NewStabilityShaper(geometry.TeamRed)
	frame := restingFrame()
	frame.Cur = telemetry(605, 350, 0, 0.3)
	assert.InDelta(t, 0.2, s.Reward(frame), 1e-9)
}

func TestStabilityShakingPenalties(t *testing.T) {
	s := NewStabilityShaper(geometry.TeamRed)

	frame := restingFrame()
	cur := telemetry(605, 350, 0, 0)
	// Move every managed rod by 0.1: L1 delta 0.4 over the threshold 0.2.
	for i := 0; i < 4; i++ {
		cur.CamData[0].RodPositionCalib[i] = 0.6
	}
	frame.Cur = cur
	assert.InDelta(t, 0.1-0.4*0.5, s.Reward(frame), 1e-9)

	frame = restingFrame()
	cur = telemetry(605, 350, 0, 0)
	// Rotate every managed rod by 2 degrees: L1 delta 8 over threshold 5.
	for i := 0; i < 4; i++ {
		cur.CamData[0].RodAngle[i] = 2
	}
	frame.Cur = cur
	assert.InDelta(t, 0.1-8*0.1, s.Reward(frame), 1e-9)
}

func TestStabilityOwnGoalPenaltyByTeam(t *testing.T) {
	frame := restingFrame()
	frame.Cur = telemetry(605, 350, -0.3, 0)

	red := NewStabilityShaper(geometry.TeamRed)
	blue := NewStabilityShaper(geometry.TeamBlue)

	// Ball heading toward x=0 threatens only the red goal. The ball is
	// also over the moving threshold, so the moving bonus applies.
	assert.InDelta(t, 0.1+0.1-0.5, red.Reward(frame), 1e-9)
	assert.InDelta(t, 0.1+0.1, blue.Reward(frame), 1e-9)
}

func TestGoalTerminalRewards(t *testing.T) {
	s := NewStabilityShaper(geometry.TeamRed)

	frame := restingFrame()
	frame.ScoredFor = 1
	assert.InDelta(t, 0.1+10, s.Reward(frame), 1e-9)

	frame = restingFrame()
	frame.ScoredAgainst = 1
	assert.InDelta(t, 0.1-5, s.Reward(frame), 1e-9)

	a := NewAttackShaper(geometry.Default(), geometry.TeamRed)
	frame = restingFrame()
	frame.ScoredFor = 1
	assert.InDelta(t, 10.0, a.Reward(frame), 1e-9)
}

func TestAttackBaseline(t *testing.T) {
	a := NewAttackShaper(geometry.Default(), geometry.TeamRed)
	assert.InDelta(t, a.Baseline(), a.Reward(restingFrame()), 1e-9)
	assert.InDelta(t, 0.0, a.Baseline(), 1e-9)
}

func TestAttackSpeedBonus(t *testing.T) {
	a := NewAttackShaper(geometry.Default(), geometry.TeamRed)
	frame := restingFrame()
	frame.Prev = telemetry(605, 350, 1, 0)
	frame.Cur = telemetry(605, 350, 1, 0)
	// Speed term only: 0.05 * 1.0. No contact (velocity unchanged), no
	// progress (same x), no figure in reach at midfield.
	assert.InDelta(t, 0.05, a.Reward(frame), 1e-9)
}

func TestAttackProximityBonus(t *testing.T) {
	a := NewAttackShaper(geometry.Default(), geometry.TeamRed)
	frame := restingFrame()
	// Rod 4 sits at x=525; at calib 0.5 its middle figure is at y=350.
	frame.Cur = telemetry(525, 350, 0, 0)
	frame.Prev = telemetry(525, 350, 0, 0)
	assert.InDelta(t, 0.2, a.Reward(frame), 1e-9)

	// The same spot is not in reach for blue figures.
	blue := NewAttackShaper(geometry.Default(), geometry.TeamBlue)
	assert.InDelta(t, 0.0, blue.Reward(frame), 1e-9)
}

func TestAttackProximityIndexesRodsByID(t *testing.T) {
	// A geometry file may list rods in any order; telemetry slots are
	// fixed by rod id.
	full := geometry.Default()
	reversed := &geometry.Table{Field: full.Field}
	for i := len(full.Rods) - 1; i >= 0; i-- {
		reversed.Rods = append(reversed.Rods, full.Rods[i])
	}
	require.NoError(t, reversed.Validate())

	// Only rod 4 is at mid travel; its middle figure sits at y=350.
	cur := telemetry(525, 350, 0, 0)
	for i := range cur.CamData[0].RodPositionCalib {
		cur.CamData[0].RodPositionCalib[i] = 0.0
	}
	cur.CamData[0].RodPositionCalib[3] = 0.5

	a := NewAttackShaper(reversed, geometry.TeamRed)
	assert.InDelta(t, 0.2, a.Reward(Frame{Prev: cur, Cur: cur}), 1e-9)
}

func TestAttackNoProximityBonusOutsideField(t *testing.T) {
	table := &geometry.Table{
		Field: geometry.Field{DimensionX: 1210, DimensionY: 700},
		Rods: []geometry.Rod{
			{ID: 1, Team: geometry.TeamRed, Position: 525, Travel: 100, Players: 1, FirstOffset: 640},
		},
	}
	require.NoError(t, table.Validate())
	a := NewAttackShaper(table, geometry.TeamRed)

	// The figure sits at y=690 with the rod at mid travel; a ball at
	// y=680 is in reach, the same ball on the boundary is out of play.
	inField := Frame{Prev: telemetry(525, 680, 0, 0), Cur: telemetry(525, 680, 0, 0)}
	assert.InDelta(t, 0.2, a.Reward(inField), 1e-9)

	outOfPlay := Frame{Prev: telemetry(525, 700, 0, 0), Cur: telemetry(525, 700, 0, 0)}
	assert.InDelta(t, 0.0, a.Reward(outOfPlay), 1e-9)
}

func TestAttackProgressBonusIsTeamRelative(t *testing.T) {
	table := geometry.Default()
	frame := restingFrame()
	frame.Prev = telemetry(600, 350, 0, 0)
	frame.Cur = telemetry(608, 350, 0, 0)

	red := NewAttackShaper(table, geometry.TeamRed)
	blue := NewAttackShaper(table, geometry.TeamBlue)
	assert.InDelta(t, 0.02*8, red.Reward(frame), 1e-9)
	assert.InDelta(t, 0.0, blue.Reward(frame), 1e-9)
}

func TestAttackContactBonus(t *testing.T) {
	a := NewAttackShaper(geometry.Default(), geometry.TeamRed)
	frame := restingFrame()
	frame.Prev = telemetry(605, 350, 0.5, 0)
	frame.Cur = telemetry(605, 350, -0.5, 0)
	// Velocity flipped by 1 m/s: contact, plus speed term 0.05*0.5.
	assert.InDelta(t, 0.3+0.025, a.Reward(frame), 1e-9)
}
