package env

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

// Frame packages everything a shaping function sees for one step: the
// telemetry before and after the step and the goal deltas observed
// between them, from the perspective of the managed team.
type Frame struct {
	Prev *simclient.TelemetryRecord
	Cur  *simclient.TelemetryRecord
	// ScoredFor / ScoredAgainst are goal count deltas for this step.
	ScoredFor     int
	ScoredAgainst int
}

// Shaper computes a dense shaping reward for a step.
type Shaper interface {
	// Name identifies the variant in logs and episode records.
	Name() string
	// Baseline is the reward for a zero-velocity centered ball with no
	// rod movement and no goals.
	Baseline() float64
	Reward(frame Frame) float64
}

// Terminal goal bonuses shared by both shaping variants.
const (
	goalScoredBonus     = 10.0
	goalConcededPenalty = -5.0
)

// Stability variant constants.
const (
	stabilityBaseline     = 0.1
	ballMovingBonus       = 0.1
	ballMovingThreshold   = 0.2
	shakeThreshold        = 0.2
	shakePenaltyWeight    = 0.5
	rotationThreshold     = 5.0
	rotationPenaltyWeight = 0.1
	ownGoalPenalty        = -0.5
	ownGoalVXThreshold    = 0.2
)

// StabilityShaper rewards calm play: it pays a small constant, a bonus
// for a moving ball, and takes it back for rod shaking, shots toward the
// own goal, and conceded goals.
type StabilityShaper struct {
	team geometry.Team
}

// NewStabilityShaper builds the variant for the given team.
func NewStabilityShaper(team geometry.Team) *StabilityShaper {
	return &StabilityShaper{team: team}
}

func (s *StabilityShaper) Name() string      { return "stability" }
func (s *StabilityShaper) Baseline() float64 { return stabilityBaseline }

func (s *StabilityShaper) Reward(frame Frame) float64 {
	cur := frame.Cur.Primary()
	prev := frame.Prev.Primary()

	reward := stabilityBaseline

	if math.Abs(cur.BallVX) > ballMovingThreshold || math.Abs(cur.BallVY) > ballMovingThreshold {
		reward += ballMovingBonus
	}

	// Shaking penalties over the first four rods (the managed bank).
	movement := l1Delta(cur.RodPositionCalib, prev.RodPositionCalib, 4)
	if movement > shakeThreshold {
		reward -= movement * shakePenaltyWeight
	}
	rotation := l1Delta(cur.RodAngle, prev.RodAngle, 4)
	if rotation > rotationThreshold {
		reward -= rotation * rotationPenaltyWeight
	}

	// Shooting toward the own goal. Red defends x=0, blue the far end.
	if s.team == geometry.TeamRed && cur.BallVX < -ownGoalVXThreshold {
		reward += ownGoalPenalty
	}
	if s.team == geometry.TeamBlue && cur.BallVX > ownGoalVXThreshold {
		reward += ownGoalPenalty
	}

	reward += goalReward(frame)
	return reward
}

// Attack variant constants.
const (
	attackBaseline       = 0.0
	speedBonusWeight     = 0.05
	speedBonusCap        = 2.0
	proximityBonus       = 0.2
	proximityRodRange    = 40.0 // mm between ball and rod plane
	proximityPlayerRange = 30.0 // mm between ball and nearest figure
	progressBonusWeight  = 0.02
	progressCap          = 10.0 // mm per step
	contactBonus         = 0.3
	contactThreshold     = 0.5 // m/s velocity discontinuity
)

// AttackShaper rewards offense: ball speed, figures near the ball,
// forward progress toward the opponent goal, and contact events.
type AttackShaper struct {
	table *geometry.Table
	team  geometry.Team
}

// NewAttackShaper builds the variant over the table geometry.
func NewAttackShaper(table *geometry.Table, team geometry.Team) *AttackShaper {
	return &AttackShaper{table: table, team: team}
}

func (a *AttackShaper) Name() string      { return "attack" }
func (a *AttackShaper) Baseline() float64 { return attackBaseline }

func (a *AttackShaper) Reward(frame Frame) float64 {
	cur := frame.Cur.Primary()
	prev := frame.Prev.Primary()

	reward := attackBaseline

	speed := math.Hypot(cur.BallVX, cur.BallVY)
	reward += speedBonusWeight * math.Min(speed, speedBonusCap)

	if a.figureNearBall(frame.Cur) {
		reward += proximityBonus
	}

	progress := cur.BallX - prev.BallX
	if a.team == geometry.TeamBlue {
		progress = -progress
	}
	if progress > 0 {
		reward += progressBonusWeight * math.Min(progress, progressCap)
	}

	dv := math.Hypot(cur.BallVX-prev.BallVX, cur.BallVY-prev.BallVY)
	if dv > contactThreshold {
		reward += contactBonus
	}

	reward += goalReward(frame)
	return reward
}

// figureNearBall reports whether any managed figure is within reach of
// the ball: the ball inside the field, near the rod's x plane, and close
// to a figure center. Telemetry is indexed by rod id, not by the order
// rods happen to be listed in the geometry file.
func (a *AttackShaper) figureNearBall(record *simclient.TelemetryRecord) bool {
	cd := record.Primary()
	if !a.table.InsideField(cd.BallY) {
		return false
	}
	for _, rod := range a.table.Rods {
		if rod.Team != a.team {
			continue
		}
		if math.Abs(cd.BallX-rod.Position) > proximityRodRange {
			continue
		}
		for _, y := range rod.PlayerPositions(record.RodPosition(rod.ID - 1)) {
			if math.Abs(cd.BallY-y) <= proximityPlayerRange {
				return true
			}
		}
	}
	return false
}

func goalReward(frame Frame) float64 {
	var reward float64
	if frame.ScoredFor > 0 {
		reward += goalScoredBonus * float64(frame.ScoredFor)
	}
	if frame.ScoredAgainst > 0 {
		reward += goalConcededPenalty * float64(frame.ScoredAgainst)
	}
	return reward
}

// l1Delta is the L1 distance between the first n entries of two slices,
// tolerating short or missing telemetry arrays.
func l1Delta(cur, prev []float64, n int) float64 {
	if len(cur) < n || len(prev) < n {
		return 0
	}
	return floats.Distance(cur[:n], prev[:n], 1)
}
