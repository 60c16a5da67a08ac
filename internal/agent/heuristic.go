package agent

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

// KickPhase enumerates the goalkeeper demo's kick cycle.
type KickPhase int

const (
	// PhaseIdle sweeps the goalkeeper side to side on a sine wave.
	PhaseIdle KickPhase = iota
	// PhaseWindUp pulls the legs back before the kick.
	PhaseWindUp
	// PhaseKick snaps the legs forward.
	PhaseKick
)

func (p KickPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWindUp:
		return "windup"
	case PhaseKick:
		return "kick"
	default:
		return "unknown"
	}
}

// Phase durations. The demo idles for five seconds, winds up for 50ms,
// kicks for 200ms, then idles again.
const (
	idleDuration   = 5 * time.Second
	windUpDuration = 50 * time.Millisecond
	kickDuration   = 200 * time.Millisecond
)

// driveMapping maps rod index (0-based, 0 = red goalie) to the drive id
// this agent controls, or -1 for rods on the opposing motor bank.
var driveMapping = [simclient.NumRods]int{1, 2, -1, 3, -1, 4, -1, -1}

// DriveForRod returns the drive id controlling rod index i, or -1 when
// the rod belongs to the opponent.
func DriveForRod(i int) int {
	if i < 0 || i >= len(driveMapping) {
		return -1
	}
	return driveMapping[i]
}

// Inverse of driveMapping per motor bank: drive id (1..4) to rod index.
// The blue bank is the red mapping mirrored across the table.
var (
	redDriveRods  = [5]int{-1, 0, 1, 3, 5}
	blueDriveRods = [5]int{-1, 7, 6, 4, 2}
)

// RodForDrive returns the rod index actuated by the given drive id on
// the team's motor bank, or -1 for an unknown drive.
func RodForDrive(team geometry.Team, drive int) int {
	if drive < 1 || drive >= len(redDriveRods) {
		return -1
	}
	if team == geometry.TeamBlue {
		return blueDriveRods[drive]
	}
	return redDriveRods[drive]
}

// Heuristic is the scripted demo agent. It actuates only the goalkeeper
// rod, cycling through a kick state machine on wall-clock (or injected)
// time. One Heuristic instance is driven by exactly one caller.
type Heuristic struct {
	table  *geometry.Table
	logger zerolog.Logger
	now    func() time.Time

	phase   KickPhase
	phaseAt time.Time // entry timestamp of the current phase
}

// NewHeuristic constructs the demo agent over the given table geometry.
func NewHeuristic(table *geometry.Table, logger zerolog.Logger) *Heuristic {
	h := &Heuristic{
		table:  table,
		logger: logger,
		now:    time.Now,
	}
	h.phaseAt = h.now()
	return h
}

// WithClock overrides the time source, for tests.
func (h *Heuristic) WithClock(now func() time.Time) {
	h.now = now
	h.phaseAt = now()
}

// Phase returns the current kick phase.
func (h *Heuristic) Phase() KickPhase { return h.phase }

// ProcessData implements Agent. It emits at most one command per tick,
// for the goalkeeper drive.
func (h *Heuristic) ProcessData(record *simclient.TelemetryRecord) []simclient.MotorCommand {
	now := h.now()
	elapsed := now.Sub(h.phaseAt)
	goalie := DriveForRod(0)

	var cmd simclient.MotorCommand
	switch h.phase {
	case PhaseIdle:
		if elapsed < idleDuration {
			cmd = simclient.MotorCommand{
				DriveID:                   goalie,
				RotationTargetPosition:    0,
				RotationVelocity:          0.2,
				TranslationTargetPosition: 0.5 + math.Sin(elapsed.Seconds())*0.5,
				TranslationVelocity:       1.0,
			}
			break
		}
		h.transition(PhaseWindUp, now)
		cmd = simclient.MotorCommand{
			DriveID:                   goalie,
			RotationTargetPosition:    0.5, // legs back
			RotationVelocity:          1.0,
			TranslationTargetPosition: 0.5,
			TranslationVelocity:       1.0,
		}

	case PhaseWindUp:
		if elapsed < windUpDuration {
			return nil
		}
		h.transition(PhaseKick, now)
		cmd = simclient.MotorCommand{
			DriveID:                   goalie,
			RotationTargetPosition:    -0.5, // forward kick
			RotationVelocity:          1.0,
			TranslationTargetPosition: 0.5,
			TranslationVelocity:       1.0,
		}

	case PhaseKick:
		if elapsed < kickDuration {
			return nil
		}
		h.transition(PhaseIdle, now)
		cmd = simclient.MotorCommand{
			DriveID:                   goalie,
			RotationTargetPosition:    0,
			RotationVelocity:          0.2,
			TranslationTargetPosition: 0.5,
			TranslationVelocity:       1.0,
		}
	}

	return []simclient.MotorCommand{cmd.Clamp()}
}

func (h *Heuristic) transition(to KickPhase, now time.Time) {
	h.logger.Debug().
		Str("from", h.phase.String()).
		Str("to", to.String()).
		Msg("kick phase transition")
	h.phase = to
	h.phaseAt = now
}
