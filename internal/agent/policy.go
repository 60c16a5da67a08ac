package agent

import (
	"github.com/rs/zerolog"

	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

// RodAction is one rod's action triple: translation direction, rotation
// direction, and velocity, each expected in [-1,1].
type RodAction [3]float64

const (
	actTranslation = 0
	actRotation    = 1
	actVelocity    = 2
)

// Smoothing constants. Targets follow an exponential moving average so a
// noisy policy cannot shake the rods.
const (
	smoothPrev = 0.9
	smoothNew  = 0.1
)

// PolicyAgent converts externally supplied action vectors into motor
// commands, one per managed rod. Malformed actions are replaced with
// zeros and logged, never surfaced to the caller; a rod that cannot be
// resolved against the geometry is dropped from the batch.
type PolicyAgent struct {
	table  *geometry.Table
	team   geometry.Team
	logger zerolog.Logger

	// drives holds the motor drive ids of this agent's bank.
	drives []int

	prevPositions map[int]float64
	prevAngles    map[int]float64
}

// NewPolicyAgent creates an agent managing the given team's motor bank.
// Both banks expose drives 1..4; the simulator mirrors the blue side.
func NewPolicyAgent(table *geometry.Table, team geometry.Team, logger zerolog.Logger) *PolicyAgent {
	return &PolicyAgent{
		table:         table,
		team:          team,
		logger:        logger,
		drives:        []int{1, 2, 3, 4},
		prevPositions: make(map[int]float64),
		prevAngles:    make(map[int]float64),
	}
}

// NumRods returns how many rods this agent manages.
func (p *PolicyAgent) NumRods() int { return len(p.drives) }

// ZeroAction returns the neutral action tensor for this agent's rod count.
func (p *PolicyAgent) ZeroAction() []RodAction {
	return make([]RodAction, len(p.drives))
}

// SanitizeAction returns action when it has the expected shape, or the
// zero tensor with a warning logged otherwise.
func (p *PolicyAgent) SanitizeAction(action []RodAction) []RodAction {
	if action == nil {
		p.logger.Warn().
			Int("expected_rods", len(p.drives)).
			Msg("nil action tensor, substituting zeros")
		return p.ZeroAction()
	}
	if len(action) != len(p.drives) {
		p.logger.Warn().
			Int("expected_rods", len(p.drives)).
			Int("got_rods", len(action)).
			Msg("action shape mismatch, substituting zeros")
		return p.ZeroAction()
	}
	return action
}

// ProcessAction maps an action tensor onto motor commands. Translation
// and rotation targets are exponentially smoothed per rod; all outputs
// are clamped to their declared ranges.
func (p *PolicyAgent) ProcessAction(record *simclient.TelemetryRecord, action []RodAction) []simclient.MotorCommand {
	action = p.SanitizeAction(action)

	commands := make([]simclient.MotorCommand, 0, len(p.drives))
	for i, drive := range p.drives {
		rod := RodForDrive(p.team, drive)
		if rod < 0 || p.table.Rod(rod+1) == nil {
			p.logger.Error().
				Int("drive", drive).
				Int("rod_id", rod+1).
				Msg("rod not in geometry, dropping command")
			continue
		}

		transDir := action[i][actTranslation]
		rotDir := action[i][actRotation]
		velocity := action[i][actVelocity]

		prevTrans, ok := p.prevPositions[drive]
		if !ok {
			prevTrans = 0.5
		}
		prevRot := p.prevAngles[drive]

		smoothedTrans := smoothPrev*prevTrans + smoothNew*(0.5+transDir*0.5)
		smoothedRot := smoothPrev*prevRot + smoothNew*(rotDir*0.75)
		p.prevPositions[drive] = smoothedTrans
		p.prevAngles[drive] = smoothedRot

		cmd := simclient.MotorCommand{
			DriveID:                   drive,
			RotationTargetPosition:    smoothedRot,
			RotationVelocity:          velocity * 1.5,
			TranslationTargetPosition: smoothedTrans,
			TranslationVelocity:       velocity * 1.5,
		}
		commands = append(commands, cmd.Clamp())
	}
	return commands
}

// ProcessData implements Agent with a neutral action, holding the rods
// near their rest targets.
func (p *PolicyAgent) ProcessData(record *simclient.TelemetryRecord) []simclient.MotorCommand {
	return p.ProcessAction(record, p.ZeroAction())
}

// Reset clears the smoothing state between episodes.
func (p *PolicyAgent) Reset() {
	p.prevPositions = make(map[int]float64)
	p.prevAngles = make(map[int]float64)
}
