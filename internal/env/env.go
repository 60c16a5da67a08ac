// Package env wraps the simulator connection and an agent in a
// reset/step environment for training loops. Each Env owns one simulator
// connection and one agent's state; instances are independent and may
// run in parallel.
package env

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaspersavle/FuzbAISim/internal/agent"
	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

// SimClient is the simulator surface the environment depends on.
// *simclient.Client satisfies it; tests substitute fakes.
type SimClient interface {
	CameraState(ctx context.Context) (*simclient.TelemetryRecord, error)
	SendCommands(ctx context.Context, commands []simclient.MotorCommand) error
}

// Options configures an Env.
type Options struct {
	// StepDelay is how long to let the simulator advance after sending
	// commands before re-reading telemetry.
	StepDelay time.Duration
	// MaxSteps ends the episode after this many steps; 0 means no limit.
	MaxSteps int
}

// DefaultOptions mirror the reference loop: 20ms between command and
// re-poll, 500-step episodes.
func DefaultOptions() Options {
	return Options{StepDelay: 20 * time.Millisecond, MaxSteps: 500}
}

// StepResult is what one environment step returns.
type StepResult struct {
	Observation []float64
	Reward      float64
	Done        bool
	Info        map[string]any
}

// Env adapts the simulator into reset/step semantics. It is driven by
// exactly one caller; no internal locking is performed.
type Env struct {
	client SimClient
	agent  *agent.PolicyAgent
	table  *geometry.Table
	team   geometry.Team
	shaper Shaper
	opts   Options
	logger zerolog.Logger

	// sleep is swappable so tests do not wait out StepDelay.
	sleep func(ctx context.Context, d time.Duration)

	// Per-episode session state.
	prev          *simclient.TelemetryRecord
	scoreBase     [2]int
	steps         int
	episodeReward float64
}

// New constructs an environment for the given team.
func New(client SimClient, table *geometry.Table, team geometry.Team, shaper Shaper, opts Options, logger zerolog.Logger) *Env {
	return &Env{
		client: client,
		agent:  agent.NewPolicyAgent(table, team, logger),
		table:  table,
		team:   team,
		shaper: shaper,
		opts:   opts,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// ObservationSpace returns the environment's observation bounds.
func (e *Env) ObservationSpace() Box { return ObservationSpace(e.table) }

// ActionSpace returns the environment's flattened action bounds.
func (e *Env) ActionSpace() Box { return ActionSpace(e.agent.NumRods()) }

// NumRods returns the number of rods the action tensor must cover.
func (e *Env) NumRods() int { return e.agent.NumRods() }

// EpisodeReward returns the reward accumulated since the last Reset.
func (e *Env) EpisodeReward() float64 { return e.episodeReward }

// Steps returns the number of steps taken since the last Reset.
func (e *Env) Steps() int { return e.steps }

// Reset re-reads telemetry and starts a fresh episode.
func (e *Env) Reset(ctx context.Context) ([]float64, error) {
	record, err := e.client.CameraState(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	e.agent.Reset()
	e.prev = record
	e.scoreBase = record.Score
	e.steps = 0
	e.episodeReward = 0
	return Observation(record), nil
}

// Step applies one action tensor: it forwards the action through the
// agent, sends the resulting commands, waits for the simulator to
// advance, re-reads telemetry, and computes the shaping reward.
// A malformed action is replaced with zeros by the agent, never an error.
func (e *Env) Step(ctx context.Context, action []agent.RodAction) (StepResult, error) {
	if e.prev == nil {
		return StepResult{}, fmt.Errorf("step called before reset")
	}

	commands := e.agent.ProcessAction(e.prev, action)
	if err := e.client.SendCommands(ctx, commands); err != nil {
		return StepResult{}, fmt.Errorf("step: %w", err)
	}

	e.sleep(ctx, e.opts.StepDelay)

	record, err := e.client.CameraState(ctx)
	if err != nil {
		return StepResult{}, fmt.Errorf("step: %w", err)
	}

	frame := e.frame(record)
	reward := e.shaper.Reward(frame)
	e.steps++
	e.episodeReward += reward

	done := frame.ScoredFor > 0 || frame.ScoredAgainst > 0
	if e.opts.MaxSteps > 0 && e.steps >= e.opts.MaxSteps {
		done = true
	}

	e.prev = record
	if frame.ScoredFor > 0 || frame.ScoredAgainst > 0 {
		// Goals restart the score window for the next episode.
		e.scoreBase = record.Score
		e.logger.Info().
			Int("scored", frame.ScoredFor).
			Int("conceded", frame.ScoredAgainst).
			Float64("episode_reward", e.episodeReward).
			Msg("goal ended episode")
	}

	return StepResult{
		Observation: Observation(record),
		Reward:      reward,
		Done:        done,
		Info: map[string]any{
			"steps": e.steps,
			"score": record.Score,
		},
	}, nil
}

// frame builds the reward frame for the freshly polled record.
func (e *Env) frame(record *simclient.TelemetryRecord) Frame {
	forIdx, againstIdx := 0, 1
	if e.team == geometry.TeamBlue {
		forIdx, againstIdx = 1, 0
	}
	return Frame{
		Prev:          e.prev,
		Cur:           record,
		ScoredFor:     record.Score[forIdx] - e.scoreBase[forIdx],
		ScoredAgainst: record.Score[againstIdx] - e.scoreBase[againstIdx],
	}
}

// Observation flattens a telemetry record into the fixed-size vector:
// ball x, y, vx, vy, eight rod positions, eight rod angles.
func Observation(record *simclient.TelemetryRecord) []float64 {
	cd := record.Primary()
	obs := make([]float64, 0, ObservationSize)
	obs = append(obs, cd.BallX, cd.BallY, cd.BallVX, cd.BallVY)
	for i := 0; i < simclient.NumRods; i++ {
		obs = append(obs, record.RodPosition(i))
	}
	for i := 0; i < simclient.NumRods; i++ {
		obs = append(obs, record.RodAngle(i))
	}
	return obs
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
