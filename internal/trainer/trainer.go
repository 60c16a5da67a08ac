// Package trainer runs episode collection against one or more simulator
// environments, feeding transitions into a replay buffer and recording
// episode outcomes.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gaspersavle/FuzbAISim/internal/agent"
	"github.com/gaspersavle/FuzbAISim/internal/env"
	"github.com/gaspersavle/FuzbAISim/internal/episodelog"
	"github.com/gaspersavle/FuzbAISim/internal/replay"
)

// Environment is the reset/step surface the collector drives.
// *env.Env satisfies it.
type Environment interface {
	Reset(ctx context.Context) ([]float64, error)
	Step(ctx context.Context, action []agent.RodAction) (env.StepResult, error)
	NumRods() int
}

// Config controls one collector.
type Config struct {
	// Episodes is how many episodes to run; -1 runs until cancelled.
	Episodes int
	// BatchSize is how many transitions to accumulate before flushing
	// to the replay buffer.
	BatchSize int
	// ShaperName is recorded with each episode.
	ShaperName string
}

// DefaultConfig returns the collection defaults.
func DefaultConfig() Config {
	return Config{Episodes: 100, BatchSize: 32, ShaperName: "stability"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Episodes == 0 {
		return fmt.Errorf("episodes must be positive or -1 for unlimited")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	return nil
}

// EpisodeResult summarizes one completed episode.
type EpisodeResult struct {
	EpisodeID string
	Steps     int
	Reward    float64
	Score     [2]int
}

// Collector drives one environment with one policy. Multiple collectors
// may share a replay buffer and episode log; each owns its environment.
type Collector struct {
	cfg    Config
	env    Environment
	policy Policy
	buffer *replay.Buffer
	log    *episodelog.Store // optional
	logger zerolog.Logger

	pending []*replay.Transition
	results []EpisodeResult
}

// NewCollector wires a collector. log may be nil to skip persistence.
func NewCollector(cfg Config, environment Environment, policy Policy, buffer *replay.Buffer, log *episodelog.Store, logger zerolog.Logger) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{
		cfg:     cfg,
		env:     environment,
		policy:  policy,
		buffer:  buffer,
		log:     log,
		logger:  logger,
		pending: make([]*replay.Transition, 0, cfg.BatchSize),
	}, nil
}

// Results returns the episode summaries collected so far.
func (c *Collector) Results() []EpisodeResult { return c.results }

// Run executes episodes until the configured count is reached or the
// context is cancelled. A failed episode is logged and skipped; the
// loop moves on to the next one.
func (c *Collector) Run(ctx context.Context) error {
	defer c.flush()

	for episode := 0; c.cfg.Episodes < 0 || episode < c.cfg.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.runEpisode(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Int("episode", episode).Msg("episode failed")
			continue
		}
		c.results = append(c.results, result)

		if len(c.results)%10 == 0 {
			c.logger.Info().
				Int("episodes", len(c.results)).
				Float64("last_reward", result.Reward).
				Int("buffer", c.buffer.Len()).
				Msg("collection progress")
		}
	}
	return nil
}

func (c *Collector) runEpisode(ctx context.Context) (EpisodeResult, error) {
	started := time.Now()
	episodeID := uuid.New().String()

	obs, err := c.env.Reset(ctx)
	if err != nil {
		return EpisodeResult{}, fmt.Errorf("reset episode: %w", err)
	}

	var totalReward float64
	var score [2]int
	step := 0
	for {
		action := c.policy.SelectAction(obs)
		result, err := c.env.Step(ctx, action)
		if err != nil {
			return EpisodeResult{}, fmt.Errorf("step %d: %w", step, err)
		}

		c.pending = append(c.pending, &replay.Transition{
			EpisodeID:       episodeID,
			Step:            step,
			Observation:     obs,
			Action:          flatten(action),
			NextObservation: result.Observation,
			Reward:          result.Reward,
			Done:            result.Done,
		})
		if len(c.pending) >= c.cfg.BatchSize {
			c.flush()
		}

		totalReward += result.Reward
		obs = result.Observation
		step++

		if s, ok := result.Info["score"].([2]int); ok {
			score = s
		}
		if result.Done {
			break
		}
	}

	episode := EpisodeResult{EpisodeID: episodeID, Steps: step, Reward: totalReward, Score: score}
	c.logger.Debug().
		Str("episode_id", episodeID).
		Int("steps", step).
		Float64("reward", totalReward).
		Msg("episode completed")

	if c.log != nil {
		record := episodelog.Record{
			EpisodeID:    episodeID,
			Policy:       c.policy.Name(),
			RewardShaper: c.cfg.ShaperName,
			Steps:        step,
			TotalReward:  totalReward,
			ScoreRed:     score[0],
			ScoreBlue:    score[1],
			StartedAt:    started,
			FinishedAt:   time.Now(),
		}
		if err := c.log.Record(ctx, record); err != nil {
			c.logger.Error().Err(err).Str("episode_id", episodeID).Msg("failed to persist episode")
		}
	}
	return episode, nil
}

func (c *Collector) flush() {
	if len(c.pending) == 0 {
		return
	}
	c.buffer.StoreBatch(c.pending)
	c.pending = c.pending[:0]
}

// RunParallel runs several collectors concurrently, one goroutine each.
// Collectors must not share environments; sharing the replay buffer and
// episode log is fine.
func RunParallel(ctx context.Context, collectors []*Collector) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range collectors {
		c := c
		g.Go(func() error {
			return c.Run(ctx)
		})
	}
	return g.Wait()
}
