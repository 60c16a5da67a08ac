package trainer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspersavle/FuzbAISim/internal/agent"
	"github.com/gaspersavle/FuzbAISim/internal/env"
	"github.com/gaspersavle/FuzbAISim/internal/episodelog"
	"github.com/gaspersavle/FuzbAISim/internal/replay"
)

// scriptedEnv terminates every episode after a fixed number of steps
// with a constant per-step reward.
type scriptedEnv struct {
	stepsPerEpisode int
	reward          float64
	step            int
	resets          int
	actions         [][]agent.RodAction
}

func (s *scriptedEnv) Reset(ctx context.Context) ([]float64, error) {
	s.resets++
	s.step = 0
	return make([]float64, env.ObservationSize), nil
}

func (s *scriptedEnv) Step(ctx context.Context, action []agent.RodAction) (env.StepResult, error) {
	s.step++
	s.actions = append(s.actions, action)
	return env.StepResult{
		Observation: make([]float64, env.ObservationSize),
		Reward:      s.reward,
		Done:        s.step >= s.stepsPerEpisode,
		Info:        map[string]any{"steps": s.step, "score": [2]int{0, 0}},
	}, nil
}

func (s *scriptedEnv) NumRods() int { return 4 }

func newTestCollector(t *testing.T, cfg Config, environment Environment, buffer *replay.Buffer, log *episodelog.Store) *Collector {
	t.Helper()
	c, err := NewCollector(cfg, environment, NewRandom(4, 1), buffer, log, zerolog.New(io.Discard))
	require.NoError(t, err)
	return c
}

func TestCollectorRunsEpisodesAndFillsBuffer(t *testing.T) {
	environment := &scriptedEnv{stepsPerEpisode: 5, reward: 0.1}
	buffer := replay.NewBuffer(0)
	cfg := Config{Episodes: 4, BatchSize: 8, ShaperName: "stability"}
	c := newTestCollector(t, cfg, environment, buffer, nil)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 4, environment.resets)
	assert.Equal(t, 20, buffer.Len())

	results := c.Results()
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, 5, r.Steps)
		assert.InDelta(t, 0.5, r.Reward, 1e-9)
		assert.NotEmpty(t, r.EpisodeID)
	}
}

func TestCollectorStoresFullTransitions(t *testing.T) {
	environment := &scriptedEnv{stepsPerEpisode: 2, reward: 1}
	buffer := replay.NewBuffer(0)
	cfg := Config{Episodes: 1, BatchSize: 1, ShaperName: "attack"}
	c := newTestCollector(t, cfg, environment, buffer, nil)

	require.NoError(t, c.Run(context.Background()))

	sampled := buffer.Sample(replay.SampleConfig{BatchSize: 10})
	require.Len(t, sampled, 2)
	for _, tr := range sampled {
		assert.Len(t, tr.Observation, env.ObservationSize)
		assert.Len(t, tr.Action, 4*env.ActionDims)
		assert.Len(t, tr.NextObservation, env.ObservationSize)
		assert.NotEmpty(t, tr.EpisodeID)
	}
}

func TestCollectorPersistsEpisodes(t *testing.T) {
	store, err := episodelog.Open(filepath.Join(t.TempDir(), "ep.db"))
	require.NoError(t, err)
	defer store.Close()

	environment := &scriptedEnv{stepsPerEpisode: 3, reward: 2}
	cfg := Config{Episodes: 2, BatchSize: 32, ShaperName: "stability"}
	c := newTestCollector(t, cfg, environment, replay.NewBuffer(0), store)

	require.NoError(t, c.Run(context.Background()))

	episodes, err := store.Episodes(context.Background())
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "random", episodes[0].Policy)
	assert.InDelta(t, 6.0, episodes[0].TotalReward, 1e-9)
}

func TestCollectorStopsOnCancel(t *testing.T) {
	environment := &scriptedEnv{stepsPerEpisode: 1, reward: 0}
	cfg := Config{Episodes: -1, BatchSize: 4, ShaperName: "stability"}
	c := newTestCollector(t, cfg, environment, replay.NewBuffer(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunParallelSharesBuffer(t *testing.T) {
	buffer := replay.NewBuffer(0)
	cfg := Config{Episodes: 2, BatchSize: 4, ShaperName: "stability"}

	var collectors []*Collector
	for i := 0; i < 3; i++ {
		collectors = append(collectors,
			newTestCollector(t, cfg, &scriptedEnv{stepsPerEpisode: 4, reward: 0.1}, buffer, nil))
	}

	require.NoError(t, RunParallel(context.Background(), collectors))
	assert.Equal(t, 3*2*4, buffer.Len())
}

func TestRandomPolicyShapeAndBounds(t *testing.T) {
	p := NewRandom(4, 42)
	obs := make([]float64, env.ObservationSize)

	for i := 0; i < 50; i++ {
		action := p.SelectAction(obs)
		require.Len(t, action, 4)
		for _, rod := range action {
			for _, v := range rod {
				assert.GreaterOrEqual(t, v, -1.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestExploringDecaysTowardDelegate(t *testing.T) {
	p := NewExploring(NewRandom(4, 7), 4, 99)
	obs := make([]float64, env.ObservationSize)

	require.InDelta(t, 1.0, p.Rate(), 1e-9)
	for i := 0; i < 1000; i++ {
		p.SelectAction(obs)
	}
	assert.Less(t, p.Rate(), 1.0)
	assert.GreaterOrEqual(t, p.Rate(), 0.1)
}

func TestFlattenRoundTrip(t *testing.T) {
	actions := []agent.RodAction{{0.1, -0.2, 0.3}, {1, -1, 0}}
	assert.Equal(t, actions, unflatten(flatten(actions), 2))
}

func TestWriteRewardReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	results := []EpisodeResult{
		{EpisodeID: "a", Steps: 10, Reward: 1},
		{EpisodeID: "b", Steps: 10, Reward: 2},
		{EpisodeID: "c", Steps: 10, Reward: 3},
	}
	require.NoError(t, WriteRewardReport(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Episode reward")

	assert.Error(t, WriteRewardReport(path, nil))
}
