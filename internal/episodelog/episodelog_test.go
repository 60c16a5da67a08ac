package episodelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "episodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	start := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, store.Record(ctx, Record{
		EpisodeID:    "ep-1",
		Policy:       "random",
		RewardShaper: "stability",
		Steps:        500,
		TotalReward:  42.5,
		ScoreRed:     1,
		StartedAt:    start,
		FinishedAt:   start.Add(10 * time.Second),
	}))

	episodes, err := store.Episodes(ctx)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "ep-1", episodes[0].EpisodeID)
	assert.InDelta(t, 42.5, episodes[0].TotalReward, 1e-9)
	assert.Equal(t, 1, episodes[0].ScoreRed)
}

func TestDuplicateEpisodeRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := Record{EpisodeID: "ep-1", Policy: "random", RewardShaper: "attack",
		StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, store.Record(ctx, rec))
	assert.Error(t, store.Record(ctx, rec))
}

func TestSummarize(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, reward := range []float64{1, 3, 5} {
		require.NoError(t, store.Record(ctx, Record{
			EpisodeID:    string(rune('a' + i)),
			Policy:       "random",
			RewardShaper: "stability",
			TotalReward:  reward,
			StartedAt:    now.Add(time.Duration(i) * time.Second),
			FinishedAt:   now.Add(time.Duration(i+1) * time.Second),
		}))
	}

	summaries, err := store.Summarize(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].Episodes)
	assert.InDelta(t, 3.0, summaries[0].MeanReward, 1e-9)
	assert.InDelta(t, 5.0, summaries[0].BestReward, 1e-9)
	assert.InDelta(t, 1.0, summaries[0].WorstReward, 1e-9)
}
