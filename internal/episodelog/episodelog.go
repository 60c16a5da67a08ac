// Package episodelog persists per-episode training outcomes to a local
// sqlite database so runs can be compared after the fact.
package episodelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed episode.
type Record struct {
	EpisodeID    string
	Policy       string
	RewardShaper string
	Steps        int
	TotalReward  float64
	ScoreRed     int
	ScoreBlue    int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Summary aggregates all recorded episodes for one policy.
type Summary struct {
	Policy      string
	Episodes    int
	MeanReward  float64
	BestReward  float64
	WorstReward float64
}

// Store wraps the episode database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the episode log at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open episode log: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			episode_id TEXT PRIMARY KEY,
			policy TEXT NOT NULL,
			reward_shaper TEXT NOT NULL,
			steps INTEGER NOT NULL,
			total_reward DOUBLE NOT NULL,
			score_red INTEGER NOT NULL,
			score_blue INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create episodes table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one episode row.
func (s *Store) Record(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO episodes
			(episode_id, policy, reward_shaper, steps, total_reward, score_red, score_blue, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.EpisodeID, r.Policy, r.RewardShaper, r.Steps, r.TotalReward,
		r.ScoreRed, r.ScoreBlue, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record episode %s: %w", r.EpisodeID, err)
	}
	return nil
}

// Episodes returns all recorded episodes ordered by start time.
func (s *Store) Episodes(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT episode_id, policy, reward_shaper, steps, total_reward, score_red, score_blue, started_at, finished_at
		FROM episodes ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.EpisodeID, &r.Policy, &r.RewardShaper, &r.Steps,
			&r.TotalReward, &r.ScoreRed, &r.ScoreBlue, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summarize aggregates episodes per policy.
func (s *Store) Summarize(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy, COUNT(*), AVG(total_reward), MAX(total_reward), MIN(total_reward)
		FROM episodes GROUP BY policy ORDER BY policy`)
	if err != nil {
		return nil, fmt.Errorf("summarize episodes: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Policy, &s.Episodes, &s.MeanReward, &s.BestReward, &s.WorstReward); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
