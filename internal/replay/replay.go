// Package replay buffers experience transitions collected from the
// environment for off-policy training. The buffer is shared by all
// parallel collectors, so it locks internally.
package replay

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transition is one (s, a, r, s') experience step.
type Transition struct {
	ID              string    `json:"id"`
	EpisodeID       string    `json:"episode_id"`
	Step            int       `json:"step"`
	Observation     []float64 `json:"observation"`
	Action          []float64 `json:"action"`
	NextObservation []float64 `json:"next_observation"`
	Reward          float64   `json:"reward"`
	Done            bool      `json:"done"`
	Priority        float64   `json:"priority"`
	Timestamp       time.Time `json:"timestamp"`
}

// SampleConfig controls a sampling request.
type SampleConfig struct {
	BatchSize     int
	Prioritized   bool
	PriorityAlpha float64
}

// Stats summarizes buffer contents.
type Stats struct {
	Transitions int
	Episodes    int
	Capacity    int
}

// Buffer is a bounded in-memory transition store with uniform and
// prioritized sampling. The oldest transitions are evicted first.
type Buffer struct {
	mu       sync.RWMutex
	order    []string // transition ids, insertion order
	byID     map[string]*Transition
	episodes map[string]int // episode id -> live transition count
	capacity int
	rng      *rand.Rand
}

// NewBuffer creates a buffer holding at most capacity transitions;
// capacity 0 means unbounded.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		byID:     make(map[string]*Transition),
		episodes: make(map[string]int),
		capacity: capacity,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed fixes the sampling RNG, for tests.
func (b *Buffer) Seed(seed int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rng = rand.New(rand.NewSource(seed))
}

// Store inserts one transition, assigning an id, timestamp, and default
// priority when missing.
func (b *Buffer) Store(t *Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store(t)
}

// StoreBatch inserts transitions in order and returns their ids.
func (b *Buffer) StoreBatch(transitions []*Transition) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, len(transitions))
	for i, t := range transitions {
		b.store(t)
		ids[i] = t.ID
	}
	return ids
}

func (b *Buffer) store(t *Transition) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	if t.Priority == 0 {
		t.Priority = 1.0
	}
	b.byID[t.ID] = t
	b.order = append(b.order, t.ID)
	if t.EpisodeID != "" {
		b.episodes[t.EpisodeID]++
	}
	for b.capacity > 0 && len(b.byID) > b.capacity {
		b.evictOldest()
	}
}

func (b *Buffer) evictOldest() {
	oldest := b.order[0]
	b.order = b.order[1:]
	t := b.byID[oldest]
	delete(b.byID, oldest)
	if t.EpisodeID != "" {
		b.episodes[t.EpisodeID]--
		if b.episodes[t.EpisodeID] <= 0 {
			delete(b.episodes, t.EpisodeID)
		}
	}
}

// Len returns the number of stored transitions.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}

// GetStats returns buffer statistics.
func (b *Buffer) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		Transitions: len(b.byID),
		Episodes:    len(b.episodes),
		Capacity:    b.capacity,
	}
}

// UpdatePriorities sets new priorities for known transition ids; unknown
// ids are ignored.
func (b *Buffer) UpdatePriorities(ids []string, priorities []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, id := range ids {
		if i >= len(priorities) {
			break
		}
		if t, ok := b.byID[id]; ok {
			t.Priority = priorities[i]
		}
	}
}

// Sample draws a batch. When fewer transitions are stored than
// requested, everything is returned.
func (b *Buffer) Sample(cfg SampleConfig) []*Transition {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := cfg.BatchSize
	if n >= len(b.order) {
		out := make([]*Transition, len(b.order))
		for i, id := range b.order {
			out[i] = b.byID[id]
		}
		return out
	}
	if cfg.Prioritized {
		return b.prioritizedSample(n, cfg.PriorityAlpha)
	}
	return b.uniformSample(n)
}

func (b *Buffer) uniformSample(n int) []*Transition {
	indices := b.rng.Perm(len(b.order))[:n]
	out := make([]*Transition, n)
	for i, idx := range indices {
		out[i] = b.byID[b.order[idx]]
	}
	return out
}

func (b *Buffer) prioritizedSample(n int, alpha float64) []*Transition {
	weights := make([]float64, len(b.order))
	total := 0.0
	for i, id := range b.order {
		w := b.byID[id].Priority
		if alpha != 1.0 {
			w = math.Pow(w, alpha)
		}
		weights[i] = w
		total += w
	}

	out := make([]*Transition, 0, n)
	used := make(map[int]bool, n)
	for len(out) < n {
		target := b.rng.Float64() * total
		sum := 0.0
		picked := -1
		for i, w := range weights {
			if used[i] {
				continue
			}
			sum += w
			picked = i
			if sum >= target {
				break
			}
		}
		// picked falls back to the last unused entry when rounding left
		// target above the remaining mass.
		out = append(out, b.byID[b.order[picked]])
		used[picked] = true
		total -= weights[picked]
	}
	return out
}
