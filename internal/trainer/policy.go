package trainer

import (
	"math/rand"

	"github.com/gaspersavle/FuzbAISim/internal/agent"
	"github.com/gaspersavle/FuzbAISim/internal/env"
)

// Policy selects the next action tensor from an observation. The SAC
// learner itself lives outside this repository; anything producing
// action tensors can drive the collector.
type Policy interface {
	// Name identifies the policy in logs and episode records.
	Name() string
	// SelectAction returns one action triple per managed rod.
	SelectAction(observation []float64) []agent.RodAction
}

// Random samples uniformly from the action space.
type Random struct {
	space env.Box
	rods  int
	rng   *rand.Rand
}

// NewRandom creates a random policy over rods action triples.
func NewRandom(rods int, seed int64) *Random {
	return &Random{
		space: env.ActionSpace(rods),
		rods:  rods,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (r *Random) Name() string { return "random" }

// SelectAction implements Policy.
func (r *Random) SelectAction(observation []float64) []agent.RodAction {
	flat := r.space.Sample(r.rng)
	return unflatten(flat, r.rods)
}

// Exploring wraps a policy with epsilon-greedy exploration: with the
// current exploration rate it acts randomly, otherwise it delegates.
// The rate decays once per SelectAction call.
type Exploring struct {
	delegate Policy
	random   *Random
	schedule *agent.Exploration
	rng      *rand.Rand
}

// NewExploring wraps delegate with the default decay schedule.
func NewExploring(delegate Policy, rods int, seed int64) *Exploring {
	return &Exploring{
		delegate: delegate,
		random:   NewRandom(rods, seed),
		schedule: agent.NewExploration(),
		rng:      rand.New(rand.NewSource(seed + 1)),
	}
}

func (e *Exploring) Name() string { return e.delegate.Name() + "+explore" }

// Rate returns the current exploration rate.
func (e *Exploring) Rate() float64 { return e.schedule.Rate }

// SelectAction implements Policy.
func (e *Exploring) SelectAction(observation []float64) []agent.RodAction {
	rate := e.schedule.Step()
	if e.rng.Float64() < rate {
		return e.random.SelectAction(observation)
	}
	return e.delegate.SelectAction(observation)
}

// unflatten reshapes a flat action vector into per-rod triples.
func unflatten(flat []float64, rods int) []agent.RodAction {
	actions := make([]agent.RodAction, rods)
	for i := 0; i < rods; i++ {
		for j := 0; j < env.ActionDims; j++ {
			actions[i][j] = flat[i*env.ActionDims+j]
		}
	}
	return actions
}

// flatten is the inverse of unflatten, used when storing transitions.
func flatten(actions []agent.RodAction) []float64 {
	flat := make([]float64, 0, len(actions)*env.ActionDims)
	for _, a := range actions {
		flat = append(flat, a[0], a[1], a[2])
	}
	return flat
}
