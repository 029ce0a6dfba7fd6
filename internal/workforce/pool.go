package workforce

import (
	"SiteSim/internal/model"
	"SiteSim/internal/timeline"
)

// Pool tracks hires and fires per worker type. Each week stores a signed
// delta; a change made during week w takes effect from week w+1.
type Pool struct {
	types  []model.WorkerType
	deltas map[model.WorkerType]*timeline.Timeline[int]
}

// NewPool creates an empty pool for the given worker types.
func NewPool(types []model.WorkerType) *Pool {
	p := &Pool{
		types:  append([]model.WorkerType(nil), types...),
		deltas: make(map[model.WorkerType]*timeline.Timeline[int], len(types)),
	}
	for _, t := range types {
		p.deltas[t] = timeline.NewInt()
	}
	return p
}

// Types returns the worker types in configuration order.
func (p *Pool) Types() []model.WorkerType {
	return p.types
}

// Change records the delta for week, replacing any earlier change made in
// the same week. Fires are clamped to the current headcount. It returns the
// delta actually stored; unknown types are ignored.
func (p *Pool) Change(week int, t model.WorkerType, delta int) int {
	tl, ok := p.deltas[t]
	if !ok || week < 0 {
		return 0
	}
	if floor := -p.Headcount(t, week); delta < floor {
		delta = floor
	}
	tl.Set(week, delta)
	return delta
}

// Delta returns the change recorded at week.
func (p *Pool) Delta(t model.WorkerType, week int) int {
	tl, ok := p.deltas[t]
	if !ok {
		return 0
	}
	return tl.Get(week)
}

// Headcount returns the number of hired workers of type t during week.
func (p *Pool) Headcount(t model.WorkerType, week int) int {
	tl, ok := p.deltas[t]
	if !ok {
		return 0
	}
	return tl.Reduced(week - 1)
}

// AtWeek returns the headcount of every type during week.
func (p *Pool) AtWeek(week int) map[model.WorkerType]int {
	out := make(map[model.WorkerType]int, len(p.types))
	for _, t := range p.types {
		out[t] = p.Headcount(t, week)
	}
	return out
}

// Total returns the headcount across all types during week.
func (p *Pool) Total(week int) int {
	total := 0
	for _, t := range p.types {
		total += p.Headcount(t, week)
	}
	return total
}
