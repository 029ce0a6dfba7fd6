package activity

import (
	"fmt"
	"maps"
	"slices"

	"SiteSim/internal/equipment"
	"SiteSim/internal/event"
	"SiteSim/internal/model"
	"SiteSim/internal/timeline"
	"SiteSim/internal/workforce"
)

// Allocation maps worker types to the number of workers assigned to an activity.
type Allocation map[model.WorkerType]int

// Change reports an activity completing or losing its completion during a tick.
type Change struct {
	Label string
	Week  int
	Done  bool
}

// Status is the per-week view of one activity.
type Status struct {
	Label           string
	Progress        int
	Duration        int
	Allocation      Allocation
	Required        Allocation
	Hidden          bool
	Done            bool
	RequirementsMet bool
	CompletedWeek   int // -1 when not completed
}

// Engine resolves activity dependencies and advances progress once per week.
type Engine struct {
	activities  []model.Activity
	index       map[string]int
	workerTypes []model.WorkerType
	progress    map[string]*timeline.Timeline[int]
	allocations map[string]*timeline.Timeline[Allocation]
	completed   map[string]int

	events    *event.Engine
	equipment *equipment.Registry
	workers   *workforce.Pool
}

// NewEngine wires the activity engine to the components it reads from.
func NewEngine(activities []model.Activity, events *event.Engine, eq *equipment.Registry, workers *workforce.Pool) *Engine {
	e := &Engine{
		activities:  activities,
		index:       make(map[string]int, len(activities)),
		workerTypes: workers.Types(),
		progress:    make(map[string]*timeline.Timeline[int], len(activities)),
		allocations: make(map[string]*timeline.Timeline[Allocation], len(activities)),
		completed:   make(map[string]int),
		events:      events,
		equipment:   eq,
		workers:     workers,
	}
	lastWins := func(_, cur Allocation) Allocation { return cur }
	for i, a := range activities {
		e.index[a.Label] = i
		e.progress[a.Label] = timeline.NewInt()
		e.allocations[a.Label] = timeline.New[Allocation](nil, lastWins, nil)
	}
	return e
}

func (e *Engine) mustGet(label string) model.Activity {
	i, ok := e.index[label]
	if !ok {
		panic(fmt.Sprintf("activity %q not found", label))
	}
	return e.activities[i]
}

// Activities returns the configured activities in order.
func (e *Engine) Activities() []model.Activity {
	return e.activities
}

// Has reports whether label names a configured activity.
func (e *Engine) Has(label string) bool {
	_, ok := e.index[label]
	return ok
}

// Progress returns the accumulated progress of an activity at week.
func (e *Engine) Progress(label string, week int) int {
	e.mustGet(label)
	return e.progress[label].Reduced(week)
}

// Allocation returns the workers assigned to an activity during week.
func (e *Engine) Allocation(label string, week int) Allocation {
	e.mustGet(label)
	out := make(Allocation, len(e.workerTypes))
	for _, t := range e.workerTypes {
		out[t] = e.allocations[label].Get(week)[t]
	}
	return out
}

// Allocate assigns count workers of type t to an activity for week.
// Negative counts are treated as zero; unknown labels or types are ignored.
func (e *Engine) Allocate(week int, label string, t model.WorkerType, count int) bool {
	if !e.Has(label) || !slices.Contains(e.workerTypes, t) || week < 0 {
		return false
	}
	count = max(count, 0)
	next := maps.Clone(e.allocations[label].Get(week))
	if next == nil {
		next = make(Allocation, len(e.workerTypes))
	}
	next[t] = count
	e.allocations[label].Set(week, next)
	return true
}

// TotalAllocated sums the workers of type t assigned across all activities during week.
func (e *Engine) TotalAllocated(t model.WorkerType, week int) int {
	total := 0
	for _, a := range e.activities {
		total += e.allocations[a.Label].Get(week)[t]
	}
	return total
}

// CompletionWeek returns the week an activity was recorded as done.
func (e *Engine) CompletionWeek(label string) (int, bool) {
	w, ok := e.completed[label]
	return w, ok
}

func (e *Engine) expressDelivered(a model.Activity, week int) bool {
	if a.ExpressDuration <= 0 || len(a.Requirements.Equipment) == 0 {
		return false
	}
	for _, t := range a.Requirements.Equipment {
		if e.equipment.Status(t, week).Delivery != model.DeliveryExpress {
			return false
		}
	}
	return true
}

// Duration returns the effective duration of an activity at week: the base
// or express duration plus every active duration modifier. A modifier no
// longer applies once the activity was completed on or before the week of
// the event that introduced it.
func (e *Engine) Duration(label string, week int) int {
	a := e.mustGet(label)
	d := a.Duration
	if e.expressDelivered(a, week) {
		d = a.ExpressDuration
	}
	completedAt, completed := e.completed[label]
	for _, ae := range e.events.Active(week) {
		m, ok := ae.Effect.(model.DurationModifier)
		if !ok || !model.Targets(m, label) {
			continue
		}
		if completed && completedAt <= ae.Week {
			continue
		}
		d += m.Days
	}
	return d
}

// WorkerDelta sums the event worker modifiers for an activity at week.
// Completed activities carry no modifiers.
func (e *Engine) WorkerDelta(label string, week int) Allocation {
	e.mustGet(label)
	out := make(Allocation, len(e.workerTypes))
	if w, ok := e.completed[label]; ok && w <= week {
		return out
	}
	for _, ae := range e.events.Active(week) {
		m, ok := ae.Effect.(model.WorkerModifier)
		if !ok || !model.Targets(m, label) {
			continue
		}
		for _, t := range e.workerTypes {
			out[t] += m.Workers[t]
		}
	}
	return out
}

// Required returns the static worker requirement plus event modifiers.
func (e *Engine) Required(label string, week int) Allocation {
	a := e.mustGet(label)
	delta := e.WorkerDelta(label, week)
	out := make(Allocation, len(e.workerTypes))
	for _, t := range e.workerTypes {
		out[t] = a.Requirements.Workers[t] + delta[t]
	}
	return out
}

// IsDone reports whether an activity's progress has reached its duration at week.
func (e *Engine) IsDone(label string, week int) bool {
	return e.Progress(label, week) >= e.Duration(label, week)
}

// AllDone reports whether every visible activity is done at week.
func (e *Engine) AllDone(week int) bool {
	for _, a := range e.activities {
		if e.IsHidden(a.Label, week) {
			continue
		}
		if !e.IsDone(a.Label, week) {
			return false
		}
	}
	return true
}

// LastCompletion returns the latest completion week among visible activities.
func (e *Engine) LastCompletion(week int) (int, bool) {
	last, found := 0, false
	for _, a := range e.activities {
		if e.IsHidden(a.Label, week) {
			continue
		}
		w, ok := e.completed[a.Label]
		if !ok {
			return 0, false
		}
		last, found = max(last, w), true
	}
	return last, found
}

// IsHidden reports whether an activity is hidden and not yet revealed by an active effect.
func (e *Engine) IsHidden(label string, week int) bool {
	a := e.mustGet(label)
	if !a.Hidden {
		return false
	}
	for _, ae := range e.events.Active(week) {
		if _, ok := ae.Effect.(model.RevealActivity); ok && model.Targets(ae.Effect, label) {
			return false
		}
	}
	return true
}

func (e *Engine) prerequisitesDone(a model.Activity, week int) bool {
	for _, req := range a.Requirements.Activities {
		if !e.IsDone(req, week) {
			return false
		}
	}
	return true
}

func (e *Engine) equipmentOrdered(a model.Activity, week int) bool {
	for _, t := range a.Requirements.Equipment {
		if e.equipment.Status(t, week).Status == model.StatusUnordered {
			return false
		}
	}
	return true
}

// WorkerRequirementMet reports whether enough workers are allocated to the
// activity and enough are hired to cover every allocation of that type.
func (e *Engine) WorkerRequirementMet(label string, week int) bool {
	a := e.mustGet(label)
	delta := e.WorkerDelta(label, week)
	alloc := e.allocations[label].Get(week)
	for _, t := range e.workerTypes {
		static := a.Requirements.Workers[t]
		if static == 0 && delta[t] == 0 {
			continue
		}
		if static+delta[t] > alloc[t] {
			return false
		}
		if e.TotalAllocated(t, week) > e.workers.Headcount(t, week) {
			return false
		}
	}
	return true
}

// RequirementsMet reports whether an activity can progress during week.
func (e *Engine) RequirementsMet(label string, week int) bool {
	a := e.mustGet(label)
	return e.prerequisitesDone(a, week) && e.equipmentOrdered(a, week) && e.WorkerRequirementMet(label, week)
}

// ResourceDependant reports whether an active effect ties the activity's
// speed to its allocated workers.
func (e *Engine) ResourceDependant(label string, week int) bool {
	e.mustGet(label)
	for _, ae := range e.events.Active(week) {
		if _, ok := ae.Effect.(model.ResourceDependant); ok && model.Targets(ae.Effect, label) {
			return true
		}
	}
	return false
}

// increment returns the progress an activity makes during week, assuming
// its requirements are met.
func (e *Engine) increment(label string, week int) int {
	if !e.ResourceDependant(label, week) {
		return 1
	}
	remaining := e.Duration(label, week) - e.Progress(label, week)
	required := e.Required(label, week)
	alloc := e.allocations[label].Get(week)
	multiplier := -1
	for _, t := range e.workerTypes {
		if required[t] <= 0 {
			continue
		}
		ratio := alloc[t] / required[t]
		if multiplier < 0 || ratio < multiplier {
			multiplier = ratio
		}
	}
	if multiplier < 0 {
		return remaining
	}
	return min(remaining, multiplier)
}

// Advance progresses every eligible activity during week, writing the
// increments at week+1. Activities that reach their duration are recorded
// as completed at week+1 and their equipment is delivered; activities that
// are no longer done lose their completion record.
func (e *Engine) Advance(week int) []Change {
	var changes []Change
	for _, a := range e.activities {
		inc := 0
		if !e.IsHidden(a.Label, week) && !e.IsDone(a.Label, week) && e.RequirementsMet(a.Label, week) {
			inc = e.increment(a.Label, week)
		}
		e.progress[a.Label].Set(week+1, inc)

		done := e.Progress(a.Label, week+1) >= e.Duration(a.Label, week)
		if done {
			if _, ok := e.completed[a.Label]; !ok {
				e.completed[a.Label] = week + 1
				changes = append(changes, Change{Label: a.Label, Week: week + 1, Done: true})
			}
			for _, t := range a.Requirements.Equipment {
				e.equipment.Deliver(week+1, t)
			}
		} else if w, ok := e.completed[a.Label]; ok {
			delete(e.completed, a.Label)
			changes = append(changes, Change{Label: a.Label, Week: w, Done: false})
		}
	}
	return changes
}

// TotalProgress returns the mean completion ratio of the visible activities at week.
func (e *Engine) TotalProgress(week int) float64 {
	var sum float64
	n := 0
	for _, a := range e.activities {
		if e.IsHidden(a.Label, week) {
			continue
		}
		n++
		d := e.Duration(a.Label, week)
		if d <= 0 {
			sum++
			continue
		}
		sum += min(1, float64(e.Progress(a.Label, week))/float64(d))
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AtWeek returns the status of every activity at week.
func (e *Engine) AtWeek(week int) []Status {
	out := make([]Status, 0, len(e.activities))
	for _, a := range e.activities {
		completed := -1
		if w, ok := e.completed[a.Label]; ok && w <= week {
			completed = w
		}
		out = append(out, Status{
			Label:           a.Label,
			Progress:        e.Progress(a.Label, week),
			Duration:        e.Duration(a.Label, week),
			Allocation:      e.Allocation(a.Label, week),
			Required:        e.Required(a.Label, week),
			Hidden:          e.IsHidden(a.Label, week),
			Done:            e.IsDone(a.Label, week),
			RequirementsMet: e.RequirementsMet(a.Label, week),
			CompletedWeek:   completed,
		})
	}
	return out
}
