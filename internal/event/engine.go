package event

import (
	"cmp"
	"slices"

	"SiteSim/internal/model"
)

// ActiveEffect is an effect together with the event that introduced it.
type ActiveEffect struct {
	Event  string
	Week   int
	Effect model.Effect
}

// Engine gates event effects by week and tracks the player's choices.
type Engine struct {
	events    []model.Event
	byKey     map[string]int
	choices   map[string]string
	activated map[string]bool
}

// NewEngine creates an engine for the given events, ordered by week then key.
func NewEngine(events []model.Event) *Engine {
	sorted := append([]model.Event(nil), events...)
	slices.SortStableFunc(sorted, func(a, b model.Event) int {
		if c := cmp.Compare(a.Week, b.Week); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	e := &Engine{
		events:    sorted,
		byKey:     make(map[string]int, len(sorted)),
		choices:   make(map[string]string),
		activated: make(map[string]bool),
	}
	for i, ev := range sorted {
		e.byKey[ev.Key] = i
	}
	return e
}

// Events returns every configured event in week order.
func (e *Engine) Events() []model.Event {
	return e.events
}

// Event looks up an event by key.
func (e *Engine) Event(key string) (model.Event, bool) {
	i, ok := e.byKey[key]
	if !ok {
		return model.Event{}, false
	}
	return e.events[i], true
}

// Choice returns the recorded choice for an event.
func (e *Engine) Choice(key string) (string, bool) {
	c, ok := e.choices[key]
	return c, ok
}

// Choices returns a copy of all recorded choices.
func (e *Engine) Choices() map[string]string {
	out := make(map[string]string, len(e.choices))
	for k, v := range e.choices {
		out[k] = v
	}
	return out
}

// Active flattens the effects of every event that has started by week:
// its unconditional effects plus the effects of the recorded choice.
func (e *Engine) Active(week int) []ActiveEffect {
	var out []ActiveEffect
	for _, ev := range e.events {
		if ev.Week > week {
			break
		}
		for _, eff := range ev.Effects {
			out = append(out, ActiveEffect{Event: ev.Key, Week: ev.Week, Effect: eff})
		}
		if key, ok := e.choices[ev.Key]; ok {
			for _, eff := range ev.Choices[key].Effects {
				out = append(out, ActiveEffect{Event: ev.Key, Week: ev.Week, Effect: eff})
			}
		}
	}
	return out
}

// StartingAt returns the events whose week is exactly week.
func (e *Engine) StartingAt(week int) []model.Event {
	var out []model.Event
	for _, ev := range e.events {
		if ev.Week == week {
			out = append(out, ev)
		}
	}
	return out
}

// Pending returns the active events that still wait for a choice.
func (e *Engine) Pending(week int) []model.Event {
	var out []model.Event
	for _, ev := range e.events {
		if ev.Week > week {
			break
		}
		if len(ev.Choices) == 0 {
			continue
		}
		if _, ok := e.choices[ev.Key]; !ok {
			out = append(out, ev)
		}
	}
	return out
}

// RecordChoice stores the player's choice for an active event. Choices are
// write-once: it returns the chosen branch's effects and true only the
// first time a valid choice is recorded.
func (e *Engine) RecordChoice(week int, eventKey, choiceKey string) ([]model.Effect, bool) {
	ev, ok := e.Event(eventKey)
	if !ok || ev.Week > week {
		return nil, false
	}
	if _, done := e.choices[eventKey]; done {
		return nil, false
	}
	choice, ok := ev.Choices[choiceKey]
	if !ok {
		return nil, false
	}
	e.choices[eventKey] = choiceKey
	return choice.Effects, true
}

// Activate marks every event that has started by week as activated and
// returns the unconditional effects of the ones activated by this call.
func (e *Engine) Activate(week int) []ActiveEffect {
	var out []ActiveEffect
	for _, ev := range e.events {
		if ev.Week > week {
			break
		}
		if e.activated[ev.Key] {
			continue
		}
		e.activated[ev.Key] = true
		for _, eff := range ev.Effects {
			out = append(out, ActiveEffect{Event: ev.Key, Week: ev.Week, Effect: eff})
		}
	}
	return out
}
