package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Effect is one modifier carried by an event or an event choice. The
// concrete types below are the only implementations.
type Effect interface {
	effect()
}

// DurationModifier lengthens (or shortens, when negative) the targeted activities.
type DurationModifier struct {
	Activities []string
	Days       int
}

// WorkerModifier changes the worker requirement of the targeted activities.
type WorkerModifier struct {
	Activities []string
	Workers    map[WorkerType]int
}

// ResourceDependant lets the targeted activities progress faster with extra workers.
type ResourceDependant struct {
	Activities []string
}

// RevealActivity un-hides the targeted activities.
type RevealActivity struct {
	Activities []string
}

// ImmediateReward credits a one-time amount.
type ImmediateReward struct {
	Amount decimal.Decimal
}

// BidDurationModifier moves the promised project duration used for delay penalties.
type BidDurationModifier struct {
	Weeks int
}

func (DurationModifier) effect()    {}
func (WorkerModifier) effect()      {}
func (ResourceDependant) effect()   {}
func (RevealActivity) effect()      {}
func (ImmediateReward) effect()     {}
func (BidDurationModifier) effect() {}

// Targets reports whether e applies to the activity with the given label.
// Effects that are not scoped to activities never target one.
func Targets(e Effect, label string) bool {
	switch v := e.(type) {
	case DurationModifier:
		return slices.Contains(v.Activities, label)
	case WorkerModifier:
		return slices.Contains(v.Activities, label)
	case ResourceDependant:
		return slices.Contains(v.Activities, label)
	case RevealActivity:
		return slices.Contains(v.Activities, label)
	}
	return false
}

// OneTime reports whether e is applied once when it takes effect rather
// than folded into every derived computation.
func OneTime(e Effect) bool {
	switch e.(type) {
	case ImmediateReward, BidDurationModifier:
		return true
	}
	return false
}

// Choice is one branch of an event the player may pick.
type Choice struct {
	Label   string
	Effects []Effect
}

// Event is a week-gated occurrence with unconditional effects and/or choices.
type Event struct {
	Key         string
	Week        int
	Title       string
	Description string
	Effects     []Effect
	Choices     map[string]Choice
}

// ChoiceKeys returns the event's choice keys in sorted order.
func (e Event) ChoiceKeys() []string {
	keys := make([]string, 0, len(e.Choices))
	for k := range e.Choices {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
