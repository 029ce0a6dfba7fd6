package config

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"SiteSim/internal/model"
)

// GameConfig is the scenario section of the configuration file.
type GameConfig struct {
	Name            string                     `yaml:"name" validate:"required"`
	ProjectDuration int                        `yaml:"project_duration" validate:"gt=0"`
	LoansEnabled    bool                       `yaml:"loans_enabled"`
	Bid             BidConfig                  `yaml:"bid"`
	Finances        FinanceConfig              `yaml:"finances"`
	Payments        PaymentConfig              `yaml:"payments"`
	Workers         map[string]WorkerConfig    `yaml:"workers" validate:"required,min=1,dive"`
	Equipment       map[string]EquipmentConfig `yaml:"equipment" validate:"dive"`
	Activities      []ActivityConfig           `yaml:"activities" validate:"required,min=1,dive"`
	Events          map[string]EventConfig     `yaml:"events" validate:"dive"`
}

type BidConfig struct {
	Min             float64 `yaml:"min" validate:"gt=0"`
	Max             float64 `yaml:"max" validate:"gtefield=Min"`
	Default         float64 `yaml:"default" validate:"gtefield=Min,ltefield=Max"`
	DefaultDuration int     `yaml:"default_duration" validate:"gte=0"`
}

type FinanceConfig struct {
	LoanInterest      float64 `yaml:"loan_interest" validate:"gte=0"`
	OverdraftInterest float64 `yaml:"overdraft_interest" validate:"gte=0"`
	Consumables       float64 `yaml:"consumables" validate:"gte=0"`
	Overhead          float64 `yaml:"overhead" validate:"gte=0"`
	DelayPenalty      float64 `yaml:"project_delay_penalty" validate:"gte=0"`
	ExpressMultiplier float64 `yaml:"express_multiplier" validate:"gte=1"`
}

type PaymentConfig struct {
	StartBudget                 float64 `yaml:"start_budget" validate:"gte=0,lte=1"`
	MilestoneReward             float64 `yaml:"milestone_reward" validate:"gte=0,lte=1"`
	AllActivitiesCompleteReward float64 `yaml:"all_activities_complete_reward" validate:"gte=0,lte=1"`
	MilestoneActivity           string  `yaml:"milestone_activity"`
}

type WorkerConfig struct {
	Label      string  `yaml:"label" validate:"required"`
	ShortLabel string  `yaml:"short_label"`
	Cost       float64 `yaml:"cost" validate:"gte=0"`
}

type EquipmentConfig struct {
	Label string  `yaml:"label" validate:"required"`
	Cost  float64 `yaml:"cost" validate:"gte=0"`
}

type ActivityConfig struct {
	Label           string             `yaml:"label" validate:"required"`
	Duration        int                `yaml:"duration" validate:"gt=0"`
	ExpressDuration int                `yaml:"express_duration" validate:"gte=0"`
	Requirements    RequirementsConfig `yaml:"requirements"`
	Hidden          bool               `yaml:"hidden"`
}

type RequirementsConfig struct {
	Workers    map[string]int `yaml:"workers" validate:"dive,gte=0"`
	Activities []string       `yaml:"activities"`
	Equipment  []string       `yaml:"equipment"`
}

type EventConfig struct {
	Week        int                     `yaml:"week" validate:"gte=0"`
	Title       string                  `yaml:"title"`
	Description string                  `yaml:"description"`
	Effects     []EffectConfig          `yaml:"effects"`
	Choices     map[string]ChoiceConfig `yaml:"choices"`
}

type ChoiceConfig struct {
	Label   string         `yaml:"label"`
	Effects []EffectConfig `yaml:"effects"`
}

// EffectConfig is the loose form of an event effect: one entry may carry
// several modifiers at once.
type EffectConfig struct {
	ActivityLabels          []string       `yaml:"activity_labels"`
	DurationModification    int            `yaml:"duration_modification"`
	WorkersModification     map[string]int `yaml:"workers_modification"`
	ResourceDependant       bool           `yaml:"resource_dependant"`
	RevealActivity          bool           `yaml:"reveal_activity"`
	ImmediateReward         float64        `yaml:"immediate_reward"`
	BidDurationModification int            `yaml:"bid_duration_modification"`
}

func (e EffectConfig) targetsActivities() bool {
	return e.DurationModification != 0 || len(e.WorkersModification) > 0 || e.ResourceDependant || e.RevealActivity
}

// Effects splits the loose form into typed effects.
func (e EffectConfig) Effects() []model.Effect {
	var out []model.Effect
	labels := slices.Clone(e.ActivityLabels)
	if e.DurationModification != 0 {
		out = append(out, model.DurationModifier{Activities: labels, Days: e.DurationModification})
	}
	if len(e.WorkersModification) > 0 {
		workers := make(map[model.WorkerType]int, len(e.WorkersModification))
		for t, n := range e.WorkersModification {
			workers[model.WorkerType(t)] = n
		}
		out = append(out, model.WorkerModifier{Activities: labels, Workers: workers})
	}
	if e.ResourceDependant {
		out = append(out, model.ResourceDependant{Activities: labels})
	}
	if e.RevealActivity {
		out = append(out, model.RevealActivity{Activities: labels})
	}
	if e.ImmediateReward != 0 {
		out = append(out, model.ImmediateReward{Amount: decimal.NewFromFloat(e.ImmediateReward)})
	}
	if e.BidDurationModification != 0 {
		out = append(out, model.BidDurationModifier{Weeks: e.BidDurationModification})
	}
	return out
}

func effectsOf(cfgs []EffectConfig) []model.Effect {
	var out []model.Effect
	for _, c := range cfgs {
		out = append(out, c.Effects()...)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// check verifies the references between activities, workers, equipment
// and events, and that the activity graph has no cycles.
func (g *GameConfig) check() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	labels := make(map[string]int, len(g.Activities))
	for i, a := range g.Activities {
		if _, dup := labels[a.Label]; dup {
			add(fmt.Sprintf("activities[%d]", i), "duplicate label %q", a.Label)
		}
		labels[a.Label] = i
	}

	for i, a := range g.Activities {
		field := fmt.Sprintf("activities[%d] (%s)", i, a.Label)
		for _, t := range sortedKeys(a.Requirements.Workers) {
			if _, ok := g.Workers[t]; !ok {
				add(field, "unknown worker type %q", t)
			}
		}
		for _, req := range a.Requirements.Activities {
			if _, ok := labels[req]; !ok {
				add(field, "unknown prerequisite activity %q", req)
			}
		}
		for _, eq := range a.Requirements.Equipment {
			if _, ok := g.Equipment[eq]; !ok {
				add(field, "unknown equipment %q", eq)
			}
		}
		if a.ExpressDuration > 0 && len(a.Requirements.Equipment) == 0 {
			add(field, "express_duration requires equipment")
		}
		if a.ExpressDuration > a.Duration {
			add(field, "express_duration %d exceeds duration %d", a.ExpressDuration, a.Duration)
		}
	}

	if cycle := g.findCycle(labels); cycle != "" {
		add("activities", "dependency cycle through %q", cycle)
	}

	if m := g.Payments.MilestoneActivity; m != "" {
		if _, ok := labels[m]; !ok {
			add("payments.milestone_activity", "unknown activity %q", m)
		}
	}

	checkEffects := func(field string, effects []EffectConfig) {
		for i, e := range effects {
			f := fmt.Sprintf("%s.effects[%d]", field, i)
			if e.targetsActivities() && len(e.ActivityLabels) == 0 {
				add(f, "activity_labels required")
			}
			for _, l := range e.ActivityLabels {
				if _, ok := labels[l]; !ok {
					add(f, "unknown activity %q", l)
				}
			}
			for _, t := range sortedKeys(e.WorkersModification) {
				if _, ok := g.Workers[t]; !ok {
					add(f, "unknown worker type %q", t)
				}
			}
		}
	}
	for _, key := range sortedKeys(g.Events) {
		ev := g.Events[key]
		field := "events." + key
		if ev.Week > g.ProjectDuration {
			add(field, "week %d is after the project duration %d", ev.Week, g.ProjectDuration)
		}
		checkEffects(field, ev.Effects)
		for _, ck := range sortedKeys(ev.Choices) {
			checkEffects(field+".choices."+ck, ev.Choices[ck].Effects)
		}
	}

	return errs
}

// findCycle returns the label of an activity on a dependency cycle, or "".
func (g *GameConfig) findCycle(labels map[string]int) string {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(labels))
	var visit func(label string) string
	visit = func(label string) string {
		switch state[label] {
		case visiting:
			return label
		case visited:
			return ""
		}
		state[label] = visiting
		if i, ok := labels[label]; ok {
			for _, req := range g.Activities[i].Requirements.Activities {
				if c := visit(req); c != "" {
					return c
				}
			}
		}
		state[label] = visited
		return ""
	}
	for _, a := range g.Activities {
		if c := visit(a.Label); c != "" {
			return c
		}
	}
	return ""
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Scenario converts a validated game configuration into the engine's model.
// Map-keyed sections are emitted in key order.
func (g *GameConfig) Scenario() (*model.Scenario, error) {
	if errs := g.check(); len(errs) > 0 {
		return nil, errs
	}

	sc := &model.Scenario{
		Name:            g.Name,
		ProjectDuration: g.ProjectDuration,
		Bid: model.BidBounds{
			Min:             money(g.Bid.Min),
			Max:             money(g.Bid.Max),
			Default:         money(g.Bid.Default),
			DefaultDuration: g.Bid.DefaultDuration,
		},
		Finances: model.Finances{
			LoanInterest:      money(g.Finances.LoanInterest),
			OverdraftInterest: money(g.Finances.OverdraftInterest),
			Consumables:       money(g.Finances.Consumables),
			Overhead:          money(g.Finances.Overhead),
			DelayPenalty:      money(g.Finances.DelayPenalty),
			ExpressMultiplier: money(g.Finances.ExpressMultiplier),
			LoansEnabled:      g.LoansEnabled,
			StartBudget:       money(g.Payments.StartBudget),
			MilestoneReward:   money(g.Payments.MilestoneReward),
			CompletionReward:  money(g.Payments.AllActivitiesCompleteReward),
			MilestoneActivity: g.Payments.MilestoneActivity,
		},
	}

	for _, t := range sortedKeys(g.Workers) {
		w := g.Workers[t]
		sc.Workers = append(sc.Workers, model.WorkerSpec{
			Type:       model.WorkerType(t),
			Label:      w.Label,
			ShortLabel: w.ShortLabel,
			Cost:       money(w.Cost),
		})
	}
	for _, t := range sortedKeys(g.Equipment) {
		e := g.Equipment[t]
		sc.Equipment = append(sc.Equipment, model.EquipmentSpec{
			Type:  model.EquipmentType(t),
			Label: e.Label,
			Cost:  money(e.Cost),
		})
	}
	for _, a := range g.Activities {
		req := model.Requirements{
			Workers:    make(map[model.WorkerType]int, len(a.Requirements.Workers)),
			Activities: slices.Clone(a.Requirements.Activities),
		}
		for t, n := range a.Requirements.Workers {
			req.Workers[model.WorkerType(t)] = n
		}
		for _, e := range a.Requirements.Equipment {
			req.Equipment = append(req.Equipment, model.EquipmentType(e))
		}
		sc.Activities = append(sc.Activities, model.Activity{
			Label:           a.Label,
			Duration:        a.Duration,
			ExpressDuration: a.ExpressDuration,
			Requirements:    req,
			Hidden:          a.Hidden,
		})
	}
	for _, key := range sortedKeys(g.Events) {
		ev := g.Events[key]
		out := model.Event{
			Key:         key,
			Week:        ev.Week,
			Title:       ev.Title,
			Description: ev.Description,
			Effects:     effectsOf(ev.Effects),
		}
		if len(ev.Choices) > 0 {
			out.Choices = make(map[string]model.Choice, len(ev.Choices))
			for ck, c := range ev.Choices {
				out.Choices[ck] = model.Choice{Label: c.Label, Effects: effectsOf(c.Effects)}
			}
		}
		sc.Events = append(sc.Events, out)
	}
	return sc, nil
}
