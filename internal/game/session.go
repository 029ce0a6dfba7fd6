package game

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"SiteSim/internal/activity"
	"SiteSim/internal/equipment"
	"SiteSim/internal/event"
	"SiteSim/internal/fund"
	"SiteSim/internal/model"
	"SiteSim/internal/recorder"
	"SiteSim/internal/workforce"
)

// State is the lifecycle state of a session.
type State string

const (
	StateRunning State = "running"
	StateOver    State = "over"
)

// Options configures a new session. A nil Recorder disables mirroring.
type Options struct {
	GameID       string
	Player       string
	Recorder     recorder.Recorder
	Synchronized bool
}

// Session is one player's game: it owns every simulation component and
// drives the weekly pipeline. A Session is not safe for concurrent use.
type Session struct {
	ID     string
	Player string
	Ctx    context.Context

	scenario *model.Scenario
	week     int
	state    State
	won      bool
	ready    bool

	events     *event.Engine
	equipment  *equipment.Registry
	workers    *workforce.Pool
	activities *activity.Engine
	ledger     *fund.Ledger

	recorder     recorder.Recorder
	synchronized bool
}

// NewSession wires a fresh game for the scenario and accepted bid. The bid
// is normalized against the scenario's bounds.
func NewSession(ctx context.Context, sc *model.Scenario, bid model.Bid, opts Options) *Session {
	id := opts.GameID
	if id == "" {
		id = uuid.NewString()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	events := event.NewEngine(sc.Events)
	eq := equipment.NewRegistry(sc.Equipment)
	workers := workforce.NewPool(sc.WorkerTypes())
	activities := activity.NewEngine(sc.Activities, events, eq, workers)
	ledger := fund.NewLedger(sc.Bid.Normalize(bid), sc.Finances, sc.Workers, activities, workers, eq)

	s := &Session{
		ID:           id,
		Player:       opts.Player,
		Ctx:          ctx,
		scenario:     sc,
		state:        StateRunning,
		events:       events,
		equipment:    eq,
		workers:      workers,
		activities:   activities,
		ledger:       ledger,
		recorder:     rec,
		synchronized: opts.Synchronized,
	}
	s.applyOneTime(0, effectsOf(events.Activate(0)))
	s.mirror(s.financeRecords(0)...)
	return s
}

func effectsOf(active []event.ActiveEffect) []model.Effect {
	out := make([]model.Effect, 0, len(active))
	for _, ae := range active {
		out = append(out, ae.Effect)
	}
	return out
}

// applyOneTime books the effects that act once instead of being folded
// into every derived computation.
func (s *Session) applyOneTime(week int, effects []model.Effect) {
	for _, eff := range effects {
		if !model.OneTime(eff) {
			continue
		}
		switch v := eff.(type) {
		case model.ImmediateReward:
			s.ledger.Credit(week, v.Amount)
			log.Printf("[INFO] game %s: immediate reward %s at week %d", s.ID, v.Amount, week)
		case model.BidDurationModifier:
			s.ledger.AdjustPromisedDuration(v.Weeks)
			log.Printf("[INFO] game %s: promised duration moved by %d weeks", s.ID, v.Weeks)
		}
	}
}

func (s *Session) winCondition(week int) bool {
	return s.workers.Total(week) == 0 &&
		s.activities.AllDone(week) &&
		!s.ledger.LoanOutstanding(week).IsPositive()
}

// Week returns the current week.
func (s *Session) Week() int { return s.week }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// IsOver reports whether the game has ended.
func (s *Session) IsOver() bool { return s.state == StateOver }

// HasWon reports whether the game ended with the project delivered.
func (s *Session) HasWon() bool { return s.state == StateOver && s.won }

// HasLost reports whether the game ended without winning.
func (s *Session) HasLost() bool { return s.state == StateOver && !s.won }

// Ready reports whether the player has finished the current week.
func (s *Session) Ready() bool { return s.ready }

// Scenario returns the scenario the session plays.
func (s *Session) Scenario() *model.Scenario { return s.scenario }

// SetReady marks the player as done (or not) with the current week.
func (s *Session) SetReady(ready bool) {
	if s.IsOver() {
		return
	}
	s.ready = ready
}

// OrderEquipment orders t for delivery at the current week.
func (s *Session) OrderEquipment(t model.EquipmentType, delivery model.DeliveryType) bool {
	if s.IsOver() || !s.equipment.Order(s.week, t, delivery) {
		return false
	}
	s.ledger.ChargeEquipment(s.week)
	s.mirror(s.equipmentRecord(t), s.financeRecord(s.week, "equipment"))
	return true
}

// CancelEquipmentOrder withdraws an order placed during the current week.
func (s *Session) CancelEquipmentOrder(t model.EquipmentType) bool {
	if s.IsOver() || !s.equipment.Cancel(s.week, t) {
		return false
	}
	s.ledger.ChargeEquipment(s.week)
	s.mirror(s.equipmentRecord(t), s.financeRecord(s.week, "equipment"))
	return true
}

// AllocateWorker assigns count workers of type t to an activity for the current week.
func (s *Session) AllocateWorker(label string, t model.WorkerType, count int) bool {
	if s.IsOver() || !s.activities.Allocate(s.week, label, t, count) {
		return false
	}
	s.mirror(recorder.Record{
		Key:   s.key(s.week, recorder.KindAllocation, label+"/"+string(t)),
		Value: float64(s.activities.Allocation(label, s.week)[t]),
	})
	return true
}

// ChangeWorkerCount hires (positive) or fires (negative) workers of type t.
// It returns the delta actually recorded for the week.
func (s *Session) ChangeWorkerCount(t model.WorkerType, delta int) int {
	if s.IsOver() {
		return 0
	}
	applied := s.workers.Change(s.week, t, delta)
	s.mirror(recorder.Record{
		Key:   s.key(s.week, recorder.KindWorkers, string(t)+".delta"),
		Value: float64(applied),
	})
	return applied
}

// RecordEventChoice stores the player's choice for an active event and
// books its one-time effects. A choice can only be made once.
func (s *Session) RecordEventChoice(eventKey, choiceKey string) bool {
	if s.IsOver() {
		return false
	}
	effects, ok := s.events.RecordChoice(s.week, eventKey, choiceKey)
	if !ok {
		return false
	}
	s.applyOneTime(s.week, effects)
	s.mirror(recorder.Record{Key: s.key(s.week, recorder.KindChoice, eventKey), Text: choiceKey})
	return true
}

// TakeLoan requests a loan paid out next week.
func (s *Session) TakeLoan(amount decimal.Decimal) bool {
	if s.IsOver() || !s.ledger.TakeLoan(s.week, amount) {
		return false
	}
	s.mirror(s.financeRecord(s.week+1, "loan"))
	return true
}

// RepayLoan repays up to amount next week and returns the amount booked.
func (s *Session) RepayLoan(amount decimal.Decimal) decimal.Decimal {
	if s.IsOver() {
		return decimal.Zero
	}
	applied := s.ledger.Repay(s.week, amount)
	s.mirror(s.financeRecord(s.week+1, "loan_repay"))
	return applied
}

// RepayableLoan returns the most a repayment made this week can cover.
func (s *Session) RepayableLoan() decimal.Decimal {
	return s.ledger.Repayable(s.week)
}

// AdvanceWeek runs one tick: activities progress, finances are booked, the
// clock moves forward and the game ends on a win or when the project
// duration runs out. It reports whether the tick ran.
func (s *Session) AdvanceWeek() bool {
	if s.IsOver() {
		return false
	}
	w := s.week
	changes := s.activities.Advance(w)
	ended := s.winCondition(w + 1)
	s.ledger.ApplyWeeklyFinances(w, ended)

	s.week++
	s.applyOneTime(s.week, effectsOf(s.events.Activate(s.week)))

	switch {
	case s.winCondition(s.week):
		s.state, s.won = StateOver, true
		log.Printf("[INFO] game %s (%s) won at week %d", s.ID, s.Player, s.week)
	case s.week >= s.scenario.ProjectDuration:
		s.state = StateOver
		log.Printf("[INFO] game %s (%s) lost at week %d", s.ID, s.Player, s.week)
	}
	s.ready = false

	s.mirrorTick(w, changes)
	return true
}

// PendingEvents returns the active events still waiting for a choice.
func (s *Session) PendingEvents() []model.Event {
	return s.events.Pending(s.week)
}

// Activities returns every activity's status at week.
func (s *Session) Activities(week int) []activity.Status {
	return s.activities.AtWeek(week)
}

// Equipment returns every equipment type's state at week.
func (s *Session) Equipment(week int) map[model.EquipmentType]model.Equipment {
	return s.equipment.AtWeek(week)
}

// Workers returns the hired headcount per type at week.
func (s *Session) Workers(week int) map[model.WorkerType]int {
	return s.workers.AtWeek(week)
}

// Finances returns the ledger row for week.
func (s *Session) Finances(week int) model.FinanceRow {
	return s.ledger.Row(week)
}

// TotalProgress returns the mean completion ratio of visible activities at week.
func (s *Session) TotalProgress(week int) float64 {
	return s.activities.TotalProgress(week)
}

// LoanOutstanding returns the loan balance at week.
func (s *Session) LoanOutstanding(week int) decimal.Decimal {
	return s.ledger.LoanOutstanding(week)
}

// Bid returns the accepted bid including promised-duration adjustments.
func (s *Session) Bid() model.Bid {
	return s.ledger.Bid()
}

// Statement returns the finance history up to the current week.
func (s *Session) Statement() *model.Statement {
	return &model.Statement{
		GameID:   s.ID,
		Player:   s.Player,
		Scenario: s.scenario.Name,
		Bid:      s.ledger.Bid(),
		Won:      s.HasWon(),
		Rows:     s.ledger.Statement(s.week),
	}
}
