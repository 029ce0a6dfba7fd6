package game

import (
	"SiteSim/internal/activity"
	"SiteSim/internal/model"
)

// Snapshot is a read-only view of a session at one week.
type Snapshot struct {
	GameID        string
	Player        string
	Week          int
	State         State
	Won           bool
	Bid           model.Bid
	Activities    []activity.Status
	Equipment     map[model.EquipmentType]model.Equipment
	Workers       map[model.WorkerType]int
	Finance       model.FinanceRow
	TotalProgress float64
	Pending       []model.Event
	Starting      []model.Event
}

// Snapshot collects the state of every component at week.
func (s *Session) Snapshot(week int) Snapshot {
	return Snapshot{
		GameID:        s.ID,
		Player:        s.Player,
		Week:          week,
		State:         s.state,
		Won:           s.won,
		Bid:           s.ledger.Bid(),
		Activities:    s.activities.AtWeek(week),
		Equipment:     s.equipment.AtWeek(week),
		Workers:       s.workers.AtWeek(week),
		Finance:       s.ledger.Row(week),
		TotalProgress: s.activities.TotalProgress(week),
		Pending:       s.events.Pending(week),
		Starting:      s.events.StartingAt(week),
	}
}
