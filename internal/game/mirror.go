package game

import (
	"log"

	"github.com/shopspring/decimal"

	"SiteSim/internal/activity"
	"SiteSim/internal/model"
	"SiteSim/internal/recorder"
)

func (s *Session) key(week int, kind recorder.Kind, entity string) recorder.Key {
	return recorder.Key{GameID: s.ID, Player: s.Player, Week: week, Kind: kind, Entity: entity}
}

// mirror writes records to the recorder in synchronized mode. Failures are
// logged and never affect the in-memory game.
func (s *Session) mirror(records ...recorder.Record) {
	if !s.synchronized || len(records) == 0 {
		return
	}
	if err := s.recorder.Upsert(s.Ctx, records...); err != nil {
		log.Printf("[WARN] game %s: mirror %d records: %v", s.ID, len(records), err)
	}
}

func (s *Session) forget(keys ...recorder.Key) {
	if !s.synchronized || len(keys) == 0 {
		return
	}
	if err := s.recorder.Delete(s.Ctx, keys...); err != nil {
		log.Printf("[WARN] game %s: delete %d records: %v", s.ID, len(keys), err)
	}
}

func (s *Session) equipmentRecord(t model.EquipmentType) recorder.Record {
	st := s.equipment.Status(t, s.week)
	text := string(st.Status)
	if st.Delivery != "" {
		text += "/" + string(st.Delivery)
	}
	return recorder.Record{Key: s.key(s.week, recorder.KindEquipment, string(t)), Text: text}
}

func financeColumns(row model.FinanceRow) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"incoming":         row.Incoming,
		"workers":          row.Workers,
		"equipment":        row.Equipment,
		"overhead":         row.Overhead,
		"consumables":      row.Consumables,
		"delay_penalty":    row.DelayPenalty,
		"loan":             row.Loan,
		"loan_interest":    row.LoanInterest,
		"overdraft":        row.Overdraft,
		"loan_repay":       row.LoanRepay,
		"balance":          row.Balance,
		"loan_outstanding": row.LoanOutstanding,
	}
}

func (s *Session) financeRecord(week int, column string) recorder.Record {
	v := financeColumns(s.ledger.Row(week))[column]
	return recorder.Record{
		Key:   s.key(week, recorder.KindFinance, column),
		Value: v.InexactFloat64(),
		Text:  v.String(),
	}
}

func (s *Session) financeRecords(week int) []recorder.Record {
	cols := financeColumns(s.ledger.Row(week))
	out := make([]recorder.Record, 0, len(cols))
	for name, v := range cols {
		out = append(out, recorder.Record{
			Key:   s.key(week, recorder.KindFinance, name),
			Value: v.InexactFloat64(),
			Text:  v.String(),
		})
	}
	return out
}

// mirrorTick records the outcome of the tick that ran during week.
func (s *Session) mirrorTick(week int, changes []activity.Change) {
	if !s.synchronized {
		return
	}
	var records []recorder.Record
	var stale []recorder.Key

	for _, a := range s.activities.AtWeek(s.week) {
		records = append(records, recorder.Record{
			Key:   s.key(s.week, recorder.KindProgress, a.Label),
			Value: float64(a.Progress),
		})
	}
	for _, c := range changes {
		k := s.key(c.Week, recorder.KindCompletion, c.Label)
		if c.Done {
			records = append(records, recorder.Record{Key: k, Value: float64(c.Week)})
		} else {
			stale = append(stale, k)
		}
	}
	for t, n := range s.workers.AtWeek(s.week) {
		records = append(records, recorder.Record{Key: s.key(s.week, recorder.KindWorkers, string(t)), Value: float64(n)})
	}
	for _, t := range s.equipment.Types() {
		records = append(records, s.equipmentRecord(t))
	}
	records = append(records, s.financeRecords(week)...)
	records = append(records, s.financeRecords(s.week)...)
	records = append(records, recorder.Record{
		Key:   s.key(s.week, recorder.KindSummary, "state"),
		Value: s.activities.TotalProgress(s.week),
		Text:  s.summaryText(),
	})

	s.forget(stale...)
	s.mirror(records...)
}

func (s *Session) summaryText() string {
	switch {
	case s.HasWon():
		return "won"
	case s.HasLost():
		return "lost"
	}
	return string(s.state)
}
