package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"SiteSim/internal/game"
	"SiteSim/internal/model"
)

func amount(d decimal.Decimal) string {
	return d.StringFixed(0)
}

// FormatWeeklyReport formats one week of a game: activity progress,
// workers, equipment and pending decisions.
func FormatWeeklyReport(snap game.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("== %s | week %d | %s ==\n", snap.Player, snap.Week, snap.State))
	b.WriteString(fmt.Sprintf("Progress: %.0f%%\n\n", snap.TotalProgress*100))

	b.WriteString("Activities:\n")
	for _, a := range snap.Activities {
		if a.Hidden {
			continue
		}
		mark := " "
		switch {
		case a.Done:
			mark = "x"
		case a.RequirementsMet:
			mark = ">"
		}
		b.WriteString(fmt.Sprintf("  [%s] %-4s %d/%d\n", mark, a.Label, a.Progress, a.Duration))
	}

	workerTypes := make([]model.WorkerType, 0, len(snap.Workers))
	for t := range snap.Workers {
		workerTypes = append(workerTypes, t)
	}
	slices.Sort(workerTypes)
	b.WriteString("Workers:")
	for _, t := range workerTypes {
		b.WriteString(fmt.Sprintf(" %s=%d", t, snap.Workers[t]))
	}
	b.WriteString("\n")

	eqTypes := make([]model.EquipmentType, 0, len(snap.Equipment))
	for t := range snap.Equipment {
		eqTypes = append(eqTypes, t)
	}
	slices.Sort(eqTypes)
	b.WriteString("Equipment:")
	for _, t := range eqTypes {
		e := snap.Equipment[t]
		if e.Delivery != "" {
			b.WriteString(fmt.Sprintf(" %s=%s(%s)", t, e.Status, e.Delivery))
		} else {
			b.WriteString(fmt.Sprintf(" %s=%s", t, e.Status))
		}
	}
	b.WriteString("\n")

	for _, ev := range snap.Starting {
		b.WriteString(fmt.Sprintf("\nEvent: %s\n", ev.Title))
		if ev.Description != "" {
			b.WriteString(fmt.Sprintf("  %s\n", ev.Description))
		}
	}
	if len(snap.Pending) > 0 {
		b.WriteString("Awaiting decision:")
		for _, ev := range snap.Pending {
			b.WriteString(fmt.Sprintf(" %s [%s]", ev.Key, strings.Join(ev.ChoiceKeys(), "/")))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatFinanceStatus formats one ledger row.
func FormatFinanceStatus(row model.FinanceRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Finances (week %d)\n", row.Week))
	b.WriteString(fmt.Sprintf("  Incoming:      %s\n", amount(row.Incoming)))
	b.WriteString(fmt.Sprintf("  Workers:       %s\n", amount(row.Workers)))
	b.WriteString(fmt.Sprintf("  Equipment:     %s\n", amount(row.Equipment)))
	b.WriteString(fmt.Sprintf("  Overhead:      %s\n", amount(row.Overhead)))
	b.WriteString(fmt.Sprintf("  Consumables:   %s\n", amount(row.Consumables)))
	if !row.DelayPenalty.IsZero() {
		b.WriteString(fmt.Sprintf("  Delay penalty: %s\n", amount(row.DelayPenalty)))
	}
	if !row.LoanOutstanding.IsZero() || !row.LoanRepay.IsZero() {
		b.WriteString(fmt.Sprintf("  Loan:          %s (interest %s, repaid %s)\n",
			amount(row.LoanOutstanding), amount(row.LoanInterest), amount(row.LoanRepay)))
	}
	if !row.Overdraft.IsZero() {
		b.WriteString(fmt.Sprintf("  Overdraft:     %s\n", amount(row.Overdraft)))
	}
	b.WriteString(fmt.Sprintf("  Weekly net:    %s\n", amount(row.WeeklyNet)))
	b.WriteString(fmt.Sprintf("  Balance:       %s\n", amount(row.Balance)))
	return b.String()
}

// FormatOutcome formats the final result of a finished game.
func FormatOutcome(st *model.Statement) string {
	var b strings.Builder
	result := "LOST"
	if st.Won {
		result = "WON"
	}
	b.WriteString(fmt.Sprintf("%s: %s after %d weeks\n", st.Player, result, max(len(st.Rows)-1, 0)))
	b.WriteString(fmt.Sprintf("Bid: %s over %d weeks\n", amount(st.Bid.Price), st.Bid.PromisedDuration))
	if n := len(st.Rows); n > 0 {
		b.WriteString(fmt.Sprintf("Final balance: %s\n", amount(st.Rows[n-1].Balance)))
	}
	return b.String()
}
