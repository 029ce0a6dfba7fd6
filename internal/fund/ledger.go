package fund

import (
	"log"

	"github.com/shopspring/decimal"

	"SiteSim/internal/model"
	"SiteSim/internal/timeline"
)

// Progress is the view of the activity engine the ledger needs.
type Progress interface {
	Activities() []model.Activity
	IsHidden(label string, week int) bool
	WorkerRequirementMet(label string, week int) bool
	CompletionWeek(label string) (int, bool)
	AllDone(week int) bool
	LastCompletion(week int) (int, bool)
}

// Headcounts reports hired workers per type.
type Headcounts interface {
	Headcount(t model.WorkerType, week int) int
}

// Orders reports equipment ordering state.
type Orders interface {
	NewlyOrdered(week int) []model.EquipmentType
	Status(t model.EquipmentType, week int) model.Equipment
	Spec(t model.EquipmentType) (model.EquipmentSpec, bool)
}

// Ledger keeps the weekly cash flows of one game.
type Ledger struct {
	bid      model.Bid
	finances model.Finances
	workers  []model.WorkerSpec

	progress  Progress
	headcount Headcounts
	orders    Orders

	incoming     *timeline.Timeline[decimal.Decimal]
	wages        *timeline.Timeline[decimal.Decimal]
	equipment    *timeline.Timeline[decimal.Decimal]
	overhead     *timeline.Timeline[decimal.Decimal]
	consumables  *timeline.Timeline[decimal.Decimal]
	delayPenalty *timeline.Timeline[decimal.Decimal]
	loan         *timeline.Timeline[decimal.Decimal]
	loanInterest *timeline.Timeline[decimal.Decimal]
	overdraft    *timeline.Timeline[decimal.Decimal]
	loanRepay    *timeline.Timeline[decimal.Decimal]

	seeded         bool
	milestonePaid  *int
	completionPaid *int
}

// NewLedger creates a ledger for the accepted bid and seeds the start budget.
func NewLedger(bid model.Bid, finances model.Finances, workers []model.WorkerSpec, progress Progress, headcount Headcounts, orders Orders) *Ledger {
	l := &Ledger{
		bid:          bid,
		finances:     finances,
		workers:      workers,
		progress:     progress,
		headcount:    headcount,
		orders:       orders,
		incoming:     timeline.NewMoney(),
		wages:        timeline.NewMoney(),
		equipment:    timeline.NewMoney(),
		overhead:     timeline.NewMoney(),
		consumables:  timeline.NewMoney(),
		delayPenalty: timeline.NewMoney(),
		loan:         timeline.NewMoney(),
		loanInterest: timeline.NewMoney(),
		overdraft:    timeline.NewMoney(),
		loanRepay:    timeline.NewMoney(),
	}
	l.seed()
	return l
}

func (l *Ledger) seed() {
	if l.seeded {
		return
	}
	l.incoming.Add(0, l.bid.Price.Mul(l.finances.StartBudget))
	l.seeded = true
}

// Bid returns the accepted bid, including promised-duration adjustments.
func (l *Ledger) Bid() model.Bid {
	return l.bid
}

// AdjustPromisedDuration moves the promised duration used for delay penalties.
func (l *Ledger) AdjustPromisedDuration(weeks int) {
	l.bid.PromisedDuration += weeks
}

// Credit books a one-time amount as income at week.
func (l *Ledger) Credit(week int, amount decimal.Decimal) {
	l.incoming.Add(week, amount)
}

// ApplyWeeklyFinances books every flow for week. ended suppresses the
// overhead for the following week once the project is finished.
func (l *Ledger) ApplyWeeklyFinances(week int, ended bool) model.FinanceRow {
	if week == 0 {
		l.seed()
	}
	l.settleRewards(week)

	wages := decimal.Zero
	for _, w := range l.workers {
		wages = wages.Add(w.Cost.Mul(decimal.NewFromInt(int64(l.headcount.Headcount(w.Type, week)))))
	}
	l.wages.Set(week, wages)

	l.ChargeEquipment(week)

	if !ended {
		l.overhead.Set(week+1, l.finances.Overhead)
	}

	if l.burnsConsumables(week) {
		l.consumables.Set(week+1, l.finances.Consumables)
	} else {
		l.consumables.Set(week+1, decimal.Zero)
	}

	if week > l.bid.PromisedDuration {
		l.delayPenalty.Set(week, l.finances.DelayPenalty)
	}

	if outstanding := l.LoanOutstanding(week + 1); outstanding.IsPositive() {
		interest := outstanding.Mul(l.finances.LoanInterest)
		l.loan.Add(week+1, interest)
		l.loanInterest.Set(week+1, interest)
	}

	if balance := l.Balance(week); balance.IsNegative() {
		l.overdraft.Set(week+1, balance.Abs().Mul(l.finances.OverdraftInterest))
	}

	return l.Row(week)
}

// ChargeEquipment recomputes the equipment spend of week from the orders
// placed during it. Express orders cost the express multiplier on top.
func (l *Ledger) ChargeEquipment(week int) decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.orders.NewlyOrdered(week) {
		spec, ok := l.orders.Spec(t)
		if !ok {
			continue
		}
		cost := spec.Cost
		if l.orders.Status(t, week).Delivery == model.DeliveryExpress {
			cost = cost.Mul(l.finances.ExpressMultiplier)
		}
		total = total.Add(cost)
	}
	l.equipment.Set(week, total)
	return total
}

func (l *Ledger) burnsConsumables(week int) bool {
	for _, a := range l.progress.Activities() {
		if len(a.Requirements.Workers) == 0 || l.progress.IsHidden(a.Label, week) {
			continue
		}
		static := 0
		for _, n := range a.Requirements.Workers {
			static += n
		}
		if static > 0 && l.progress.WorkerRequirementMet(a.Label, week) {
			return true
		}
	}
	return false
}

// settleRewards credits or retracts the milestone and completion rewards
// so that each is booked at most once, at the week it was earned.
func (l *Ledger) settleRewards(week int) {
	if label := l.finances.MilestoneActivity; label != "" {
		target, ok := l.progress.CompletionWeek(label)
		l.milestonePaid = l.settle("milestone", l.milestonePaid, target, ok, l.bid.Price.Mul(l.finances.MilestoneReward))
	}

	target, ok := 0, false
	if l.progress.AllDone(week + 1) {
		target, ok = l.progress.LastCompletion(week + 1)
	}
	l.completionPaid = l.settle("completion", l.completionPaid, target, ok, l.bid.Price.Mul(l.finances.CompletionReward))
}

func (l *Ledger) settle(name string, paid *int, target int, earned bool, amount decimal.Decimal) *int {
	if paid != nil && (!earned || *paid != target) {
		l.incoming.Add(*paid, amount.Neg())
		log.Printf("[INFO] %s reward retracted at week %d", name, *paid)
		paid = nil
	}
	if earned && paid == nil {
		l.incoming.Add(target, amount)
		log.Printf("[INFO] %s reward credited at week %d", name, target)
		w := target
		paid = &w
	}
	return paid
}

// TakeLoan books a loan that is paid out at week+1. It fails when loans are
// disabled, the amount is not positive, or a loan is still outstanding.
func (l *Ledger) TakeLoan(week int, amount decimal.Decimal) bool {
	if !l.finances.LoansEnabled || !amount.IsPositive() {
		return false
	}
	if l.LoanOutstanding(week).IsPositive() || l.LoanOutstanding(week+1).IsPositive() {
		return false
	}
	l.loan.Set(week+1, amount)
	return true
}

// Repay books a repayment at week+1, replacing any repayment already made
// during week. The amount is clamped to what is outstanding and the
// applied amount is returned.
func (l *Ledger) Repay(week int, amount decimal.Decimal) decimal.Decimal {
	amount = decimal.Max(decimal.Zero, decimal.Min(amount, l.Repayable(week)))
	l.loanRepay.Set(week+1, amount)
	return amount
}

// Repayable returns what a repayment made during week may cover: the
// outstanding balance at week+1 ignoring this week's own repayment.
func (l *Ledger) Repayable(week int) decimal.Decimal {
	return l.LoanOutstanding(week + 1).Add(l.loanRepay.Get(week + 1))
}

// LoanOutstanding returns principal plus capitalised interest minus repayments up to week.
func (l *Ledger) LoanOutstanding(week int) decimal.Decimal {
	return l.loan.Reduced(week).Sub(l.loanRepay.Reduced(week))
}

// IncomingTotal returns the cumulative income up to week.
func (l *Ledger) IncomingTotal(week int) decimal.Decimal {
	return l.incoming.Reduced(week)
}

func (l *Ledger) expensesAt(week int) decimal.Decimal {
	return l.wages.Get(week).
		Add(l.equipment.Get(week)).
		Add(l.overhead.Get(week)).
		Add(l.consumables.Get(week)).
		Add(l.delayPenalty.Get(week)).
		Add(l.loanInterest.Get(week)).
		Add(l.overdraft.Get(week))
}

// Outgoing returns the cumulative expenses up to week.
func (l *Ledger) Outgoing(week int) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i <= week; i++ {
		total = total.Add(l.expensesAt(i))
	}
	return total
}

// Balance returns the cash on hand at week.
func (l *Ledger) Balance(week int) decimal.Decimal {
	return l.IncomingTotal(week).Add(l.LoanOutstanding(week)).Sub(l.Outgoing(week))
}

// WeeklyNet returns the change in balance during week.
func (l *Ledger) WeeklyNet(week int) decimal.Decimal {
	return l.Balance(week).Sub(l.Balance(week - 1))
}

// Row returns the ledger entries for week.
func (l *Ledger) Row(week int) model.FinanceRow {
	return model.FinanceRow{
		Week:            week,
		Incoming:        l.incoming.Get(week),
		Workers:         l.wages.Get(week),
		Equipment:       l.equipment.Get(week),
		Overhead:        l.overhead.Get(week),
		Consumables:     l.consumables.Get(week),
		DelayPenalty:    l.delayPenalty.Get(week),
		Loan:            l.loan.Get(week),
		LoanInterest:    l.loanInterest.Get(week),
		Overdraft:       l.overdraft.Get(week),
		LoanRepay:       l.loanRepay.Get(week),
		Outgoing:        l.expensesAt(week),
		WeeklyNet:       l.WeeklyNet(week),
		Balance:         l.Balance(week),
		LoanOutstanding: l.LoanOutstanding(week),
	}
}

// Statement returns the rows for weeks 0..upTo.
func (l *Ledger) Statement(upTo int) []model.FinanceRow {
	rows := make([]model.FinanceRow, 0, upTo+1)
	for w := 0; w <= upTo; w++ {
		rows = append(rows, l.Row(w))
	}
	return rows
}
