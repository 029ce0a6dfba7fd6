package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"SiteSim/internal/model"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeSimulationScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type simulationContext struct {
	session *Session
}

func (ctx *simulationContext) reset() {
	ctx.session = nil
}

// Given steps

func (ctx *simulationContext) aProjectWithBidPriceAndStartBudget(price, startBudget string) error {
	sc := testScenario()
	sc.Finances.StartBudget = decimal.RequireFromString(startBudget)
	ctx.session = NewSession(context.Background(), sc, model.Bid{Price: decimal.RequireFromString(price)}, Options{Player: "bdd"})
	return nil
}

func (ctx *simulationContext) theGameHasAdvancedToWeek(week int) error {
	for ctx.session.Week() < week {
		if !ctx.session.AdvanceWeek() {
			return fmt.Errorf("game ended at week %d", ctx.session.Week())
		}
	}
	return nil
}

func (ctx *simulationContext) thePlayerHiresWorkers(n int, t string) error {
	if got := ctx.session.ChangeWorkerCount(model.WorkerType(t), n); got != n {
		return fmt.Errorf("expected to hire %d %s, hired %d", n, t, got)
	}
	return nil
}

// When steps

func (ctx *simulationContext) theWeekAdvances() error {
	if !ctx.session.AdvanceWeek() {
		return fmt.Errorf("week did not advance")
	}
	return nil
}

func (ctx *simulationContext) thePlayerOrdersWithDelivery(t, delivery string) error {
	if !ctx.session.OrderEquipment(model.EquipmentType(t), model.DeliveryType(delivery)) {
		return fmt.Errorf("order of %s rejected", t)
	}
	return nil
}

func (ctx *simulationContext) thePlayerCancelsTheOrder(t string) error {
	if !ctx.session.CancelEquipmentOrder(model.EquipmentType(t)) {
		return fmt.Errorf("cancel of %s rejected", t)
	}
	return nil
}

func (ctx *simulationContext) thePlayerTakesALoanOf(amount string) error {
	if !ctx.session.TakeLoan(decimal.RequireFromString(amount)) {
		return fmt.Errorf("loan of %s rejected", amount)
	}
	return nil
}

func (ctx *simulationContext) thePlayerAllocatesWorkersToActivity(n int, t, label string) error {
	if !ctx.session.AllocateWorker(label, model.WorkerType(t), n) {
		return fmt.Errorf("allocation to %s rejected", label)
	}
	return nil
}

func (ctx *simulationContext) thePlayerFiresWorkers(n int, t string) error {
	ctx.session.ChangeWorkerCount(model.WorkerType(t), -n)
	return nil
}

// Then steps

func expectMoney(what string, want string, got decimal.Decimal) error {
	if !decimal.RequireFromString(want).Equal(got) {
		return fmt.Errorf("expected %s %s, got %s", what, want, got)
	}
	return nil
}

func (ctx *simulationContext) theIncomingCashAtWeekIs(week int, amount string) error {
	return expectMoney("incoming", amount, ctx.session.Finances(week).Incoming)
}

func (ctx *simulationContext) theEquipmentSpendAtWeekIs(week int, amount string) error {
	return expectMoney("equipment spend", amount, ctx.session.Finances(week).Equipment)
}

func (ctx *simulationContext) theOutstandingLoanAtWeekIs(week int, amount string) error {
	return expectMoney("outstanding loan", amount, ctx.session.LoanOutstanding(week))
}

func (ctx *simulationContext) equipmentIs(t, status string) error {
	got := ctx.session.Equipment(ctx.session.Week())[model.EquipmentType(t)].Status
	if string(got) != status {
		return fmt.Errorf("expected %s to be %s, got %s", t, status, got)
	}
	return nil
}

func (ctx *simulationContext) activityStatus(label string) (bool, error) {
	for _, a := range ctx.session.Activities(ctx.session.Week()) {
		if a.Label == label {
			return a.RequirementsMet, nil
		}
	}
	return false, fmt.Errorf("activity %s not found", label)
}

func (ctx *simulationContext) theRequirementsOfActivityAreMet(label string) error {
	met, err := ctx.activityStatus(label)
	if err != nil {
		return err
	}
	if !met {
		return fmt.Errorf("expected requirements of %s to be met", label)
	}
	return nil
}

func (ctx *simulationContext) theRequirementsOfActivityAreNotMet(label string) error {
	met, err := ctx.activityStatus(label)
	if err != nil {
		return err
	}
	if met {
		return fmt.Errorf("expected requirements of %s not to be met", label)
	}
	return nil
}

func (ctx *simulationContext) activityHasProgress(label string, progress int) error {
	for _, a := range ctx.session.Activities(ctx.session.Week()) {
		if a.Label == label {
			if a.Progress != progress {
				return fmt.Errorf("expected progress %d for %s, got %d", progress, label, a.Progress)
			}
			return nil
		}
	}
	return fmt.Errorf("activity %s not found", label)
}

func (ctx *simulationContext) thePlayerHasWorkers(n int, t string) error {
	if got := ctx.session.Workers(ctx.session.Week())[model.WorkerType(t)]; got != n {
		return fmt.Errorf("expected %d %s workers, got %d", n, t, got)
	}
	return nil
}

func (ctx *simulationContext) theGameIsLost() error {
	if !ctx.session.HasLost() {
		return fmt.Errorf("expected the game to be lost, state %s", ctx.session.State())
	}
	return nil
}

func (ctx *simulationContext) orderingIsRejected(t string) error {
	if ctx.session.OrderEquipment(model.EquipmentType(t), model.DeliveryRegular) {
		return fmt.Errorf("order of %s was accepted", t)
	}
	return nil
}

func InitializeSimulationScenario(sc *godog.ScenarioContext) {
	simCtx := &simulationContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		simCtx.reset()
		return ctx, nil
	})

	sc.Step(`^a project with bid price (\d+) and start budget ([\d.]+)$`, simCtx.aProjectWithBidPriceAndStartBudget)
	sc.Step(`^the game has advanced to week (\d+)$`, simCtx.theGameHasAdvancedToWeek)
	sc.Step(`^the player hires (\d+) "([^"]*)" workers$`, simCtx.thePlayerHiresWorkers)
	sc.Step(`^the week advances$`, simCtx.theWeekAdvances)
	sc.Step(`^the player orders "([^"]*)" with "([^"]*)" delivery$`, simCtx.thePlayerOrdersWithDelivery)
	sc.Step(`^the player cancels the "([^"]*)" order$`, simCtx.thePlayerCancelsTheOrder)
	sc.Step(`^the player takes a loan of (\d+)$`, simCtx.thePlayerTakesALoanOf)
	sc.Step(`^the player allocates (\d+) "([^"]*)" workers to activity "([^"]*)"$`, simCtx.thePlayerAllocatesWorkersToActivity)
	sc.Step(`^the player fires (\d+) "([^"]*)" workers$`, simCtx.thePlayerFiresWorkers)
	sc.Step(`^the incoming cash at week (\d+) is (\d+)$`, simCtx.theIncomingCashAtWeekIs)
	sc.Step(`^the equipment spend at week (\d+) is (\d+)$`, simCtx.theEquipmentSpendAtWeekIs)
	sc.Step(`^the outstanding loan at week (\d+) is (\d+)$`, simCtx.theOutstandingLoanAtWeekIs)
	sc.Step(`^equipment "([^"]*)" is "([^"]*)"$`, simCtx.equipmentIs)
	sc.Step(`^the requirements of activity "([^"]*)" are met$`, simCtx.theRequirementsOfActivityAreMet)
	sc.Step(`^the requirements of activity "([^"]*)" are not met$`, simCtx.theRequirementsOfActivityAreNotMet)
	sc.Step(`^activity "([^"]*)" has progress (\d+)$`, simCtx.activityHasProgress)
	sc.Step(`^the player has (\d+) "([^"]*)" workers$`, simCtx.thePlayerHasWorkers)
	sc.Step(`^the game is lost$`, simCtx.theGameIsLost)
	sc.Step(`^ordering "([^"]*)" is rejected$`, simCtx.orderingIsRejected)
}
