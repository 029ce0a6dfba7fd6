package game

import (
	"github.com/shopspring/decimal"

	"SiteSim/internal/model"
)

const (
	technician model.WorkerType    = "technician"
	labour     model.WorkerType    = "labour"
	steelwork  model.EquipmentType = "steelwork"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testScenario is a small project: A is the milestone, B follows A and
// needs steelwork, M is hidden until the bonus event is accepted.
func testScenario() *model.Scenario {
	return &model.Scenario{
		Name:            "test",
		ProjectDuration: 8,
		Bid: model.BidBounds{
			Min:             money("800000"),
			Max:             money("1200000"),
			Default:         money("850000"),
			DefaultDuration: 6,
		},
		Finances: model.Finances{
			LoanInterest:      money("0.01"),
			OverdraftInterest: money("0.1"),
			Consumables:       money("50000"),
			Overhead:          money("10000"),
			DelayPenalty:      money("20000"),
			ExpressMultiplier: money("1.1"),
			LoansEnabled:      true,
			StartBudget:       money("0.2"),
			MilestoneReward:   money("0.5"),
			CompletionReward:  money("0.3"),
			MilestoneActivity: "A",
		},
		Workers: []model.WorkerSpec{
			{Type: technician, Label: "Technician", ShortLabel: "T", Cost: money("2000")},
			{Type: labour, Label: "Labour", ShortLabel: "L", Cost: money("800")},
		},
		Equipment: []model.EquipmentSpec{
			{Type: steelwork, Label: "Steelwork", Cost: money("38000")},
		},
		Activities: []model.Activity{
			{Label: "A", Duration: 1, Requirements: model.Requirements{
				Workers: map[model.WorkerType]int{technician: 4},
			}},
			{Label: "B", Duration: 2, ExpressDuration: 1, Requirements: model.Requirements{
				Workers:    map[model.WorkerType]int{labour: 2},
				Activities: []string{"A"},
				Equipment:  []model.EquipmentType{steelwork},
			}},
			{Label: "M", Duration: 1, Hidden: true},
		},
		Events: []model.Event{
			{Key: "extension", Week: 0, Effects: []model.Effect{model.BidDurationModifier{Weeks: 1}}},
			{Key: "rain", Week: 1, Effects: []model.Effect{model.DurationModifier{Activities: []string{"B"}, Days: 1}}},
			{Key: "bonus", Week: 2, Choices: map[string]model.Choice{
				"accept": {Label: "Accept", Effects: []model.Effect{
					model.RevealActivity{Activities: []string{"M"}},
					model.ImmediateReward{Amount: money("1000")},
				}},
				"decline": {Label: "Decline"},
			}},
			{Key: "grant", Week: 3, Effects: []model.Effect{model.ImmediateReward{Amount: money("5000")}}},
		},
	}
}
