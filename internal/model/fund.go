package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinanceRow is one week of the finance ledger. Flow columns hold the value
// booked in that week; Balance and LoanOutstanding are cumulative.
type FinanceRow struct {
	Week            int             `json:"week"`
	Incoming        decimal.Decimal `json:"incoming"`
	Workers         decimal.Decimal `json:"workers"`
	Equipment       decimal.Decimal `json:"equipment"`
	Overhead        decimal.Decimal `json:"overhead"`
	Consumables     decimal.Decimal `json:"consumables"`
	DelayPenalty    decimal.Decimal `json:"delay_penalty"`
	Loan            decimal.Decimal `json:"loan"`
	LoanInterest    decimal.Decimal `json:"loan_interest"`
	Overdraft       decimal.Decimal `json:"overdraft"`
	LoanRepay       decimal.Decimal `json:"loan_repay"`
	Outgoing        decimal.Decimal `json:"outgoing"`
	WeeklyNet       decimal.Decimal `json:"weekly_net"`
	Balance         decimal.Decimal `json:"balance"`
	LoanOutstanding decimal.Decimal `json:"loan_outstanding"`
}

// Statement is the exported finance history of one game.
type Statement struct {
	GameID    string       `json:"game_id"`
	Player    string       `json:"player"`
	Scenario  string       `json:"scenario"`
	Bid       Bid          `json:"bid"`
	Won       bool         `json:"won"`
	Rows      []FinanceRow `json:"rows"`
	UpdatedAt time.Time    `json:"updated_at"`
}
