package model

import "github.com/shopspring/decimal"

// WorkerType identifies a kind of worker (e.g. "labour", "skilled").
type WorkerType string

// EquipmentType identifies an orderable piece of equipment.
type EquipmentType string

// EquipmentStatus is the delivery state of one equipment type.
type EquipmentStatus string

const (
	StatusUnordered EquipmentStatus = "unordered"
	StatusOrdered   EquipmentStatus = "ordered"
	StatusDelivered EquipmentStatus = "delivered"
)

// DeliveryType selects regular or express fulfilment.
type DeliveryType string

const (
	DeliveryRegular DeliveryType = "regular"
	DeliveryExpress DeliveryType = "express"
)

// Valid reports whether d is a known delivery type.
func (d DeliveryType) Valid() bool {
	return d == DeliveryRegular || d == DeliveryExpress
}

// Equipment is the state of one equipment type at a given week. As a
// timeline entry it doubles as a patch: empty fields mean "unchanged".
type Equipment struct {
	Status   EquipmentStatus `json:"status,omitempty"`
	Delivery DeliveryType    `json:"delivery,omitempty"`
}

// Requirements lists what an activity needs before it can progress.
type Requirements struct {
	Workers    map[WorkerType]int
	Activities []string
	Equipment  []EquipmentType
}

// Activity is the static configuration of one project task.
type Activity struct {
	Label           string
	Duration        int
	ExpressDuration int // 0 when the activity has no express variant
	Requirements    Requirements
	Hidden          bool
}

// WorkerSpec describes a hireable worker type.
type WorkerSpec struct {
	Type       WorkerType
	Label      string
	ShortLabel string
	Cost       decimal.Decimal // weekly pay per worker
}

// EquipmentSpec describes an orderable equipment type.
type EquipmentSpec struct {
	Type  EquipmentType
	Label string
	Cost  decimal.Decimal // regular delivery price
}

// Bid is the player's accepted offer: contract price and promised duration in weeks.
type Bid struct {
	Price            decimal.Decimal `json:"price"`
	PromisedDuration int             `json:"promised_duration"`
}

// BidBounds clamps submitted bids.
type BidBounds struct {
	Min             decimal.Decimal
	Max             decimal.Decimal
	Default         decimal.Decimal
	DefaultDuration int
}

// Normalize replaces a price outside [Min, Max] with the default price and a
// non-positive duration with the default duration.
func (b BidBounds) Normalize(bid Bid) Bid {
	if bid.Price.LessThan(b.Min) || bid.Price.GreaterThan(b.Max) {
		bid.Price = b.Default
	}
	if bid.PromisedDuration <= 0 {
		bid.PromisedDuration = b.DefaultDuration
	}
	return bid
}

// Finances holds the scenario's monetary constants. Rates and reward
// fractions are plain decimals (0.01 == 1%).
type Finances struct {
	LoanInterest      decimal.Decimal
	OverdraftInterest decimal.Decimal
	Consumables       decimal.Decimal
	Overhead          decimal.Decimal
	DelayPenalty      decimal.Decimal
	ExpressMultiplier decimal.Decimal
	LoansEnabled      bool

	StartBudget       decimal.Decimal
	MilestoneReward   decimal.Decimal
	CompletionReward  decimal.Decimal
	MilestoneActivity string
}

// Scenario is the complete, validated game configuration consumed by the engine.
type Scenario struct {
	Name            string
	ProjectDuration int
	Bid             BidBounds
	Finances        Finances
	Workers         []WorkerSpec
	Equipment       []EquipmentSpec
	Activities      []Activity
	Events          []Event
}

// WorkerTypes returns the configured worker types in order.
func (s *Scenario) WorkerTypes() []WorkerType {
	types := make([]WorkerType, 0, len(s.Workers))
	for _, w := range s.Workers {
		types = append(types, w.Type)
	}
	return types
}
