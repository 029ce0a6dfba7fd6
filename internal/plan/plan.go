package plan

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"SiteSim/internal/game"
	"SiteSim/internal/model"
)

// Plan is a scripted player: the bid and the commands to issue each week.
type Plan struct {
	Player string       `yaml:"player"`
	Bid    BidPlan      `yaml:"bid"`
	Weeks  map[int]Week `yaml:"weeks"`

	applied map[*game.Session]int
}

// BidPlan is the submitted bid. Zero values fall back to the scenario defaults.
type BidPlan struct {
	Price            float64 `yaml:"price"`
	PromisedDuration int     `yaml:"promised_duration"`
}

// Week lists the commands issued during one week.
type Week struct {
	Hire     map[string]int            `yaml:"hire"`
	Cancel   []string                  `yaml:"cancel"`
	Order    map[string]string         `yaml:"order"`
	Allocate map[string]map[string]int `yaml:"allocate"`
	Choices  map[string]string         `yaml:"choices"`
	Loan     float64                   `yaml:"loan"`
	Repay    string                    `yaml:"repay"`
}

// Load reads a plan from a YAML file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan file: %w", err)
	}
	for w, wk := range p.Weeks {
		if w < 0 {
			return nil, fmt.Errorf("plan week %d is negative", w)
		}
		if wk.Repay != "" {
			if _, err := ParseAmount(wk.Repay, decimal.Zero); err != nil {
				return nil, fmt.Errorf("plan week %d: %w", w, err)
			}
		}
	}
	return &p, nil
}

// SubmittedBid converts the plan's bid into the engine's form.
func (p *Plan) SubmittedBid() model.Bid {
	return model.Bid{
		Price:            decimal.NewFromFloat(p.Bid.Price),
		PromisedDuration: p.Bid.PromisedDuration,
	}
}

// ParseAmount reads an absolute amount ("25000") or a percentage of
// outstanding ("50%").
func ParseAmount(s string, outstanding decimal.Decimal) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		p, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid percentage %q: %w", s, err)
		}
		return outstanding.Mul(p).Div(decimal.NewFromInt(100)), nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Apply issues the commands planned for the session's current week.
// Rejected commands are logged and counted; the returned error is only set
// for malformed plan values.
func (p *Plan) Apply(s *game.Session) (rejected int, err error) {
	week := s.Week()
	wk, ok := p.Weeks[week]
	if !ok {
		return 0, nil
	}
	reject := func(format string, args ...any) {
		rejected++
		log.Printf("[WARN] plan %s week %d: "+format, append([]any{p.Player, week}, args...)...)
	}

	for _, t := range sortedKeys(wk.Hire) {
		n := wk.Hire[t]
		if got := s.ChangeWorkerCount(model.WorkerType(t), n); got != n {
			reject("worker change %s %d applied as %d", t, n, got)
		}
	}
	for _, t := range wk.Cancel {
		if !s.CancelEquipmentOrder(model.EquipmentType(t)) {
			reject("cancel %s rejected", t)
		}
	}
	for _, t := range sortedKeys(wk.Order) {
		if !s.OrderEquipment(model.EquipmentType(t), model.DeliveryType(wk.Order[t])) {
			reject("order %s (%s) rejected", t, wk.Order[t])
		}
	}
	for _, label := range sortedKeys(wk.Allocate) {
		for _, t := range sortedKeys(wk.Allocate[label]) {
			if !s.AllocateWorker(label, model.WorkerType(t), wk.Allocate[label][t]) {
				reject("allocate %s to %s rejected", t, label)
			}
		}
	}
	for _, ev := range sortedKeys(wk.Choices) {
		if !s.RecordEventChoice(ev, wk.Choices[ev]) {
			reject("choice %s=%s rejected", ev, wk.Choices[ev])
		}
	}
	if wk.Loan > 0 && !s.TakeLoan(decimal.NewFromFloat(wk.Loan)) {
		reject("loan of %.0f rejected", wk.Loan)
	}
	if wk.Repay != "" {
		amount, err := ParseAmount(wk.Repay, s.RepayableLoan())
		if err != nil {
			return rejected, err
		}
		if applied := s.RepayLoan(amount); !applied.Equal(amount) {
			reject("repayment %s applied as %s", amount, applied)
		}
	}
	return rejected, nil
}

// ApplyOnce applies the session's current week unless it was already
// applied. Synchronized rounds prepare every session on each attempt,
// including attempts blocked on another player.
func (p *Plan) ApplyOnce(s *game.Session) (rejected int, applied bool, err error) {
	if last, ok := p.applied[s]; ok && last == s.Week() {
		return 0, false, nil
	}
	if p.applied == nil {
		p.applied = make(map[*game.Session]int)
	}
	p.applied[s] = s.Week()
	rejected, err = p.Apply(s)
	return rejected, true, err
}
