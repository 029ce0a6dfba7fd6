package timeline

import "github.com/shopspring/decimal"

// Reducer folds one week's value into an accumulator.
type Reducer[T any] func(acc, cur T) T

// Timeline stores one value per week. Weeks that were never written read as
// the default value; Reduced folds every week up to and including the given
// one. Weeks are only ever appended, never removed.
type Timeline[T any] struct {
	values  []T
	def     T
	reduce  Reducer[T]
	initial T
}

// New creates a timeline holding only week 0 set to the default value.
func New[T any](def T, reduce Reducer[T], initial T) *Timeline[T] {
	return &Timeline[T]{
		values:  []T{def},
		def:     def,
		reduce:  reduce,
		initial: initial,
	}
}

// NewInt creates a summing int timeline.
func NewInt() *Timeline[int] {
	return New(0, func(acc, cur int) int { return acc + cur }, 0)
}

// NewMoney creates a summing decimal timeline.
func NewMoney() *Timeline[decimal.Decimal] {
	return New(decimal.Zero, func(acc, cur decimal.Decimal) decimal.Decimal { return acc.Add(cur) }, decimal.Zero)
}

func (t *Timeline[T]) populate(week int) {
	for i := len(t.values); i <= week; i++ {
		t.values = append(t.values, t.def)
	}
}

// Set overwrites the value at week, backfilling skipped weeks with the default.
func (t *Timeline[T]) Set(week int, value T) {
	if week < 0 {
		return
	}
	t.populate(week)
	t.values[week] = value
}

// Add folds delta into the value already stored at week using the reducer.
// For summing timelines this is plain addition; for merge timelines it
// applies a patch.
func (t *Timeline[T]) Add(week int, delta T) {
	if week < 0 {
		return
	}
	t.Set(week, t.reduce(t.Get(week), delta))
}

// Get returns the value stored at exactly week.
func (t *Timeline[T]) Get(week int) T {
	if week < 0 || week >= len(t.values) {
		return t.def
	}
	return t.values[week]
}

// Reduced folds weeks 0..week starting from the initial value.
func (t *Timeline[T]) Reduced(week int) T {
	acc := t.initial
	if week < 0 {
		return acc
	}
	for i := 0; i <= week; i++ {
		acc = t.reduce(acc, t.Get(i))
	}
	return acc
}

// Len returns the number of stored weeks.
func (t *Timeline[T]) Len() int {
	return len(t.values)
}
