package recorder

import "context"

// Kind classifies a mirrored record.
type Kind string

const (
	KindAllocation Kind = "allocation"
	KindProgress   Kind = "progress"
	KindCompletion Kind = "completion"
	KindWorkers    Kind = "workers"
	KindEquipment  Kind = "equipment"
	KindFinance    Kind = "finance"
	KindChoice     Kind = "choice"
	KindSummary    Kind = "summary"
)

// Key identifies one record. Entity is the activity label, worker type,
// equipment type, finance column or event key the record belongs to.
type Key struct {
	GameID string
	Player string
	Week   int
	Kind   Kind
	Entity string
}

// Record is one mirrored value. Text carries the exact form of values
// that do not fit a float, such as money or equipment states.
type Record struct {
	Key
	Value float64
	Text  string
}

// Recorder mirrors game state to a backing store with create-or-update semantics.
type Recorder interface {
	Upsert(ctx context.Context, records ...Record) error
	Delete(ctx context.Context, keys ...Key) error
	Close() error
}
