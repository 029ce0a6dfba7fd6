package recorder

import "context"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Upsert(context.Context, ...Record) error { return nil }
func (n *NoopRecorder) Delete(context.Context, ...Key) error    { return nil }
func (n *NoopRecorder) Close() error                            { return nil }
