package recorder

import "github.com/BreakThePill/breakpill/internal/model"

// NoopRecorder discards everything. Used when no database is configured.
type NoopRecorder struct{}

// NewNoopRecorder creates a no-op recorder.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordActivity(*model.ActivityRecord) error { return nil }

func (n *NoopRecorder) RecordRound(*model.RoundNotice) error { return nil }

func (n *NoopRecorder) RecordTransition(*SessionTransition) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
