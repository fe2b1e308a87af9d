package recorder

import "github.com/BreakThePill/breakpill/internal/model"

// SessionTransition records one session state-machine edge.
type SessionTransition struct {
	From    string
	To      string
	Account string
	Note    string
}

// Recorder persists observed history for later inspection. It is a
// write-only sink: runtime state is always rebuilt from the chain, never
// read back from here.
type Recorder interface {
	RecordActivity(rec *model.ActivityRecord) error
	RecordRound(notice *model.RoundNotice) error
	RecordTransition(evt *SessionTransition) error
	Close() error
}
