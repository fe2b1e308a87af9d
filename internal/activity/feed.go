// Package activity reconciles the four contract event streams into one
// bounded, time-ordered display feed.
package activity

import (
	"sort"
	"sync"

	"github.com/BreakThePill/breakpill/internal/model"
)

type recordKey struct {
	kind  model.ActivityKind
	block uint64
	tx    string
	index uint
}

// Feed is a deduplicated set of activity records with a bounded sorted
// view. Historical re-queries and live pushes merge into the same set,
// so a push arriving between two refreshes is never dropped.
type Feed struct {
	mu      sync.Mutex
	max     int
	floor   uint64 // records below this block are pruned
	records map[recordKey]model.ActivityRecord
}

// NewFeed creates a feed capped at max display entries.
func NewFeed(max int) *Feed {
	return &Feed{max: max, records: make(map[recordKey]model.ActivityRecord)}
}

// Add merges one record, returning true if it was new.
func (f *Feed) Add(rec model.ActivityRecord) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.BlockNumber < f.floor {
		return false
	}
	k := recordKey{kind: rec.Kind, block: rec.BlockNumber, tx: rec.TxHash, index: rec.LogIndex}
	if _, dup := f.records[k]; dup {
		return false
	}
	f.records[k] = rec
	return true
}

// SetFloor raises the retention floor, pruning records that fell out of
// the query window.
func (f *Feed) SetFloor(block uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if block <= f.floor {
		return
	}
	f.floor = block
	for k := range f.records {
		if k.block < block {
			delete(f.records, k)
		}
	}
}

// Top returns the display view: block number descending (log index
// descending within a block), truncated to the cap.
func (f *Feed) Top() []model.ActivityRecord {
	f.mu.Lock()
	out := make([]model.ActivityRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	f.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber > out[j].BlockNumber
		}
		return out[i].LogIndex > out[j].LogIndex
	})
	if len(out) > f.max {
		out = out[:f.max]
	}
	return out
}
