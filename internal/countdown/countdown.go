// Package countdown tracks the remaining withdraw window against the
// wall clock, independent of block time.
package countdown

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// RemainingAt computes the seconds left in a window opened at openedAt
// lasting duration seconds, clamped at zero. Both zero inputs mean no
// window.
func RemainingAt(openedAt, duration uint64, now time.Time) int64 {
	end := openedAt + duration
	if end < openedAt {
		// uint64 wrap; the end is unreachably far in the future.
		end = math.MaxUint64
	}
	at := now.Unix()
	if at < 0 {
		at = 0
	}
	if end <= uint64(at) {
		return 0
	}
	left := end - uint64(at)
	if left > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(left)
}

// Timer ticks once per second while a withdraw window is open. It has
// two states: inactive (no window) and active (ticking toward zero).
// Updating the inputs cancels any running ticker so a stale end time
// never keeps ticking.
type Timer struct {
	mu       sync.Mutex
	openedAt uint64
	duration uint64
	active   bool
	stop     chan struct{}
	onTick   func(remaining int64)
	now      func() time.Time
}

// New creates an inactive timer. onTick, if non-nil, fires on every tick
// with the clamped remaining seconds.
func New(onTick func(remaining int64)) *Timer {
	return &Timer{onTick: onTick, now: time.Now}
}

// Update feeds the timer fresh window inputs. Unchanged inputs keep the
// current ticker; a vanished window deactivates; a new window restarts.
func (t *Timer) Update(openedAt, duration uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if openedAt == 0 || duration == 0 {
		t.deactivateLocked()
		return
	}
	if t.active && t.openedAt == openedAt && t.duration == duration {
		return
	}
	t.deactivateLocked()
	t.openedAt = openedAt
	t.duration = duration
	t.active = true
	t.stop = make(chan struct{})
	go t.run(openedAt, duration, t.stop)
}

// Remaining returns the clamped remaining seconds and whether a window
// is active.
func (t *Timer) Remaining() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return 0, false
	}
	return RemainingAt(t.openedAt, t.duration, t.now()), true
}

// Stop deactivates the timer and cancels its ticker.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deactivateLocked()
}

func (t *Timer) deactivateLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.active = false
	t.openedAt = 0
	t.duration = 0
}

func (t *Timer) run(openedAt, duration uint64, stop chan struct{}) {
	tick := func() {
		t.mu.Lock()
		now := t.now()
		t.mu.Unlock()
		if t.onTick != nil {
			t.onTick(RemainingAt(openedAt, duration, now))
		}
	}
	tick()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			tick()
		}
	}
}

// FormatHMS renders seconds as HH:MM:SS; inactive windows render as a
// dash.
func FormatHMS(secs int64, active bool) string {
	if !active {
		return "—"
	}
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
