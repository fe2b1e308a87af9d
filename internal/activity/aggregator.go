package activity

import (
	"context"
	"errors"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
	"github.com/BreakThePill/breakpill/internal/recorder"
)

// queryTimeout bounds each per-kind historical query so one stalled
// kind cannot block the others past a refresh cycle.
const queryTimeout = 10 * time.Second

// Backoff bounds for re-establishing a dropped live subscription.
const (
	resubscribeMinDelay = time.Second
	resubscribeMaxDelay = time.Minute
)

// Aggregator queries the four activity event kinds over a recent block
// window and merges live pushes into the same feed. A failure in one
// kind's query never blocks the other three.
type Aggregator struct {
	reader  chain.Reader
	binding *escrow.Binding
	rec     recorder.Recorder
	feed    *Feed
	window  uint64
	onRound func(notice *model.RoundNotice)

	mu   sync.Mutex
	subs []ethereum.Subscription
	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates an aggregator over the given block window. onRound, if
// non-nil, fires for each live round-lifecycle event.
func New(reader chain.Reader, binding *escrow.Binding, rec recorder.Recorder, window uint64, maxEntries int, onRound func(*model.RoundNotice)) *Aggregator {
	return &Aggregator{
		reader:  reader,
		binding: binding,
		rec:     rec,
		feed:    NewFeed(maxEntries),
		window:  window,
		onRound: onRound,
	}
}

// Records returns the current display feed.
func (a *Aggregator) Records() []model.ActivityRecord {
	return a.feed.Top()
}

// Refresh re-queries the recent block window for all four event kinds
// and merges the results. Per-kind failures are logged and isolated.
func (a *Aggregator) Refresh(ctx context.Context) {
	latest, err := a.reader.BlockNumber(ctx)
	if err != nil {
		log.Printf("[WARN] feed refresh: block number: %v", err)
		return
	}
	var from uint64
	if latest > a.window {
		from = latest - a.window
	}

	for name := range escrow.ActivityEvents {
		q, err := a.binding.EventQuery([]string{name}, new(big.Int).SetUint64(from), new(big.Int).SetUint64(latest))
		if err != nil {
			log.Printf("[WARN] feed refresh: build %s query: %v", name, err)
			continue
		}
		kindCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		logs, err := a.reader.FilterLogs(kindCtx, q)
		cancel()
		if err != nil {
			log.Printf("[WARN] feed refresh: query %s failed: %v", name, err)
			continue
		}
		for _, lg := range logs {
			a.merge(lg)
		}
	}
	a.feed.SetFloor(from)
}

// Subscribe starts live subscriptions for the four activity events and
// the round-lifecycle events. Returns ErrNoSubscription when the reader
// has no push endpoint; the aggregator then runs on Refresh alone.
func (a *Aggregator) Subscribe(ctx context.Context) error {
	activityNames := make([]string, 0, len(escrow.ActivityEvents))
	for name := range escrow.ActivityEvents {
		activityNames = append(activityNames, name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return errors.New("activity: already subscribed")
	}
	a.stop = make(chan struct{})

	for _, group := range [][]string{activityNames, escrow.RoundEvents} {
		q, err := a.binding.EventQuery(group, nil, nil)
		if err != nil {
			a.unsubscribeLocked()
			return err
		}
		ch := make(chan types.Log, 16)
		sub, err := a.reader.SubscribeLogs(ctx, q, ch)
		if err != nil {
			a.unsubscribeLocked()
			return err
		}
		a.subs = append(a.subs, sub)
		a.wg.Add(1)
		go a.pump(ctx, q, len(a.subs)-1, sub, ch, a.stop)
	}
	log.Printf("[INFO] live event subscriptions started")
	return nil
}

// Stop cancels all live subscriptions and waits for their pumps.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	a.unsubscribeLocked()
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Aggregator) unsubscribeLocked() {
	for _, sub := range a.subs {
		sub.Unsubscribe()
	}
	a.subs = nil
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
}

func (a *Aggregator) pump(ctx context.Context, q ethereum.FilterQuery, idx int, sub ethereum.Subscription, ch chan types.Log, stop <-chan struct{}) {
	defer a.wg.Done()
	for {
		select {
		case <-stop:
			return
		case err := <-sub.Err():
			if err == nil {
				// Unsubscribe closed the channel; we are shutting down.
				return
			}
			log.Printf("[ERROR] event subscription lost, resubscribing: %v", err)
			next, ok := a.resubscribe(ctx, q, idx, ch, stop)
			if !ok {
				return
			}
			sub = next
		case lg := <-ch:
			a.dispatch(lg)
		}
	}
}

// resubscribe retries with doubling delay until the subscription is back
// or the aggregator stops. The feed keeps running on Refresh meanwhile.
func (a *Aggregator) resubscribe(ctx context.Context, q ethereum.FilterQuery, idx int, ch chan types.Log, stop <-chan struct{}) (ethereum.Subscription, bool) {
	delay := resubscribeMinDelay
	for {
		select {
		case <-stop:
			return nil, false
		case <-ctx.Done():
			return nil, false
		case <-time.After(delay):
		}
		sub, err := a.reader.SubscribeLogs(ctx, q, ch)
		if err == nil {
			if !a.trackSub(idx, sub) {
				return nil, false
			}
			log.Printf("[INFO] event subscription re-established")
			return sub, true
		}
		log.Printf("[WARN] resubscribe failed, retrying in %s: %v", delay, err)
		if delay *= 2; delay > resubscribeMaxDelay {
			delay = resubscribeMaxDelay
		}
	}
}

// trackSub swaps the replacement subscription into the slot Stop tears
// down. Returns false when the aggregator stopped in the meantime.
func (a *Aggregator) trackSub(idx int, sub ethereum.Subscription) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop == nil || idx >= len(a.subs) {
		sub.Unsubscribe()
		return false
	}
	a.subs[idx] = sub
	return true
}

func (a *Aggregator) dispatch(lg types.Log) {
	if rec, err := a.binding.ParseActivity(lg); err == nil && rec != nil {
		a.add(rec)
		return
	}
	notice, err := a.binding.ParseRound(lg)
	if err != nil || notice == nil {
		if err != nil {
			log.Printf("[WARN] decode live event: %v", err)
		}
		return
	}
	log.Printf("[INFO] round event: %s", notice.Note)
	if a.rec != nil {
		if err := a.rec.RecordRound(notice); err != nil {
			log.Printf("[ERROR] record round notice: %v", err)
		}
	}
	if a.onRound != nil {
		a.onRound(notice)
	}
}

func (a *Aggregator) merge(lg types.Log) {
	rec, err := a.binding.ParseActivity(lg)
	if err != nil {
		log.Printf("[WARN] decode activity event: %v", err)
		return
	}
	if rec != nil {
		a.add(rec)
	}
}

func (a *Aggregator) add(rec *model.ActivityRecord) {
	if !a.feed.Add(*rec) {
		return
	}
	if a.rec != nil {
		if err := a.rec.RecordActivity(rec); err != nil {
			log.Printf("[ERROR] record activity: %v", err)
		}
	}
}
