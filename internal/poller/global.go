// Package poller fetches contract state over the chain capability on a
// fixed cadence and holds the last consistent snapshot. A failed or
// partial fetch never touches the held snapshot, and overlapping polls
// resolve by generation: a slow poll cannot overwrite a newer result.
package poller

import (
	"context"
	"log"
	"sync"

	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
)

// GlobalPoller polls the contract-wide state: one balance query plus the
// six state-variable calls.
type GlobalPoller struct {
	reader  chain.Reader
	binding *escrow.Binding

	mu       sync.Mutex
	started  uint64
	applied  uint64
	state    *model.GlobalState
	onUpdate func(*model.GlobalState)
}

// NewGlobalPoller creates a poller. onUpdate, if non-nil, is invoked with
// a snapshot copy after each successful replace.
func NewGlobalPoller(reader chain.Reader, binding *escrow.Binding, onUpdate func(*model.GlobalState)) *GlobalPoller {
	return &GlobalPoller{reader: reader, binding: binding, onUpdate: onUpdate}
}

// State returns a copy of the last consistent snapshot, or false before
// the first successful poll.
func (p *GlobalPoller) State() (*model.GlobalState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return nil, false
	}
	return p.state.Clone(), true
}

// Poll fetches and decodes the full global state. On any failure the
// previous snapshot is kept untouched.
func (p *GlobalPoller) Poll(ctx context.Context) {
	p.mu.Lock()
	p.started++
	gen := p.started
	p.mu.Unlock()

	next, err := p.fetch(ctx)
	if err != nil {
		log.Printf("[WARN] global poll failed, keeping previous state: %v", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen <= p.applied {
		// A later poll already landed; drop this stale result.
		return
	}
	p.applied = gen
	p.state = next
	if p.onUpdate != nil {
		p.onUpdate(next.Clone())
	}
}

func (p *GlobalPoller) fetch(ctx context.Context) (*model.GlobalState, error) {
	balance, err := p.reader.Balance(ctx, p.binding.Address())
	if err != nil {
		return nil, err
	}
	next := &model.GlobalState{PoolBalanceWei: balance}

	for _, method := range escrow.StateMethods {
		data, err := p.binding.EncodeCall(method)
		if err != nil {
			return nil, err
		}
		raw, err := p.reader.Call(ctx, p.binding.Address(), data)
		if err != nil {
			return nil, err
		}
		if err := p.decodeInto(next, method, raw); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func (p *GlobalPoller) decodeInto(s *model.GlobalState, method string, raw []byte) error {
	var err error
	switch method {
	case "withdrawIsOpen":
		s.WithdrawIsOpen, err = p.binding.DecodeBool(method, raw)
	case "redistributionPrepared":
		s.RedistributionPrepared, err = p.binding.DecodeBool(method, raw)
	case "withdrawDuration":
		s.WithdrawDurationSec, err = p.binding.DecodeUint64(method, raw)
	case "withdrawsOpenedAt":
		s.WithdrawsOpenedAtEpoch, err = p.binding.DecodeUint64(method, raw)
	case "totalWithdrawnSnapshot":
		s.TotalWithdrawnSnapshotWei, err = p.binding.DecodeUint256(method, raw)
	case "donatedAtCurrentRound":
		s.DonatedAtCurrentRoundWei, err = p.binding.DecodeUint256(method, raw)
	}
	return err
}
