package poller

import (
	"context"
	"log"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
)

// UserPoller resolves the connected account's position via the getUser
// 5-tuple call. It runs on the same cadence as the global poller but is
// independent of it.
type UserPoller struct {
	reader  chain.Reader
	binding *escrow.Binding

	mu       sync.Mutex
	account  *common.Address
	started  uint64
	applied  uint64
	position *model.UserPosition
	onUpdate func(*model.UserPosition)
}

// NewUserPoller creates a poller. onUpdate, if non-nil, fires after each
// position replace and with nil on disconnect.
func NewUserPoller(reader chain.Reader, binding *escrow.Binding, onUpdate func(*model.UserPosition)) *UserPoller {
	return &UserPoller{reader: reader, binding: binding, onUpdate: onUpdate}
}

// SetAccount switches the polled account. Passing nil disconnects: the
// position clears immediately with no network call.
func (p *UserPoller) SetAccount(account *common.Address) {
	p.mu.Lock()
	p.account = nil
	if account != nil {
		a := *account
		p.account = &a
	}
	// Invalidate in-flight polls for the previous account.
	p.applied = p.started
	p.position = nil
	notify := p.onUpdate
	p.mu.Unlock()
	if notify != nil && account == nil {
		notify(nil)
	}
}

// Position returns a copy of the last resolved position, or false when
// no account is connected or nothing resolved yet.
func (p *UserPoller) Position() (*model.UserPosition, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.position == nil {
		return nil, false
	}
	return p.position.Clone(), true
}

// Poll fetches the current account's position. Without an account it is
// a no-op. A failed fetch keeps the previous position.
func (p *UserPoller) Poll(ctx context.Context) {
	p.mu.Lock()
	if p.account == nil {
		p.mu.Unlock()
		return
	}
	account := *p.account
	p.started++
	gen := p.started
	p.mu.Unlock()

	data, err := p.binding.EncodeCall("getUser", account)
	if err != nil {
		log.Printf("[WARN] encode getUser: %v", err)
		return
	}
	raw, err := p.reader.Call(ctx, p.binding.Address(), data)
	if err != nil {
		log.Printf("[WARN] user poll failed, keeping previous position: %v", err)
		return
	}
	pos, err := p.binding.DecodeUser(raw)
	if err != nil {
		log.Printf("[WARN] decode getUser, keeping previous position: %v", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.account == nil || *p.account != account || gen <= p.applied {
		return
	}
	p.applied = gen
	p.position = pos
	if p.onUpdate != nil {
		p.onUpdate(pos.Clone())
	}
}
