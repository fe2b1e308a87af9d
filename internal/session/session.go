// Package session manages the wallet session lifecycle: connect,
// target-network enforcement, signer derivation, and the write intents
// issued under the active signer.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
	"github.com/BreakThePill/breakpill/internal/recorder"
)

// Phase is the session state-machine state.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseWrongNetwork
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "Connecting"
	case PhaseWrongNetwork:
		return "Connected·WrongNetwork"
	case PhaseReady:
		return "Connected·Ready"
	default:
		return "Disconnected"
	}
}

// ErrNotReady is returned by write intents before the session is ready.
var ErrNotReady = errors.New("session: wallet not connected")

// Manager drives the session state machine. One signer is active at a
// time; it is swapped atomically on account or network change.
type Manager struct {
	wallet  chain.Wallet
	sender  chain.Sender
	binding *escrow.Binding
	target  model.NetworkMetadata
	rec     recorder.Recorder

	// onAccount feeds the user poller when the connected account changes;
	// nil account means disconnected.
	onAccount func(account *common.Address)

	mu      sync.Mutex
	phase   Phase
	account *common.Address
	signer  chain.Signer
	status  string
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New creates a disconnected session manager.
func New(wallet chain.Wallet, sender chain.Sender, binding *escrow.Binding, target model.NetworkMetadata, rec recorder.Recorder, onAccount func(*common.Address)) *Manager {
	if wallet == nil {
		wallet = chain.NoWallet{}
	}
	return &Manager{
		wallet:    wallet,
		sender:    sender,
		binding:   binding,
		target:    target,
		rec:       rec,
		onAccount: onAccount,
	}
}

// Phase returns the current state.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Account returns the connected address, or false.
func (m *Manager) Account() (common.Address, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return common.Address{}, false
	}
	return *m.account, true
}

// Status returns the last user-visible status line.
func (m *Manager) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Connect establishes the session: request accounts, enforce the target
// network, derive a signer. Calling it while already ready is a no-op
// and issues no network-switch request.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.phase == PhaseReady {
		m.mu.Unlock()
		return nil
	}
	if !m.wallet.Available() {
		m.setStatusLocked("❌ No wallet available")
		m.mu.Unlock()
		return chain.ErrWalletUnavailable
	}
	m.transitionLocked(PhaseConnecting, "connect requested")
	m.mu.Unlock()

	accounts, err := m.wallet.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		m.mu.Lock()
		m.setStatusLocked("❌ No account granted")
		m.transitionLocked(PhaseDisconnected, "no account granted")
		m.mu.Unlock()
		if err != nil {
			return err
		}
		return chain.ErrNoAccounts
	}
	account := accounts[0]

	if err := m.ensureTargetNetwork(ctx); err != nil {
		m.mu.Lock()
		m.account = &account
		m.setStatusLocked(fmt.Sprintf("❌ Wrong network: %v", err))
		m.transitionLocked(PhaseWrongNetwork, err.Error())
		m.mu.Unlock()
		return err
	}

	return m.bindAccount(ctx, account)
}

// Disconnect tears the session down to Disconnected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.account = nil
	m.signer = nil
	m.setStatusLocked("")
	m.transitionLocked(PhaseDisconnected, "disconnect")
	notify := m.onAccount
	m.mu.Unlock()
	if notify != nil {
		notify(nil)
	}
}

// Start runs the wallet notification pump until Close.
func (m *Manager) Start(ctx context.Context) {
	notes := m.wallet.Notifications()
	if notes == nil {
		return
	}
	m.mu.Lock()
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case n, ok := <-notes:
				if !ok {
					return
				}
				m.handleNotification(ctx, n)
			}
		}
	}()
}

// Close stops the notification pump and releases wallet subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.mu.Unlock()
	m.wg.Wait()
	m.wallet.Release()
}

func (m *Manager) handleNotification(ctx context.Context, n chain.Notification) {
	switch n.Kind {
	case chain.AccountsChanged:
		if len(n.Accounts) == 0 {
			log.Printf("[INFO] wallet accounts revoked")
			m.Disconnect()
			return
		}
		log.Printf("[INFO] wallet account changed: %s", n.Accounts[0].Hex())
		if err := m.bindAccount(ctx, n.Accounts[0]); err != nil {
			log.Printf("[WARN] rebind account: %v", err)
		}
	case chain.ChainChanged:
		log.Printf("[INFO] wallet chain changed: %d", n.ChainID)
		if err := m.ensureTargetNetwork(ctx); err != nil {
			m.mu.Lock()
			m.signer = nil
			m.setStatusLocked(fmt.Sprintf("❌ Wrong network: %v", err))
			m.transitionLocked(PhaseWrongNetwork, err.Error())
			m.mu.Unlock()
			return
		}
		m.mu.Lock()
		account := m.account
		m.mu.Unlock()
		if account != nil {
			if err := m.bindAccount(ctx, *account); err != nil {
				log.Printf("[WARN] rebind signer after chain change: %v", err)
			}
		}
	}
}

// ensureTargetNetwork switches the wallet to the target chain, issuing
// an add-network request with the fixed metadata when the wallet does
// not know the chain, then retrying the switch.
func (m *Manager) ensureTargetNetwork(ctx context.Context) error {
	id, err := m.wallet.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	if id == m.target.ChainID {
		return nil
	}
	err = m.wallet.SwitchChain(ctx, m.target.ChainID)
	if errors.Is(err, chain.ErrUnknownChain) {
		if err := m.wallet.AddChain(ctx, m.target); err != nil {
			return fmt.Errorf("add network %s: %w", m.target.Name, err)
		}
		err = m.wallet.SwitchChain(ctx, m.target.ChainID)
	}
	if err != nil {
		return fmt.Errorf("switch to %s: %w", m.target.Name, err)
	}
	return nil
}

// bindAccount derives a fresh signer for the account on the target chain
// and swaps it in atomically.
func (m *Manager) bindAccount(ctx context.Context, account common.Address) error {
	signer, err := m.wallet.Signer(ctx, account, m.target.ChainID)
	if err != nil {
		return fmt.Errorf("derive signer: %w", err)
	}

	m.mu.Lock()
	m.account = &account
	m.signer = signer
	m.setStatusLocked(fmt.Sprintf("Connected: %s", account.Hex()))
	m.transitionLocked(PhaseReady, "signer bound")
	notify := m.onAccount
	m.mu.Unlock()

	if notify != nil {
		a := account
		notify(&a)
	}
	return nil
}

func (m *Manager) setStatusLocked(s string) {
	m.status = s
}

func (m *Manager) transitionLocked(to Phase, note string) {
	from := m.phase
	if from == to {
		return
	}
	m.phase = to
	log.Printf("[INFO] session: %s -> %s (%s)", from, to, note)
	if m.rec != nil {
		account := ""
		if m.account != nil {
			account = m.account.Hex()
		}
		if err := m.rec.RecordTransition(&recorder.SessionTransition{
			From: from.String(), To: to.String(), Account: account, Note: note,
		}); err != nil {
			log.Printf("[ERROR] record session transition: %v", err)
		}
	}
}
