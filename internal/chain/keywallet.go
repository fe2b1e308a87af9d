package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/BreakThePill/breakpill/internal/model"
)

// KeyWallet is a local private-key wallet capability. It tracks which
// chain it is currently on and which chains it knows, mirroring the
// switch-or-add handshake a browser wallet performs.
type KeyWallet struct {
	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	address common.Address
	current uint64
	known   map[uint64]bool
	notes   chan Notification
}

// NewKeyWallet builds a wallet from a hex private key, starting on the
// given chain with only that chain known.
func NewKeyWallet(hexKey string, currentChain uint64) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		current: currentChain,
		known:   map[uint64]bool{currentChain: true},
		notes:   make(chan Notification, 8),
	}, nil
}

func (w *KeyWallet) Available() bool { return true }

func (w *KeyWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{w.address}, nil
}

func (w *KeyWallet) ChainID(context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, nil
}

func (w *KeyWallet) SwitchChain(_ context.Context, chainID uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.known[chainID] {
		return ErrUnknownChain
	}
	w.current = chainID
	return nil
}

func (w *KeyWallet) AddChain(_ context.Context, meta model.NetworkMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.known[meta.ChainID] = true
	return nil
}

func (w *KeyWallet) Signer(_ context.Context, account common.Address, chainID uint64) (Signer, error) {
	if account != w.address {
		return nil, fmt.Errorf("unknown account %s", account.Hex())
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != chainID {
		return nil, fmt.Errorf("wallet on chain %d, signer requested for %d", w.current, chainID)
	}
	return &keySigner{key: w.key, address: w.address}, nil
}

func (w *KeyWallet) Notifications() <-chan Notification { return w.notes }

// EmitAccountsChanged injects an external account change, as a browser
// wallet would push. Used by the session notification pump and tests.
func (w *KeyWallet) EmitAccountsChanged(accounts []common.Address) {
	w.notes <- Notification{Kind: AccountsChanged, Accounts: accounts}
}

// EmitChainChanged injects an external chain change.
func (w *KeyWallet) EmitChainChanged(chainID uint64) {
	w.mu.Lock()
	w.current = chainID
	w.known[chainID] = true
	w.mu.Unlock()
	w.notes <- Notification{Kind: ChainChanged, ChainID: chainID}
}

func (w *KeyWallet) Release() {}

type keySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func (s *keySigner) Address() common.Address { return s.address }

func (s *keySigner) SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
