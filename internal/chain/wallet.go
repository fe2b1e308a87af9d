package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/BreakThePill/breakpill/internal/model"
)

var (
	// ErrWalletUnavailable means no wallet capability is present at all.
	ErrWalletUnavailable = errors.New("chain: wallet unavailable")
	// ErrNoAccounts means the wallet granted no accounts.
	ErrNoAccounts = errors.New("chain: no accounts granted")
	// ErrUnknownChain means the wallet does not know the requested chain
	// and needs an add-chain request first.
	ErrUnknownChain = errors.New("chain: unknown chain")
)

// NotificationKind distinguishes wallet push notifications.
type NotificationKind int

const (
	AccountsChanged NotificationKind = iota
	ChainChanged
)

// Notification is an external wallet-side change the session must react to.
type Notification struct {
	Kind     NotificationKind
	Accounts []common.Address // for AccountsChanged; empty means disconnected
	ChainID  uint64           // for ChainChanged
}

// Signer signs transactions for a single account. Exactly one signer is
// active per session at a time.
type Signer interface {
	Address() common.Address
	SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error)
}

// Wallet is the signing-side capability. It may be absent (Available
// returns false); every connect path must degrade gracefully then.
type Wallet interface {
	Available() bool
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	AddChain(ctx context.Context, meta model.NetworkMetadata) error
	Signer(ctx context.Context, account common.Address, chainID uint64) (Signer, error)
	Notifications() <-chan Notification
	Release()
}

// NoWallet is the absent-wallet capability.
type NoWallet struct{}

func (NoWallet) Available() bool { return false }

func (NoWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	return nil, ErrWalletUnavailable
}

func (NoWallet) ChainID(context.Context) (uint64, error) { return 0, ErrWalletUnavailable }

func (NoWallet) SwitchChain(context.Context, uint64) error { return ErrWalletUnavailable }

func (NoWallet) AddChain(context.Context, model.NetworkMetadata) error {
	return ErrWalletUnavailable
}

func (NoWallet) Signer(context.Context, common.Address, uint64) (Signer, error) {
	return nil, ErrWalletUnavailable
}

func (NoWallet) Notifications() <-chan Notification { return nil }

func (NoWallet) Release() {}
