package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoSubscription is returned when live log subscriptions are requested
// but no WebSocket endpoint is configured.
var ErrNoSubscription = errors.New("chain: no subscription endpoint")

// Reader defines the read-only RPC surface the pollers and the event
// aggregator need. Keeping it small allows substituting a test double.
// On-chain amounts stay *big.Int end to end; never floats.
type Reader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	Name() string
}

// Sender defines the write-side RPC surface used by the session manager
// when submitting signed transactions.
type Sender interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}
