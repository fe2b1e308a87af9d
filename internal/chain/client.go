package chain

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the ethclient-backed chain access capability. Reads and writes
// go over the HTTP endpoint; live log subscriptions use the optional
// WebSocket endpoint.
type Client struct {
	http *ethclient.Client
	ws   *ethclient.Client
	name string
}

// Dial connects to the HTTP endpoint and, when wsURL is non-empty, the
// WebSocket endpoint. A failed WebSocket dial is not fatal: the client
// degrades to polling only.
func Dial(ctx context.Context, httpURL, wsURL string) (*Client, error) {
	httpc, err := ethclient.DialContext(ctx, httpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", httpURL, err)
	}
	c := &Client{http: httpc, name: httpURL}
	if wsURL != "" {
		wsc, err := ethclient.DialContext(ctx, wsURL)
		if err != nil {
			log.Printf("[WARN] dial ws %s failed, live events disabled: %v", wsURL, err)
		} else {
			c.ws = wsc
		}
	}
	return c, nil
}

// Close releases both underlying connections.
func (c *Client) Close() {
	c.http.Close()
	if c.ws != nil {
		c.ws.Close()
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.http.BlockNumber(ctx)
}

func (c *Client) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.http.BalanceAt(ctx, addr, nil)
}

func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.http.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return c.http.FilterLogs(ctx, q)
}

func (c *Client) SubscribeLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	if c.ws == nil {
		return nil, ErrNoSubscription
	}
	return c.ws.SubscribeFilterLogs(ctx, q, ch)
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.http.ChainID(ctx)
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.http.PendingNonceAt(ctx, account)
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.http.SuggestGasPrice(ctx)
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.http.EstimateGas(ctx, msg)
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.http.SendTransaction(ctx, tx)
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.http.TransactionReceipt(ctx, txHash)
}
