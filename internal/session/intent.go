package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/wei"
)

const receiptPollInterval = 2 * time.Second

// Deposit locks the given decimal ETH amount into the contract.
func (m *Manager) Deposit(ctx context.Context, amount string) error {
	value, err := m.parseAmount(amount, "deposit")
	if err != nil {
		return err
	}
	return m.submit(ctx, "deposit", value, "Deposited successfully!", "Deposit failed")
}

// Donate sends the given decimal ETH amount as an unwithdrawable donation.
func (m *Manager) Donate(ctx context.Context, amount string) error {
	value, err := m.parseAmount(amount, "donate")
	if err != nil {
		return err
	}
	return m.submit(ctx, "addUnwithdrawableETH", value, "Donation sent!", "Donation failed")
}

// Withdraw pulls the caller's remaining stake out of the contract.
func (m *Manager) Withdraw(ctx context.Context) error {
	return m.submit(ctx, "withdrawAll", nil, "Withdrawn!", "Withdraw failed")
}

// Claim claims the caller's share of the redistribution pool.
func (m *Manager) Claim(ctx context.Context) error {
	return m.submit(ctx, "claimReward", nil, "Reward claimed!", "Claim failed")
}

// parseAmount converts a decimal string to wei, rejecting non-positive
// amounts locally before any network call.
func (m *Manager) parseAmount(amount, verb string) (*big.Int, error) {
	value, err := wei.Parse(amount)
	if err != nil {
		m.setStatus(fmt.Sprintf("❌ Invalid amount: %v", err))
		return nil, err
	}
	if value.Sign() <= 0 {
		m.setStatus(fmt.Sprintf("❌ No ETH to %s", verb))
		return nil, fmt.Errorf("amount must be positive")
	}
	return value, nil
}

// submit sends one contract write under the active signer and waits for
// its receipt. Failures become short user-visible status strings and
// never alter polled state.
func (m *Manager) submit(ctx context.Context, method string, value *big.Int, okMsg, failMsg string) error {
	m.mu.Lock()
	signer := m.signer
	ready := m.phase == PhaseReady
	m.mu.Unlock()
	if !ready || signer == nil {
		m.setStatus("❌ Connect a wallet first")
		return ErrNotReady
	}

	err := m.send(ctx, signer, method, value)
	if err != nil {
		m.setStatus(fmt.Sprintf("❌ %s: %s", failMsg, shortReason(err)))
		return err
	}
	m.setStatus("✅ " + okMsg)
	return nil
}

func (m *Manager) send(ctx context.Context, signer chain.Signer, method string, value *big.Int) error {
	calldata, err := m.binding.EncodeCall(method)
	if err != nil {
		return err
	}
	if value == nil {
		value = new(big.Int)
	}
	from := signer.Address()
	to := m.binding.Address()

	nonce, err := m.sender.PendingNonceAt(ctx, from)
	if err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	gasPrice, err := m.sender.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("gas price: %w", err)
	}
	gas, err := m.sender.EstimateGas(ctx, ethereum.CallMsg{
		From: from, To: &to, Value: value, Data: calldata,
	})
	if err != nil {
		return fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     calldata,
	})
	chainID := new(big.Int).SetUint64(m.target.ChainID)
	signed, err := signer.SignTx(chainID, tx)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	if err := m.sender.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	log.Printf("[INFO] %s sent: %s", method, signed.Hash().Hex())
	receipt, err := m.waitMined(ctx, signed.Hash())
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction reverted")
	}
	return nil
}

// waitMined polls for the receipt until it lands or ctx is cancelled.
func (m *Manager) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := m.sender.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Manager) setStatus(s string) {
	m.mu.Lock()
	m.setStatusLocked(s)
	m.mu.Unlock()
}

// shortReason reduces an error chain to a short user-visible reason.
func shortReason(err error) string {
	s := err.Error()
	if len(s) > 120 {
		s = s[:120] + "…"
	}
	return s
}
