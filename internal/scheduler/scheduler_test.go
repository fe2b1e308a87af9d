package scheduler

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/BreakThePill/breakpill/internal/activity"
	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/countdown"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
	"github.com/BreakThePill/breakpill/internal/poller"
)

var contractAddr = common.HexToAddress("0xbf2CfD0c6b0A96e84ED1Ae5630BE0Fbdd1E2A763")

func word(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

// fakeReader answers the global-state calls with a fixed open window.
type fakeReader struct {
	responses map[string][]byte
}

func (f *fakeReader) Name() string                                { return "fake" }
func (f *fakeReader) BlockNumber(context.Context) (uint64, error) { return 10000, nil }

func (f *fakeReader) Balance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(1000), nil
}

func (f *fakeReader) Call(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	if resp, ok := f.responses[string(data)]; ok {
		return resp, nil
	}
	return nil, errors.New("no canned response")
}

func (f *fakeReader) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeReader) SubscribeLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, chain.ErrNoSubscription
}

// A poll that lands must reach the countdown through the poller's
// onUpdate callback alone; the tasks themselves never touch the timer.
func TestRunAllNow_CountdownFollowsPollerUpdates(t *testing.T) {
	binding := escrow.NewBinding(contractAddr)
	f := &fakeReader{responses: map[string][]byte{}}
	canned := map[string][]byte{
		"withdrawIsOpen":         word(1),
		"redistributionPrepared": word(0),
		"withdrawDuration":       word(172800),
		"withdrawsOpenedAt":      word(1700000000),
		"totalWithdrawnSnapshot": word(300),
		"donatedAtCurrentRound":  word(7),
	}
	for method, resp := range canned {
		data, err := binding.EncodeCall(method)
		if err != nil {
			t.Fatalf("encode %s: %v", method, err)
		}
		f.responses[string(data)] = resp
	}

	cd := countdown.New(nil)
	defer cd.Stop()
	global := poller.NewGlobalPoller(f, binding, func(g *model.GlobalState) {
		cd.Update(g.WithdrawsOpenedAtEpoch, g.WithdrawDurationSec)
	})
	user := poller.NewUserPoller(f, binding, nil)
	feed := activity.New(f, binding, nil, 5000, 7, nil)
	s := NewScheduler(context.Background(), global, user, feed, cd, nil)

	s.RunAllNow()

	v := s.Snapshot()
	if v.PoolWei == nil || v.PoolWei.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("expected polled pool balance, got %v", v.PoolWei)
	}
	if !v.CountdownActive {
		t.Error("expected countdown activated via poller update")
	}
}
