package activity

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
)

var (
	contractAddr = common.HexToAddress("0xbf2CfD0c6b0A96e84ED1Ae5630BE0Fbdd1E2A763")
	actorAddr    = common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")

	depositedID = common.BytesToHash(crypto.Keccak256([]byte("Deposited(address,uint256)")))
	donatedID   = common.BytesToHash(crypto.Keccak256([]byte("Donated(address,uint256)")))
	withdrawnID = common.BytesToHash(crypto.Keccak256([]byte("Withdrawn(address,uint256)")))
)

func eventLog(topic0 common.Hash, block uint64, index uint) types.Log {
	return types.Log{
		Address:     contractAddr,
		Topics:      []common.Hash{topic0, common.BytesToHash(actorAddr.Bytes())},
		Data:        common.LeftPadBytes(big.NewInt(1000).Bytes(), 32),
		BlockNumber: block,
		TxHash:      common.HexToHash("0xbeef"),
		Index:       index,
	}
}

// fakeReader serves logs per event topic and can fail selected topics.
type fakeReader struct {
	latest uint64
	logs   map[common.Hash][]types.Log
	fail   map[common.Hash]error
}

func (f *fakeReader) Name() string { return "fake" }

func (f *fakeReader) BlockNumber(context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeReader) Balance(context.Context, common.Address) (*big.Int, error) {
	return nil, errors.New("not supported")
}

func (f *fakeReader) Call(context.Context, common.Address, []byte) ([]byte, error) {
	return nil, errors.New("not supported")
}

func (f *fakeReader) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	topic := q.Topics[0][0]
	if err, ok := f.fail[topic]; ok {
		return nil, err
	}
	return f.logs[topic], nil
}

func (f *fakeReader) SubscribeLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, chain.ErrNoSubscription
}

func TestRefresh_MergesAllKinds(t *testing.T) {
	f := &fakeReader{
		latest: 10000,
		logs: map[common.Hash][]types.Log{
			depositedID: {eventLog(depositedID, 9100, 0)},
			donatedID:   {eventLog(donatedID, 9300, 1)},
			withdrawnID: {eventLog(withdrawnID, 9200, 2)},
		},
		fail: map[common.Hash]error{},
	}
	a := New(f, escrow.NewBinding(contractAddr), nil, 5000, 7, nil)

	a.Refresh(context.Background())

	got := a.Records()
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	wantKinds := []model.ActivityKind{model.KindDonation, model.KindWithdraw, model.KindDeposit}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("position %d: expected %s, got %s", i, k, got[i].Kind)
		}
	}
}

func TestRefresh_OneFailingKindDoesNotBlockOthers(t *testing.T) {
	f := &fakeReader{
		latest: 10000,
		logs: map[common.Hash][]types.Log{
			depositedID: {eventLog(depositedID, 9100, 0)},
			donatedID:   {eventLog(donatedID, 9300, 1)},
		},
		fail: map[common.Hash]error{withdrawnID: errors.New("rpc timeout")},
	}
	a := New(f, escrow.NewBinding(contractAddr), nil, 5000, 7, nil)

	a.Refresh(context.Background())

	got := a.Records()
	if len(got) != 2 {
		t.Fatalf("expected the two healthy kinds, got %d records", len(got))
	}
}

func TestRefresh_RepeatedRunsDoNotDuplicate(t *testing.T) {
	f := &fakeReader{
		latest: 10000,
		logs:   map[common.Hash][]types.Log{depositedID: {eventLog(depositedID, 9100, 0)}},
		fail:   map[common.Hash]error{},
	}
	a := New(f, escrow.NewBinding(contractAddr), nil, 5000, 7, nil)

	a.Refresh(context.Background())
	a.Refresh(context.Background())

	if got := a.Records(); len(got) != 1 {
		t.Fatalf("expected 1 record after two refreshes, got %d", len(got))
	}
}

func TestRefresh_WindowMovesFloorForward(t *testing.T) {
	f := &fakeReader{
		latest: 10000,
		logs:   map[common.Hash][]types.Log{depositedID: {eventLog(depositedID, 9100, 0)}},
		fail:   map[common.Hash]error{},
	}
	a := New(f, escrow.NewBinding(contractAddr), nil, 5000, 7, nil)
	a.Refresh(context.Background())

	// The chain advances past the old record's window.
	f.latest = 20000
	f.logs[depositedID] = nil
	a.Refresh(context.Background())

	if got := a.Records(); len(got) != 0 {
		t.Fatalf("expected records outside the window to be pruned, got %d", len(got))
	}
}

type fakeSub struct {
	errCh chan error
	once  sync.Once
}

func (s *fakeSub) Err() <-chan error { return s.errCh }
func (s *fakeSub) Unsubscribe()      { s.once.Do(func() { close(s.errCh) }) }

// subReader hands out controllable subscriptions and records the push
// channel of each so tests can inject live logs and drops.
type subReader struct {
	fakeReader
	mu     sync.Mutex
	subs   []*fakeSub
	chans  []chan<- types.Log
	subbed chan struct{}
}

func (r *subReader) SubscribeLogs(_ context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	r.mu.Lock()
	s := &fakeSub{errCh: make(chan error, 1)}
	r.subs = append(r.subs, s)
	r.chans = append(r.chans, ch)
	r.mu.Unlock()
	r.subbed <- struct{}{}
	return s, nil
}

func waitRecords(t *testing.T, a *Aggregator, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(a.Records()) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d records, got %d", n, len(a.Records()))
}

func TestSubscribe_ReestablishesAfterDrop(t *testing.T) {
	r := &subReader{subbed: make(chan struct{}, 8)}
	a := New(r, escrow.NewBinding(contractAddr), nil, 5000, 7, nil)
	if err := a.Subscribe(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer a.Stop()
	<-r.subbed // activity group
	<-r.subbed // round group

	r.mu.Lock()
	activityCh := r.chans[0]
	activitySub := r.subs[0]
	r.mu.Unlock()

	activityCh <- eventLog(depositedID, 9100, 0)
	waitRecords(t, a, 1)

	// Drop the activity subscription; the pump must come back.
	activitySub.errCh <- errors.New("ws connection reset")
	select {
	case <-r.subbed:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not re-established after drop")
	}

	activityCh <- eventLog(donatedID, 9200, 1)
	waitRecords(t, a, 2)
}
