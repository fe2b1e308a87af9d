package escrow

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/BreakThePill/breakpill/internal/model"
)

// Method names of the six polled state variables, in poll order.
var StateMethods = []string{
	"withdrawIsOpen",
	"redistributionPrepared",
	"withdrawDuration",
	"withdrawsOpenedAt",
	"totalWithdrawnSnapshot",
	"donatedAtCurrentRound",
}

// ActivityEvents maps the four feed event names to their display kind.
var ActivityEvents = map[string]model.ActivityKind{
	"Deposited": model.KindDeposit,
	"Donated":   model.KindDonation,
	"Withdrawn": model.KindWithdraw,
	"Claimed":   model.KindClaim,
}

// RoundEvents are the round-lifecycle events surfaced as notices.
var RoundEvents = []string{"Opened", "Closed", "RoundReset"}

// Binding ties the parsed ABI to one deployed contract address. It is
// pure and stateless: encode in, typed values out.
type Binding struct {
	addr common.Address
	abi  abi.ABI
}

// NewBinding parses the embedded ABI for the given contract address.
func NewBinding(addr common.Address) *Binding {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		// The ABI is a compile-time constant; a parse failure is a bug.
		panic(fmt.Sprintf("escrow: parse abi: %v", err))
	}
	return &Binding{addr: addr, abi: parsed}
}

// Address returns the bound contract address.
func (b *Binding) Address() common.Address { return b.addr }

// EncodeCall packs a method selector plus arguments into calldata.
func (b *Binding) EncodeCall(method string, args ...interface{}) ([]byte, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	return data, nil
}

// DecodeBool decodes a single-bool return payload.
func (b *Binding) DecodeBool(method string, data []byte) (bool, error) {
	vals, err := b.unpack(method, data)
	if err != nil {
		return false, err
	}
	v, ok := vals[0].(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected return type %T", method, vals[0])
	}
	return v, nil
}

// DecodeUint256 decodes a single-uint256 return payload.
func (b *Binding) DecodeUint256(method string, data []byte) (*big.Int, error) {
	vals, err := b.unpack(method, data)
	if err != nil {
		return nil, err
	}
	v, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected return type %T", method, vals[0])
	}
	return v, nil
}

// DecodeUint64 decodes a uint256 return payload that must fit in 64 bits
// (epoch seconds, durations).
func (b *Binding) DecodeUint64(method string, data []byte) (uint64, error) {
	v, err := b.DecodeUint256(method, data)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%s: value %s overflows uint64", method, v)
	}
	return v.Uint64(), nil
}

// DecodeUser decodes the getUser 5-tuple into a UserPosition.
func (b *Binding) DecodeUser(data []byte) (*model.UserPosition, error) {
	vals, err := b.unpack("getUser", data)
	if err != nil {
		return nil, err
	}
	if len(vals) != 5 {
		return nil, fmt.Errorf("getUser: expected 5 values, got %d", len(vals))
	}
	stake, ok1 := vals[0].(*big.Int)
	remaining, ok2 := vals[1].(*big.Int)
	withdrawn, ok3 := vals[2].(*big.Int)
	withdrew, ok4 := vals[3].(bool)
	claimed, ok5 := vals[4].(bool)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return nil, fmt.Errorf("getUser: unexpected tuple shape")
	}
	return &model.UserPosition{
		StakeWei:     stake,
		RemainingWei: remaining,
		WithdrawnWei: withdrawn,
		Withdrew:     withdrew,
		Claimed:      claimed,
	}, nil
}

func (b *Binding) unpack(method string, data []byte) ([]interface{}, error) {
	m, ok := b.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("unknown method %s", method)
	}
	vals, err := m.Outputs.UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("unpack %s: empty payload", method)
	}
	return vals, nil
}

// EventQuery builds a log filter for the named events over a block range.
// A nil toBlock means latest.
func (b *Binding) EventQuery(names []string, fromBlock, toBlock *big.Int) (ethereum.FilterQuery, error) {
	topics := make([]common.Hash, 0, len(names))
	for _, name := range names {
		ev, ok := b.abi.Events[name]
		if !ok {
			return ethereum.FilterQuery{}, fmt.Errorf("unknown event %s", name)
		}
		topics = append(topics, ev.ID)
	}
	return ethereum.FilterQuery{
		Addresses: []common.Address{b.addr},
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Topics:    [][]common.Hash{topics},
	}, nil
}

// ParseActivity decodes a raw log into an ActivityRecord. Logs whose
// topic is not one of the four activity events return (nil, nil).
func (b *Binding) ParseActivity(lg types.Log) (*model.ActivityRecord, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("log without topics")
	}
	name, ok := b.eventName(lg.Topics[0])
	if !ok {
		return nil, fmt.Errorf("unknown event topic %s", lg.Topics[0].Hex())
	}
	kind, ok := ActivityEvents[name]
	if !ok {
		return nil, nil
	}
	if len(lg.Topics) < 2 {
		return nil, fmt.Errorf("%s: missing indexed actor", name)
	}
	amount, err := b.eventAmount(name, lg.Data)
	if err != nil {
		return nil, err
	}
	return &model.ActivityRecord{
		Kind:        kind,
		AmountWei:   amount,
		Actor:       common.BytesToAddress(lg.Topics[1].Bytes()).Hex(),
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash.Hex(),
		LogIndex:    lg.Index,
	}, nil
}

// ParseRound decodes a round-lifecycle log into a RoundNotice. Activity
// logs return (nil, nil).
func (b *Binding) ParseRound(lg types.Log) (*model.RoundNotice, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("log without topics")
	}
	name, ok := b.eventName(lg.Topics[0])
	if !ok {
		return nil, fmt.Errorf("unknown event topic %s", lg.Topics[0].Hex())
	}
	ev := b.abi.Events[name]
	vals, err := ev.Inputs.UnpackValues(lg.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", name, err)
	}
	var note string
	switch name {
	case "Opened":
		note = fmt.Sprintf("withdraws opened at epoch %s", vals[0])
	case "Closed":
		note = fmt.Sprintf("round closed, pool snapshot %s wei, withdrawn snapshot %s wei", vals[0], vals[1])
	case "RoundReset":
		note = fmt.Sprintf("round %s reset, %s wei recycled", vals[1], vals[0])
	default:
		return nil, nil
	}
	return &model.RoundNotice{Event: name, Note: note, BlockNumber: lg.BlockNumber}, nil
}

func (b *Binding) eventName(topic common.Hash) (string, bool) {
	for name, ev := range b.abi.Events {
		if ev.ID == topic {
			return name, true
		}
	}
	return "", false
}

func (b *Binding) eventAmount(name string, data []byte) (*big.Int, error) {
	ev := b.abi.Events[name]
	vals, err := ev.Inputs.NonIndexed().UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", name, err)
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("%s: expected one data field, got %d", name, len(vals))
	}
	amount, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected amount type %T", name, vals[0])
	}
	return amount, nil
}
