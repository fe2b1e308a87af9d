package escrow

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/BreakThePill/breakpill/internal/model"
)

var testAddr = common.HexToAddress("0xbf2CfD0c6b0A96e84ED1Ae5630BE0Fbdd1E2A763")

func word(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func TestEncodeCall_Selector(t *testing.T) {
	b := NewBinding(testAddr)
	data, err := b.EncodeCall("withdrawIsOpen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := crypto.Keccak256([]byte("withdrawIsOpen()"))[:4]
	if !bytes.Equal(data, want) {
		t.Errorf("expected selector %x, got %x", want, data)
	}
}

func TestEncodeCall_GetUserArgs(t *testing.T) {
	b := NewBinding(testAddr)
	account := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")
	data, err := b.EncodeCall("getUser", account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 4+32 {
		t.Fatalf("expected selector plus one word, got %d bytes", len(data))
	}
	if !bytes.Equal(data[4:], common.LeftPadBytes(account.Bytes(), 32)) {
		t.Errorf("address argument not encoded as padded word")
	}
}

func TestDecodeBool(t *testing.T) {
	b := NewBinding(testAddr)
	v, err := b.DecodeBool("withdrawIsOpen", word(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Error("expected true")
	}
}

func TestDecodeUint256(t *testing.T) {
	b := NewBinding(testAddr)
	v, err := b.DecodeUint256("totalWithdrawnSnapshot", word(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("expected 42, got %s", v)
	}
}

func TestDecodeUint256_GarbageFails(t *testing.T) {
	b := NewBinding(testAddr)
	if _, err := b.DecodeUint256("withdrawDuration", []byte{0x01, 0x02}); err == nil {
		t.Error("expected decode error for truncated payload")
	}
}

func TestDecodeUser(t *testing.T) {
	b := NewBinding(testAddr)
	data := bytes.Join([][]byte{word(100), word(60), word(40), word(1), word(0)}, nil)
	u, err := b.DecodeUser(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.StakeWei.Cmp(big.NewInt(100)) != 0 || u.RemainingWei.Cmp(big.NewInt(60)) != 0 ||
		u.WithdrawnWei.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("wrong amounts: %+v", u)
	}
	if !u.Withdrew || u.Claimed {
		t.Errorf("wrong flags: withdrew=%v claimed=%v", u.Withdrew, u.Claimed)
	}
}

func TestParseActivity(t *testing.T) {
	b := NewBinding(testAddr)
	actor := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")
	lg := types.Log{
		Address:     testAddr,
		Topics:      []common.Hash{b.abi.Events["Donated"].ID, common.BytesToHash(actor.Bytes())},
		Data:        word(555),
		BlockNumber: 99,
		TxHash:      common.HexToHash("0xaa"),
		Index:       3,
	}
	rec, err := b.ParseActivity(lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Kind != model.KindDonation {
		t.Errorf("expected Donation, got %s", rec.Kind)
	}
	if rec.AmountWei.Cmp(big.NewInt(555)) != 0 {
		t.Errorf("expected amount 555, got %s", rec.AmountWei)
	}
	if rec.Actor != actor.Hex() {
		t.Errorf("expected actor %s, got %s", actor.Hex(), rec.Actor)
	}
	if rec.BlockNumber != 99 || rec.LogIndex != 3 {
		t.Errorf("wrong ordering keys: block=%d index=%d", rec.BlockNumber, rec.LogIndex)
	}
}

func TestParseActivity_RoundEventIsNotActivity(t *testing.T) {
	b := NewBinding(testAddr)
	lg := types.Log{
		Topics:      []common.Hash{b.abi.Events["Opened"].ID},
		Data:        word(1700000000),
		BlockNumber: 5,
	}
	rec, err := b.ParseActivity(lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Error("round events must not produce activity records")
	}
	notice, err := b.ParseRound(lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notice == nil || notice.Event != "Opened" {
		t.Errorf("expected Opened notice, got %+v", notice)
	}
}

func TestParseActivity_UnknownTopicFails(t *testing.T) {
	b := NewBinding(testAddr)
	lg := types.Log{Topics: []common.Hash{common.HexToHash("0xdead")}}
	if _, err := b.ParseActivity(lg); err == nil {
		t.Error("expected error for unknown event topic")
	}
}
