package model

import "math/big"

// ActivityKind identifies one of the four user-visible contract events.
type ActivityKind string

const (
	KindDeposit  ActivityKind = "Deposit"
	KindDonation ActivityKind = "Donation"
	KindWithdraw ActivityKind = "Withdraw"
	KindClaim    ActivityKind = "Claim"
)

// ActivityRecord is one normalized contract event for the activity feed.
type ActivityRecord struct {
	Kind        ActivityKind
	AmountWei   *big.Int
	Actor       string // full 0x-prefixed address
	BlockNumber uint64
	TxHash      string
	LogIndex    uint
}

// RoundNotice is a decoded round-lifecycle event (Opened, Closed, RoundReset).
// These never enter the activity feed; they invalidate derived state.
type RoundNotice struct {
	Event       string
	Note        string
	BlockNumber uint64
}
