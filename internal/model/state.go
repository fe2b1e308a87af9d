package model

import "math/big"

// GlobalState is one consistent snapshot of the contract-wide escrow state.
// All wei amounts are unbounded integers; the snapshot is always replaced
// wholesale, never field by field.
type GlobalState struct {
	PoolBalanceWei            *big.Int
	WithdrawIsOpen            bool
	RedistributionPrepared    bool
	WithdrawDurationSec       uint64
	WithdrawsOpenedAtEpoch    uint64 // 0 means no open withdraw window
	TotalWithdrawnSnapshotWei *big.Int
	DonatedAtCurrentRoundWei  *big.Int
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing big.Int pointers with the poller.
func (g *GlobalState) Clone() *GlobalState {
	if g == nil {
		return nil
	}
	c := *g
	c.PoolBalanceWei = copyInt(g.PoolBalanceWei)
	c.TotalWithdrawnSnapshotWei = copyInt(g.TotalWithdrawnSnapshotWei)
	c.DonatedAtCurrentRoundWei = copyInt(g.DonatedAtCurrentRoundWei)
	return &c
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
