// Package reward derives a user's proportional share of the pool from
// snapshot data. Pure functions only; no error path — ineligible or
// incomplete inputs yield zero.
package reward

import (
	"math/big"

	"github.com/BreakThePill/breakpill/internal/model"
)

// Pending returns the claimable reward in wei:
//
//	poolBalance * userWithdrawn / totalWithdrawnSnapshot
//
// with truncating integer division, or zero unless redistribution is
// prepared, the user has not claimed, and the snapshot denominator is
// positive.
func Pending(g *model.GlobalState, u *model.UserPosition) *big.Int {
	if g == nil || u == nil {
		return new(big.Int)
	}
	if !g.RedistributionPrepared || u.Claimed {
		return new(big.Int)
	}
	if g.TotalWithdrawnSnapshotWei == nil || g.TotalWithdrawnSnapshotWei.Sign() <= 0 {
		return new(big.Int)
	}
	if g.PoolBalanceWei == nil || u.WithdrawnWei == nil {
		return new(big.Int)
	}
	share := new(big.Int).Mul(g.PoolBalanceWei, u.WithdrawnWei)
	return share.Quo(share, g.TotalWithdrawnSnapshotWei)
}
