package session

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/BreakThePill/breakpill/internal/countdown"
	"github.com/BreakThePill/breakpill/internal/model"
	"github.com/BreakThePill/breakpill/internal/reward"
	"github.com/BreakThePill/breakpill/internal/wei"
)

// View is the derived presentation state: everything the UI layer reads,
// including the four action-enabled predicates.
type View struct {
	PoolWei          *big.Int
	DonationsWei     *big.Int
	StakeWei         *big.Int
	RemainingWei     *big.Int
	WithdrawnWei     *big.Int
	PendingRewardWei *big.Int

	CountdownSecs   int64
	CountdownActive bool
	Status          string

	CanDeposit  bool
	CanDonate   bool
	CanWithdraw bool
	CanClaim    bool
}

// BuildView derives the presentation state from the latest snapshots.
// Either snapshot may be nil before its first poll or when disconnected.
func BuildView(g *model.GlobalState, u *model.UserPosition, remainingSecs int64, timerActive bool, status string) View {
	v := View{
		PendingRewardWei: reward.Pending(g, u),
		CountdownSecs:    remainingSecs,
		CountdownActive:  timerActive,
		Status:           status,
	}
	if g != nil {
		v.PoolWei = g.PoolBalanceWei
		v.DonationsWei = g.DonatedAtCurrentRoundWei

		// Deposits and donations close once a withdraw window opens or a
		// redistribution round is prepared.
		open := !g.WithdrawIsOpen && !g.RedistributionPrepared
		v.CanDeposit = open
		v.CanDonate = open

		if u != nil {
			v.StakeWei = u.StakeWei
			v.RemainingWei = u.RemainingWei
			v.WithdrawnWei = u.WithdrawnWei
			v.CanWithdraw = g.WithdrawIsOpen && u.RemainingWei != nil && u.RemainingWei.Sign() > 0
			v.CanClaim = g.RedistributionPrepared && u.Withdrew && !u.Claimed &&
				v.PendingRewardWei.Sign() > 0
		}
	}
	return v
}

// Summary renders the view as a short multi-line report.
func (v *View) Summary() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("In the pill: %s ETH | Donations: %s ETH\n",
		wei.FormatFixed(v.PoolWei, 4), wei.FormatFixed(v.DonationsWei, 4)))
	b.WriteString(fmt.Sprintf("Timer: %s\n", countdown.FormatHMS(v.CountdownSecs, v.CountdownActive)))
	if v.StakeWei != nil {
		b.WriteString(fmt.Sprintf("Stake: %s ETH | Remaining: %s ETH | Pending reward: %s ETH\n",
			wei.FormatFixed(v.StakeWei, 4), wei.FormatFixed(v.RemainingWei, 4),
			wei.Format(v.PendingRewardWei)))
	}
	if v.Status != "" {
		b.WriteString(v.Status + "\n")
	}
	return b.String()
}
