package session

import (
	"math/big"
	"testing"

	"github.com/BreakThePill/breakpill/internal/model"
)

func viewFixture() (*model.GlobalState, *model.UserPosition) {
	return &model.GlobalState{
			PoolBalanceWei:            big.NewInt(1000),
			DonatedAtCurrentRoundWei:  big.NewInt(50),
			TotalWithdrawnSnapshotWei: big.NewInt(300),
		}, &model.UserPosition{
			StakeWei:     big.NewInt(200),
			RemainingWei: big.NewInt(150),
			WithdrawnWei: big.NewInt(50),
		}
}

func TestBuildView_DepositOpenByDefault(t *testing.T) {
	g, u := viewFixture()
	v := BuildView(g, u, 0, false, "")
	if !v.CanDeposit || !v.CanDonate {
		t.Error("deposit and donate should be open outside a withdraw window")
	}
	if v.CanWithdraw || v.CanClaim {
		t.Error("withdraw and claim should be closed outside a window")
	}
}

func TestBuildView_WithdrawNeedsOpenWindowAndRemaining(t *testing.T) {
	g, u := viewFixture()
	g.WithdrawIsOpen = true
	v := BuildView(g, u, 0, true, "")
	if !v.CanWithdraw {
		t.Error("expected withdraw enabled with open window and remaining stake")
	}
	if v.CanDeposit || v.CanDonate {
		t.Error("deposits must close while the window is open")
	}

	u.RemainingWei = big.NewInt(0)
	v = BuildView(g, u, 0, true, "")
	if v.CanWithdraw {
		t.Error("withdraw must require a positive remaining stake")
	}
}

func TestBuildView_ClaimGating(t *testing.T) {
	g, u := viewFixture()
	g.RedistributionPrepared = true
	u.Withdrew = true
	v := BuildView(g, u, 0, false, "")
	if !v.CanClaim {
		t.Error("expected claim enabled when prepared, withdrew, unclaimed, reward > 0")
	}
	if v.PendingRewardWei.Cmp(big.NewInt(166)) != 0 { // 1000*50/300
		t.Errorf("expected reward 166, got %s", v.PendingRewardWei)
	}

	u.Claimed = true
	v = BuildView(g, u, 0, false, "")
	if v.CanClaim {
		t.Error("claim must close once claimed")
	}
}

func TestBuildView_NilSnapshots(t *testing.T) {
	v := BuildView(nil, nil, 0, false, "starting")
	if v.CanDeposit || v.CanDonate || v.CanWithdraw || v.CanClaim {
		t.Error("no actions before the first poll")
	}
	if v.PendingRewardWei.Sign() != 0 {
		t.Errorf("expected zero reward, got %s", v.PendingRewardWei)
	}
	if v.Status != "starting" {
		t.Errorf("expected status passthrough, got %q", v.Status)
	}
}
