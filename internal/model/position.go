package model

import "math/big"

// UserPosition is the decoded per-account position in the contract.
// It exists only while an account is connected.
type UserPosition struct {
	StakeWei     *big.Int
	RemainingWei *big.Int
	WithdrawnWei *big.Int
	Withdrew     bool
	Claimed      bool
}

// Clone returns a deep copy of the position.
func (u *UserPosition) Clone() *UserPosition {
	if u == nil {
		return nil
	}
	c := *u
	c.StakeWei = copyInt(u.StakeWei)
	c.RemainingWei = copyInt(u.RemainingWei)
	c.WithdrawnWei = copyInt(u.WithdrawnWei)
	return &c
}
