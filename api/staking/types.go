// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/custody"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/staker/userledger"
)

type Policy struct {
	Admin            stake.Address `json:"admin"`
	PointsPerLock    uint32        `json:"pointsPerLock"`
	MaxLockedPerUser uint32        `json:"maxLockedPerUser"`
	LockDuration     uint32        `json:"lockDuration"`
	RewardMint       stake.Address `json:"rewardMint"`
	RewardDecimals   uint8         `json:"rewardDecimals"`
}

func convertPolicy(p *policy.Policy) *Policy {
	return &Policy{
		Admin:            p.Admin(),
		PointsPerLock:    p.PointsPerLock(),
		MaxLockedPerUser: p.MaxLockedPerUser(),
		LockDuration:     p.LockDuration(),
		RewardMint:       p.RewardMint(),
		RewardDecimals:   p.RewardDecimals(),
	}
}

type User struct {
	Address       stake.Address `json:"address"`
	Points        uint64        `json:"points"`
	LockedCount   uint32        `json:"lockedCount"`
	RewardBalance *hexutil.Big  `json:"rewardBalance"`
}

func convertUser(addr stake.Address, l *userledger.Ledger, balance *uint256.Int) *User {
	u := &User{Address: addr, RewardBalance: toHexBig(balance)}
	if l != nil {
		u.Points = l.Points()
		u.LockedCount = l.LockedCount()
	}
	return u
}

type Custody struct {
	Owner    stake.Address `json:"owner"`
	Asset    stake.Address `json:"asset"`
	Delegate stake.Address `json:"delegate"`
	LockedAt uint64        `json:"lockedAt"`
}

func convertCustody(r *custody.Record, delegate stake.Address) *Custody {
	return &Custody{
		Owner:    r.Owner(),
		Asset:    r.Asset(),
		Delegate: delegate,
		LockedAt: uint64(r.LockedAt().Unix()),
	}
}

type ClaimResult struct {
	Amount *hexutil.Big `json:"amount"`
}

type Activity struct {
	Seq         uint64         `json:"seq"`
	Kind        logdb.Kind     `json:"kind"`
	Participant stake.Address  `json:"participant"`
	Asset       *stake.Address `json:"asset"`
	Points      uint64         `json:"points"`
	Amount      *hexutil.Big   `json:"amount"`
	Time        uint64         `json:"time"`
}

func convertActivity(e *logdb.Entry) *Activity {
	return &Activity{
		Seq:         e.Seq,
		Kind:        e.Kind,
		Participant: e.Participant,
		Asset:       e.Asset,
		Points:      e.Points,
		Amount:      toHexBig(e.Amount),
		Time:        e.Time,
	}
}

func toHexBig(v *uint256.Int) *hexutil.Big {
	if v == nil {
		return (*hexutil.Big)(new(big.Int))
	}
	return (*hexutil.Big)(v.ToBig())
}

// Payloads of signed requests.

type InitializePolicy struct {
	PointsPerLock    uint32 `json:"pointsPerLock"`
	MaxLockedPerUser uint32 `json:"maxLockedPerUser"`
	LockDuration     uint32 `json:"lockDuration"`
}

type Lock struct {
	Asset      stake.Address `json:"asset"`
	Collection stake.Address `json:"collection"`
}

type Release struct {
	Asset stake.Address `json:"asset"`
}

type Accrue struct {
	Participant stake.Address `json:"participant"`
	Points      uint64        `json:"points"`
}

// Empty is the payload of requests acting on the caller alone.
type Empty struct{}
