// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package policy

import (
	"github.com/yashvikram30/staking/stake"
)

type body struct {
	Admin            stake.Address
	PointsPerLock    uint32
	MaxLockedPerUser uint32
	LockDuration     uint32
	RewardMint       stake.Address
	RewardDecimals   uint8
}

// Policy is the global staking ruleset.
type Policy struct {
	body *body
}

func (p *Policy) Admin() stake.Address        { return p.body.Admin }
func (p *Policy) PointsPerLock() uint32       { return p.body.PointsPerLock }
func (p *Policy) MaxLockedPerUser() uint32    { return p.body.MaxLockedPerUser }
func (p *Policy) LockDuration() uint32        { return p.body.LockDuration }
func (p *Policy) RewardMint() stake.Address   { return p.body.RewardMint }
func (p *Policy) RewardDecimals() uint8       { return p.body.RewardDecimals }

// IsAdmin reports whether a administers the policy.
func (p *Policy) IsAdmin(a stake.Address) bool {
	return p.body.Admin == a
}

// CanLock reports whether a participant holding locked assets may lock one more.
func (p *Policy) CanLock(locked uint32) bool {
	return locked < p.body.MaxLockedPerUser
}

// Params are the admin supplied policy values.
type Params struct {
	PointsPerLock    uint32
	MaxLockedPerUser uint32
	LockDuration     uint32
}
