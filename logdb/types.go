// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/holiman/uint256"

	"github.com/yashvikram30/staking/stake"
)

// Kind is the transition an entry records.
type Kind string

const (
	KindInitialize Kind = "initialize"
	KindUser       Kind = "user"
	KindLock       Kind = "lock"
	KindRelease    Kind = "release"
	KindClaim      Kind = "claim"
	KindAccrue     Kind = "accrue"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindInitialize, KindUser, KindLock, KindRelease, KindClaim, KindAccrue:
		return true
	}
	return false
}

// Entry is one committed transition.
type Entry struct {
	Seq         uint64
	Kind        Kind
	Participant stake.Address
	Asset       *stake.Address
	Points      uint64
	Amount      *uint256.Int
	Time        uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects entries. Nil fields match everything.
type Filter struct {
	Participant *stake.Address
	Asset       *stake.Address
	Kind        *Kind
	Order       Order
	Options     *Options
}
