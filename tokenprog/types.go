// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokenprog

import (
	"github.com/holiman/uint256"

	"github.com/yashvikram30/staking/stake"
)

// Mint is a currency or a single asset. Assets have zero decimals and a supply of one.
type Mint struct {
	Decimals  uint8
	Authority stake.Address // zero when no further units can be minted
	Supply    *uint256.Int
}

// Holding is an account holding units of one mint for one owner.
type Holding struct {
	Mint      stake.Address
	Owner     stake.Address
	Amount    *uint256.Int
	Delegate  stake.Address
	Delegated uint64
	Frozen    bool
}

// HasDelegate reports whether transfer authority is delegated.
func (h *Holding) HasDelegate() bool {
	return h.Delegated > 0
}
