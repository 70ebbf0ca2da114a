// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"

	"github.com/yashvikram30/staking/staker/reverts"
)

// rewardAmount returns points scaled to base units of a currency with the given decimals.
func rewardAmount(points uint64, decimals uint8) (*uint256.Int, error) {
	amount := uint256.NewInt(points)
	ten := uint256.NewInt(10)
	for range decimals {
		var overflow bool
		if amount, overflow = new(uint256.Int).MulOverflow(amount, ten); overflow {
			return nil, reverts.ErrRewardOverflow
		}
	}
	return amount, nil
}
