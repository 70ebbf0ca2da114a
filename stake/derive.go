// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

// Seeds of the derived record addresses. Changing any of them relocates every
// record of that kind.
var (
	seedPolicy  = []byte("config")
	seedRewards = []byte("rewards")
	seedStake   = []byte("stake")
	seedUser    = []byte("user")
)

// DefaultRewardDecimals is the number of fractional digits of the reward currency.
const DefaultRewardDecimals uint8 = 6

// PolicyAddress is the address of the policy singleton. It is also the signing
// authority of the reward mint.
func PolicyAddress() Address {
	return Blake2b(seedPolicy)
}

// RewardMintAddress returns the reward currency mint controlled by the given policy.
func RewardMintAddress(policy Address) Address {
	return Blake2b(seedRewards, policy.Bytes())
}

// CustodyAddress returns the custody record address of an asset. It acts as the
// delegate holding transfer authority while the asset is locked.
func CustodyAddress(asset, policy Address) Address {
	return Blake2b(seedStake, asset.Bytes(), policy.Bytes())
}

// UserAddress returns the ledger address of a participant.
func UserAddress(participant Address) Address {
	return Blake2b(seedUser, participant.Bytes())
}

// HoldingAddress returns the account that holds units of mint for owner.
func HoldingAddress(owner, mint Address) Address {
	return Blake2b(owner.Bytes(), mint.Bytes())
}
