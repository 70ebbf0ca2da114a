// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package policy

import (
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/reverts"
)

const namespace = records.Namespace("policy")

type Service struct {
	policy *records.Table[stake.Address, *body]
	key    stake.Address
}

func New() *Service {
	return &Service{
		policy: records.NewTable[stake.Address, *body](namespace),
		key:    stake.PolicyAddress(),
	}
}

// Get returns the policy, or nil if it was never initialized.
func (s *Service) Get(tx *records.Tx) (*Policy, error) {
	b, found, err := s.policy.Get(tx, s.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get policy")
	}
	if !found {
		return nil, nil
	}
	return &Policy{b}, nil
}

// Initialize creates the singleton policy administered by admin.
func (s *Service) Initialize(tx *records.Tx, admin stake.Address, params Params) (*Policy, error) {
	if params.MaxLockedPerUser < 1 {
		return nil, reverts.ErrInvalidPolicy
	}
	p := &Policy{
		&body{
			Admin:            admin,
			PointsPerLock:    params.PointsPerLock,
			MaxLockedPerUser: params.MaxLockedPerUser,
			LockDuration:     params.LockDuration,
			RewardMint:       stake.RewardMintAddress(s.key),
			RewardDecimals:   stake.DefaultRewardDecimals,
		},
	}
	if err := s.policy.Insert(tx, s.key, p.body); err != nil {
		if errors.Is(err, records.ErrExists) {
			return nil, reverts.ErrAlreadyInitialized
		}
		return nil, errors.Wrap(err, "failed to set policy")
	}
	return p, nil
}

// Address returns the policy authority address.
func (s *Service) Address() stake.Address {
	return s.key
}
