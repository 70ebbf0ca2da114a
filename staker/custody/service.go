// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custody

import (
	"time"

	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/reverts"
)

const namespace = records.Namespace("custody")

type Service struct {
	records *records.Table[stake.Address, *body]
	policy  stake.Address
}

// New creates the custody service for assets held under the given policy authority.
func New(policy stake.Address) *Service {
	return &Service{
		records: records.NewTable[stake.Address, *body](namespace),
		policy:  policy,
	}
}

// Delegate returns the identity that holds custody of asset.
func (s *Service) Delegate(asset stake.Address) stake.Address {
	return stake.CustodyAddress(asset, s.policy)
}

// Get returns the custody record of asset, or nil if the asset is not locked.
func (s *Service) Get(tx *records.Tx, asset stake.Address) (*Record, error) {
	b, found, err := s.records.Get(tx, s.Delegate(asset))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get custody record")
	}
	if !found {
		return nil, nil
	}
	return &Record{b}, nil
}

// Lock creates the custody record of asset.
func (s *Service) Lock(tx *records.Tx, owner, asset stake.Address, now time.Time) (*Record, error) {
	r := &Record{
		&body{
			Owner:    owner,
			Asset:    asset,
			LockedAt: unixSeconds(now),
		},
	}
	if err := s.records.Insert(tx, s.Delegate(asset), r.body); err != nil {
		if errors.Is(err, records.ErrExists) {
			return nil, reverts.ErrAlreadyLocked
		}
		return nil, errors.Wrap(err, "failed to create custody record")
	}
	return r, nil
}

// Unlock destroys the custody record of asset.
func (s *Service) Unlock(tx *records.Tx, asset stake.Address) error {
	if err := s.records.Delete(tx, s.Delegate(asset)); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return reverts.ErrNotLocked
		}
		return errors.Wrap(err, "failed to destroy custody record")
	}
	return nil
}
