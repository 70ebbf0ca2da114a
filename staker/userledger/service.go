// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package userledger

import (
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
)

const namespace = records.Namespace("user")

type Service struct {
	ledgers *records.Table[stake.Address, *body]
}

func New() *Service {
	return &Service{
		ledgers: records.NewTable[stake.Address, *body](namespace),
	}
}

// Get returns the participant's ledger, or nil if none exists.
func (s *Service) Get(tx *records.Tx, participant stake.Address) (*Ledger, error) {
	b, found, err := s.ledgers.Get(tx, stake.UserAddress(participant))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user ledger")
	}
	if !found {
		return nil, nil
	}
	return &Ledger{b}, nil
}

// Ensure returns the participant's ledger, staging a zeroed one if absent.
func (s *Service) Ensure(tx *records.Tx, participant stake.Address) (*Ledger, bool, error) {
	l, err := s.Get(tx, participant)
	if err != nil {
		return nil, false, err
	}
	if l != nil {
		return l, false, nil
	}
	l = &Ledger{&body{}}
	if err := s.ledgers.Insert(tx, stake.UserAddress(participant), l.body); err != nil {
		return nil, false, errors.Wrap(err, "failed to create user ledger")
	}
	return l, true, nil
}

// Save stages the ledger. It must have been obtained through Get or Ensure on tx.
func (s *Service) Save(tx *records.Tx, participant stake.Address, l *Ledger) error {
	if err := s.ledgers.Update(tx, stake.UserAddress(participant), l.body); err != nil {
		return errors.Wrap(err, "failed to update user ledger")
	}
	return nil
}
