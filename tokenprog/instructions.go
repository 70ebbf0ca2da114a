// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokenprog

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/stake"
)

var (
	ErrMintNotFound      = errors.New("mint not found")
	ErrMintExists        = errors.New("mint already exists")
	ErrHoldingNotFound   = errors.New("holding not found")
	ErrMintMismatch      = errors.New("holding belongs to another mint")
	ErrOwnerMismatch     = errors.New("owner mismatch")
	ErrDelegateMismatch  = errors.New("delegate mismatch")
	ErrAuthorityMismatch = errors.New("mint authority mismatch")
	ErrFrozen            = errors.New("holding is frozen")
	ErrNotFrozen         = errors.New("holding is not frozen")
	ErrInsufficient      = errors.New("insufficient units")
	ErrSupplyOverflow    = errors.New("supply overflow")
)

// Instruction is one command of the token program.
type Instruction interface {
	Name() string
	apply(s *state) error
}

// Approve delegates transfer authority over units of a holding.
type Approve struct {
	Holding  stake.Address
	Owner    stake.Address
	Delegate stake.Address
	Units    uint64
}

func (Approve) Name() string { return "approve" }

func (ins Approve) apply(s *state) error {
	h, err := s.holding(ins.Holding)
	if err != nil {
		return err
	}
	if h.Owner != ins.Owner {
		return ErrOwnerMismatch
	}
	if h.Frozen {
		return ErrFrozen
	}
	if h.Amount.Lt(uint256.NewInt(ins.Units)) {
		return ErrInsufficient
	}
	h.Delegate = ins.Delegate
	h.Delegated = ins.Units
	return s.putHolding(ins.Holding, h)
}

// FreezeDelegated freezes a holding on behalf of its delegate.
type FreezeDelegated struct {
	Delegate stake.Address
	Holding  stake.Address
	Asset    stake.Address
}

func (FreezeDelegated) Name() string { return "freeze-delegated" }

func (ins FreezeDelegated) apply(s *state) error {
	h, err := s.delegated(ins.Holding, ins.Delegate, ins.Asset)
	if err != nil {
		return err
	}
	if h.Frozen {
		return ErrFrozen
	}
	h.Frozen = true
	return s.putHolding(ins.Holding, h)
}

// ThawDelegated thaws a holding frozen by its delegate.
type ThawDelegated struct {
	Delegate stake.Address
	Holding  stake.Address
	Asset    stake.Address
}

func (ThawDelegated) Name() string { return "thaw-delegated" }

func (ins ThawDelegated) apply(s *state) error {
	h, err := s.delegated(ins.Holding, ins.Delegate, ins.Asset)
	if err != nil {
		return err
	}
	if !h.Frozen {
		return ErrNotFrozen
	}
	h.Frozen = false
	return s.putHolding(ins.Holding, h)
}

// Revoke clears the delegated authority of a holding.
type Revoke struct {
	Holding stake.Address
	Owner   stake.Address
}

func (Revoke) Name() string { return "revoke" }

func (ins Revoke) apply(s *state) error {
	h, err := s.holding(ins.Holding)
	if err != nil {
		return err
	}
	if h.Owner != ins.Owner {
		return ErrOwnerMismatch
	}
	if h.Frozen {
		return ErrFrozen
	}
	h.Delegate = stake.Address{}
	h.Delegated = 0
	return s.putHolding(ins.Holding, h)
}

// InitializeMint creates a currency mint.
type InitializeMint struct {
	Mint      stake.Address
	Decimals  uint8
	Authority stake.Address
}

func (InitializeMint) Name() string { return "initialize-mint" }

func (ins InitializeMint) apply(s *state) error {
	m, err := s.mint(ins.Mint)
	if err != nil && err != ErrMintNotFound {
		return err
	}
	if m != nil {
		return ErrMintExists
	}
	return s.putMint(ins.Mint, &Mint{
		Decimals:  ins.Decimals,
		Authority: ins.Authority,
		Supply:    new(uint256.Int),
	})
}

// MintTo mints units into the holding of Owner, creating the holding if needed.
type MintTo struct {
	Mint      stake.Address
	Recipient stake.Address
	Owner     stake.Address
	Authority stake.Address
	Amount    *uint256.Int
}

func (MintTo) Name() string { return "mint-to" }

func (ins MintTo) apply(s *state) error {
	m, err := s.mint(ins.Mint)
	if err != nil {
		return err
	}
	if m.Authority.IsZero() || m.Authority != ins.Authority {
		return ErrAuthorityMismatch
	}
	h, err := s.ensureHolding(ins.Recipient, ins.Mint, ins.Owner)
	if err != nil {
		return err
	}
	if h.Frozen {
		return ErrFrozen
	}
	amount := ins.Amount
	if amount == nil {
		amount = new(uint256.Int)
	}
	supply, overflow := new(uint256.Int).AddOverflow(m.Supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	m.Supply = supply
	h.Amount = new(uint256.Int).Add(h.Amount, amount)
	if err := s.putMint(ins.Mint, m); err != nil {
		return err
	}
	return s.putHolding(ins.Recipient, h)
}

// MintAsset creates a single unit asset held by Owner in HoldingAddress(Owner, Asset).
type MintAsset struct {
	Asset stake.Address
	Owner stake.Address
}

func (MintAsset) Name() string { return "mint-asset" }

func (ins MintAsset) apply(s *state) error {
	m, err := s.mint(ins.Asset)
	if err != nil && err != ErrMintNotFound {
		return err
	}
	if m != nil {
		return ErrMintExists
	}
	if err := s.putMint(ins.Asset, &Mint{Supply: uint256.NewInt(1)}); err != nil {
		return err
	}
	return s.putHolding(stake.HoldingAddress(ins.Owner, ins.Asset), &Holding{
		Mint:   ins.Asset,
		Owner:  ins.Owner,
		Amount: uint256.NewInt(1),
	})
}

// Transfer moves units between two holdings of the same mint. The destination
// holding is created for ToOwner if absent.
type Transfer struct {
	From    stake.Address
	To      stake.Address
	Owner   stake.Address
	ToOwner stake.Address
	Amount  uint64
}

func (Transfer) Name() string { return "transfer" }

func (ins Transfer) apply(s *state) error {
	from, err := s.holding(ins.From)
	if err != nil {
		return err
	}
	if from.Owner != ins.Owner {
		return ErrOwnerMismatch
	}
	if from.Frozen {
		return ErrFrozen
	}
	amount := uint256.NewInt(ins.Amount)
	if from.Amount.Lt(amount) {
		return ErrInsufficient
	}
	if ins.From == ins.To {
		return nil
	}
	to, err := s.ensureHolding(ins.To, from.Mint, ins.ToOwner)
	if err != nil {
		return err
	}
	if to.Frozen {
		return ErrFrozen
	}
	from.Amount = new(uint256.Int).Sub(from.Amount, amount)
	if err := s.putHolding(ins.From, from); err != nil {
		return err
	}
	to.Amount = new(uint256.Int).Add(to.Amount, amount)
	return s.putHolding(ins.To, to)
}
