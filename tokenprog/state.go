// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokenprog

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/kv"
	"github.com/yashvikram30/staking/stake"
)

const (
	prefixMint    = 'm'
	prefixHolding = 'h'
)

func mintKey(a stake.Address) []byte    { return append([]byte{prefixMint}, a[:]...) }
func holdingKey(a stake.Address) []byte { return append([]byte{prefixHolding}, a[:]...) }

// state overlays staged writes on top of the stored accounts.
type state struct {
	getter kv.Getter
	dirty  map[string][]byte
	order  []string
}

func newState(getter kv.Getter) *state {
	return &state{getter: getter, dirty: make(map[string][]byte)}
}

func (s *state) load(key []byte, val any) (bool, error) {
	data, ok := s.dirty[string(key)]
	if !ok {
		var err error
		data, err = s.getter.Get(key)
		if err != nil {
			if s.getter.IsNotFound(err) {
				return false, nil
			}
			return false, errors.Wrap(err, "load account")
		}
	}
	if err := rlp.DecodeBytes(data, val); err != nil {
		return false, errors.Wrap(err, "decode account")
	}
	return true, nil
}

func (s *state) store(key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrap(err, "encode account")
	}
	k := string(key)
	if _, ok := s.dirty[k]; !ok {
		s.order = append(s.order, k)
	}
	s.dirty[k] = data
	return nil
}

func (s *state) mint(addr stake.Address) (*Mint, error) {
	var m Mint
	found, err := s.load(mintKey(addr), &m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrMintNotFound
	}
	return &m, nil
}

func (s *state) putMint(addr stake.Address, m *Mint) error {
	return s.store(mintKey(addr), m)
}

func (s *state) holding(addr stake.Address) (*Holding, error) {
	var h Holding
	found, err := s.load(holdingKey(addr), &h)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrHoldingNotFound
	}
	return &h, nil
}

// delegated returns the holding of asset whose authority is delegated to delegate.
func (s *state) delegated(addr, delegate, asset stake.Address) (*Holding, error) {
	h, err := s.holding(addr)
	if err != nil {
		return nil, err
	}
	if h.Mint != asset {
		return nil, ErrMintMismatch
	}
	if !h.HasDelegate() || h.Delegate != delegate {
		return nil, ErrDelegateMismatch
	}
	return h, nil
}

func (s *state) ensureHolding(addr, mint, owner stake.Address) (*Holding, error) {
	h, err := s.holding(addr)
	if err == ErrHoldingNotFound {
		return &Holding{Mint: mint, Owner: owner, Amount: new(uint256.Int)}, nil
	}
	if err != nil {
		return nil, err
	}
	if h.Mint != mint {
		return nil, ErrMintMismatch
	}
	return h, nil
}

func (s *state) putHolding(addr stake.Address, h *Holding) error {
	return s.store(holdingKey(addr), h)
}

func (s *state) flush(batch kv.Putter) error {
	for _, k := range s.order {
		if err := batch.Put([]byte(k), s.dirty[k]); err != nil {
			return err
		}
	}
	return nil
}
