// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokenprog is an in-process token program that performs the custody
// and minting commands issued by the staker. A batch of instructions is applied
// all or nothing.
package tokenprog

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/kv"
	"github.com/yashvikram30/staking/log"
	"github.com/yashvikram30/staking/stake"
)

var logger = log.WithContext("pkg", "tokenprog")

const bucket = kv.Bucket("tokenprog/")

type Program struct {
	store kv.Store
	mu    sync.Mutex
}

// New creates a program persisting its accounts in store.
func New(store kv.Store) *Program {
	return &Program{store: bucket.NewStore(store)}
}

// Execute applies the instructions in order. If any fails, none take effect.
func (p *Program) Execute(ctx context.Context, instructions ...Instruction) error {
	batch := p.store.NewBatch()
	done, err := p.stage(ctx, batch, instructions)
	if err != nil {
		return err
	}
	defer done()

	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write accounts")
	}
	return nil
}

// Stage applies the instructions like Execute but puts the resulting account
// writes into w, a batch of the store the program was created on, instead of
// writing them. The program stays locked until done is called, which the
// caller does once w is written or discarded. On error nothing is staged and
// the program is left unlocked.
func (p *Program) Stage(ctx context.Context, w kv.Putter, instructions ...Instruction) (done func(), err error) {
	return p.stage(ctx, bucket.NewPutter(w), instructions)
}

func (p *Program) stage(ctx context.Context, w kv.Putter, instructions []Instruction) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	s := newState(p.store)
	for i, ins := range instructions {
		if err := ins.apply(s); err != nil {
			p.mu.Unlock()
			logger.Debug("instruction failed", "index", i, "name", ins.Name(), "error", err)
			return nil, errors.Wrapf(err, "instruction %d (%s)", i, ins.Name())
		}
	}
	if err := s.flush(w); err != nil {
		p.mu.Unlock()
		return nil, errors.Wrap(err, "stage accounts")
	}
	logger.Trace("staged instructions", "count", len(instructions))
	return p.mu.Unlock, nil
}

// Mint returns the mint at addr, or nil if absent.
func (p *Program) Mint(addr stake.Address) (*Mint, error) {
	m, err := newState(p.store).mint(addr)
	if err == ErrMintNotFound {
		return nil, nil
	}
	return m, err
}

// Holding returns the holding at addr, or nil if absent.
func (p *Program) Holding(addr stake.Address) (*Holding, error) {
	h, err := newState(p.store).holding(addr)
	if err == ErrHoldingNotFound {
		return nil, nil
	}
	return h, err
}
