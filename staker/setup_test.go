// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/yashvikram30/staking/kv"
	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/lvldb"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/registry"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/tokenprog"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// flakyProgram fails every Stage while fail is set.
type flakyProgram struct {
	TokenProgram
	fail  atomic.Bool
	calls atomic.Int32
}

func (f *flakyProgram) Stage(ctx context.Context, w kv.Putter, instructions ...tokenprog.Instruction) (func(), error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("program unavailable")
	}
	return f.TokenProgram.Stage(ctx, w, instructions...)
}

// brokenStore fails every batch write while broken is set.
type brokenStore struct {
	kv.Store
	broken atomic.Bool
}

func (s *brokenStore) NewBatch() kv.Batch {
	b := s.Store.NewBatch()
	return &struct {
		kv.Putter
		kv.LenFunc
		kv.WriteFunc
	}{
		b,
		b.Len,
		func() error {
			if s.broken.Load() {
				return errors.New("disk full")
			}
			return b.Write()
		},
	}
}

type testEnv struct {
	t          *testing.T
	ctx        context.Context
	store      kv.Store
	staker     *Staker
	program    *tokenprog.Program
	flaky      *flakyProgram
	registry   *registry.Registry
	clock      *clock
	logDB      *logdb.LogDB
	admin      stake.Address
	collection stake.Address
}

func newTestEnv(t *testing.T, configure ...func(*Options)) *testEnv {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	program := tokenprog.New(store)
	flaky := &flakyProgram{TokenProgram: program}
	reg := registry.New()
	clk := &clock{now: time.Unix(1_700_000_000, 0)}

	opts := Options{Now: clk.Now, Sink: logDB}
	for _, c := range configure {
		c(&opts)
	}
	s, err := New(records.New(store), flaky, reg, opts)
	require.NoError(t, err)

	return &testEnv{
		t:          t,
		ctx:        context.Background(),
		store:      store,
		staker:     s,
		program:    program,
		flaky:      flaky,
		registry:   reg,
		clock:      clk,
		logDB:      logDB,
		admin:      stake.BytesToAddress([]byte("admin")),
		collection: stake.BytesToAddress([]byte("collection")),
	}
}

func (e *testEnv) initialize(maxLocked, duration uint32) *policy.Policy {
	p, err := e.staker.InitializePolicy(e.ctx, e.admin, policy.Params{
		PointsPerLock:    10,
		MaxLockedPerUser: maxLocked,
		LockDuration:     duration,
	})
	require.NoError(e.t, err)
	return p
}

// asset mints a verified collection member held by owner.
func (e *testEnv) asset(owner stake.Address, name string) stake.Address {
	id := stake.Blake2b([]byte("asset"), []byte(name))
	e.registry.Register(id, e.collection, true)
	require.NoError(e.t, e.program.Execute(e.ctx, tokenprog.MintAsset{Asset: id, Owner: owner}))
	return id
}

func (e *testEnv) holding(owner, asset stake.Address) *tokenprog.Holding {
	h, err := e.program.Holding(stake.HoldingAddress(owner, asset))
	require.NoError(e.t, err)
	require.NotNil(e.t, h)
	return h
}

func (e *testEnv) lockedCount(p stake.Address) uint32 {
	l, err := e.staker.User(p)
	require.NoError(e.t, err)
	if l == nil {
		return 0
	}
	return l.LockedCount()
}

func (e *testEnv) days(n int) {
	e.clock.Advance(time.Duration(n) * DefaultDurationUnit)
}

func participant(name string) stake.Address {
	return stake.BytesToAddress([]byte(name))
}
