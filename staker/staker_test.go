// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/staker/reverts"
)

func TestNewOptions(t *testing.T) {
	s, err := New(nil, nil, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDurationUnit, s.Options().DurationUnit)
	assert.Equal(t, AccrualExternal, s.Options().Accrual)
	assert.NotNil(t, s.Options().Now)

	_, err = New(nil, nil, nil, Options{DurationUnit: 1500 * time.Millisecond})
	assert.Error(t, err)
	_, err = New(nil, nil, nil, Options{DurationUnit: time.Millisecond})
	assert.Error(t, err)
	_, err = New(nil, nil, nil, Options{Accrual: Accrual(9)})
	assert.Error(t, err)
}

func TestParseAccrual(t *testing.T) {
	a, err := ParseAccrual("on-release")
	require.NoError(t, err)
	assert.Equal(t, AccrualOnRelease, a)
	assert.Equal(t, "on-release", a.String())

	a, err = ParseAccrual("")
	require.NoError(t, err)
	assert.Equal(t, AccrualExternal, a)

	_, err = ParseAccrual("weekly")
	assert.Error(t, err)
}

func TestInitializePolicy(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.staker.Policy()
	assert.Equal(t, reverts.ErrNotInitialized, err)

	p := env.initialize(3, 7)
	assert.Equal(t, env.admin, p.Admin())
	assert.Equal(t, uint32(3), p.MaxLockedPerUser())
	assert.Equal(t, uint32(7), p.LockDuration())

	got, err := env.staker.Policy()
	require.NoError(t, err)
	assert.Equal(t, p, got)

	mint, err := env.program.Mint(p.RewardMint())
	require.NoError(t, err)
	require.NotNil(t, mint)
	assert.Equal(t, uint8(6), mint.Decimals)
	assert.Equal(t, env.staker.PolicyAddress(), mint.Authority)

	_, err = env.staker.InitializePolicy(env.ctx, participant("other"), policy.Params{MaxLockedPerUser: 1})
	assert.True(t, errors.Is(err, reverts.ErrAlreadyInitialized))

	got, err = env.staker.Policy()
	require.NoError(t, err)
	assert.Equal(t, env.admin, got.Admin())
}

func TestInitializePolicyInvalid(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.staker.InitializePolicy(env.ctx, env.admin, policy.Params{MaxLockedPerUser: 0})
	assert.Equal(t, reverts.ErrInvalidPolicy, err)

	_, err = env.staker.Policy()
	assert.Equal(t, reverts.ErrNotInitialized, err)
}

func TestInitializePolicyMintFailure(t *testing.T) {
	env := newTestEnv(t)
	env.flaky.fail.Store(true)

	_, err := env.staker.InitializePolicy(env.ctx, env.admin, policy.Params{MaxLockedPerUser: 1})
	assert.True(t, errors.Is(err, reverts.ErrExternalCommandFailed))

	_, err = env.staker.Policy()
	assert.Equal(t, reverts.ErrNotInitialized, err)

	env.flaky.fail.Store(false)
	env.initialize(1, 0)
}

func TestEnsureUser(t *testing.T) {
	env := newTestEnv(t)
	u := participant("alice")

	l, err := env.staker.User(u)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = env.staker.EnsureUser(env.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.Points())
	assert.Equal(t, uint32(0), l.LockedCount())

	l, err = env.staker.EnsureUser(env.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.Points())

	kind := logdb.KindUser
	entries, err := env.logDB.Filter(env.ctx, &logdb.Filter{Kind: &kind})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRequiresPolicy(t *testing.T) {
	env := newTestEnv(t)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	assert.Equal(t, reverts.ErrNotInitialized, err)
	_, err = env.staker.Release(env.ctx, u, a)
	assert.Equal(t, reverts.ErrNotInitialized, err)
	_, err = env.staker.Claim(env.ctx, u)
	assert.Equal(t, reverts.ErrNotInitialized, err)
	_, err = env.staker.Accrue(env.ctx, env.admin, u, 1)
	assert.Equal(t, reverts.ErrNotInitialized, err)
}

func TestLockInPreconditionOrder(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(1, 0)
	u, v := participant("alice"), participant("bob")
	a := env.asset(u, "a")
	b := env.asset(u, "b")

	// unverified membership wins over everything
	forged := stake.BytesToAddress([]byte("forged"))
	_, err := env.staker.LockIn(env.ctx, u, forged, env.collection)
	assert.Equal(t, reverts.ErrUnrecognizedAsset, err)
	_, err = env.staker.LockIn(env.ctx, u, a, stake.Address{})
	assert.Equal(t, reverts.ErrUnrecognizedAsset, err)

	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)

	// at the limit, the limit is reported before the duplicate
	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	assert.Equal(t, reverts.ErrStakeLimitExceeded, err)
	_, err = env.staker.LockIn(env.ctx, u, b, env.collection)
	assert.Equal(t, reverts.ErrStakeLimitExceeded, err)

	// a different caller below the limit sees the live record
	_, err = env.staker.LockIn(env.ctx, v, a, env.collection)
	assert.Equal(t, reverts.ErrAlreadyLocked, err)
	assert.Equal(t, uint32(0), env.lockedCount(v))
}

func TestLockInIssuesCustodyCommands(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 5)
	u := participant("alice")
	a := env.asset(u, "a")

	rec, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
	assert.Equal(t, u, rec.Owner())
	assert.Equal(t, a, rec.Asset())
	assert.Equal(t, env.clock.Now(), rec.LockedAt())

	h := env.holding(u, a)
	assert.True(t, h.Frozen)
	assert.Equal(t, env.staker.Delegate(a), h.Delegate)
	assert.Equal(t, uint64(1), h.Delegated)

	got, err := env.staker.Custody(a)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, uint32(1), env.lockedCount(u))

	l, err := env.staker.User(u)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.Points(), "no points at lock-in")
}

func TestLockInExternalFailure(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u, v := participant("alice"), participant("bob")
	a := env.asset(u, "a")

	// v does not hold a, the program refuses to delegate
	_, err := env.staker.LockIn(env.ctx, v, a, env.collection)
	assert.True(t, errors.Is(err, reverts.ErrExternalCommandFailed))
	assert.Equal(t, reverts.KindExternalCommandFailed, reverts.KindOf(err))

	rec, err := env.staker.Custody(a)
	require.NoError(t, err)
	assert.Nil(t, rec)
	l, err := env.staker.User(v)
	require.NoError(t, err)
	assert.Nil(t, l, "failed transition writes nothing")

	env.flaky.fail.Store(true)
	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	assert.True(t, errors.Is(err, reverts.ErrExternalCommandFailed))
	assert.False(t, env.holding(u, a).Frozen)
	assert.Equal(t, uint32(0), env.lockedCount(u))
}

func TestLockInStorageFailureWritesNoInstructions(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u := participant("alice")
	a := env.asset(u, "a")

	store := &brokenStore{Store: env.store}
	env.staker.db = records.New(store)
	store.broken.Store(true)

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	assert.True(t, errors.Is(err, records.ErrStorage), "got %v", err)

	// custody commands and records share the failed batch
	h := env.holding(u, a)
	assert.False(t, h.Frozen)
	assert.False(t, h.HasDelegate())
	rec, err := env.staker.Custody(a)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, uint32(0), env.lockedCount(u))

	store.broken.Store(false)
	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
	assert.True(t, env.holding(u, a).Frozen)
	assert.Equal(t, uint32(1), env.lockedCount(u))
}

type failingRegistry struct{}

func (failingRegistry) IsVerifiedMember(_ context.Context, _, _ stake.Address) (bool, error) {
	return false, errors.New("registry offline")
}

func TestLockInRegistryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	env.staker.registry = failingRegistry{}
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	assert.True(t, errors.Is(err, reverts.ErrExternalCommandFailed))
	assert.Contains(t, err.Error(), "registry offline")
}

func TestReleasePreconditions(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 5)
	u, v := participant("alice"), participant("bob")
	a := env.asset(u, "a")

	_, err := env.staker.Release(env.ctx, u, a)
	assert.Equal(t, reverts.ErrNotLocked, err)

	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)

	// ownership is checked before expiry
	_, err = env.staker.Release(env.ctx, v, a)
	assert.Equal(t, reverts.ErrNotOwner, err)

	_, err = env.staker.Release(env.ctx, u, a)
	assert.Equal(t, reverts.ErrLockNotExpired, err)

	env.days(5)
	_, err = env.staker.Release(env.ctx, v, a)
	assert.Equal(t, reverts.ErrNotOwner, err)

	rec, err := env.staker.Custody(a)
	require.NoError(t, err)
	assert.Equal(t, u, rec.Owner())
	assert.Equal(t, uint32(1), env.lockedCount(u))
	assert.True(t, env.holding(u, a).Frozen)
}

func TestReleaseBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 5)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)

	// a partial unit does not count
	env.clock.Advance(5*DefaultDurationUnit - time.Second)
	_, err = env.staker.Release(env.ctx, u, a)
	assert.Equal(t, reverts.ErrLockNotExpired, err)

	env.clock.Advance(time.Second)
	_, err = env.staker.Release(env.ctx, u, a)
	require.NoError(t, err)
}

func TestReleaseClockBeforeLock(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 1)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
	env.days(-3)
	_, err = env.staker.Release(env.ctx, u, a)
	assert.Equal(t, reverts.ErrLockNotExpired, err)
}

func TestRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 5)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
	before := env.lockedCount(u)

	env.days(5)
	l, err := env.staker.Release(env.ctx, u, a)
	require.NoError(t, err)
	assert.Equal(t, before-1, l.LockedCount())
	assert.Equal(t, uint64(0), l.Points(), "external accrual credits nothing on release")

	rec, err := env.staker.Custody(a)
	require.NoError(t, err)
	assert.Nil(t, rec)

	h := env.holding(u, a)
	assert.False(t, h.Frozen)
	assert.False(t, h.HasDelegate())

	_, err = env.staker.Release(env.ctx, u, a)
	assert.Equal(t, reverts.ErrNotLocked, err)
	assert.Equal(t, before-1, env.lockedCount(u))

	// the asset can be locked again
	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
}

func TestReleaseExternalFailure(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)

	env.flaky.fail.Store(true)
	_, err = env.staker.Release(env.ctx, u, a)
	assert.True(t, errors.Is(err, reverts.ErrExternalCommandFailed))

	rec, err := env.staker.Custody(a)
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, uint32(1), env.lockedCount(u))
	assert.True(t, env.holding(u, a).Frozen)
}

func TestAccrualOnRelease(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Accrual = AccrualOnRelease })
	env.initialize(2, 1)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
	env.days(1)
	l, err := env.staker.Release(env.ctx, u, a)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), l.Points())

	kind := logdb.KindRelease
	entries, err := env.logDB.Filter(env.ctx, &logdb.Filter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(10), entries[0].Points)
}

func TestClaim(t *testing.T) {
	env := newTestEnv(t)
	p := env.initialize(2, 0)
	u := participant("alice")

	l, err := env.staker.Accrue(env.ctx, env.admin, u, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), l.Points())

	calls := env.flaky.calls.Load()
	amount, err := env.staker.Claim(env.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42_000_000), amount)
	assert.Equal(t, calls+1, env.flaky.calls.Load())

	h := env.holding(u, p.RewardMint())
	assert.Equal(t, uint256.NewInt(42_000_000), h.Amount)

	l, err = env.staker.User(u)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.Points())

	// the second claim is a no-op
	amount, err = env.staker.Claim(env.ctx, u)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Equal(t, calls+1, env.flaky.calls.Load())
	assert.Equal(t, uint256.NewInt(42_000_000), env.holding(u, p.RewardMint()).Amount)

	kind := logdb.KindClaim
	entries, err := env.logDB.Filter(env.ctx, &logdb.Filter{Participant: &u, Kind: &kind})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(42), entries[0].Points)
	assert.Equal(t, uint256.NewInt(42_000_000), entries[0].Amount)
}

func TestClaimCreatesLedger(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u := participant("alice")

	amount, err := env.staker.Claim(env.ctx, u)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	l, err := env.staker.User(u)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, uint64(0), l.Points())
}

func TestClaimMintFailureKeepsPoints(t *testing.T) {
	env := newTestEnv(t)
	p := env.initialize(2, 0)
	u := participant("alice")
	_, err := env.staker.Accrue(env.ctx, env.admin, u, 5)
	require.NoError(t, err)

	env.flaky.fail.Store(true)
	_, err = env.staker.Claim(env.ctx, u)
	assert.True(t, errors.Is(err, reverts.ErrExternalCommandFailed))

	l, err := env.staker.User(u)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), l.Points())
	h, err := env.program.Holding(stake.HoldingAddress(u, p.RewardMint()))
	require.NoError(t, err)
	assert.Nil(t, h)

	env.flaky.fail.Store(false)
	amount, err := env.staker.Claim(env.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(5_000_000), amount)
}

func TestAccrue(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u := participant("alice")

	_, err := env.staker.Accrue(env.ctx, u, u, 100)
	assert.Equal(t, reverts.ErrUnauthorized, err)
	l, err := env.staker.User(u)
	require.NoError(t, err)
	assert.Nil(t, l)

	_, err = env.staker.Accrue(env.ctx, env.admin, u, math.MaxUint64)
	require.NoError(t, err)
	l, err = env.staker.Accrue(env.ctx, env.admin, u, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), l.Points(), "points saturate")

	_, err = env.staker.Claim(env.ctx, u)
	require.NoError(t, err, "max points fit in 256 bits at six decimals")
}

func TestRewardAmount(t *testing.T) {
	amount, err := rewardAmount(3, 6)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3_000_000), amount)

	amount, err = rewardAmount(7, 0)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(7), amount)

	amount, err = rewardAmount(0, 200)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	_, err = rewardAmount(1, 78)
	assert.Equal(t, reverts.ErrRewardOverflow, err)
}

func TestConflictIsSurfaced(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u := participant("alice")
	a := env.asset(u, "a")

	// a stale transaction on the same custody record loses
	tx := env.staker.db.Begin()
	_, _, err := env.staker.lockIn(env.ctx, tx, u, a, env.collection)
	require.NoError(t, err)

	_, err = env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)

	assert.Equal(t, records.ErrConflict, tx.Commit(nil))
	assert.Equal(t, uint32(1), env.lockedCount(u))
}

func TestActivityLog(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(2, 0)
	u := participant("alice")
	a := env.asset(u, "a")

	_, err := env.staker.LockIn(env.ctx, u, a, env.collection)
	require.NoError(t, err)
	_, err = env.staker.Release(env.ctx, u, a)
	require.NoError(t, err)
	_, err = env.staker.Release(env.ctx, u, a)
	require.Error(t, err)

	entries, err := env.logDB.Filter(env.ctx, &logdb.Filter{Asset: &a})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, logdb.KindLock, entries[0].Kind)
	assert.Equal(t, logdb.KindRelease, entries[1].Kind)
	assert.Equal(t, u, entries[1].Participant)
}

type recordingSink struct {
	entries []*logdb.Entry
	err     error
}

func (r *recordingSink) Append(_ context.Context, entries ...*logdb.Entry) error {
	r.entries = append(r.entries, entries...)
	return r.err
}

func TestSinks(t *testing.T) {
	failing := &recordingSink{err: errors.New("disk full")}
	ok := &recordingSink{}
	sinks := Sinks{failing, ok}

	e := &logdb.Entry{Kind: logdb.KindUser}
	assert.EqualError(t, sinks.Append(context.Background(), e), "disk full")
	assert.Len(t, failing.entries, 1)
	assert.Len(t, ok.entries, 1)

	assert.NoError(t, Sinks{ok}.Append(context.Background(), e))
	assert.NoError(t, Sinks(nil).Append(context.Background(), e))
}

func TestSinkFailureDoesNotFailTransition(t *testing.T) {
	sink := &recordingSink{err: errors.New("unavailable")}
	env := newTestEnv(t, func(o *Options) { o.Sink = sink })

	env.initialize(1, 0)
	_, err := env.staker.EnsureUser(env.ctx, participant("bob"))
	require.NoError(t, err)
	assert.Len(t, sink.entries, 2)
}
