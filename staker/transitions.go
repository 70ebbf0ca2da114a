// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/custody"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/staker/reverts"
	"github.com/yashvikram30/staking/staker/userledger"
	"github.com/yashvikram30/staking/tokenprog"
)

// InitializePolicy creates the global policy administered by admin, together with its reward mint.
func (s *Staker) InitializePolicy(ctx context.Context, admin stake.Address, params policy.Params) (p *policy.Policy, err error) {
	logger.Debug("initializing policy", "admin", admin, "pointsPerLock", params.PointsPerLock,
		"maxLockedPerUser", params.MaxLockedPerUser, "lockDuration", params.LockDuration)
	defer func() { observe("initialize", err) }()

	tx := s.db.Begin()
	p, err = s.policyService.Initialize(tx, admin, params)
	if err != nil {
		tx.Rollback()
		logger.Info("initialize policy failed", "admin", admin, "error", err)
		return nil, err
	}

	instructions := []tokenprog.Instruction{
		tokenprog.InitializeMint{
			Mint:      p.RewardMint(),
			Decimals:  p.RewardDecimals(),
			Authority: s.policyService.Address(),
		},
	}
	entry := &logdb.Entry{Kind: logdb.KindInitialize, Participant: admin, Time: unix(s.now())}
	if err = s.commit(ctx, tx, instructions, entry); err != nil {
		logger.Info("initialize policy failed", "admin", admin, "error", err)
		return nil, err
	}

	logger.Info("initialized policy", "admin", admin, "rewardMint", p.RewardMint())
	return p, nil
}

// EnsureUser returns the participant's ledger, creating a zeroed one if absent.
func (s *Staker) EnsureUser(ctx context.Context, participant stake.Address) (l *userledger.Ledger, err error) {
	defer func() { observe("ensure-user", err) }()

	// a concurrent creation of the same ledger is the only conflict, the retry observes it
	for range 2 {
		tx := s.db.Begin()
		var created bool
		l, created, err = s.userService.Ensure(tx, participant)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if !created {
			tx.Rollback()
			return l, nil
		}
		entry := &logdb.Entry{Kind: logdb.KindUser, Participant: participant, Time: unix(s.now())}
		err = s.commit(ctx, tx, nil, entry)
		if errors.Is(err, records.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("created user ledger", "participant", participant)
		return l, nil
	}
	return nil, err
}

// LockIn places asset, a verified member of collection, in custody on behalf of caller.
func (s *Staker) LockIn(ctx context.Context, caller, asset, collection stake.Address) (rec *custody.Record, err error) {
	logger.Debug("locking asset", "caller", caller, "asset", asset, "collection", collection)
	defer func() { observe("lock", err) }()

	tx := s.db.Begin()
	rec, instructions, err := s.lockIn(ctx, tx, caller, asset, collection)
	if err != nil {
		tx.Rollback()
		logger.Info("lock asset failed", "caller", caller, "asset", asset, "error", err)
		return nil, err
	}

	entry := &logdb.Entry{Kind: logdb.KindLock, Participant: caller, Asset: &asset, Time: unix(s.now())}
	if err = s.commit(ctx, tx, instructions, entry); err != nil {
		logger.Info("lock asset failed", "caller", caller, "asset", asset, "error", err)
		return nil, err
	}
	metricLockedAssets().Add(1)

	logger.Info("locked asset", "caller", caller, "asset", asset)
	return rec, nil
}

func (s *Staker) lockIn(ctx context.Context, tx *records.Tx, caller, asset, collection stake.Address) (*custody.Record, []tokenprog.Instruction, error) {
	p, err := s.loadPolicy(tx)
	if err != nil {
		return nil, nil, err
	}

	verified, err := s.registry.IsVerifiedMember(ctx, asset, collection)
	if err != nil {
		return nil, nil, reverts.ExternalFailure(err)
	}
	if !verified {
		return nil, nil, reverts.ErrUnrecognizedAsset
	}

	ledger, _, err := s.userService.Ensure(tx, caller)
	if err != nil {
		return nil, nil, err
	}
	if !p.CanLock(ledger.LockedCount()) {
		return nil, nil, reverts.ErrStakeLimitExceeded
	}

	rec, err := s.custodyService.Lock(tx, caller, asset, s.now())
	if err != nil {
		return nil, nil, err
	}
	ledger.AddLocked()
	if err := s.userService.Save(tx, caller, ledger); err != nil {
		return nil, nil, err
	}

	holding := stake.HoldingAddress(caller, asset)
	delegate := s.custodyService.Delegate(asset)
	return rec, []tokenprog.Instruction{
		tokenprog.Approve{Holding: holding, Owner: caller, Delegate: delegate, Units: 1},
		tokenprog.FreezeDelegated{Delegate: delegate, Holding: holding, Asset: asset},
	}, nil
}

// Release returns a locked asset to caller, its owner, once the lock duration has elapsed.
func (s *Staker) Release(ctx context.Context, caller, asset stake.Address) (l *userledger.Ledger, err error) {
	logger.Debug("releasing asset", "caller", caller, "asset", asset)
	defer func() { observe("release", err) }()

	tx := s.db.Begin()
	l, credited, instructions, err := s.release(tx, caller, asset)
	if err != nil {
		tx.Rollback()
		logger.Info("release asset failed", "caller", caller, "asset", asset, "error", err)
		return nil, err
	}

	entry := &logdb.Entry{Kind: logdb.KindRelease, Participant: caller, Asset: &asset, Points: credited, Time: unix(s.now())}
	if err = s.commit(ctx, tx, instructions, entry); err != nil {
		logger.Info("release asset failed", "caller", caller, "asset", asset, "error", err)
		return nil, err
	}
	metricLockedAssets().Add(-1)

	logger.Info("released asset", "caller", caller, "asset", asset, "credited", credited)
	return l, nil
}

func (s *Staker) release(tx *records.Tx, caller, asset stake.Address) (*userledger.Ledger, uint64, []tokenprog.Instruction, error) {
	p, err := s.loadPolicy(tx)
	if err != nil {
		return nil, 0, nil, err
	}

	rec, err := s.custodyService.Get(tx, asset)
	if err != nil {
		return nil, 0, nil, err
	}
	if rec == nil {
		return nil, 0, nil, reverts.ErrNotLocked
	}
	if rec.Owner() != caller {
		return nil, 0, nil, reverts.ErrNotOwner
	}
	if !rec.Expired(s.now(), s.opts.DurationUnit, p.LockDuration()) {
		return nil, 0, nil, reverts.ErrLockNotExpired
	}

	if err := s.custodyService.Unlock(tx, asset); err != nil {
		return nil, 0, nil, err
	}
	ledger, _, err := s.userService.Ensure(tx, caller)
	if err != nil {
		return nil, 0, nil, err
	}
	ledger.RemoveLocked()

	var credited uint64
	if s.opts.Accrual == AccrualOnRelease {
		before := ledger.Points()
		ledger.AddPoints(uint64(p.PointsPerLock()))
		credited = ledger.Points() - before
	}
	if err := s.userService.Save(tx, caller, ledger); err != nil {
		return nil, 0, nil, err
	}

	holding := stake.HoldingAddress(caller, asset)
	delegate := s.custodyService.Delegate(asset)
	return ledger, credited, []tokenprog.Instruction{
		tokenprog.ThawDelegated{Delegate: delegate, Holding: holding, Asset: asset},
		tokenprog.Revoke{Holding: holding, Owner: caller},
	}, nil
}

// Claim converts the caller's points into reward units and zeroes the balance.
// It returns the minted amount in base units. Claiming zero points mints nothing.
func (s *Staker) Claim(ctx context.Context, caller stake.Address) (amount *uint256.Int, err error) {
	logger.Debug("claiming rewards", "caller", caller)
	defer func() { observe("claim", err) }()

	tx := s.db.Begin()
	p, err := s.loadPolicy(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	ledger, created, err := s.userService.Ensure(tx, caller)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	points := ledger.TakePoints()
	if points == 0 {
		if !created {
			tx.Rollback()
			return new(uint256.Int), nil
		}
		entry := &logdb.Entry{Kind: logdb.KindUser, Participant: caller, Time: unix(s.now())}
		if err = s.commit(ctx, tx, nil, entry); err != nil {
			return nil, err
		}
		return new(uint256.Int), nil
	}

	amount, err = rewardAmount(points, p.RewardDecimals())
	if err != nil {
		tx.Rollback()
		logger.Info("claim failed", "caller", caller, "points", points, "error", err)
		return nil, err
	}
	if err = s.userService.Save(tx, caller, ledger); err != nil {
		tx.Rollback()
		return nil, err
	}

	mint := p.RewardMint()
	instructions := []tokenprog.Instruction{
		tokenprog.MintTo{
			Mint:      mint,
			Recipient: stake.HoldingAddress(caller, mint),
			Owner:     caller,
			Authority: s.policyService.Address(),
			Amount:    amount,
		},
	}
	entry := &logdb.Entry{Kind: logdb.KindClaim, Participant: caller, Points: points, Amount: amount, Time: unix(s.now())}
	if err = s.commit(ctx, tx, instructions, entry); err != nil {
		logger.Info("claim failed", "caller", caller, "points", points, "error", err)
		return nil, err
	}

	logger.Info("claimed rewards", "caller", caller, "points", points, "amount", amount)
	return amount, nil
}

// Accrue credits points to a participant. Only the policy admin may call it.
func (s *Staker) Accrue(ctx context.Context, admin, participant stake.Address, points uint64) (l *userledger.Ledger, err error) {
	logger.Debug("accruing points", "admin", admin, "participant", participant, "points", points)
	defer func() { observe("accrue", err) }()

	tx := s.db.Begin()
	p, err := s.loadPolicy(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !p.IsAdmin(admin) {
		tx.Rollback()
		logger.Info("accrue failed", "admin", admin, "error", reverts.ErrUnauthorized)
		return nil, reverts.ErrUnauthorized
	}
	l, _, err = s.userService.Ensure(tx, participant)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	l.AddPoints(points)
	if err = s.userService.Save(tx, participant, l); err != nil {
		tx.Rollback()
		return nil, err
	}

	entry := &logdb.Entry{Kind: logdb.KindAccrue, Participant: participant, Points: points, Time: unix(s.now())}
	if err = s.commit(ctx, tx, nil, entry); err != nil {
		logger.Info("accrue failed", "participant", participant, "error", err)
		return nil, err
	}
	return l, nil
}
