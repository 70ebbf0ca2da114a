// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/kv"
	"github.com/yashvikram30/staking/log"
	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/metrics"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker/custody"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/staker/reverts"
	"github.com/yashvikram30/staking/staker/userledger"
	"github.com/yashvikram30/staking/tokenprog"
)

var (
	logger = log.WithContext("pkg", "staker")

	metricTransitions  = metrics.LazyCounterVec("staker_transitions_count", []string{"op", "result"})
	metricLockedAssets = metrics.LazyGauge("staker_locked_assets")
)

// DefaultDurationUnit is one day.
const DefaultDurationUnit = 24 * time.Hour

// TokenProgram stages custody and mint instructions all or nothing into the
// record store's commit batch. It must persist to the same store as the records.
type TokenProgram interface {
	Stage(ctx context.Context, w kv.Putter, instructions ...tokenprog.Instruction) (done func(), err error)
}

// Registry verifies that an asset is an authentic member of a collection.
type Registry interface {
	IsVerifiedMember(ctx context.Context, asset, collection stake.Address) (bool, error)
}

// EventSink receives an entry for every committed transition.
type EventSink interface {
	Append(ctx context.Context, entries ...*logdb.Entry) error
}

// Sinks forwards entries to every sink in order. All sinks are tried, the
// first failure is returned.
type Sinks []EventSink

func (s Sinks) Append(ctx context.Context, entries ...*logdb.Entry) error {
	var first error
	for _, sink := range s {
		if err := sink.Append(ctx, entries...); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Accrual selects how points are earned.
type Accrual uint8

const (
	// AccrualExternal leaves accrual to an external process calling Accrue.
	AccrualExternal Accrual = iota
	// AccrualOnRelease credits points_per_lock on every successful release.
	AccrualOnRelease
)

func (a Accrual) String() string {
	switch a {
	case AccrualExternal:
		return "external"
	case AccrualOnRelease:
		return "on-release"
	}
	return "unknown"
}

// ParseAccrual parses "external" or "on-release".
func ParseAccrual(s string) (Accrual, error) {
	switch strings.ToLower(s) {
	case "", "external":
		return AccrualExternal, nil
	case "on-release":
		return AccrualOnRelease, nil
	}
	return 0, errors.Errorf("unknown accrual mode %q", s)
}

// Options configures a Staker. The zero value selects one day units, external
// accrual, the wall clock and no event sink.
type Options struct {
	DurationUnit time.Duration // length of one lock duration unit, whole seconds
	Accrual      Accrual
	Now          func() time.Time
	Sink         EventSink
}

// Staker drives the staking state machine over the record store.
type Staker struct {
	db       *records.DB
	program  TokenProgram
	registry Registry
	opts     Options

	policyService  *policy.Service
	userService    *userledger.Service
	custodyService *custody.Service
}

// New creates a staker. Zero options take their defaults.
func New(db *records.DB, program TokenProgram, registry Registry, opts Options) (*Staker, error) {
	if opts.DurationUnit == 0 {
		opts.DurationUnit = DefaultDurationUnit
	}
	if opts.DurationUnit < time.Second || opts.DurationUnit%time.Second != 0 {
		return nil, errors.Errorf("duration unit %v is not a whole number of seconds", opts.DurationUnit)
	}
	if opts.Accrual > AccrualOnRelease {
		return nil, errors.Errorf("unknown accrual mode %d", opts.Accrual)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	policyService := policy.New()
	return &Staker{
		db:             db,
		program:        program,
		registry:       registry,
		opts:           opts,
		policyService:  policyService,
		userService:    userledger.New(),
		custodyService: custody.New(policyService.Address()),
	}, nil
}

// Options returns the effective options.
func (s *Staker) Options() Options {
	return s.opts
}

//
// Getters - no state change
//

// Policy returns the global policy.
func (s *Staker) Policy() (*policy.Policy, error) {
	tx := s.db.Begin()
	defer tx.Rollback()

	p, err := s.policyService.Get(tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, reverts.ErrNotInitialized
	}
	return p, nil
}

// User returns the ledger of a participant, or nil if the participant never interacted.
func (s *Staker) User(participant stake.Address) (*userledger.Ledger, error) {
	tx := s.db.Begin()
	defer tx.Rollback()
	return s.userService.Get(tx, participant)
}

// Custody returns the custody record of an asset, or nil if the asset is not locked.
func (s *Staker) Custody(asset stake.Address) (*custody.Record, error) {
	tx := s.db.Begin()
	defer tx.Rollback()
	return s.custodyService.Get(tx, asset)
}

// Delegate returns the identity holding transfer authority over a locked asset.
func (s *Staker) Delegate(asset stake.Address) stake.Address {
	return s.custodyService.Delegate(asset)
}

// PolicyAddress returns the signing authority of the reward mint.
func (s *Staker) PolicyAddress() stake.Address {
	return s.policyService.Address()
}

// commit commits tx and the instructions' writes in one batch, then reports entries.
func (s *Staker) commit(ctx context.Context, tx *records.Tx, instructions []tokenprog.Instruction, entries ...*logdb.Entry) error {
	var (
		hook func(kv.Putter) error
		done func()
	)
	if len(instructions) > 0 {
		hook = func(w kv.Putter) (err error) {
			if done, err = s.program.Stage(ctx, w, instructions...); err != nil {
				return reverts.ExternalFailure(err)
			}
			return nil
		}
	}
	err := tx.Commit(hook)
	if done != nil {
		done()
	}
	if err != nil {
		return err
	}
	s.report(entries)
	return nil
}

func (s *Staker) report(entries []*logdb.Entry) {
	if s.opts.Sink == nil || len(entries) == 0 {
		return
	}
	// the transition is committed, a lost entry must not fail it
	if err := s.opts.Sink.Append(context.Background(), entries...); err != nil {
		logger.Warn("failed to append activity", "kind", entries[0].Kind, "error", err)
	}
}

func (s *Staker) loadPolicy(tx *records.Tx) (*policy.Policy, error) {
	p, err := s.policyService.Get(tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, reverts.ErrNotInitialized
	}
	return p, nil
}

func (s *Staker) now() time.Time {
	return s.opts.Now()
}

func unix(t time.Time) uint64 {
	if ts := t.Unix(); ts > 0 {
		return uint64(ts)
	}
	return 0
}

func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case reverts.IsRevertErr(err):
		result = reverts.KindOf(err).String()
	case errors.Is(err, records.ErrConflict):
		result = "Conflict"
	case errors.Is(err, records.ErrStorage):
		result = "StorageExhausted"
	default:
		result = "error"
	}
	metricTransitions().AddWithLabel(1, map[string]string{"op": op, "result": result})
}
