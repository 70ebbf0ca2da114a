// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/api/utils"
	"github.com/yashvikram30/staking/cache"
	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/staker/reverts"
	"github.com/yashvikram30/staking/tokenprog"
)

const defaultReplayCacheSize = 65536

// Balances reads token program holdings.
type Balances interface {
	Holding(addr stake.Address) (*tokenprog.Holding, error)
}

type Staking struct {
	staker   *staker.Staker
	balances Balances
	logDB    *logdb.LogDB
	replay   *cache.Expiring
	limit    uint64
	now      func() time.Time
}

// New creates the staking handlers. balances and logDB may be nil.
func New(s *staker.Staker, balances Balances, logDB *logdb.LogDB, replayCacheSize int, limit uint64) *Staking {
	if replayCacheSize <= 0 {
		replayCacheSize = defaultReplayCacheSize
	}
	replay, _ := cache.NewExpiring(replayCacheSize)
	return &Staking{
		staker:   s,
		balances: balances,
		logDB:    logDB,
		replay:   replay,
		limit:    limit,
		now:      time.Now,
	}
}

// failure maps transition errors onto http errors.
func failure(err error) error {
	switch reverts.KindOf(err) {
	case reverts.KindInvalidPolicy, reverts.KindUnrecognizedAsset, reverts.KindRewardOverflow:
		return utils.BadRequest(err)
	case reverts.KindNotOwner, reverts.KindUnauthorized:
		return utils.Forbidden(err)
	case reverts.KindNotInitialized, reverts.KindNotLocked:
		return utils.NotFound(err)
	case reverts.KindAlreadyInitialized, reverts.KindAlreadyLocked, reverts.KindStakeLimitExceeded, reverts.KindLockNotExpired:
		return utils.Conflict(err)
	}
	if errors.Is(err, records.ErrConflict) {
		return utils.Conflict(err)
	}
	return err
}

// open verifies a signed request for op, rejecting replays, and decodes its payload into v.
func (s *Staking) open(req *http.Request, op string, v any) (stake.Address, error) {
	var env Envelope
	if err := utils.ParseJSON(req.Body, &env); err != nil {
		return stake.Address{}, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := env.verify(op, s.now(), v); err != nil {
		return stake.Address{}, err
	}
	switch err := s.replay.Mark(env.id(op), env.Expiry, uint64(s.now().Unix())); err {
	case nil:
	case cache.ErrSeen:
		return stake.Address{}, utils.Conflict(errors.New("envelope already used"))
	case cache.ErrFull:
		return stake.Address{}, utils.HTTPError(errors.New("too many pending envelopes, retry later"), http.StatusServiceUnavailable)
	default:
		return stake.Address{}, err
	}
	return env.Caller, nil
}

func (s *Staking) handleGetPolicy(w http.ResponseWriter, _ *http.Request) error {
	p, err := s.staker.Policy()
	if err != nil {
		return failure(err)
	}
	return utils.WriteJSON(w, convertPolicy(p))
}

func (s *Staking) handleInitializePolicy(w http.ResponseWriter, req *http.Request) error {
	var body InitializePolicy
	caller, err := s.open(req, "policy", &body)
	if err != nil {
		return err
	}
	p, err := s.staker.InitializePolicy(req.Context(), caller, policy.Params{
		PointsPerLock:    body.PointsPerLock,
		MaxLockedPerUser: body.MaxLockedPerUser,
		LockDuration:     body.LockDuration,
	})
	if err != nil {
		return failure(err)
	}
	return utils.WriteJSON(w, convertPolicy(p))
}

func (s *Staking) rewardBalance(addr stake.Address) (*uint256.Int, error) {
	if s.balances == nil {
		return nil, nil
	}
	p, err := s.staker.Policy()
	if err != nil {
		if errors.Is(err, reverts.ErrNotInitialized) {
			return nil, nil
		}
		return nil, err
	}
	h, err := s.balances.Holding(stake.HoldingAddress(addr, p.RewardMint()))
	if err != nil || h == nil {
		return nil, err
	}
	return h.Amount, nil
}

func (s *Staking) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	addr, err := stake.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	l, err := s.staker.User(addr)
	if err != nil {
		return err
	}
	balance, err := s.rewardBalance(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertUser(addr, l, balance))
}

func (s *Staking) handleEnsureUser(w http.ResponseWriter, req *http.Request) error {
	var body Empty
	caller, err := s.open(req, "user", &body)
	if err != nil {
		return err
	}
	l, err := s.staker.EnsureUser(req.Context(), caller)
	if err != nil {
		return failure(err)
	}
	balance, err := s.rewardBalance(caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertUser(caller, l, balance))
}

func (s *Staking) handleGetCustody(w http.ResponseWriter, req *http.Request) error {
	asset, err := stake.ParseAddress(mux.Vars(req)["asset"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	rec, err := s.staker.Custody(asset)
	if err != nil {
		return err
	}
	if rec == nil {
		return utils.NotFound(reverts.ErrNotLocked)
	}
	return utils.WriteJSON(w, convertCustody(rec, s.staker.Delegate(asset)))
}

func (s *Staking) handleLock(w http.ResponseWriter, req *http.Request) error {
	var body Lock
	caller, err := s.open(req, "lock", &body)
	if err != nil {
		return err
	}
	rec, err := s.staker.LockIn(req.Context(), caller, body.Asset, body.Collection)
	if err != nil {
		return failure(err)
	}
	return utils.WriteJSON(w, convertCustody(rec, s.staker.Delegate(body.Asset)))
}

func (s *Staking) handleRelease(w http.ResponseWriter, req *http.Request) error {
	var body Release
	caller, err := s.open(req, "release", &body)
	if err != nil {
		return err
	}
	l, err := s.staker.Release(req.Context(), caller, body.Asset)
	if err != nil {
		return failure(err)
	}
	balance, err := s.rewardBalance(caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertUser(caller, l, balance))
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body Empty
	caller, err := s.open(req, "claim", &body)
	if err != nil {
		return err
	}
	amount, err := s.staker.Claim(req.Context(), caller)
	if err != nil {
		return failure(err)
	}
	return utils.WriteJSON(w, &ClaimResult{Amount: toHexBig(amount)})
}

func (s *Staking) handleAccrue(w http.ResponseWriter, req *http.Request) error {
	var body Accrue
	caller, err := s.open(req, "accrue", &body)
	if err != nil {
		return err
	}
	l, err := s.staker.Accrue(req.Context(), caller, body.Participant, body.Points)
	if err != nil {
		return failure(err)
	}
	balance, err := s.rewardBalance(body.Participant)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertUser(body.Participant, l, balance))
}

func (s *Staking) handleActivity(w http.ResponseWriter, req *http.Request) error {
	if s.logDB == nil {
		return utils.NotFound(errors.New("activity log disabled"))
	}
	query := req.URL.Query()
	filter := &logdb.Filter{Order: logdb.ASC}

	if v := query.Get("participant"); v != "" {
		addr, err := stake.ParseAddress(v)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "participant"))
		}
		filter.Participant = &addr
	}
	if v := query.Get("asset"); v != "" {
		addr, err := stake.ParseAddress(v)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "asset"))
		}
		filter.Asset = &addr
	}
	if v := query.Get("kind"); v != "" {
		kind := logdb.Kind(v)
		if !kind.Valid() {
			return utils.BadRequest(errors.Errorf("kind: unknown kind %q", v))
		}
		filter.Kind = &kind
	}
	if query.Get("order") == string(logdb.DESC) {
		filter.Order = logdb.DESC
	}

	offset, err := utils.ParseUint(query.Get("offset"), 0)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	limit, err := utils.ParseUint(query.Get("limit"), s.limit)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit > s.limit {
		return utils.Forbidden(errors.Errorf("limit: exceeds maximum %d", s.limit))
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}

	entries, err := s.logDB.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	out := make([]*Activity, 0, len(entries))
	for _, e := range entries {
		out = append(out, convertActivity(e))
	}
	return utils.WriteJSON(w, out)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/policy").Methods(http.MethodGet).Name("GET /staking/policy").HandlerFunc(utils.WrapHandlerFunc(s.handleGetPolicy))
	sub.Path("/policy").Methods(http.MethodPost).Name("POST /staking/policy").HandlerFunc(utils.WrapHandlerFunc(s.handleInitializePolicy))
	sub.Path("/users").Methods(http.MethodPost).Name("POST /staking/users").HandlerFunc(utils.WrapHandlerFunc(s.handleEnsureUser))
	sub.Path("/users/{address}").Methods(http.MethodGet).Name("GET /staking/users/{address}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetUser))
	sub.Path("/custody/{asset}").Methods(http.MethodGet).Name("GET /staking/custody/{asset}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetCustody))
	sub.Path("/lock").Methods(http.MethodPost).Name("POST /staking/lock").HandlerFunc(utils.WrapHandlerFunc(s.handleLock))
	sub.Path("/release").Methods(http.MethodPost).Name("POST /staking/release").HandlerFunc(utils.WrapHandlerFunc(s.handleRelease))
	sub.Path("/claim").Methods(http.MethodPost).Name("POST /staking/claim").HandlerFunc(utils.WrapHandlerFunc(s.handleClaim))
	sub.Path("/accrue").Methods(http.MethodPost).Name("POST /staking/accrue").HandlerFunc(utils.WrapHandlerFunc(s.handleAccrue))
	sub.Path("/activity").Methods(http.MethodGet).Name("GET /staking/activity").HandlerFunc(utils.WrapHandlerFunc(s.handleActivity))
}
