// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashvikram30/staking/lvldb"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/registry"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker"
	"github.com/yashvikram30/staking/tokenprog"
)

var (
	adminAddr      = stake.BytesToAddress([]byte("admin"))
	ownerAddr      = stake.BytesToAddress([]byte("owner"))
	collectionAddr = stake.BytesToAddress([]byte("collection"))
	assetAddr      = stake.BytesToAddress([]byte("asset"))
	pendingAddr    = stake.BytesToAddress([]byte("pending"))
)

var seed = `
policy:
  admin: ` + adminAddr.String() + `
  points_per_lock: 10
  max_locked_per_user: 3
  lock_duration: 7
collections:
  - id: ` + collectionAddr.String() + `
    name: Genesis
    assets:
      - id: ` + assetAddr.String() + `
        owner: ` + ownerAddr.String() + `
        verified: true
      - id: ` + pendingAddr.String() + `
        owner: ` + ownerAddr.String() + `
`

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig(strings.NewReader(seed))
	require.NoError(t, err)

	require.NotNil(t, cfg.Policy)
	assert.Equal(t, adminAddr, cfg.Policy.Admin)
	assert.Equal(t, uint32(10), cfg.Policy.PointsPerLock)
	assert.Equal(t, uint32(3), cfg.Policy.MaxLockedPerUser)
	assert.Equal(t, uint32(7), cfg.Policy.LockDuration)

	require.Len(t, cfg.Collections, 1)
	assert.Equal(t, "Genesis", cfg.Collections[0].Name)
	assert.Equal(t, []registry.Asset{
		{ID: assetAddr, Owner: ownerAddr, Verified: true},
		{ID: pendingAddr, Owner: ownerAddr},
	}, cfg.Collections[0].Assets)

	cfg, err = parseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, cfg.Policy)
	assert.Empty(t, cfg.Collections)

	_, err = parseConfig(strings.NewReader("policy:\n  admn: 0x00\n"))
	assert.Error(t, err)

	_, err = parseConfig(strings.NewReader("collections:\n  - id: 0x1234\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.Policy)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0600))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Policy)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	ctx := context.Background()
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	program := tokenprog.New(store)
	reg := registry.New()
	s, err := staker.New(records.New(store), program, reg, staker.Options{})
	require.NoError(t, err)

	cfg, err := parseConfig(strings.NewReader(seed))
	require.NoError(t, err)
	require.NoError(t, cfg.apply(ctx, s, program, reg))

	p, err := s.Policy()
	require.NoError(t, err)
	assert.Equal(t, adminAddr, p.Admin())
	assert.Equal(t, uint32(3), p.MaxLockedPerUser())

	ok, err := reg.IsVerifiedMember(ctx, assetAddr, collectionAddr)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = reg.IsVerifiedMember(ctx, pendingAddr, collectionAddr)
	require.NoError(t, err)
	assert.False(t, ok)

	h, err := program.Holding(stake.HoldingAddress(ownerAddr, assetAddr))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, uint64(1), h.Amount.Uint64())

	// a restart with persisted state applies cleanly
	require.NoError(t, cfg.apply(ctx, s, program, reg))

	_, err = s.LockIn(ctx, ownerAddr, assetAddr, collectionAddr)
	require.NoError(t, err)
}
