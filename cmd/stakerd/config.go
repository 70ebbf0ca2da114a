// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/yashvikram30/staking/registry"
	"github.com/yashvikram30/staking/stake"
	"github.com/yashvikram30/staking/staker"
	"github.com/yashvikram30/staking/staker/policy"
	"github.com/yashvikram30/staking/staker/reverts"
	"github.com/yashvikram30/staking/tokenprog"
)

type policySeed struct {
	Admin            stake.Address `yaml:"admin"`
	PointsPerLock    uint32        `yaml:"points_per_lock"`
	MaxLockedPerUser uint32        `yaml:"max_locked_per_user"`
	LockDuration     uint32        `yaml:"lock_duration"`
}

// seedConfig is the content of the --config file.
type seedConfig struct {
	Policy      *policySeed           `yaml:"policy"`
	Collections []registry.Collection `yaml:"collections"`
}

func parseConfig(r io.Reader) (*seedConfig, error) {
	var cfg seedConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

func loadConfig(path string) (*seedConfig, error) {
	if path == "" {
		return &seedConfig{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()
	return parseConfig(f)
}

// apply registers the collections, mints their assets and bootstraps the policy.
// Applying the same config twice to persisted state is a no-op.
func (c *seedConfig) apply(ctx context.Context, s *staker.Staker, program *tokenprog.Program, reg *registry.Registry) error {
	reg.Load(c.Collections)

	minted := 0
	for _, col := range c.Collections {
		for _, a := range col.Assets {
			err := program.Execute(ctx, tokenprog.MintAsset{Asset: a.ID, Owner: a.Owner})
			if errors.Is(err, tokenprog.ErrMintExists) {
				continue
			}
			if err != nil {
				return errors.Wrapf(err, "mint asset %v", a.ID)
			}
			minted++
		}
	}
	logger.Info("registry seeded", "members", reg.Len(), "minted", minted)

	if c.Policy == nil {
		return nil
	}
	_, err := s.InitializePolicy(ctx, c.Policy.Admin, policy.Params{
		PointsPerLock:    c.Policy.PointsPerLock,
		MaxLockedPerUser: c.Policy.MaxLockedPerUser,
		LockDuration:     c.Policy.LockDuration,
	})
	if errors.Is(err, reverts.ErrAlreadyInitialized) {
		logger.Debug("policy already initialized")
		return nil
	}
	return err
}
