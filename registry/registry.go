// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry answers whether an asset is a verified member of a collection.
package registry

import (
	"context"
	"sync"

	"github.com/yashvikram30/staking/stake"
)

// Asset is a collection member as listed in a seed file.
type Asset struct {
	ID       stake.Address `yaml:"id"`
	Owner    stake.Address `yaml:"owner"`
	Verified bool          `yaml:"verified"`
}

// Collection groups assets under one identifier.
type Collection struct {
	ID     stake.Address `yaml:"id"`
	Name   string        `yaml:"name,omitempty"`
	Assets []Asset       `yaml:"assets"`
}

type member struct {
	collection stake.Address
	verified   bool
}

type Registry struct {
	mu      sync.RWMutex
	members map[stake.Address]member
}

func New() *Registry {
	return &Registry{members: make(map[stake.Address]member)}
}

// Register records asset as a member of collection. A later call replaces the entry.
func (r *Registry) Register(asset, collection stake.Address, verified bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[asset] = member{collection, verified}
}

// Load registers every asset of the given collections.
func (r *Registry) Load(collections []Collection) {
	for _, c := range collections {
		for _, a := range c.Assets {
			r.Register(a.ID, c.ID, a.Verified)
		}
	}
}

// IsVerifiedMember reports whether asset belongs to collection and the membership is verified.
func (r *Registry) IsVerifiedMember(ctx context.Context, asset, collection stake.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[asset]
	return ok && m.verified && m.collection == collection, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
