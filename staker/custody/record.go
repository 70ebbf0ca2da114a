// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custody

import (
	"time"

	"github.com/yashvikram30/staking/stake"
)

type body struct {
	Owner    stake.Address
	Asset    stake.Address
	LockedAt uint64 // unix seconds
}

// Record is the custody of one locked asset.
type Record struct {
	body *body
}

func (r *Record) Owner() stake.Address { return r.body.Owner }
func (r *Record) Asset() stake.Address { return r.body.Asset }
func (r *Record) LockedAt() time.Time  { return time.Unix(int64(r.body.LockedAt), 0) }

// Elapsed returns the whole number of units passed since lock-in. A clock
// earlier than the lock time counts as zero.
func (r *Record) Elapsed(now time.Time, unit time.Duration) uint64 {
	secs := uint64(unit / time.Second)
	if secs == 0 {
		secs = 1
	}
	ts := now.Unix()
	if ts < 0 || uint64(ts) < r.body.LockedAt {
		return 0
	}
	return (uint64(ts) - r.body.LockedAt) / secs
}

// Expired reports whether at least duration whole units have passed since lock-in.
func (r *Record) Expired(now time.Time, unit time.Duration, duration uint32) bool {
	return r.Elapsed(now, unit) >= uint64(duration)
}

func unixSeconds(t time.Time) uint64 {
	ts := t.Unix()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}
