// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package userledger

import (
	"math"
)

type body struct {
	Points      uint64
	LockedCount uint32
}

// Ledger is a participant's points balance and locked asset count.
type Ledger struct {
	body *body
}

func (l *Ledger) Points() uint64      { return l.body.Points }
func (l *Ledger) LockedCount() uint32 { return l.body.LockedCount }

// AddLocked records one more locked asset.
func (l *Ledger) AddLocked() {
	if l.body.LockedCount < math.MaxUint32 {
		l.body.LockedCount++
	}
}

// RemoveLocked records one fewer locked asset, saturating at zero.
func (l *Ledger) RemoveLocked() {
	if l.body.LockedCount > 0 {
		l.body.LockedCount--
	}
}

// AddPoints credits points, saturating at the maximum balance.
func (l *Ledger) AddPoints(points uint64) {
	if math.MaxUint64-l.body.Points < points {
		l.body.Points = math.MaxUint64
		return
	}
	l.body.Points += points
}

// TakePoints zeroes the balance and returns what it held.
func (l *Ledger) TakePoints() uint64 {
	points := l.body.Points
	l.body.Points = 0
	return points
}
