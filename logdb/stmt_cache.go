// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// stmtCache holds prepared statements keyed by query text. Filter queries are
// built from a fixed set of clauses, so the cache stays small.
type stmtCache struct {
	db    *sql.DB
	lock  sync.Mutex
	stmts map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, stmts: make(map[string]*sql.Stmt)}
}

// Prepare returns the cached statement for query, preparing it on first use.
func (sc *stmtCache) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	if stmt, ok := sc.stmts[query]; ok {
		return stmt, nil
	}
	stmt, err := sc.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "prepare")
	}
	sc.stmts[query] = stmt
	return stmt, nil
}

// Len returns the number of cached statements.
func (sc *stmtCache) Len() int {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	return len(sc.stmts)
}

// Close closes every cached statement and empties the cache.
func (sc *stmtCache) Close() (err error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	for query, stmt := range sc.stmts {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(sc.stmts, query)
	}
	return
}
