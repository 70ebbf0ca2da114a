// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb stores the activity log of committed staking transitions in SQLite.
package logdb

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/stake"
)

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New creates or opens the log db at path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection serializes writers and keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(activityTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem creates a log db in memory.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

func (db *LogDB) Close() error {
	if err := db.stmtCache.Close(); err != nil {
		_ = db.db.Close()
		return err
	}
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Append stores entries in one transaction.
func (db *LogDB) Append(ctx context.Context, entries ...*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(ctx, insertActivity)
	if err != nil {
		return err
	}
	return db.execInTx(ctx, func(tx *sql.Tx) error {
		s := tx.StmtContext(ctx, stmt)
		for _, e := range entries {
			var asset any
			if e.Asset != nil {
				asset = e.Asset.Bytes()
			}
			amount := "0"
			if e.Amount != nil {
				amount = e.Amount.Dec()
			}
			if _, err := s.ExecContext(ctx,
				string(e.Kind),
				e.Participant.Bytes(),
				asset,
				strconv.FormatUint(e.Points, 10),
				amount,
				int64(e.Time),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *LogDB) execInTx(ctx context.Context, cb func(*sql.Tx) error) (err error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := cb(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Filter returns the entries matching filter, oldest first unless DESC is requested.
func (db *LogDB) Filter(ctx context.Context, filter *Filter) ([]*Entry, error) {
	if filter == nil {
		return db.query(ctx, selectActivity+" ORDER BY seq ASC")
	}
	var args []any
	stmt := selectActivity + " WHERE 1"
	if filter.Participant != nil {
		args = append(args, filter.Participant.Bytes())
		stmt += " AND participant = ?"
	}
	if filter.Asset != nil {
		args = append(args, filter.Asset.Bytes())
		stmt += " AND asset = ?"
	}
	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		stmt += " AND kind = ?"
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, int64(filter.Options.Offset), int64(filter.Options.Limit))
	}
	return db.query(ctx, stmt, args...)
}

func (db *LogDB) query(ctx context.Context, query string, args ...any) ([]*Entry, error) {
	stmt, err := db.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			seq         int64
			kind        string
			participant []byte
			asset       []byte
			points      string
			amount      string
			ts          int64
		)
		if err := rows.Scan(&seq, &kind, &participant, &asset, &points, &amount, &ts); err != nil {
			return nil, err
		}
		e := &Entry{
			Seq:         uint64(seq),
			Kind:        Kind(kind),
			Participant: stake.BytesToAddress(participant),
			Time:        uint64(ts),
		}
		if asset != nil {
			a := stake.BytesToAddress(asset)
			e.Asset = &a
		}
		if e.Points, err = strconv.ParseUint(points, 10, 64); err != nil {
			return nil, errors.Wrap(err, "parse points")
		}
		if e.Amount, err = uint256.FromDecimal(amount); err != nil {
			return nil, errors.Wrap(err, "parse amount")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
