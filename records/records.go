// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package records implements a keyed record store over kv.Store.
//
// Records live in namespaces and are addressed by (namespace, key). Every stored
// record carries a version that is bumped on each update. Transactions are
// optimistic: reads record the observed version, and Commit re-validates all of
// them under a single commit lock before the staged writes are flushed in one
// atomic batch. A transaction whose reads went stale fails with ErrConflict and
// writes nothing.
package records

import (
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/kv"
)

var (
	ErrConflict = errors.New("records: version conflict")
	ErrExists   = errors.New("records: already exists")
	ErrNotFound = errors.New("records: not found")
	ErrStorage  = errors.New("records: storage failure")
	ErrClosed   = errors.New("records: transaction closed")
)

// storageError marks failures of the underlying store.
type storageError struct {
	cause error
}

func (e *storageError) Error() string        { return ErrStorage.Error() + ": " + e.cause.Error() }
func (e *storageError) Unwrap() error        { return e.cause }
func (e *storageError) Is(target error) bool { return target == ErrStorage }

func storageErr(err error, msg string) error {
	return &storageError{errors.Wrap(err, msg)}
}

// Namespace groups records of one kind. Namespaces must not contain ':'.
type Namespace string

func (ns Namespace) key(key []byte) string {
	k := make([]byte, 0, len(ns)+1+len(key))
	k = append(k, ns...)
	k = append(k, ':')
	return string(append(k, key...))
}

// envelope is the stored form of a record.
type envelope struct {
	Version uint64
	Data    rlp.RawValue
}

// DB is the record store.
type DB struct {
	store kv.Store
	mu    sync.Mutex // commit lock
}

// New creates a record store over the given kv store.
func New(store kv.Store) *DB {
	return &DB{store: store}
}

// Begin starts a new transaction.
func (db *DB) Begin() *Tx {
	return &Tx{
		db:     db,
		reads:  make(map[string]uint64),
		writes: make(map[string]*staged),
	}
}

// Version returns the current version of a record, 0 if absent.
func (db *DB) Version(ns Namespace, key []byte) (uint64, error) {
	env, err := db.load(ns.key(key))
	if err != nil {
		return 0, err
	}
	if env == nil {
		return 0, nil
	}
	return env.Version, nil
}

func (db *DB) load(k string) (*envelope, error) {
	raw, err := db.store.Get([]byte(k))
	if err != nil {
		if db.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, storageErr(err, "get record")
	}
	var env envelope
	if err := rlp.DecodeBytes(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decode record envelope")
	}
	return &env, nil
}
