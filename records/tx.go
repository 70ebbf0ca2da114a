// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/kv"
)

type staged struct {
	env     *envelope // nil means deleted
	created bool
}

// Tx is an optimistic read-write transaction. It is not safe for concurrent use.
type Tx struct {
	db     *DB
	reads  map[string]uint64 // observed version, 0 means absent
	writes map[string]*staged
	order  []string
	closed bool
}

func (tx *Tx) get(k string) (*envelope, error) {
	if tx.closed {
		return nil, ErrClosed
	}
	if w, ok := tx.writes[k]; ok {
		return w.env, nil
	}
	env, err := tx.db.load(k)
	if err != nil {
		return nil, err
	}
	if _, seen := tx.reads[k]; !seen {
		if env == nil {
			tx.reads[k] = 0
		} else {
			tx.reads[k] = env.Version
		}
	}
	return env, nil
}

func (tx *Tx) stage(k string, w *staged) {
	if _, ok := tx.writes[k]; !ok {
		tx.order = append(tx.order, k)
	}
	tx.writes[k] = w
}

// Get decodes the record into val. It reports whether the record exists.
func (tx *Tx) Get(ns Namespace, key []byte, val any) (bool, error) {
	env, err := tx.get(ns.key(key))
	if err != nil {
		return false, err
	}
	if env == nil {
		return false, nil
	}
	if err := rlp.DecodeBytes(env.Data, val); err != nil {
		return false, errors.Wrapf(err, "decode %s record", ns)
	}
	return true, nil
}

// Has reports whether the record exists.
func (tx *Tx) Has(ns Namespace, key []byte) (bool, error) {
	env, err := tx.get(ns.key(key))
	if err != nil {
		return false, err
	}
	return env != nil, nil
}

// Insert creates a record. It fails with ErrExists if the record is present.
func (tx *Tx) Insert(ns Namespace, key []byte, val any) error {
	k := ns.key(key)
	env, err := tx.get(k)
	if err != nil {
		return err
	}
	if env != nil {
		return ErrExists
	}
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrapf(err, "encode %s record", ns)
	}
	tx.stage(k, &staged{env: &envelope{Version: 1, Data: data}, created: true})
	return nil
}

// Update replaces a record. It fails with ErrNotFound if the record is absent.
// The new version is one above the version observed by this transaction.
func (tx *Tx) Update(ns Namespace, key []byte, val any) error {
	k := ns.key(key)
	env, err := tx.get(k)
	if err != nil {
		return err
	}
	if env == nil {
		return ErrNotFound
	}
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrapf(err, "encode %s record", ns)
	}
	w := &staged{env: &envelope{Version: env.Version, Data: data}}
	if prev, ok := tx.writes[k]; ok {
		w.created = prev.created
	}
	if !w.created {
		w.env.Version = tx.reads[k] + 1
	}
	tx.stage(k, w)
	return nil
}

// Delete removes a record. It fails with ErrNotFound if the record is absent.
func (tx *Tx) Delete(ns Namespace, key []byte) error {
	k := ns.key(key)
	env, err := tx.get(k)
	if err != nil {
		return err
	}
	if env == nil {
		return ErrNotFound
	}
	tx.stage(k, &staged{})
	return nil
}

// Pending returns the number of staged writes.
func (tx *Tx) Pending() int {
	return len(tx.order)
}

// Rollback discards the transaction.
func (tx *Tx) Rollback() {
	tx.closed = true
}

// Commit validates the observed versions, runs hook and writes the staged
// records in one batch together with whatever hook puts into it.
//
// The commit lock is held for the whole sequence, so hook runs only when the
// writes are guaranteed not to conflict. If validation, hook or the batch write
// fails nothing is written. The transaction is closed afterwards in any case.
func (tx *Tx) Commit(hook func(w kv.Putter) error) error {
	if tx.closed {
		return ErrClosed
	}
	tx.closed = true

	db := tx.db
	db.mu.Lock()
	defer db.mu.Unlock()

	for k, version := range tx.reads {
		current, err := db.load(k)
		if err != nil {
			return err
		}
		var v uint64
		if current != nil {
			v = current.Version
		}
		if v != version {
			return ErrConflict
		}
	}

	batch := db.store.NewBatch()
	if hook != nil {
		if err := hook(batch); err != nil {
			return err
		}
	}

	for _, k := range tx.order {
		w := tx.writes[k]
		if w.env == nil {
			if err := batch.Delete([]byte(k)); err != nil {
				return storageErr(err, "stage delete")
			}
			continue
		}
		raw, err := rlp.EncodeToBytes(w.env)
		if err != nil {
			return errors.Wrap(err, "encode record envelope")
		}
		if err := batch.Put([]byte(k), raw); err != nil {
			return storageErr(err, "stage put")
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := batch.Write(); err != nil {
		return storageErr(err, "write batch")
	}
	return nil
}
