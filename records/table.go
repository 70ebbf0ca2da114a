// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

// Key addresses a record within a table.
type Key interface {
	Bytes() []byte
}

// Table is a typed view over one namespace. V is usually a pointer to an
// RLP-encodable struct.
type Table[K Key, V any] struct {
	ns Namespace
}

// NewTable creates a table in the given namespace.
func NewTable[K Key, V any](ns Namespace) *Table[K, V] {
	return &Table[K, V]{ns: ns}
}

func (t *Table[K, V]) Namespace() Namespace {
	return t.ns
}

// Get returns the record stored under key. found is false if the record is absent.
func (t *Table[K, V]) Get(tx *Tx, key K) (value V, found bool, err error) {
	found, err = tx.Get(t.ns, key.Bytes(), &value)
	return
}

func (t *Table[K, V]) Exists(tx *Tx, key K) (bool, error) {
	return tx.Has(t.ns, key.Bytes())
}

func (t *Table[K, V]) Insert(tx *Tx, key K, value V) error {
	return tx.Insert(t.ns, key.Bytes(), value)
}

func (t *Table[K, V]) Update(tx *Tx, key K, value V) error {
	return tx.Update(t.ns, key.Bytes(), value)
}

func (t *Table[K, V]) Delete(tx *Tx, key K) error {
	return tx.Delete(t.ns, key.Bytes())
}
