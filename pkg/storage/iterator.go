package storage

import (
	badger "github.com/dgraph-io/badger/v4"

	"github.com/fabricdb/corekv/pkg/keycodec"
)

// Iterator is a forward cursor over a namespace's main-store keys, yielding
// user keys in strictly ascending lexicographic order. It must not outlive
// the Namespace that produced it; Close releases it and must always be
// called, typically via defer.
type Iterator struct {
	ns       *Namespace
	txn      *badger.Txn
	it       *badger.Iterator
	prefix   []byte
	started  bool
	curKey   []byte
	curValue []byte
	err      error
	closed   bool
}

// Iterator returns a cursor over this namespace's main-store keys. It
// positions lazily at the lower bound on the first call to Next.
func (ns *Namespace) Iterator() *Iterator {
	ns.liveIterators.Add(1)

	txn := ns.engine.db.NewTransaction(false)
	var buf [keycodec.Overhead]byte
	prefix := append([]byte(nil), keycodec.BuildNamespacePrefix(buf[:0], keycodec.StoreMain, ns.id)...)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	return &Iterator{
		ns:     ns,
		txn:    txn,
		it:     txn.NewIterator(opts),
		prefix: prefix,
	}
}

// Next advances the cursor, positioning at the lower bound on the first
// call. It returns false once the namespace's main-store key range is
// exhausted or Close has been called; callers must check Err afterward to
// distinguish exhaustion from a storage failure.
func (it *Iterator) Next() bool {
	if it.closed {
		return false
	}
	if !it.started {
		it.started = true
		it.it.Seek(it.prefix)
	} else {
		it.it.Next()
	}
	if !it.it.ValidForPrefix(it.prefix) {
		return false
	}

	item := it.it.Item()
	it.curKey = append(it.curKey[:0], item.Key()...)

	val, err := item.ValueCopy(it.curValue[:0])
	if err != nil {
		it.err = err
		return false
	}
	it.curValue = val
	return true
}

// Key returns the current user key. The returned slice is valid until the
// next call to Next or Close.
func (it *Iterator) Key() []byte { return keycodec.UserKey(it.curKey) }

// Value returns the current value. The returned slice is valid until the
// next call to Next or Close.
func (it *Iterator) Value() []byte { return it.curValue }

// Err returns the first error encountered during iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Close releases the cursor. It is safe to call more than once.
func (it *Iterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.it.Close()
	it.txn.Discard()
	it.ns.liveIterators.Add(-1)
}
