package storage

import (
	badger "github.com/dgraph-io/badger/v4"

	"github.com/fabricdb/corekv/pkg/keycodec"
)

// Batch is a mutable accumulator of puts and deletes against both the main
// and log stores, applied atomically when committed with
// Namespace.BatchWrite. It has no read operations and makes no ordering
// guarantee between its own entries beyond "all or nothing."
type Batch struct {
	ns  *Namespace
	txn *badger.Txn
	err error
}

// Set stages a put of (k, v) into the main store.
func (b *Batch) Set(k, v []byte) {
	if b.err != nil {
		return
	}
	physical := keycodec.BuildMainKey(nil, b.ns.id, k)
	b.err = b.txn.Set(physical, append([]byte(nil), v...))
}

// LogSet stages a put of v at log key (prefix, seq) into the log store.
func (b *Batch) LogSet(prefix, seq uint64, v []byte) {
	if b.err != nil {
		return
	}
	physical := keycodec.BuildLogKey(nil, b.ns.id, prefix, seq)
	b.err = b.txn.Set(physical, append([]byte(nil), v...))
}

// Del stages a delete of k from the main store.
func (b *Batch) Del(k []byte) {
	if b.err != nil {
		return
	}
	physical := keycodec.BuildMainKey(nil, b.ns.id, k)
	b.err = b.txn.Delete(physical)
}
