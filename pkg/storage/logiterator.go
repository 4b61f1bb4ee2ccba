package storage

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/fabricdb/corekv/pkg/keycodec"
)

// LogIterator is a forward cursor over a prefix range of a namespace's log
// store, yielding entries (prefix, seq) with seq >= the requested start and
// no entry with a different prefix. It must not outlive the Namespace that
// produced it.
type LogIterator struct {
	ns        *Namespace
	txn       *badger.Txn
	it        *badger.Iterator
	prefix    []byte
	startKey  []byte
	started   bool
	curPrefix uint64
	curSeq    uint64
	curValue  []byte
	err       error
	closed    bool
}

// LogIterator returns a cursor positioned at (prefix, startSeq), terminating
// once prefix no longer matches (strictly before (prefix+1, 0), without
// needing any wrap-around arithmetic).
func (ns *Namespace) LogIterator(prefix, startSeq uint64) *LogIterator {
	ns.liveIterators.Add(1)

	txn := ns.engine.db.NewTransaction(false)

	var pbuf [keycodec.LogPrefixLen]byte
	pfx := append([]byte(nil), keycodec.BuildLogPrefix(pbuf[:0], ns.id, prefix)...)

	var sbuf [keycodec.LogKeyLen]byte
	start := append([]byte(nil), keycodec.BuildLogKey(sbuf[:0], ns.id, prefix, startSeq)...)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = pfx

	return &LogIterator{
		ns:       ns,
		txn:      txn,
		it:       txn.NewIterator(opts),
		prefix:   pfx,
		startKey: start,
	}
}

// Next advances the cursor. See Iterator.Next for the exhaustion/error
// contract.
func (it *LogIterator) Next() bool {
	if it.closed {
		return false
	}
	if !it.started {
		it.started = true
		it.it.Seek(it.startKey)
	} else {
		it.it.Next()
	}
	if !it.it.ValidForPrefix(it.prefix) {
		return false
	}

	item := it.it.Item()
	key := item.KeyCopy(nil)
	_, p, s, ok := keycodec.DecodeLogKey(key)
	if !ok {
		it.err = fmt.Errorf("storage: corrupt log key of length %d", len(key))
		return false
	}
	it.curPrefix, it.curSeq = p, s

	val, err := item.ValueCopy(it.curValue[:0])
	if err != nil {
		it.err = err
		return false
	}
	it.curValue = val
	return true
}

// LogKey returns the current (prefix, seq) pair.
func (it *LogIterator) LogKey() (prefix, seq uint64) { return it.curPrefix, it.curSeq }

// Value returns the current value, valid until the next call to Next or
// Close.
func (it *LogIterator) Value() []byte { return it.curValue }

// Err returns the first error encountered during iteration, if any.
func (it *LogIterator) Err() error { return it.err }

// Close releases the cursor. It is safe to call more than once.
func (it *LogIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.it.Close()
	it.txn.Discard()
	it.ns.liveIterators.Add(-1)
}
