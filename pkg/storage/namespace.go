package storage

import (
	"fmt"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/fabricdb/corekv/pkg/keycodec"
)

// Namespace is a cheap, reference-counted view onto the engine bound to one
// 16-bit namespace id. All handles opened for the same id are equivalent:
// they observe the same underlying data.
type Namespace struct {
	engine        *Engine
	id            uint16
	liveIterators atomic.Int64
}

// ID returns the namespace id this handle is bound to.
func (ns *Namespace) ID() uint16 { return ns.id }

// Close releases this handle. It panics if any iterator obtained from it is
// still live — callers must close every iterator before closing its
// namespace.
func (ns *Namespace) Close() {
	if n := ns.liveIterators.Load(); n != 0 {
		panic(fmt.Sprintf("storage: namespace %d closed with %d live iterator(s)", ns.id, n))
	}
	ns.engine.openNamespaces.Add(-1)
}

// Get invokes visit with k's value exactly once if present. The slice
// passed to visit is only valid for the duration of the call; callers that
// need the data afterward must copy it.
func (ns *Namespace) Get(k []byte, visit func([]byte)) (found bool, err error) {
	var buf [keycodec.StackBufSize]byte
	physical := keycodec.BuildMainKey(buf[:0], ns.id, k)

	err = ns.engine.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(physical)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		found = true
		return item.Value(func(val []byte) error {
			visit(val)
			return nil
		})
	})
	if err != nil {
		return false, wrapErr("get", err)
	}
	return found, nil
}

// LogGet looks up the log entry (prefix, seq), the log-store analogue of
// Get.
func (ns *Namespace) LogGet(prefix, seq uint64, visit func([]byte)) (found bool, err error) {
	var buf [keycodec.LogKeyLen]byte
	physical := keycodec.BuildLogKey(buf[:0], ns.id, prefix, seq)

	err = ns.engine.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(physical)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		found = true
		return item.Value(func(val []byte) error {
			visit(val)
			return nil
		})
	})
	if err != nil {
		return false, wrapErr("log_get", err)
	}
	return found, nil
}

// Set stores (k, v) as a single-operation batch, committed synchronously.
func (ns *Namespace) Set(k, v []byte) error {
	b := ns.BatchNew(1)
	b.Set(k, v)
	return ns.BatchWrite(b)
}

// Del removes k as a single-operation batch, committed synchronously.
// Deleting an absent key is a no-op: del(k); del(k) is idempotent.
func (ns *Namespace) Del(k []byte) error {
	b := ns.BatchNew(1)
	b.Del(k)
	return ns.BatchWrite(b)
}

// BatchNew returns a fresh batch bound to this namespace. hint is not used.
func (ns *Namespace) BatchNew(hint int) *Batch {
	return &Batch{ns: ns, txn: ns.engine.db.NewTransaction(true)}
}

// BatchWrite commits b atomically across both the main and log stores and
// consumes it; b must not be used afterward.
func (ns *Namespace) BatchWrite(b *Batch) error {
	if b.err != nil {
		b.txn.Discard()
		return wrapErr("batch_write", b.err)
	}
	if err := b.txn.Commit(); err != nil {
		return wrapErr("batch_write", err)
	}
	return nil
}

// Sync flushes the engine's write-ahead log to disk, blocking on the OS
// fsync.
func (ns *Namespace) Sync() error {
	return wrapErr("sync", ns.engine.db.Sync())
}

// Clear removes every key of this namespace from both the main and log
// stores. It panics if an iterator of this namespace is still outstanding.
func (ns *Namespace) Clear() error {
	if n := ns.liveIterators.Load(); n != 0 {
		panic(fmt.Sprintf("storage: clear() on namespace %d with %d live iterator(s)", ns.id, n))
	}

	var mainBuf, logBuf [keycodec.Overhead]byte
	mainPrefix := append([]byte(nil), keycodec.BuildNamespacePrefix(mainBuf[:0], keycodec.StoreMain, ns.id)...)
	logPrefix := append([]byte(nil), keycodec.BuildNamespacePrefix(logBuf[:0], keycodec.StoreLog, ns.id)...)

	// badger.DropPrefix already performs a "drop whole tables that fall
	// fully inside the range, then delete stragglers" two-phase clear, so no
	// separate iterate-and-delete fallback is needed here.
	if err := ns.engine.db.DropPrefix(mainPrefix, logPrefix); err != nil {
		return wrapErr("clear", err)
	}
	return nil
}
