package storage

import (
	"fmt"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Engine is the process-wide handle onto the shared embedded LSM store.
// It is opened once per process and is safe to share across goroutines;
// every Namespace opened from it is a cheap, thread-safe view.
type Engine struct {
	db             *badger.DB
	cfg            engineConfig
	openNamespaces atomic.Int64
	stopGC         chan struct{}
	gcDone         chan struct{}
}

// Open creates the directory at path if it does not already exist and opens
// the engine there.
func Open(path string, opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := badger.Open(cfg.badgerOptions(path))
	if err != nil {
		return nil, wrapErr("open", err)
	}

	e := &Engine{
		db:     db,
		cfg:    cfg,
		stopGC: make(chan struct{}),
		gcDone: make(chan struct{}),
	}
	go e.runValueLogGC()
	return e, nil
}

// runValueLogGC periodically reclaims value-log space, the closest badger
// analogue to the log column family's FIFO compaction (oldest segments
// dropped first).
func (e *Engine) runValueLogGC() {
	defer close(e.gcDone)
	ticker := time.NewTicker(e.cfg.valueLogGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopGC:
			return
		case <-ticker.C:
			for e.db.RunValueLogGC(e.cfg.valueLogGCDiscardRatio) == nil {
				// Keep reclaiming while there's more to collect at this
				// discard ratio; badger returns ErrNoRewrite once it's done.
			}
		}
	}
}

// OpenNamespace returns a handle bound to namespace id n. It is infallible
// and may be called repeatedly for the same id: every handle returned is an
// equivalent view over the same underlying data.
func (e *Engine) OpenNamespace(n uint16) *Namespace {
	e.openNamespaces.Add(1)
	return &Namespace{engine: e, id: n}
}

// Close shuts the engine down. It panics if any namespace handle obtained
// via OpenNamespace has not yet been released with Namespace.Close — this
// is a programming contract, not a recoverable error.
func (e *Engine) Close() error {
	if n := e.openNamespaces.Load(); n != 0 {
		panic(fmt.Sprintf("storage: engine closed with %d outstanding namespace handle(s)", n))
	}
	close(e.stopGC)
	<-e.gcDone
	return wrapErr("close", e.db.Close())
}
