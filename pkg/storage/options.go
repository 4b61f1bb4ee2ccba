package storage

import (
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// engineConfig holds the tuning knobs the source engine applied per column
// family. badger exposes one option set per DB rather than per column
// family, so these approximate the main-store tuning (point lookups, small
// range scans); log-store behavior (append-mostly, oldest segments
// reclaimed first) is approximated separately by the background value-log
// GC loop in engine.go rather than by a second option set.
type engineConfig struct {
	blockCacheSize         int64
	indexCacheSize         int64
	bloomFalsePositive     float64
	memTableSize           int64
	numMemtables           int
	numCompactors          int
	valueLogGCInterval     time.Duration
	valueLogGCDiscardRatio float64
	syncWrites             bool
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		blockCacheSize:         128 << 20, // mirrors the source's ~128MiB main-CF LRU block cache
		indexCacheSize:         64 << 20,
		bloomFalsePositive:     0.01, // close to a 10-bit-per-key bloom filter
		memTableSize:           32 << 20,
		numMemtables:           4,
		numCompactors:          4,
		valueLogGCInterval:     5 * time.Minute,
		valueLogGCDiscardRatio: 0.5,
		syncWrites:             false,
	}
}

// Option configures an Engine at Open time.
type Option func(*engineConfig)

// WithBlockCacheSize overrides the block cache size in bytes.
func WithBlockCacheSize(bytes int64) Option {
	return func(c *engineConfig) { c.blockCacheSize = bytes }
}

// WithMemTableSize overrides the in-memory write-buffer (memtable) size and
// count, mirroring the source's "32MiB x 4 buffers" main-CF tuning.
func WithMemTableSize(bytes int64, count int) Option {
	return func(c *engineConfig) {
		c.memTableSize = bytes
		c.numMemtables = count
	}
}

// WithNumCompactors overrides the number of background compaction workers.
func WithNumCompactors(n int) Option {
	return func(c *engineConfig) { c.numCompactors = n }
}

// WithSyncWrites forces every write to fsync before returning, trading
// throughput for the durability Namespace.Sync otherwise provides on
// demand.
func WithSyncWrites(sync bool) Option {
	return func(c *engineConfig) { c.syncWrites = sync }
}

// WithValueLogGC overrides the cadence and discard-ratio threshold of the
// background value-log reclaim loop that stands in for the log column
// family's FIFO compaction.
func WithValueLogGC(interval time.Duration, discardRatio float64) Option {
	return func(c *engineConfig) {
		c.valueLogGCInterval = interval
		c.valueLogGCDiscardRatio = discardRatio
	}
}

func (c engineConfig) badgerOptions(path string) badger.Options {
	opts := badger.DefaultOptions(path)
	opts.BlockCacheSize = c.blockCacheSize
	opts.IndexCacheSize = c.indexCacheSize
	opts.BloomFalsePositive = c.bloomFalsePositive
	opts.MemTableSize = c.memTableSize
	opts.NumMemtables = c.numMemtables
	opts.NumCompactors = c.numCompactors
	opts.SyncWrites = c.syncWrites
	opts.Logger = nil
	return opts
}
