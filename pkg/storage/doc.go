// Package storage multiplexes many logically independent key-value
// namespaces onto a single embedded LSM engine (badger), prefixing every
// physical key with a namespace id and a store tag so that namespace
// isolation, ordered iteration, and an auxiliary operation log all share one
// on-disk store.
//
// An Engine is opened once per process. Callers obtain cheap, equivalent
// Namespace views by numeric id; Namespace exposes point get/set/delete, a
// Batch for atomic multi-key writes across both the main and log stores,
// and Iterator/LogIterator cursors that must not outlive the Namespace that
// produced them. The main and log stores stand in for two RocksDB column
// families, realized here as one badger instance with a store-tag byte
// ahead of each physical key instead of two separate column families.
package storage
