// Package keycodec composes and decomposes the physical keys stored in the
// engine from a namespace id and a caller-supplied user key or log key.
//
// All integers are encoded big-endian so that lexicographic byte order of
// the physical key matches numeric order of its fields; this is what lets
// range scans and prefix iteration work without a custom comparator.
package keycodec
