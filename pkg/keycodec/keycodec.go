package keycodec

import "encoding/binary"

// Store tags disambiguate the two logical stores (main and log) that share
// the single underlying engine instance: the embedded engine has no native
// column-family concept, so the tag takes the place of a column-family
// handle.
const (
	StoreMain byte = 0x00
	StoreLog  byte = 0x01
)

// Overhead is the number of bytes every physical key carries ahead of the
// caller-supplied key material: one store tag byte plus the 16-bit
// namespace id.
const Overhead = 1 + 2

// LogKeyLen is the fixed length of a physical log key: overhead, an 8-byte
// big-endian prefix, and an 8-byte big-endian sequence number.
const LogKeyLen = Overhead + 8 + 8

// LogPrefixLen is the fixed length of a physical log-prefix bound: overhead
// plus the 8-byte big-endian prefix.
const LogPrefixLen = Overhead + 8

// StackBufSize is sized for the common case of short user keys, mirroring
// the fixed scratch buffer the source engine used to avoid a heap
// allocation on every call; longer keys fall back to a heap allocation in
// BuildMainKey.
const StackBufSize = 512

// BuildMainKey writes the physical main-store key for namespace n and user
// key k into buf (reslicing it if it has enough capacity, allocating a new
// slice otherwise) and returns the used portion.
func BuildMainKey(buf []byte, n uint16, k []byte) []byte {
	need := Overhead + len(k)
	buf = ensureCap(buf, need)
	buf[0] = StoreMain
	binary.BigEndian.PutUint16(buf[1:3], n)
	copy(buf[3:], k)
	return buf
}

// BuildLogKey writes the physical log-store key for namespace n and log key
// (prefix, seq) into buf and returns the used portion (always LogKeyLen
// bytes).
func BuildLogKey(buf []byte, n uint16, prefix, seq uint64) []byte {
	buf = ensureCap(buf, LogKeyLen)
	buf[0] = StoreLog
	binary.BigEndian.PutUint16(buf[1:3], n)
	binary.BigEndian.PutUint64(buf[3:11], prefix)
	binary.BigEndian.PutUint64(buf[11:19], seq)
	return buf
}

// BuildLogPrefix writes the physical log-store prefix bound for namespace n
// and log prefix p into buf and returns the used portion (always
// LogPrefixLen bytes). Used as the prefix bound that keeps a log iterator
// within one log prefix.
func BuildLogPrefix(buf []byte, n uint16, prefix uint64) []byte {
	buf = ensureCap(buf, LogPrefixLen)
	buf[0] = StoreLog
	binary.BigEndian.PutUint16(buf[1:3], n)
	binary.BigEndian.PutUint64(buf[3:11], prefix)
	return buf
}

// BuildNamespacePrefix writes the prefix shared by every physical key of
// namespace n in the given store (main or log) into buf and returns the
// used portion (always Overhead bytes). Used to scope iteration and clear
// to exactly one namespace within one store.
func BuildNamespacePrefix(buf []byte, store byte, n uint16) []byte {
	buf = ensureCap(buf, Overhead)
	buf[0] = store
	binary.BigEndian.PutUint16(buf[1:3], n)
	return buf
}

// DecodeLogKey decodes a physical log key back into its namespace id and
// (prefix, seq) pair. ok is false if physical is not exactly LogKeyLen
// bytes long.
func DecodeLogKey(physical []byte) (n uint16, prefix, seq uint64, ok bool) {
	if len(physical) != LogKeyLen {
		return 0, 0, 0, false
	}
	n = binary.BigEndian.Uint16(physical[1:3])
	prefix = binary.BigEndian.Uint64(physical[3:11])
	seq = binary.BigEndian.Uint64(physical[11:19])
	return n, prefix, seq, true
}

// UserKey returns the user-key suffix of a physical main key, i.e. the
// bytes after the store tag and namespace id.
func UserKey(physicalMainKey []byte) []byte {
	if len(physicalMainKey) < Overhead {
		return nil
	}
	return physicalMainKey[Overhead:]
}

func ensureCap(buf []byte, need int) []byte {
	if cap(buf) < need {
		return make([]byte, need)
	}
	return buf[:need]
}
