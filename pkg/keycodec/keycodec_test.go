package keycodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/pkg/keycodec"
)

func TestBuildMainKey(t *testing.T) {
	var buf [keycodec.StackBufSize]byte
	got := keycodec.BuildMainKey(buf[:0], 7, []byte("sample"))

	require.Len(t, got, keycodec.Overhead+len("sample"))
	assert.Equal(t, keycodec.StoreMain, got[0])
	assert.Equal(t, []byte("sample"), keycodec.UserKey(got))
}

func TestBuildMainKeyFallsBackForLongKeys(t *testing.T) {
	var buf [8]byte // smaller than the key we're about to build
	long := make([]byte, 1024)
	for i := range long {
		long[i] = byte(i)
	}

	got := keycodec.BuildMainKey(buf[:0], 1, long)
	assert.Equal(t, long, keycodec.UserKey(got))
}

func TestMainKeyOrderingMatchesNamespaceOrder(t *testing.T) {
	var bufA, bufB [keycodec.StackBufSize]byte
	a := keycodec.BuildMainKey(bufA[:0], 1, []byte("z"))
	b := keycodec.BuildMainKey(bufB[:0], 2, []byte("a"))

	// Namespace ordering dominates user-key ordering once the namespace
	// differs, because the namespace id is encoded before the user key.
	assert.Less(t, string(a), string(b))
}

func TestBuildLogKeyOrdering(t *testing.T) {
	var buf1, buf2, buf3 [keycodec.LogKeyLen]byte
	k1 := keycodec.BuildLogKey(buf1[:0], 1, 5, 0)
	k2 := keycodec.BuildLogKey(buf2[:0], 1, 5, 1)
	k3 := keycodec.BuildLogKey(buf3[:0], 1, 6, 0)

	assert.Less(t, string(k1), string(k2))
	assert.Less(t, string(k2), string(k3))
}

func TestDecodeLogKeyRoundTrip(t *testing.T) {
	var buf [keycodec.LogKeyLen]byte
	physical := keycodec.BuildLogKey(buf[:0], 42, 100, 200)

	n, prefix, seq, ok := keycodec.DecodeLogKey(physical)
	require.True(t, ok)
	assert.EqualValues(t, 42, n)
	assert.EqualValues(t, 100, prefix)
	assert.EqualValues(t, 200, seq)
}

func TestDecodeLogKeyRejectsWrongLength(t *testing.T) {
	_, _, _, ok := keycodec.DecodeLogKey([]byte{0x01, 0x00, 0x01})
	assert.False(t, ok)
}

func TestBuildLogPrefixIsPrefixOfLogKey(t *testing.T) {
	var bufKey [keycodec.LogKeyLen]byte
	var bufPrefix [keycodec.LogPrefixLen]byte

	key := keycodec.BuildLogKey(bufKey[:0], 9, 3, 77)
	prefix := keycodec.BuildLogPrefix(bufPrefix[:0], 9, 3)

	assert.Equal(t, prefix, key[:len(prefix)])
}

func TestBuildNamespacePrefixDistinguishesStores(t *testing.T) {
	var bufMain, bufLog [keycodec.Overhead]byte
	main := keycodec.BuildNamespacePrefix(bufMain[:0], keycodec.StoreMain, 3)
	log := keycodec.BuildNamespacePrefix(bufLog[:0], keycodec.StoreLog, 3)

	assert.NotEqual(t, main, log)
	assert.Equal(t, keycodec.StoreMain, main[0])
	assert.Equal(t, keycodec.StoreLog, log[0])
}
