//go:build integration

package storage_test

import (
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/pkg/storage"
)

func openEngine(t *testing.T) *storage.Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "engine")
	e, err := storage.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, e.Close())
	})
	return e
}

func getString(t *testing.T, ns *storage.Namespace, key string) (string, bool) {
	t.Helper()
	var out string
	found, err := ns.Get([]byte(key), func(v []byte) { out = string(v) })
	require.NoError(t, err)
	return out, found
}

// Scenario 1: simple CRUD.
func TestSimpleCRUD(t *testing.T) {
	e := openEngine(t)
	ns := e.OpenNamespace(1)
	defer ns.Close()

	_, found := getString(t, ns, "sample")
	assert.False(t, found)

	require.NoError(t, ns.Set([]byte("sample"), []byte("sample_value")))

	v, found := getString(t, ns, "sample")
	require.True(t, found)
	assert.Equal(t, "sample_value", v)

	require.NoError(t, ns.Del([]byte("sample")))

	_, found = getString(t, ns, "sample")
	assert.False(t, found)
}

// Idempotent delete: del(k); del(k) leaves the same state as del(k) alone.
func TestIdempotentDelete(t *testing.T) {
	e := openEngine(t)
	ns := e.OpenNamespace(1)
	defer ns.Close()

	require.NoError(t, ns.Set([]byte("k"), []byte("v")))
	require.NoError(t, ns.Del([]byte("k")))
	require.NoError(t, ns.Del([]byte("k")))

	_, found := getString(t, ns, "k")
	assert.False(t, found)
}

// Scenario 2: batched main+log write, atomic and visible together.
func TestBatchedMainAndLog(t *testing.T) {
	e := openEngine(t)
	ns := e.OpenNamespace(1)
	defer ns.Close()

	b := ns.BatchNew(2)
	b.Set([]byte("sample"), []byte("sample_value"))
	b.LogSet(1, 1, []byte("sample"))
	require.NoError(t, ns.BatchWrite(b))

	v, found := getString(t, ns, "sample")
	require.True(t, found)
	assert.Equal(t, "sample_value", v)

	var logVal string
	logFound, err := ns.LogGet(1, 1, func(v []byte) { logVal = string(v) })
	require.NoError(t, err)
	require.True(t, logFound)
	assert.Equal(t, "sample", logVal)
}

// Scenario 3: namespace isolation.
func TestNamespaceIsolation(t *testing.T) {
	e := openEngine(t)
	namespaces := make([]*storage.Namespace, 3)
	for i := range namespaces {
		namespaces[i] = e.OpenNamespace(uint16(i))
	}
	defer func() {
		for _, ns := range namespaces {
			ns.Close()
		}
	}()

	for i, ns := range namespaces {
		val := strconv.Itoa(i)
		for _, k := range []string{"1", "2", "3"} {
			require.NoError(t, ns.Set([]byte(k), []byte(val)))
		}
	}

	for i, ns := range namespaces {
		it := ns.Iterator()
		var keys []string
		var values []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			values = append(values, string(it.Value()))
		}
		require.NoError(t, it.Err())
		it.Close()

		assert.Equal(t, []string{"1", "2", "3"}, keys)
		for _, v := range values {
			assert.Equal(t, strconv.Itoa(i), v)
		}
	}
}

// Iterator order: strictly ascending, each present key exactly once.
func TestIteratorOrder(t *testing.T) {
	e := openEngine(t)
	ns := e.OpenNamespace(0)
	defer ns.Close()

	for _, k := range []string{"banana", "apple", "cherry"} {
		require.NoError(t, ns.Set([]byte(k), []byte(k)))
	}

	it := ns.Iterator()
	defer it.Close()

	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got)
}

// Scenario 4: log range.
func TestLogRange(t *testing.T) {
	e := openEngine(t)
	for i := uint64(0); i < 3; i++ {
		ns := e.OpenNamespace(uint16(i))

		entries := [][2]uint64{{i, i}, {i, i + 1}, {i, i + 2}, {i + 1, i}}
		for _, entry := range entries {
			b := ns.BatchNew(1)
			b.LogSet(entry[0], entry[1], []byte(fmt.Sprintf("%d:%d", entry[0], entry[1])))
			require.NoError(t, ns.BatchWrite(b))
		}

		it := ns.LogIterator(i, i+1)
		var got [][2]uint64
		for it.Next() {
			p, s := it.LogKey()
			got = append(got, [2]uint64{p, s})
		}
		require.NoError(t, it.Err())
		it.Close()
		assert.Equal(t, [][2]uint64{{i, i + 1}, {i, i + 2}}, got)

		it = ns.LogIterator(i, i)
		count := 0
		for it.Next() {
			count++
		}
		require.NoError(t, it.Err())
		it.Close()
		assert.Equal(t, 3, count)

		ns.Close()
	}
}

// Scenario 5: clear.
func TestClear(t *testing.T) {
	e := openEngine(t)
	namespaces := make([]*storage.Namespace, 3)
	for i := range namespaces {
		namespaces[i] = e.OpenNamespace(uint16(i))
	}
	defer func() {
		for _, ns := range namespaces {
			ns.Close()
		}
	}()

	for _, ns := range namespaces {
		b := ns.BatchNew(2)
		b.Set([]byte("main-key"), []byte("v"))
		b.LogSet(1, 1, []byte("v"))
		require.NoError(t, ns.BatchWrite(b))
	}

	require.NoError(t, namespaces[1].Clear())

	mainIt := namespaces[1].Iterator()
	assert.False(t, mainIt.Next())
	mainIt.Close()

	logIt := namespaces[1].LogIterator(1, 0)
	assert.False(t, logIt.Next())
	logIt.Close()

	for i, ns := range namespaces {
		if i == 1 {
			continue
		}
		_, found := getString(t, ns, "main-key")
		assert.True(t, found, "namespace %d should be unaffected by clearing namespace 1", i)
	}
}

func TestClearPanicsWithLiveIterator(t *testing.T) {
	e := openEngine(t)
	ns := e.OpenNamespace(1)
	defer ns.Close()

	it := ns.Iterator()
	defer it.Close()

	assert.Panics(t, func() { _ = ns.Clear() })
}

// Scenario 6: repeated open.
func TestRepeatedOpen(t *testing.T) {
	e := openEngine(t)
	a := e.OpenNamespace(5)
	b := e.OpenNamespace(5)
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Set([]byte("k"), []byte("v")))

	v, found := getString(t, b, "k")
	require.True(t, found)
	assert.Equal(t, "v", v)
}

func TestEnginePanicsOnOutstandingNamespace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "engine")
	e, err := storage.Open(dbPath)
	require.NoError(t, err)

	ns := e.OpenNamespace(1)
	defer ns.Close()

	assert.Panics(t, func() { _ = e.Close() })
}
