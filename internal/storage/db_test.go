package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB runs the shared test suite against a DB implementation.
func testDB(t *testing.T, db DB) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("key1"), []byte("value1")))
		val, err := db.Get([]byte("key1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value1"), val)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := db.Get([]byte("missing"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("exists"), []byte("yes")))
		ok, err := db.Has([]byte("exists"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = db.Has([]byte("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("ow"), []byte("first")))
		require.NoError(t, db.Put([]byte("ow"), []byte("second")))
		val, err := db.Get([]byte("ow"))
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("del"), []byte("value")))
		require.NoError(t, db.Delete([]byte("del")))
		ok, err := db.Has([]byte("del"))
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, db.Delete([]byte("never-existed")))
	})

	t.Run("ValueIsCopied", func(t *testing.T) {
		v := []byte("abc")
		require.NoError(t, db.Put([]byte("copy"), v))
		v[0] = 'x'
		got, err := db.Get([]byte("copy"))
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("ForEach", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("probe/a"), []byte("1")))
		require.NoError(t, db.Put([]byte("probe/b"), []byte("2")))
		require.NoError(t, db.Put([]byte("other/x"), []byte("3")))

		seen := map[string]string{}
		require.NoError(t, db.ForEach([]byte("probe/"), func(k, v []byte) error {
			seen[string(k)] = string(v)
			return nil
		}))
		assert.Equal(t, map[string]string{"probe/a": "1", "probe/b": "2"}, seen)
	})
}

func TestMemoryDB(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB_InMemory(t *testing.T) {
	db, err := NewBadgerInMemory()
	require.NoError(t, err)
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB_Persistence(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewBadger(dir)
	require.NoError(t, err)
	require.NoError(t, db1.Put([]byte("persist"), []byte("data")))
	require.NoError(t, db1.Close())

	db2, err := NewBadger(dir)
	require.NoError(t, err)
	defer db2.Close()
	val, err := db2.Get([]byte("persist"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), val)
}

func TestBadgerDB_Locked(t *testing.T) {
	dir := t.TempDir()
	db1, err := NewBadger(dir)
	require.NoError(t, err)
	defer db1.Close()

	_, err = NewBadger(dir)
	require.ErrorContains(t, err, "locked by another icon-cli process")
}

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	mainnet := NewPrefixDB(inner, []byte("0x1/"))
	sejong := NewPrefixDB(inner, []byte("0x53/"))

	require.NoError(t, mainnet.Put([]byte("k"), []byte("main")))
	require.NoError(t, sejong.Put([]byte("k"), []byte("test")))

	got, err := mainnet.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("main"), got)

	raw, err := inner.Get([]byte("0x53/k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("test"), raw)

	var keys []string
	require.NoError(t, mainnet.ForEach(nil, func(k, _ []byte) error {
		keys = append(keys, string(k))
		return nil
	}))
	assert.Equal(t, []string{"k"}, keys)
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	ns := NewPrefixDB(inner, []byte("ns/"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, ns.Put([]byte(k), []byte("v")))
	}
	require.NoError(t, inner.Put([]byte("keep"), []byte("v")))

	n, err := ns.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := inner.Has([]byte("keep"))
	require.NoError(t, err)
	assert.True(t, ok)
}
