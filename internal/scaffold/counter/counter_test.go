package counter

import (
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	t.Run("starts at start and advances by step", func(t *testing.T) {
		for _, want := range []int64{5, 7, 9} {
			got, err := store.Increment("start=5:step=2", 5, 2)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		a, err := store.Increment("a", 1, 1)
		require.NoError(t, err)
		b, err := store.Increment("b", 100, 1)
		require.NoError(t, err)
		a2, err := store.Increment("a", 1, 1)
		require.NoError(t, err)

		assert.Equal(t, int64(1), a)
		assert.Equal(t, int64(100), b)
		assert.Equal(t, int64(2), a2)
	})

	t.Run("get reports the next value", func(t *testing.T) {
		_, ok, err := store.Get("missing")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = store.Increment("peek", 10, 5)
		require.NoError(t, err)
		v, ok, err := store.Get("peek")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(15), v)
	})

	t.Run("concurrent increments never repeat or skip", func(t *testing.T) {
		const workers = 32
		var wg sync.WaitGroup
		var mu sync.Mutex
		seen := make([]int64, 0, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := store.Increment("shared", 1, 1)
				assert.NoError(t, err)
				mu.Lock()
				seen = append(seen, v)
				mu.Unlock()
			}()
		}
		wg.Wait()

		sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
		for i, v := range seen {
			assert.Equal(t, int64(i+1), v)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "counters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	v, err := store.Increment("default", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err = reopened.Increment("default", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}
