// File: confmux/store_test.go
package confmux

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend that records lifecycle calls.
type fakeBackend struct {
	id     string
	values map[string]string
	keys   []string // iteration order

	openCount  int
	closeCount int
	closeErr   error
	forEachErr error // returned after visiting failAfter keys
	failAfter  int

	store *Store
}

func newFakeBackend(id string, pairs ...string) *fakeBackend {
	b := &fakeBackend{id: id, values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		b.values[pairs[i]] = pairs[i+1]
		b.keys = append(b.keys, pairs[i])
	}
	return b
}

func (b *fakeBackend) Open() error {
	b.openCount++
	return nil
}

func (b *fakeBackend) Get(name string) (string, error) {
	value, exists := b.values[name]
	if !exists {
		return "", failf(ErrNotFound, "variable %q not found in backend %s", name, b.id)
	}
	return value, nil
}

func (b *fakeBackend) Set(name, value string) error {
	if _, exists := b.values[name]; !exists {
		b.keys = append(b.keys, name)
	}
	b.values[name] = value
	return nil
}

func (b *fakeBackend) ForEach(fn VisitorFunc) error {
	for i, name := range b.keys {
		if b.forEachErr != nil && i >= b.failAfter {
			return b.forEachErr
		}
		if err := fn(name, b.values[name]); err != nil {
			return err
		}
	}
	return nil
}

func (b *fakeBackend) Close() error {
	b.closeCount++
	return b.closeErr
}

func (b *fakeBackend) Bind(s *Store) { b.store = s }

func TestEmptyStore(t *testing.T) {
	store := New()

	t.Run("GetFailsWithNoBackends", func(t *testing.T) {
		_, err := store.String("anything")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoBackends)
		assert.Contains(t, err.Error(), "anything")
	})

	t.Run("SetFailsWithNoBackends", func(t *testing.T) {
		err := store.SetString("anything", "value")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoBackends)
	})

	t.Run("ForEachVisitsNothing", func(t *testing.T) {
		visited := 0
		err := store.ForEach(func(name, value string) error {
			visited++
			return nil
		})
		assert.NoError(t, err)
		assert.Zero(t, visited)
	})
}

func TestRegisterNilBackendPanics(t *testing.T) {
	store := New()
	assert.Panics(t, func() { store.Register(nil, 1) })
}

func TestPriorityRouting(t *testing.T) {
	t.Run("HighestPriorityWinsRegardlessOfOrder", func(t *testing.T) {
		low := newFakeBackend("low", "key", "low-value")
		high := newFakeBackend("high", "key", "high-value")
		mid := newFakeBackend("mid", "key", "mid-value")

		store := New()
		store.Register(low, 5)
		store.Register(high, 20)
		store.Register(mid, 1)

		value, err := store.String("key")
		require.NoError(t, err)
		assert.Equal(t, "high-value", value)

		require.NoError(t, store.SetString("other", "x"))
		_, exists := high.values["other"]
		assert.True(t, exists, "write must land in the priority-20 backend")
		_, exists = low.values["other"]
		assert.False(t, exists)
	})

	t.Run("LaterHigherPriorityTakesOver", func(t *testing.T) {
		first := newFakeBackend("first", "key", "first-value")
		store := New()
		store.Register(first, 7)

		value, err := store.String("key")
		require.NoError(t, err)
		assert.Equal(t, "first-value", value)

		second := newFakeBackend("second", "key", "second-value")
		store.Register(second, 8)

		value, err = store.String("key")
		require.NoError(t, err)
		assert.Equal(t, "second-value", value)
	})

	t.Run("EqualPriorityKeepsRegistrationOrder", func(t *testing.T) {
		a := newFakeBackend("a", "key", "a-value")
		b := newFakeBackend("b", "key", "b-value")

		store := New()
		store.Register(a, 3)
		store.Register(b, 3)

		value, err := store.String("key")
		require.NoError(t, err)
		assert.Equal(t, "a-value", value)
	})

	t.Run("NoFallthroughOnMissingKey", func(t *testing.T) {
		top := newFakeBackend("top")
		bottom := newFakeBackend("bottom", "key", "bottom-value")

		store := New()
		store.Register(bottom, 1)
		store.Register(top, 2)

		// The key exists below, but reads never fall through.
		_, err := store.String("key")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestWeakBackReference(t *testing.T) {
	backend := newFakeBackend("bound")
	store := New()
	store.Register(backend, 1)
	assert.Same(t, store, backend.store)
}

func TestForEach(t *testing.T) {
	t.Run("PriorityOrderWithoutDedup", func(t *testing.T) {
		b1 := newFakeBackend("b1", "a", "1", "b", "2")
		b2 := newFakeBackend("b2", "c", "3", "a", "shadowed")

		store := New()
		store.Register(b2, 5)
		store.Register(b1, 10)

		var visited []string
		err := store.ForEach(func(name, value string) error {
			visited = append(visited, name)
			return nil
		})
		require.NoError(t, err)
		// b1's keys in b1's order, then b2's. The duplicate "a" is visited
		// once per backend.
		assert.Equal(t, []string{"a", "b", "c", "a"}, visited)
	})

	t.Run("FailFastSkipsRemainingBackends", func(t *testing.T) {
		boom := errors.New("backend exploded")
		b1 := newFakeBackend("b1", "a", "1", "b", "2")
		b1.forEachErr = boom
		b1.failAfter = 1
		b2 := newFakeBackend("b2", "c", "3")

		store := New()
		store.Register(b1, 10)
		store.Register(b2, 5)

		var visited []string
		err := store.ForEach(func(name, value string) error {
			visited = append(visited, name)
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"a"}, visited)
	})

	t.Run("VisitorErrorPropagatesUnchanged", func(t *testing.T) {
		stop := errors.New("stop here")
		store := New()
		store.Register(newFakeBackend("b", "a", "1", "b", "2"), 1)

		err := store.ForEach(func(name, value string) error {
			if name == "b" {
				return stop
			}
			return nil
		})
		assert.ErrorIs(t, err, stop)
	})
}

func TestClose(t *testing.T) {
	t.Run("ClosesEveryBackendExactlyOnce", func(t *testing.T) {
		backends := []*fakeBackend{
			newFakeBackend("b0"),
			newFakeBackend("b1"),
			newFakeBackend("b2"),
		}

		store := New()
		for i, b := range backends {
			store.Register(b, i)
		}

		require.NoError(t, store.Close())
		for i, b := range backends {
			assert.Equal(t, 1, b.closeCount, "backend %d", i)
		}

		// The store is empty afterwards: raw access fails cleanly.
		_, err := store.String("key")
		assert.ErrorIs(t, err, ErrNoBackends)
	})

	t.Run("CloseFailuresAreJoinedAndAllBackendsStillClose", func(t *testing.T) {
		bad := newFakeBackend("bad")
		bad.closeErr = fmt.Errorf("flush failed")
		good := newFakeBackend("good")

		store := New()
		store.Register(bad, 2)
		store.Register(good, 1)

		err := store.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flush failed")
		assert.Equal(t, 1, bad.closeCount)
		assert.Equal(t, 1, good.closeCount)
	})
}

func TestErrorContextTrail(t *testing.T) {
	store := New()

	_, err := store.Int64("window")
	require.Error(t, err)

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrNoBackends)

	// Every propagation site appended one entry, outermost first.
	trail := ce.Trail()
	require.Len(t, trail, 3)
	assert.Contains(t, trail[0], "window")
	assert.Contains(t, trail[1], "window")
	assert.Contains(t, trail[2], "store is empty")
}
