package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observer struct{ name string }

func TestRegistry_AddIsIdempotent(t *testing.T) {
	r := New[int, *observer]()
	o := &observer{name: "a"}

	assert.True(t, r.Add(7, o))
	assert.False(t, r.Add(7, o))
	assert.Equal(t, 1, r.Len(7))
}

func TestRegistry_SameObserverDifferentKeys(t *testing.T) {
	r := New[int, *observer]()
	o := &observer{name: "a"}

	r.Add(3, o)
	r.Add(7, o)
	assert.Equal(t, 1, r.Len(3))
	assert.Equal(t, 1, r.Len(7))
}

func TestRegistry_RemoveAbsentBucket(t *testing.T) {
	r := New[string, *observer]()

	index, found := r.Remove("chan42", &observer{})
	assert.Equal(t, -1, index)
	assert.False(t, found)
}

func TestRegistry_RemoveUnknownObserver(t *testing.T) {
	r := New[string, *observer]()
	r.Add("k", &observer{name: "a"})

	index, found := r.Remove("k", &observer{name: "a"})
	assert.Equal(t, -1, index, "observers are compared by identity")
	assert.True(t, found)
	assert.Equal(t, 1, r.Len("k"))
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := New[int, *observer]()
	a, b, c := &observer{"a"}, &observer{"b"}, &observer{"c"}
	r.Add(1, a)
	r.Add(1, b)
	r.Add(1, c)
	r.Remove(1, b)
	r.Add(1, b)

	var names []string
	ok := r.Each(1, func(o *observer) { names = append(names, o.name) })
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "c", "b"}, names)
}

func TestRegistry_RemoveReportsIndex(t *testing.T) {
	r := New[int, *observer]()
	a, b, c := &observer{"a"}, &observer{"b"}, &observer{"c"}
	r.Add(1, a)
	r.Add(1, b)
	r.Add(1, c)

	index, found := r.Remove(1, b)
	assert.True(t, found)
	assert.Equal(t, 1, index)
}

func TestRegistry_InsertRestoresPosition(t *testing.T) {
	r := New[int, *observer]()
	a, b, c := &observer{"a"}, &observer{"b"}, &observer{"c"}
	r.Add(1, a)
	r.Add(1, b)
	r.Add(1, c)

	index, _ := r.Remove(1, a)
	require.Equal(t, 0, index)
	assert.True(t, r.Insert(1, index, a))
	assert.False(t, r.Insert(1, 2, a), "already present")

	var names []string
	r.Each(1, func(o *observer) { names = append(names, o.name) })
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestRegistry_InsertClampsIndex(t *testing.T) {
	r := New[int, *observer]()
	a, b := &observer{"a"}, &observer{"b"}
	r.Add(1, a)

	assert.True(t, r.Insert(1, 10, b))
	assert.True(t, r.Insert(2, -3, a), "missing bucket is created")

	snap, _ := r.Snapshot(1)
	require.Len(t, snap, 2)
	assert.Same(t, b, snap[1])
	assert.Equal(t, 1, r.Len(2))
}

func TestRegistry_EachMissingKey(t *testing.T) {
	r := New[int, *observer]()
	called := false
	ok := r.Each(9, func(*observer) { called = true })
	assert.False(t, ok)
	assert.False(t, called)
}

func TestRegistry_MutationDuringFanout(t *testing.T) {
	r := New[int, *observer]()
	a, b := &observer{"a"}, &observer{"b"}
	r.Add(1, a)
	r.Add(1, b)

	late := &observer{"late"}
	var seen []string
	r.Each(1, func(o *observer) {
		seen = append(seen, o.name)
		// Unregistering mid-fanout must not affect the running iteration.
		r.Remove(1, b)
		r.Add(1, late)
	})

	assert.Equal(t, []string{"a", "b"}, seen)
	snap, ok := r.Snapshot(1)
	require.True(t, ok)
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].name)
	assert.Equal(t, "late", snap[1].name)
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	r := New[int, *observer]()
	r.Add(1, &observer{"a"})

	snap, _ := r.Snapshot(1)
	snap[0] = &observer{"mutated"}

	again, _ := r.Snapshot(1)
	assert.Equal(t, "a", again[0].name)
}

func TestRegistry_DeleteAndReset(t *testing.T) {
	r := New[int, *observer]()
	r.Add(1, &observer{})
	r.Add(2, &observer{})

	r.Delete(1)
	assert.ElementsMatch(t, []int{2}, r.Keys())

	r.Reset()
	assert.Empty(t, r.Keys())
	assert.False(t, r.Contains(2, &observer{}))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New[int, *observer]()
	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				o := &observer{}
				r.Add(w%2, o)
				r.Each(w%2, func(*observer) {})
				r.Remove(w%2, o)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len(0))
	assert.Equal(t, 0, r.Len(1))
}
