package shuffle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) *History {
	return New(rand.New(rand.NewSource(seed)))
}

func TestNext_SingleTrack(t *testing.T) {
	h := seeded(1)
	assert.Equal(t, 0, h.Next(1, 0))
	assert.Equal(t, 0, h.Next(0, -1))
}

func TestNext_VisitsDistinctIndicesBeforeRepeating(t *testing.T) {
	for size := 2; size <= 12; size++ {
		for seed := int64(0); seed < 20; seed++ {
			h := seeded(seed)
			current := h.Start(size)
			seen := map[int]bool{current: true}

			for i := 0; i < size-1; i++ {
				next := h.Next(size, current)
				require.NotEqual(t, current, next, "size=%d seed=%d", size, seed)
				require.False(t, seen[next], "index %d repeated within a cycle (size=%d seed=%d)", next, size, seed)
				seen[next] = true
				current = next
			}
			assert.Len(t, seen, size)
		}
	}
}

func TestNext_CycleRestartKeepsCurrent(t *testing.T) {
	const size = 5
	h := seeded(7)
	current := h.Start(size)
	for i := 0; i < size-1; i++ {
		current = h.Next(size, current)
	}
	require.Equal(t, size, h.Depth())

	next := h.Next(size, current)
	assert.NotEqual(t, current, next)
	assert.Equal(t, []int{current, next}, h.Entries())
}

func TestNext_CycleCompletionEveryIndexOnce(t *testing.T) {
	const size = 6
	h := seeded(99)
	current := h.Start(size)

	// Two full cycles: each block of size advances covers every index once,
	// counting the seed as the first visit of the first cycle.
	visits := []int{current}
	for i := 0; i < 2*size-1; i++ {
		current = h.Next(size, current)
		visits = append(visits, current)
	}

	first := visits[:size]
	counts := map[int]int{}
	for _, v := range first {
		counts[v]++
	}
	for i := 0; i < size; i++ {
		assert.Equal(t, 1, counts[i], "index %d in first cycle", i)
	}

	for i := 1; i < len(visits); i++ {
		assert.NotEqual(t, visits[i-1], visits[i], "immediate repeat at step %d", i)
	}
}

func TestNext_TwoTracks(t *testing.T) {
	h := seeded(3)
	h.Reset()
	h.entries = append(h.entries, 0)

	assert.Equal(t, 1, h.Next(2, 0), "only unvisited option")
	assert.Equal(t, []int{0, 1}, h.Entries())

	assert.Equal(t, 0, h.Next(2, 1), "cycle restarts from current")
	assert.Equal(t, []int{1, 0}, h.Entries())

	assert.Equal(t, 1, h.Next(2, 0))
}

func TestStart(t *testing.T) {
	h := seeded(5)
	h.entries = append(h.entries, 3, 4)

	seed := h.Start(4)
	assert.GreaterOrEqual(t, seed, 0)
	assert.Less(t, seed, 4)
	assert.Equal(t, []int{seed}, h.Entries())

	assert.Equal(t, -1, h.Start(0))
	assert.Zero(t, h.Depth())
}

func TestPush(t *testing.T) {
	h := seeded(2)
	h.Push(3)
	h.Push(3)
	h.Push(1)
	assert.Equal(t, []int{3, 1}, h.Entries())

	next := h.Next(4, 1)
	assert.NotContains(t, []int{3, 1}, next, "pushed indices count as visited")
}

func TestPrevious(t *testing.T) {
	h := seeded(11)
	h.entries = append(h.entries, 2, 0, 3)

	prev, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, 0, prev)
	assert.Equal(t, []int{2, 0}, h.Entries())

	prev, ok = h.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, prev)

	_, ok = h.Previous()
	assert.False(t, ok)
	assert.Equal(t, []int{2}, h.Entries(), "last entry is kept")
}

func TestPrevious_AfterNextReturnsPriorIndex(t *testing.T) {
	h := seeded(21)
	current := h.Start(8)
	next := h.Next(8, current)
	require.NotEqual(t, current, next)

	prev, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, current, prev)
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		entries []int
		remove  int
		want    []int
	}{
		{"drops and shifts", []int{4, 1, 3, 0}, 1, []int{3, 2, 0}},
		{"absent index only shifts", []int{0, 2, 5}, 1, []int{0, 1, 4}},
		{"last index", []int{2, 0, 1}, 2, []int{0, 1}},
		{"empty", nil, 0, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := seeded(0)
			h.entries = append(h.entries, tt.entries...)
			h.Remove(tt.remove)
			assert.Equal(t, tt.want, h.Entries())
		})
	}
}

func TestReset(t *testing.T) {
	h := seeded(0)
	h.entries = append(h.entries, 1, 2)
	h.Reset()
	assert.Zero(t, h.Depth())
	assert.False(t, h.Visited(1))
}
