// Package shuffle picks track order in shuffle mode. Every track is visited
// once per cycle before any repeats, and a track is never replayed
// back-to-back unless it is the only one.
package shuffle

import (
	"math/rand"
	"time"

	"github.com/samber/lo"
)

// History is the ordered list of indices visited in the current cycle. Once
// a track starts, its index is the last entry.
type History struct {
	entries []int
	rng     *rand.Rand
}

// New creates an empty history. A nil rng uses a time-seeded source.
func New(rng *rand.Rand) *History {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &History{rng: rng}
}

// Start begins a fresh cycle at a uniformly chosen index and returns it.
// Returns -1 for an empty playlist.
func (h *History) Start(size int) int {
	h.Reset()
	if size <= 0 {
		return -1
	}
	seed := h.rng.Intn(size)
	h.entries = append(h.entries, seed)
	return seed
}

// Next picks the next index to play. When every index has been visited the
// cycle restarts from the current index, which is then excluded from the pick.
func (h *History) Next(size, current int) int {
	if size <= 1 {
		return 0
	}

	unvisited := lo.Filter(lo.Range(size), func(i int, _ int) bool {
		return !h.Visited(i)
	})

	if len(unvisited) == 0 {
		h.entries = h.entries[:0]
		if current >= 0 && current < size {
			h.entries = append(h.entries, current)
		}
		unvisited = lo.Without(lo.Range(size), current)
	}

	next := unvisited[h.rng.Intn(len(unvisited))]
	h.entries = append(h.entries, next)
	return next
}

// Push records index as the playing track when it was selected outside Next
// and Previous. It does nothing if index is already the last entry.
func (h *History) Push(index int) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == index {
		return
	}
	h.entries = append(h.entries, index)
}

// Previous drops the current entry and returns the one before it. It returns
// false when there is no earlier entry in this cycle; callers then fall back
// to linear order.
func (h *History) Previous() (int, bool) {
	if len(h.entries) <= 1 {
		return 0, false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Remove mirrors playlist renumbering after the track at index was removed:
// index leaves the history and larger entries shift down by one.
func (h *History) Remove(index int) {
	h.entries = lo.FilterMap(h.entries, func(e int, _ int) (int, bool) {
		switch {
		case e == index:
			return 0, false
		case e > index:
			return e - 1, true
		default:
			return e, true
		}
	})
}

// Reset empties the history.
func (h *History) Reset() {
	h.entries = h.entries[:0]
}

// Depth returns the number of entries.
func (h *History) Depth() int {
	return len(h.entries)
}

// Visited reports whether index was visited in the current cycle.
func (h *History) Visited(index int) bool {
	return lo.Contains(h.entries, index)
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []int {
	out := make([]int, len(h.entries))
	copy(out, h.entries)
	return out
}
