// Package vss implements the Valid State Space: the sorted, densely
// packed array of every legal joint state on a map, with bounded caches
// that amortize repeated lookups during policy iteration.
//
// In the system this package is modeled on, sequential and parallel
// training used distinct backing containers (a plain array vs. a
// process-shared one) because training ran across OS processes. Go's
// shared heap and goroutines erase that distinction: one ValidStateSpace,
// backed by one slice, is read (and selectively written-into by range,
// see package train) by every worker without copying.
package vss

import (
	"errors"

	"github.com/niceyeti/gridagent/geometry"
)

// ErrNotValid is returned when a lookup is attempted for a state that is
// not a member of the valid state space.
var ErrNotValid = errors.New("vss: state is not a member of the valid state space")

// ValidStateSpace is the sorted sequence of packed indices of all valid
// joint states for a fixed map and obstacle layout, plus the two bounded
// FIFO caches used to amortize get_valid_index / is_state_outside_obstacles.
type ValidStateSpace struct {
	mapSize geometry.MapSize
	arr     backing

	validCache    *fifoCache // packed index -> valid index
	notValidCache *fifoCache // packed index -> last smaller valid index
}

// Build enumerates every joint state on a grid of size mapSize with the
// given obstacles, admits the valid ones in packed-index order, and
// freezes them into the narrowest backing array that fits the largest
// admitted packed index.
func Build(mapSize geometry.Vec2D, obstacles []geometry.Obstacle) *ValidStateSpace {
	m := geometry.NewMapSize(mapSize.X, mapSize.Y)
	indices := make([]int, 0, m.N3M3/4)
	for idx := 0; idx < m.N3M3; idx++ {
		s := geometry.Unpack(idx, m)
		if s.Valid(m, obstacles) {
			indices = append(indices, idx)
		}
	}

	cacheCapacity := 3 * m.N
	return &ValidStateSpace{
		mapSize:       m,
		arr:           newBacking(indices),
		validCache:    newFIFOCache(cacheCapacity),
		notValidCache: newFIFOCache(cacheCapacity),
	}
}

// MapSize returns the packing coefficients this space was built with.
func (v *ValidStateSpace) MapSize() geometry.MapSize { return v.mapSize }

// Len returns space_size, the number of valid joint states.
func (v *ValidStateSpace) Len() int { return v.arr.Len() }

// State materializes the k-th valid state.
func (v *ValidStateSpace) State(k int) geometry.State {
	return geometry.Unpack(v.arr.Get(k), v.mapSize)
}

// CopyInto materializes the k-th valid state into dst without allocating.
func (v *ValidStateSpace) CopyInto(dst *geometry.State, k int) {
	*dst = geometry.Unpack(v.arr.Get(k), v.mapSize)
}

// GetValidIndex returns the valid index of a known-valid state s,
// consulting valid_cache first. It returns ErrNotValid if s is not a
// member of the space.
func (v *ValidStateSpace) GetValidIndex(s geometry.State) (int, error) {
	packed := s.Pack(v.mapSize)
	if k, ok := v.validCache.Get(packed); ok {
		return k, nil
	}
	found, k := v.binarySearch(packed)
	if !found {
		return 0, ErrNotValid
	}
	v.addToValidCache(packed, k)
	return k, nil
}

// IsStateOutsideObstacles reports whether s clears every obstacle. It
// assumes s is already known to be within map bounds. A cache miss falls
// through to binary search and populates whichever cache applies, plus
// opportunistic neighbour entries.
func (v *ValidStateSpace) IsStateOutsideObstacles(s geometry.State) bool {
	packed := s.Pack(v.mapSize)
	if v.validCache.Has(packed) {
		return true
	}
	if v.notValidCache.Has(packed) {
		return false
	}
	found, k := v.binarySearch(packed)
	if found {
		v.addToValidCache(packed, k)
	} else {
		v.addToNotValidCache(packed, k)
	}
	return found
}

// WithinBounds reports whether every position in s lies on the grid.
func (v *ValidStateSpace) WithinBounds(s geometry.State) bool {
	return s.WithinBounds(v.mapSize)
}

// Contains reports whether packed is the packed index of a valid state.
func (v *ValidStateSpace) Contains(packed int) bool {
	found, _ := v.binarySearch(packed)
	return found
}

// ContainsState reports whether s is a valid member of the space: within
// bounds and outside every obstacle (target != opponent states were
// never admitted into the backing array, so they fall out of the binary
// search naturally).
func (v *ValidStateSpace) ContainsState(s geometry.State) bool {
	return v.WithinBounds(s) && v.IsStateOutsideObstacles(s)
}

// ForEach visits every valid state in increasing packed-index order,
// stopping early if fn returns false.
func (v *ValidStateSpace) ForEach(fn func(index int, s geometry.State) bool) {
	for i := 0; i < v.Len(); i++ {
		if !fn(i, v.State(i)) {
			return
		}
	}
}

// ForEachReverse visits every valid state in decreasing packed-index order.
func (v *ValidStateSpace) ForEachReverse(fn func(index int, s geometry.State) bool) {
	for i := v.Len() - 1; i >= 0; i-- {
		if !fn(i, v.State(i)) {
			return
		}
	}
}

// binarySearch returns (true, k) if packed is found at position k, else
// (false, j) where j is the position of the largest element smaller than
// packed, or -1 if none.
func (v *ValidStateSpace) binarySearch(packed int) (bool, int) {
	i, j := 0, v.Len()-1
	for i <= j {
		k := (i + j) / 2
		got := v.arr.Get(k)
		switch {
		case got == packed:
			return true, k
		case got < packed:
			i = k + 1
		default:
			j = k - 1
		}
	}
	return false, j
}

func (v *ValidStateSpace) addToValidCache(packed, validIndex int) {
	v.validCache.Set(packed, validIndex)
	v.loadNeighbours(packed, validIndex, true)
}

func (v *ValidStateSpace) addToNotValidCache(packed, lastSmallerValidIndex int) {
	v.notValidCache.Set(packed, lastSmallerValidIndex)
	v.loadNeighbours(packed, lastSmallerValidIndex, false)
}

// loadNeighbours exploits the fact that a single Action changes a packed
// index by a small, predictable delta: the predecessor and successor
// slots of the backing array reveal runs of adjacent valid/invalid
// packed indices, which are opportunistically inserted into both caches.
func (v *ValidStateSpace) loadNeighbours(packed, validIndex int, isValid bool) {
	prevValidIdx := validIndex
	if isValid {
		prevValidIdx = validIndex - 1
	}
	prevPacked := packed - 1
	nextValidIdx := validIndex + 1
	nextPacked := packed + 1

	if prevValidIdx > -1 {
		prevFound := v.arr.Get(prevValidIdx)
		if prevFound == prevPacked {
			v.validCache.Set(prevPacked, prevValidIdx)
		} else {
			v.validCache.Set(prevFound, prevValidIdx)
			v.notValidCache.Set(prevFound+1, prevValidIdx)
			v.notValidCache.Set(prevPacked, prevValidIdx)
		}
	} else {
		v.notValidCache.Set(prevPacked, prevValidIdx)
	}

	if nextValidIdx < v.Len() {
		nextFound := v.arr.Get(nextValidIdx)
		if nextFound == nextPacked {
			v.validCache.Set(nextPacked, nextValidIdx)
		} else {
			v.validCache.Set(nextFound, nextValidIdx)
			v.notValidCache.Set(nextFound-1, validIndex)
			v.notValidCache.Set(nextPacked, validIndex)
		}
	} else {
		v.notValidCache.Set(nextPacked, validIndex)
	}
}
