// Package segment picks slices of long source texts for generation requests
// so that consecutive requests see varied material, and prefetches the next
// generated unit in the background.
package segment

import (
	"math/rand/v2"
	"slices"
)

// WindowSize returns how many recent picks are remembered for a text split
// into total segments: min(total-1, max(2, total/2)).
func WindowSize(total int) int {
	if total <= 1 {
		return 0
	}
	return min(total-1, max(2, total/2))
}

// Next picks a segment index in [0, total).
//
// With nothing used yet it returns 0. Otherwise it picks uniformly among the
// indices not in recent. When recent covers every index, it returns the
// successor of the least recently used entry (recent[0]), stepping once more
// if that successor is itself in recent.
func Next(total int, recent []int, rng *rand.Rand) int {
	if total <= 1 || len(recent) == 0 {
		return 0
	}

	used := make([]bool, total)
	for _, i := range recent {
		if i >= 0 && i < total {
			used[i] = true
		}
	}

	free := make([]int, 0, total)
	for i, u := range used {
		if !u {
			free = append(free, i)
		}
	}
	if len(free) > 0 {
		return free[intN(rng, len(free))]
	}

	next := (recent[0] + 1) % total
	if used[next] {
		next = (next + 1) % total
	}
	return next
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

// Rotation hands out segment indices for one source text across a session.
//
// Besides the sliding window of recent picks it remembers which indices the
// current pass has produced, so every index is handed out once before any
// index repeats. Not safe for concurrent use.
type Rotation struct {
	total  int
	window []int
	pass   []int
	rng    *rand.Rand
}

// NewRotation creates a Rotation over total segments. A nil rng uses the
// global source.
func NewRotation(total int, rng *rand.Rand) *Rotation {
	if total < 1 {
		total = 1
	}
	return &Rotation{total: total, rng: rng}
}

// Total returns the segment count.
func (r *Rotation) Total() int { return r.total }

// Window returns a copy of the recent-picks window, oldest first.
func (r *Rotation) Window() []int { return slices.Clone(r.window) }

// Pick returns the next segment index and records it.
func (r *Rotation) Pick() int {
	if len(r.pass) >= r.total {
		r.pass = r.pass[:0]
	}

	// Window entries left over from the previous pass are older than
	// anything in the current pass.
	exclude := make([]int, 0, len(r.window)+len(r.pass))
	for _, i := range r.window {
		if !slices.Contains(r.pass, i) {
			exclude = append(exclude, i)
		}
	}
	exclude = append(exclude, r.pass...)

	idx := Next(r.total, exclude, r.rng)
	r.accept(idx)
	return idx
}

func (r *Rotation) accept(idx int) {
	r.pass = append(r.pass, idx)
	r.window = append(r.window, idx)
	if size := WindowSize(r.total); len(r.window) > size {
		r.window = r.window[len(r.window)-size:]
	}
}

// Release forgets the most recent pick of idx, returning it to the current
// pass. It is for picks whose unit was never delivered.
func (r *Rotation) Release(idx int) {
	r.pass = dropLast(r.pass, idx)
	r.window = dropLast(r.window, idx)
}

func dropLast(s []int, v int) []int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return slices.Delete(s, i, i+1)
		}
	}
	return s
}

// Reset forgets all picks.
func (r *Rotation) Reset() {
	r.window = nil
	r.pass = nil
}
