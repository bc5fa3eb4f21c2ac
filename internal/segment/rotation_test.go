package segment

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestWindowSize(t *testing.T) {
	tests := []struct {
		total, want int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 2},
		{6, 3},
		{10, 5},
		{11, 5},
	}
	for _, tt := range tests {
		if got := WindowSize(tt.total); got != tt.want {
			t.Errorf("WindowSize(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestNext_FirstPickIsZero(t *testing.T) {
	for total := 1; total < 8; total++ {
		if got := Next(total, nil, testRNG(1)); got != 0 {
			t.Errorf("Next(%d, nil) = %d, want 0", total, got)
		}
	}
}

func TestNext_AvoidsRecent(t *testing.T) {
	rng := testRNG(7)
	for trial := 0; trial < 500; trial++ {
		total := 2 + rng.IntN(10)
		k := 1 + rng.IntN(total-1)
		recent := rng.Perm(total)[:k]
		got := Next(total, recent, rng)
		if slices.Contains(recent, got) {
			t.Fatalf("Next(%d, %v) = %d, which is in the window", total, recent, got)
		}
		if got < 0 || got >= total {
			t.Fatalf("Next(%d, %v) = %d out of range", total, recent, got)
		}
	}
}

func TestNext_Saturated(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		recent []int
		want   int
	}{
		// Every index is recent, so the successor is always skipped once.
		{"lru 2 of 4", 4, []int{2, 0, 1, 3}, 0},
		{"wraps", 3, []int{2, 0, 1}, 1},
		{"lru 1 of 4", 4, []int{1, 2, 0, 3}, 3},
		{"duplicates", 2, []int{1, 0, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.total, tt.recent, testRNG(3)); got != tt.want {
				t.Errorf("Next(%d, %v) = %d, want %d", tt.total, tt.recent, got, tt.want)
			}
		})
	}
}

func TestRotation_CoversAllBeforeRepeat(t *testing.T) {
	for total := 2; total <= 12; total++ {
		for seed := uint64(0); seed < 20; seed++ {
			r := NewRotation(total, testRNG(seed))
			var picks []int
			for i := 0; i < total*4; i++ {
				picks = append(picks, r.Pick())
			}
			for pass := 0; pass < 4; pass++ {
				seen := make(map[int]bool)
				for _, p := range picks[pass*total : (pass+1)*total] {
					if seen[p] {
						t.Fatalf("total=%d seed=%d: %d repeated within pass %d: %v", total, seed, p, pass, picks)
					}
					seen[p] = true
				}
			}
		}
	}
}

func TestRotation_NeverPicksFromWindow(t *testing.T) {
	r := NewRotation(7, testRNG(42))
	for i := 0; i < 200; i++ {
		window := r.Window()
		got := r.Pick()
		if slices.Contains(window, got) {
			t.Fatalf("pick %d: %d was in window %v", i, got, window)
		}
		if len(r.Window()) > WindowSize(7) {
			t.Fatalf("window grew to %d", len(r.Window()))
		}
	}
}

func TestRotation_FirstPickAndReset(t *testing.T) {
	r := NewRotation(5, testRNG(9))
	if got := r.Pick(); got != 0 {
		t.Fatalf("first pick = %d, want 0", got)
	}
	r.Pick()
	r.Reset()
	if got := r.Pick(); got != 0 {
		t.Errorf("pick after reset = %d, want 0", got)
	}
}

func TestRotation_SingleSegment(t *testing.T) {
	r := NewRotation(1, nil)
	for i := 0; i < 5; i++ {
		if got := r.Pick(); got != 0 {
			t.Fatalf("Pick() = %d, want 0", got)
		}
	}
	if len(r.Window()) != 0 {
		t.Errorf("window = %v, want empty", r.Window())
	}
}

func TestRotation_TwoSegmentsAlternate(t *testing.T) {
	r := NewRotation(2, testRNG(5))
	want := []int{0, 1, 0, 1, 0, 1}
	for i, w := range want {
		if got := r.Pick(); got != w {
			t.Fatalf("pick %d = %d, want %d", i, got, w)
		}
	}
}

func TestRotation_ReleaseReturnsPickToPass(t *testing.T) {
	r := NewRotation(4, testRNG(7))
	first := r.Pick()
	dropped := r.Pick()
	r.Release(dropped)

	if w := r.Window(); !slices.Equal(w, []int{first}) {
		t.Fatalf("window after release = %v, want [%d]", w, first)
	}
	seen := map[int]bool{first: true}
	for range 3 {
		idx := r.Pick()
		if seen[idx] {
			t.Fatalf("segment %d repeated within a pass", idx)
		}
		seen[idx] = true
	}
	if !seen[dropped] {
		t.Errorf("released segment %d not handed out again", dropped)
	}
}
