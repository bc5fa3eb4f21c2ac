package scorer

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item int

func (i item) CorrectOption() int { return int(i) }

func TestScoreClosed(t *testing.T) {
	questions := []item{0, 2, 1, -1}
	tests := []struct {
		name       string
		selections []int
		want       Tally
	}{
		{"all correct", []int{0, 2, 1, 0}, Tally{Correct: 3, Total: 4}},
		{"unanswered", []int{-1, -1, -1, -1}, Tally{Correct: 0, Total: 4}},
		{"short selections", []int{0}, Tally{Correct: 1, Total: 4}},
		{"none", nil, Tally{Correct: 0, Total: 4}},
		{"wrong", []int{1, 1, 0, 0}, Tally{Correct: 0, Total: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreClosed(questions, tt.selections))
		})
	}
}

func TestScoreClosed_ReorderInvariant(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 200; trial++ {
		n := 1 + r.IntN(10)
		qs := make([]item, n)
		sel := make([]int, n)
		for i := range qs {
			qs[i] = item(r.IntN(4))
			sel[i] = r.IntN(5) - 1
		}
		base := ScoreClosed(qs, sel)

		perm := r.Perm(n)
		pq := make([]item, n)
		ps := make([]int, n)
		for i, p := range perm {
			pq[i] = qs[p]
			ps[i] = sel[p]
		}
		assert.Equal(t, base, ScoreClosed(pq, ps), "trial %d", trial)
	}
}

func TestScoreOpen(t *testing.T) {
	assert.Equal(t, 0, ScoreOpen(nil))
	assert.Equal(t, 2, ScoreOpen([]bool{true, false, true}))
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{4, 5, 80},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds away from zero
		{3, 8, 38}, // 37.5
		{2, 4, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.correct, tt.total), "Percentage(%d, %d)", tt.correct, tt.total)
	}
}

func TestPercentage_Bounds(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for correct := 0; correct <= total; correct++ {
			p := Percentage(correct, total)
			if p < 0 || p > 100 {
				t.Fatalf("Percentage(%d, %d) = %d out of range", correct, total, p)
			}
		}
	}
}

func TestBucketByLevel(t *testing.T) {
	buckets := BucketByLevel([]ItemResult{
		{Correct: true, Level: LevelRemember},
		{Correct: false, Level: LevelRemember},
		{Correct: true, Level: LevelApply},
		{Correct: true, Level: Level(9)},
	})
	assert.Equal(t, map[Level]Tally{
		LevelRemember:   {Correct: 1, Total: 2},
		LevelUnderstand: {},
		LevelApply:      {Correct: 1, Total: 1},
	}, buckets)
}

func TestBucketByLevel_Empty(t *testing.T) {
	buckets := BucketByLevel(nil)
	assert.Len(t, buckets, 3)
	for _, l := range Levels {
		assert.Equal(t, Tally{}, buckets[l])
	}
}

func TestProficiency(t *testing.T) {
	assert.Equal(t, 0, Proficiency(0))
	assert.Equal(t, 0, Proficiency(49))
	assert.Equal(t, 1, Proficiency(50))
	assert.Equal(t, 1, Proficiency(74))
	assert.Equal(t, 2, Proficiency(75))
	assert.Equal(t, 2, Proficiency(100))
}

func TestProficiency_Monotonic(t *testing.T) {
	prev := Proficiency(0)
	for p := 1; p <= 100; p++ {
		cur := Proficiency(p)
		if cur < prev {
			t.Fatalf("Proficiency(%d) = %d < Proficiency(%d) = %d", p, cur, p-1, prev)
		}
		prev = cur
	}
}

func TestPassed(t *testing.T) {
	assert.False(t, Passed(69))
	assert.True(t, Passed(70))
	assert.True(t, Passed(100))
}

// Entry test with four closed questions: two correct at level 1, one correct
// at level 2 and one wrong at level 3.
func TestScenario_EntryAggregation(t *testing.T) {
	results := []ItemResult{
		{Correct: true, Level: LevelRemember},
		{Correct: true, Level: LevelRemember},
		{Correct: true, Level: LevelUnderstand},
		{Correct: false, Level: LevelApply},
	}
	pct := Percentage(Correct(results), len(results))
	assert.Equal(t, 75, pct)
	assert.Equal(t, 2, Proficiency(pct))

	buckets := BucketByLevel(results)
	assert.Equal(t, Tally{2, 2}, buckets[LevelRemember])
	assert.Equal(t, Tally{1, 1}, buckets[LevelUnderstand])
	assert.Equal(t, Tally{0, 1}, buckets[LevelApply])
}
