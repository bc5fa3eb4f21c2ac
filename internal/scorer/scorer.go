// Package scorer holds the pure scoring rules for entry and final
// assessments. Nothing in here performs I/O.
package scorer

import "math"

// PassThreshold is the minimum final-assessment percentage that passes.
const PassThreshold = 70

// Proficiency thresholds on the entry percentage.
const (
	noviceBelow       = 50
	intermediateBelow = 75
)

// Level is a Bloom taxonomy level: 1 remember, 2 understand, 3 apply.
type Level int

const (
	LevelRemember   Level = 1
	LevelUnderstand Level = 2
	LevelApply      Level = 3
)

// Levels lists every taxonomy level in ascending order.
var Levels = []Level{LevelRemember, LevelUnderstand, LevelApply}

// Tally is a {correct, total} pair.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Keyed is a closed-form item that knows which candidate is flagged correct.
// CorrectOption returns -1 when no candidate is flagged.
type Keyed interface {
	CorrectOption() int
}

// ItemResult is the graded outcome of one entry question.
type ItemResult struct {
	Correct  bool   `json:"correct"`
	Level    Level  `json:"level"`
	Question string `json:"question"`
}

// ScoreClosed counts selections that match the flagged-correct candidate.
// selections[i] answers questions[i]; a missing or negative selection is
// incorrect.
func ScoreClosed[Q Keyed](questions []Q, selections []int) Tally {
	t := Tally{Total: len(questions)}
	for i, q := range questions {
		if i >= len(selections) || selections[i] < 0 {
			continue
		}
		want := q.CorrectOption()
		if want >= 0 && selections[i] == want {
			t.Correct++
		}
	}
	return t
}

// ScoreOpen counts the gateway-graded open answers that came back correct.
func ScoreOpen(results []bool) int {
	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n
}

// Percentage returns round(100*correct/total) with halves rounded away from
// zero. A zero total is 0%.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// BucketByLevel aggregates results per taxonomy level. Levels 1..3 are always
// present; results tagged with any other level are ignored.
func BucketByLevel(results []ItemResult) map[Level]Tally {
	buckets := make(map[Level]Tally, len(Levels))
	for _, l := range Levels {
		buckets[l] = Tally{}
	}
	for _, r := range results {
		b, ok := buckets[r.Level]
		if !ok {
			continue
		}
		b.Total++
		if r.Correct {
			b.Correct++
		}
		buckets[r.Level] = b
	}
	return buckets
}

// Proficiency maps an entry percentage to 0 (novice), 1 or 2 (advanced).
func Proficiency(percentage int) int {
	switch {
	case percentage < noviceBelow:
		return 0
	case percentage < intermediateBelow:
		return 1
	default:
		return 2
	}
}

// Passed reports whether a final-assessment percentage passes.
func Passed(percentage int) bool {
	return percentage >= PassThreshold
}

// Correct counts the correct entries in results.
func Correct(results []ItemResult) int {
	n := 0
	for _, r := range results {
		if r.Correct {
			n++
		}
	}
	return n
}
