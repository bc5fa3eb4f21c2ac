package engine

import "testing"

func TestAnswerLength(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{" abc ", 3},
		{"café", 4},
		{"cafe\u0301", 4}, // decomposed accent normalizes to one rune
		{"日本語", 3},
	}
	for _, tt := range tests {
		if got := AnswerLength(tt.in); got != tt.want {
			t.Errorf("AnswerLength(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAnswerWarnings(t *testing.T) {
	if entryAnswerWarning("ab") == "" {
		t.Error("2 characters should be rejected for entry answers")
	}
	if entryAnswerWarning("abc") != "" {
		t.Error("3 characters should be accepted for entry answers")
	}
	if reflectionAnswerWarning("123456789") == "" {
		t.Error("9 characters should be rejected for reflections")
	}
	if reflectionAnswerWarning(" 1234567890 ") != "" {
		t.Error("10 characters should be accepted for reflections")
	}
}
