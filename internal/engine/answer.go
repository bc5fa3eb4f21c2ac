package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Minimum answer lengths, in characters after trimming.
const (
	MinEntryAnswer      = 3
	MinReflectionAnswer = 10
)

// AnswerLength counts the characters of a free-text answer: surrounding
// space is trimmed and the text NFC-normalized so a composed and a
// decomposed accent count the same.
func AnswerLength(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(strings.TrimSpace(s)))
}

func entryAnswerWarning(answer string) string {
	if AnswerLength(answer) >= MinEntryAnswer {
		return ""
	}
	return fmt.Sprintf("Please write at least %d characters.", MinEntryAnswer)
}

func reflectionAnswerWarning(answer string) string {
	if AnswerLength(answer) >= MinReflectionAnswer {
		return ""
	}
	return fmt.Sprintf("Your reflection needs at least %d characters. Explain the idea in your own words.", MinReflectionAnswer)
}
