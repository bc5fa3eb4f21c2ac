package content

import (
	"strings"

	"github.com/abhisek/pathwise/internal/scorer"
)

// Goal is one learning objective. Refs are anchors into the shared content
// document, in walkthrough order.
type Goal struct {
	ID    string          `yaml:"id"`
	Title string          `yaml:"title"`
	Refs  []string        `yaml:"refs"`
	Entry []EntryQuestion `yaml:"entry"`
}

// Section is an anchored part of the shared content document. A goal's
// steps are the sections its refs point at.
type Section struct {
	Anchor   string    `yaml:"anchor"`
	Title    string    `yaml:"title"`
	Blocks   []Block   `yaml:"blocks"`
	Exercise *Exercise `yaml:"exercise,omitempty"`
}

// BlockKind is the rendering hint for a content block.
type BlockKind string

const (
	BlockText BlockKind = "text"
	BlockCode BlockKind = "code"
	BlockNote BlockKind = "note"
)

// Block is one renderable unit of step content.
type Block struct {
	Kind BlockKind `yaml:"kind"`
	Body string    `yaml:"body"`
}

// Exercise is an optional closed question embedded in a step. Marking the
// step done submits it.
type Exercise struct {
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Answer  int      `yaml:"answer"`
}

// CorrectOption implements scorer.Keyed.
func (e Exercise) CorrectOption() int { return e.Answer }

// Step is one instructional unit of a goal's walkthrough.
type Step struct {
	Anchor   string
	Title    string
	Blocks   []Block
	Exercise *Exercise
}

// Text returns the step's prose, used as the source for reflection
// questions.
func (s Step) Text() string {
	var b strings.Builder
	b.WriteString(s.Title)
	for _, blk := range s.Blocks {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(blk.Body))
	}
	return b.String()
}

// QuestionKind separates locally graded items from gateway graded ones.
type QuestionKind string

const (
	KindClosed QuestionKind = "closed"
	KindOpen   QuestionKind = "open"
)

// Option is a candidate answer of a closed entry question.
type Option struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// EntryQuestion is a diagnostic item. Closed items carry Options; open items
// carry a Reference answer, optional Case text and reference Feedback.
type EntryQuestion struct {
	Kind      QuestionKind `yaml:"kind"`
	Stem      string       `yaml:"stem"`
	Level     scorer.Level `yaml:"level"`
	Options   []Option     `yaml:"options,omitempty"`
	Case      string       `yaml:"case,omitempty"`
	Reference string       `yaml:"reference,omitempty"`
	Feedback  []string     `yaml:"feedback,omitempty"`
}

// CorrectOption implements scorer.Keyed.
func (q EntryQuestion) CorrectOption() int {
	for i, o := range q.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// IsOpen reports whether the item is graded by the gateway.
func (q EntryQuestion) IsOpen() bool { return q.Kind == KindOpen }

// Document is the on-disk shape of one content file.
type Document struct {
	SchemaVersion string    `yaml:"schema_version"`
	Goals         []Goal    `yaml:"goals"`
	Sections      []Section `yaml:"sections"`
}
