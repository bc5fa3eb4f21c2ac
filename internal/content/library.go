package content

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/scorer"
)

//go:embed sample/*.yaml
var sampleFS embed.FS

// ErrGoalNotFound is returned for unknown goal ids.
var ErrGoalNotFound = errors.New("goal not found")

// Library holds the goals and the shared content document. It is read-only
// after loading.
type Library struct {
	mu       sync.RWMutex
	goals    map[string]Goal
	order    []string
	sections map[string]Section
	log      *logger.Logger
}

// LoadDir loads every *.yaml / *.yml file under dir.
func LoadDir(dir string, log *logger.Logger) (*Library, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	return Load(os.DirFS(dir), log)
}

// Sample returns the built-in sample course.
func Sample(log *logger.Logger) (*Library, error) {
	sub, err := fs.Sub(sampleFS, "sample")
	if err != nil {
		return nil, err
	}
	return Load(sub, log)
}

// Load reads all content files in fsys and validates cross references.
func Load(fsys fs.FS, log *logger.Logger) (*Library, error) {
	if log == nil {
		log = logger.Nop()
	}
	l := &Library{
		goals:    make(map[string]Goal),
		sections: make(map[string]Section),
		log:      log,
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case ".yaml", ".yml":
			return l.loadFile(fsys, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	if err := l.validate(); err != nil {
		return nil, err
	}

	log.Info("content loaded", "goals", len(l.goals), "sections", len(l.sections))
	return l, nil
}

func (l *Library) loadFile(fsys fs.FS, p string) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	if err := checkVersion(doc.SchemaVersion); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	for _, s := range doc.Sections {
		if s.Anchor == "" {
			return fmt.Errorf("%s: section %q has no anchor", p, s.Title)
		}
		if _, dup := l.sections[s.Anchor]; dup {
			return fmt.Errorf("%s: duplicate section anchor %q", p, s.Anchor)
		}
		l.sections[s.Anchor] = s
	}

	for _, g := range doc.Goals {
		if g.ID == "" {
			return fmt.Errorf("%s: goal %q has no id", p, g.Title)
		}
		if _, dup := l.goals[g.ID]; dup {
			return fmt.Errorf("%s: duplicate goal id %q", p, g.ID)
		}
		l.goals[g.ID] = g
		l.order = append(l.order, g.ID)
	}
	return nil
}

func (l *Library) validate() error {
	for _, id := range l.order {
		g := l.goals[id]
		if len(g.Refs) == 0 {
			return fmt.Errorf("goal %q has no content refs", id)
		}
		for _, ref := range g.Refs {
			s, ok := l.sections[ref]
			if !ok {
				return fmt.Errorf("goal %q references unknown section %q", id, ref)
			}
			if ex := s.Exercise; ex != nil && (ex.Answer < 0 || ex.Answer >= len(ex.Options)) {
				return fmt.Errorf("section %q exercise answer %d out of range", ref, ex.Answer)
			}
		}
		for i, q := range g.Entry {
			if err := validateEntry(q); err != nil {
				return fmt.Errorf("goal %q entry question %d: %w", id, i+1, err)
			}
		}
	}
	return nil
}

func validateEntry(q EntryQuestion) error {
	if strings.TrimSpace(q.Stem) == "" {
		return errors.New("empty stem")
	}
	if !slices.Contains(scorer.Levels, q.Level) {
		return fmt.Errorf("taxonomy level %d not in 1..3", q.Level)
	}
	switch q.Kind {
	case KindClosed:
		if len(q.Options) < 2 {
			return errors.New("closed question needs at least two options")
		}
		n := 0
		for _, o := range q.Options {
			if o.Correct {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("closed question has %d correct options, want 1", n)
		}
	case KindOpen:
		if strings.TrimSpace(q.Reference) == "" {
			return errors.New("open question needs a reference answer")
		}
	default:
		return fmt.Errorf("unknown question kind %q", q.Kind)
	}
	return nil
}

// Goals returns all goals in load order.
func (l *Library) Goals() []Goal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Goal, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.goals[id])
	}
	return out
}

// Goal returns the goal with id.
func (l *Library) Goal(id string) (Goal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.goals[id]
	if !ok {
		return Goal{}, fmt.Errorf("%w: %q", ErrGoalNotFound, id)
	}
	return g, nil
}

// Steps resolves a goal's refs into its ordered steps.
func (l *Library) Steps(g Goal) []Step {
	l.mu.RLock()
	defer l.mu.RUnlock()
	steps := make([]Step, 0, len(g.Refs))
	for _, ref := range g.Refs {
		s := l.sections[ref]
		steps = append(steps, Step{
			Anchor:   s.Anchor,
			Title:    s.Title,
			Blocks:   s.Blocks,
			Exercise: s.Exercise,
		})
	}
	return steps
}

// EntryQuestions returns the goal's diagnostic items. The engine treats an
// error and an empty result the same way: the entry test is unavailable.
func (l *Library) EntryQuestions(_ context.Context, goalID string) ([]EntryQuestion, error) {
	g, err := l.Goal(goalID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(g.Entry), nil
}

// GoalText aggregates every step of g into one source text.
func (l *Library) GoalText(g Goal) string {
	steps := l.Steps(g)
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		parts = append(parts, s.Text())
	}
	return strings.Join(parts, "\n\n")
}
