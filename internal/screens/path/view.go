package path

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/scorer"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width, 90)
	var body string

	switch st := s.sess.State.(type) {
	case nil, engine.EntryLoading:
		body = s.renderBusy("Loading the entry test...")
	case engine.EntryQuestionSet:
		body = s.renderEntry(st, cw)
	case engine.EntryGrading:
		body = s.renderBusy(fmt.Sprintf("Grading your answers (%d left)...", len(st.Pending)))
	case engine.EntryAnalyzing:
		body = s.renderBusy("Analyzing your entry test...")
	case engine.EntryUnavailable:
		body = renderUnavailable(st, cw)
	case engine.StepContent:
		body = s.renderStepContent(st, cw, height)
	case engine.ReflectionLoading:
		body = s.renderBusy("Preparing a reflection question...")
	case engine.ReflectionQuestion:
		body = s.renderReflection(st, cw)
	case engine.ReflectionSubmitting:
		body = s.renderBusy("Reading your reflection...")
	case engine.StepFeedback:
		body = s.renderFeedback(st, cw)
	case engine.FinalLoading:
		body = s.renderBusy("Generating your final test...")
	case engine.FinalQuestionSet:
		body = s.renderFinal(cw)
	case engine.FinalFailed:
		body = renderFinalFailed(st, cw)
	case engine.ResultPassed:
		body = s.renderResult(true, cw)
	case engine.ResultFailed:
		body = s.renderResult(false, cw)
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(body))
}

func (s *Screen) renderBusy(label string) string {
	return "\n\n" + s.spinner.View() + " " + theme.Hint.Render(label) + "\n\n" +
		components.ButtonBar(components.Button{Label: "Submit", Disabled: true})
}

func (s *Screen) renderEntry(st engine.EntryQuestionSet, cw int) string {
	var b strings.Builder
	b.WriteString(components.Section("Entry test",
		"Answer what you can. Your results shape the feedback you get along the way.", cw))
	b.WriteString("\n\n")

	for i, in := range s.entry {
		focused := i == s.entryFocus
		q := st.Questions[i]
		var item string
		if in.open {
			var qb strings.Builder
			qb.WriteString(lipgloss.NewStyle().Width(cw).Bold(true).Render(q.Stem))
			if q.Case != "" {
				qb.WriteString("\n" + theme.Note.Width(cw).Render(q.Case))
			}
			qb.WriteString("\n" + in.answer.View())
			item = qb.String()
		} else {
			item = in.choice.View(cw-4, focused)
		}
		if i < len(st.Warnings) && st.Warnings[i] != "" {
			item += "\n" + theme.Warning.Render("! "+st.Warnings[i])
		}
		if focused {
			item = lipgloss.NewStyle().BorderLeft(true).BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(theme.Primary).PaddingLeft(1).Render(item)
		} else {
			item = lipgloss.NewStyle().PaddingLeft(2).Render(item)
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", theme.Hint.Render(fmt.Sprintf("Question %d of %d", i+1, len(s.entry))), item)
	}
	b.WriteString(components.ButtonBar(components.Button{Key: "Ctrl+S", Label: "Submit"}))
	return b.String()
}

func renderUnavailable(st engine.EntryUnavailable, cw int) string {
	return components.Section("Entry test unavailable",
		"The entry test for this goal could not be loaded. You can still start with the first step.", cw) +
		"\n\n" + theme.Hint.Render(st.Reason) + "\n\n" +
		components.ButtonBar(components.Button{Key: "Enter", Label: "Skip to first step"})
}

// renderStep renders a step's blocks for the content viewport.
func renderStep(step content.Step, cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(step.Title))
	b.WriteString("\n\n")
	for _, blk := range step.Blocks {
		body := strings.TrimSpace(blk.Body)
		switch blk.Kind {
		case content.BlockCode:
			b.WriteString(theme.Code.Render(body))
		case content.BlockNote:
			b.WriteString(theme.Note.Width(cw).Render(body))
		default:
			b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(body))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (s *Screen) renderStepContent(st engine.StepContent, cw, height int) string {
	var b strings.Builder
	b.WriteString(components.NewStepProgress(st.Index, len(s.steps), cw).View())
	b.WriteString("\n\n")

	if st.Review && s.sess.Reflection.Feedback != nil {
		fb := s.sess.Reflection.Feedback
		msg := "Take another look at this step."
		if fb.Recommendation != "" {
			msg += " " + fb.Recommendation
		}
		b.WriteString(components.Card(theme.Warning.Render(msg), cw))
		b.WriteString("\n")
	}

	step := s.steps[st.Index]
	tail := components.ButtonBar(components.Button{Key: "Enter", Label: "Mark done"})
	if step.Exercise != nil {
		tail = s.exercise.View(cw, true) + "\n" + tail
	}

	// The viewport takes whatever height the header and tail leave.
	vh := height - lipgloss.Height(b.String()) - lipgloss.Height(tail) - 2
	s.viewport.SetWidth(cw)
	s.viewport.SetHeight(max(vh, 3))
	if s.viewport.TotalLineCount() == 0 {
		s.viewport.SetContent(renderStep(step, cw))
	}
	b.WriteString(s.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(tail)
	return b.String()
}

func (s *Screen) renderReflection(st engine.ReflectionQuestion, cw int) string {
	var b strings.Builder
	b.WriteString(components.NewStepProgress(st.Index, len(s.steps), cw).View())
	b.WriteString("\n\n")
	if ex := s.sess.Reflection.Exercise; ex != nil {
		if ex.Correct {
			b.WriteString(theme.Correct.Render("Exercise: correct"))
		} else {
			b.WriteString(theme.Incorrect.Render("Exercise: not quite"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(components.Section("Reflect", s.sess.Reflection.Question, cw))
	b.WriteString("\n\n")
	b.WriteString(s.reflection.View())
	if st.Warning != "" {
		b.WriteString("\n" + theme.Warning.Render("! "+st.Warning))
	}
	b.WriteString("\n\n")
	b.WriteString(components.ButtonBar(components.Button{Key: "Ctrl+S", Label: "Submit"}))
	return b.String()
}

func (s *Screen) renderFeedback(st engine.StepFeedback, cw int) string {
	fb := s.sess.Reflection.Feedback
	if fb == nil {
		d := gateway.DefaultReflectionFeedback()
		fb = &d
	}

	var b strings.Builder
	b.WriteString(components.NewStepProgress(st.Index, len(s.steps), cw).View())
	b.WriteString("\n\n")
	b.WriteString(components.Section("Feedback", fb.Narrative, cw))
	if fb.Recommendation != "" {
		b.WriteString("\n\n" + theme.Note.Width(cw).Render(fb.Recommendation))
	}
	b.WriteString("\n\n")

	label := "Next step"
	switch {
	case fb.Directive == gateway.DirectiveRepeat:
		label = "Review this step"
	case s.sess.IsLastStep(st.Index):
		label = "Start final test"
	}
	b.WriteString(components.ButtonBar(components.Button{Key: "Enter", Label: label}))
	return b.String()
}

func (s *Screen) renderFinal(cw int) string {
	var b strings.Builder
	b.WriteString(components.Section("Final test",
		fmt.Sprintf("Score at least %d%% to complete this goal.", scorer.PassThreshold), cw))
	b.WriteString("\n\n")
	for i, c := range s.final {
		fmt.Fprintf(&b, "%s\n%s\n", theme.Hint.Render(fmt.Sprintf("Question %d of %d", i+1, len(s.final))),
			c.View(cw, i == s.finalFocus))
	}
	b.WriteString(components.ButtonBar(components.Button{Key: "Ctrl+S", Label: "Submit"}))
	return b.String()
}

func renderFinalFailed(st engine.FinalFailed, cw int) string {
	return components.Section("The final test could not be generated", "", cw) + "\n\n" +
		theme.ErrorText.Width(cw).Render(st.Err) + "\n\n" +
		components.ButtonBar(components.Button{Key: "R", Label: "Try again"})
}

func (s *Screen) renderResult(passed bool, cw int) string {
	var b strings.Builder
	if f := s.sess.Final; f != nil {
		if passed {
			b.WriteString(theme.Correct.Render("Goal complete!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Not there yet"))
		}
		b.WriteString("\n\n")
		b.WriteString(components.NewScoreBar(fmt.Sprintf("%d/%d correct", f.Correct, f.Total), f.Percentage, cw).View())
		b.WriteString("\n\n")
	}

	if e := s.sess.Entry; e != nil {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Entry test: %d%%", e.Percentage)))
		b.WriteString("\n\n")
	}

	// The submitted test with its answers revealed.
	if !passed {
		for _, c := range s.lastFinal {
			b.WriteString(c.View(cw, false))
			b.WriteString("\n")
		}
	}

	if passed {
		b.WriteString(components.ButtonBar(components.Button{Key: "Enter", Label: "Back to goals"}))
	} else {
		b.WriteString(components.ButtonBar(components.Button{Key: "R", Label: "Retry with a new test"}))
	}
	return b.String()
}
