package engine

import (
	"slices"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/scorer"
)

// StatusCompleted is the progress status recorded for a passed goal.
const StatusCompleted = "completed"

// Transition applies ev to s. Events that do not apply to the current
// state, and completions addressed to another session, return s unchanged
// with no effects.
func Transition(s Session, ev Event) (Session, []Effect) {
	if c, ok := ev.(owned); ok && c.Owner() != s.Token {
		return s, nil
	}

	switch st := s.State.(type) {
	case EntryLoading:
		if e, ok := ev.(EntryLoaded); ok {
			return entryLoaded(s, e)
		}
	case EntryQuestionSet:
		if e, ok := ev.(SubmitEntry); ok {
			return submitEntry(s, st, e)
		}
	case EntryGrading:
		if e, ok := ev.(EntryItemGraded); ok {
			return entryItemGraded(s, st, e)
		}
	case EntryAnalyzing:
		if e, ok := ev.(EntryAnalyzed); ok {
			r := st.Result
			r.Analysis = e.Analysis
			s.Entry = &r
			return enterSteps(s)
		}
	case EntryUnavailable:
		if _, ok := ev.(SkipEntry); ok {
			return enterSteps(s)
		}
	case StepContent:
		if e, ok := ev.(MarkDone); ok {
			return markDone(s, st, e)
		}
	case ReflectionLoading:
		if e, ok := ev.(ReflectionQuestionReady); ok && e.Step == st.Index {
			s.Reflection.Question = e.Question
			s.State = ReflectionQuestion{Index: st.Index}
			return s, nil
		}
	case ReflectionQuestion:
		if e, ok := ev.(SubmitReflection); ok {
			s.Reflection.Answer = e.Answer
			if w := reflectionAnswerWarning(e.Answer); w != "" {
				s.State = ReflectionQuestion{Index: st.Index, Warning: w}
				return s, nil
			}
			s.State = ReflectionSubmitting{Index: st.Index}
			return s, []Effect{AnalyzeReflection{Step: st.Index, Question: s.Reflection.Question, Answer: e.Answer}}
		}
	case ReflectionSubmitting:
		if e, ok := ev.(ReflectionAnalyzed); ok && e.Step == st.Index {
			fb := e.Feedback
			s.Reflection.Feedback = &fb
			s.State = StepFeedback{Index: st.Index}
			return s, nil
		}
	case StepFeedback:
		if _, ok := ev.(Continue); ok {
			return continueStep(s, st)
		}
	case FinalLoading:
		if e, ok := ev.(FinalReady); ok && e.Attempt == st.Attempt {
			if e.Err != nil {
				s.State = FinalFailed{Attempt: st.Attempt, Err: e.Err.Error()}
				return s, nil
			}
			s.State = FinalQuestionSet{Attempt: st.Attempt, Questions: e.Questions}
			return s, nil
		}
	case FinalQuestionSet:
		if e, ok := ev.(SubmitFinal); ok {
			return submitFinal(s, st, e)
		}
	case FinalFailed:
		if _, ok := ev.(RetryFinal); ok {
			return enterFinal(s)
		}
	case ResultFailed:
		if _, ok := ev.(RetryFinal); ok {
			return enterFinal(s)
		}
	}
	return s, nil
}

func entryLoaded(s Session, e EntryLoaded) (Session, []Effect) {
	if e.Err != nil {
		s.State = EntryUnavailable{Reason: e.Err.Error()}
		return s, nil
	}
	if len(e.Questions) == 0 {
		s.State = EntryUnavailable{Reason: "no entry questions for this goal"}
		return s, nil
	}
	n := len(e.Questions)
	sel := make([]int, n)
	for i := range sel {
		sel[i] = -1
	}
	s.State = EntryQuestionSet{
		Questions:  e.Questions,
		Selections: sel,
		Answers:    make([]string, n),
		Warnings:   make([]string, n),
	}
	return s, nil
}

func submitEntry(s Session, st EntryQuestionSet, e SubmitEntry) (Session, []Effect) {
	n := len(st.Questions)
	selections := make([]int, n)
	answers := make([]string, n)
	warnings := make([]string, n)
	for i, q := range st.Questions {
		selections[i] = -1
		if i < len(e.Selections) {
			selections[i] = e.Selections[i]
		}
		if i < len(e.Answers) {
			answers[i] = e.Answers[i]
		}
		if q.IsOpen() {
			warnings[i] = entryAnswerWarning(answers[i])
		}
	}

	if slices.ContainsFunc(warnings, func(w string) bool { return w != "" }) {
		s.State = EntryQuestionSet{Questions: st.Questions, Selections: selections, Answers: answers, Warnings: warnings}
		return s, nil
	}

	// Closed items are graded here; open items are queued for the gateway.
	results := make([]ItemResult, n)
	var pending []int
	for i, q := range st.Questions {
		results[i] = ItemResult{Level: q.Level, Question: q.Stem}
		if q.IsOpen() {
			pending = append(pending, i)
			continue
		}
		t := scorer.ScoreClosed(st.Questions[i:i+1], selections[i:i+1])
		results[i].Correct = t.Correct == 1
	}

	if len(pending) == 0 {
		return scoreEntry(s, results)
	}
	s.State = EntryGrading{Questions: st.Questions, Answers: answers, Results: results, Pending: pending}
	return s, []Effect{gradeItem(st.Questions, answers, pending[0])}
}

func gradeItem(qs []content.EntryQuestion, answers []string, i int) Effect {
	return GradeEntryItem{Index: i, Question: qs[i], Answer: answers[i]}
}

func entryItemGraded(s Session, st EntryGrading, e EntryItemGraded) (Session, []Effect) {
	if len(st.Pending) == 0 || st.Pending[0] != e.Index {
		return s, nil
	}
	results := slices.Clone(st.Results)
	results[e.Index].Correct = e.Grade.Correct
	pending := st.Pending[1:]

	if len(pending) == 0 {
		return scoreEntry(s, results)
	}
	s.State = EntryGrading{Questions: st.Questions, Answers: st.Answers, Results: results, Pending: pending}
	return s, []Effect{gradeItem(st.Questions, st.Answers, pending[0])}
}

// scoreEntry aggregates a fully graded attempt from scratch.
func scoreEntry(s Session, results []ItemResult) (Session, []Effect) {
	correct := scorer.Correct(results)
	pct := scorer.Percentage(correct, len(results))
	r := EntryResult{
		Results:     results,
		Correct:     correct,
		Total:       len(results),
		Percentage:  pct,
		Buckets:     scorer.BucketByLevel(results),
		Proficiency: scorer.Proficiency(pct),
		Analysis:    gateway.EmptyEntryAnalysis(),
	}
	logged := LogAttempt{
		Stage:       StageEntry,
		Attempt:     1,
		Correct:     r.Correct,
		Total:       r.Total,
		Percentage:  r.Percentage,
		Proficiency: r.Proficiency,
	}

	if s.Options.AnalyzeEntry {
		s.State = EntryAnalyzing{Result: r}
		return s, []Effect{logged, AnalyzeEntry{Result: r}}
	}
	s.Entry = &r
	s, effects := enterSteps(s)
	return s, append([]Effect{logged}, effects...)
}

// enterSteps starts the walkthrough at step 0. A goal without steps goes
// straight to the final test.
func enterSteps(s Session) (Session, []Effect) {
	s.Reflection = Reflection{}
	if len(s.Steps) == 0 {
		return enterFinal(s)
	}
	s.State = StepContent{Index: 0}
	return s, nil
}

func markDone(s Session, st StepContent, e MarkDone) (Session, []Effect) {
	r := Reflection{}
	if ex := s.Steps[st.Index].Exercise; ex != nil {
		t := scorer.ScoreClosed([]content.Exercise{*ex}, []int{e.Selection})
		r.Exercise = &ExerciseOutcome{Selected: e.Selection, Correct: t.Correct == 1}
	}
	s.Reflection = r
	s.State = ReflectionLoading{Index: st.Index}
	return s, []Effect{GenerateReflection{Step: st.Index}}
}

func continueStep(s Session, st StepFeedback) (Session, []Effect) {
	fb := s.Reflection.Feedback
	if fb != nil && fb.Directive == gateway.DirectiveRepeat {
		s.State = StepContent{Index: st.Index, Review: true}
		return s, nil
	}
	if s.IsLastStep(st.Index) {
		s.Reflection = Reflection{}
		return enterFinal(s)
	}
	s.Reflection = Reflection{}
	s.State = StepContent{Index: st.Index + 1}
	return s, nil
}

// enterFinal starts a new final attempt with no questions.
func enterFinal(s Session) (Session, []Effect) {
	s.Attempt++
	s.State = FinalLoading{Attempt: s.Attempt}
	return s, []Effect{GenerateFinal{Attempt: s.Attempt, Count: s.Options.FinalQuestions}}
}

func submitFinal(s Session, st FinalQuestionSet, e SubmitFinal) (Session, []Effect) {
	t := scorer.ScoreClosed(st.Questions, e.Selections)
	pct := scorer.Percentage(t.Correct, t.Total)
	r := &FinalResult{
		Attempt:    st.Attempt,
		Correct:    t.Correct,
		Total:      t.Total,
		Percentage: pct,
		Passed:     scorer.Passed(pct),
	}
	s.Final = r

	effects := []Effect{LogAttempt{
		Stage:      StageFinal,
		Attempt:    st.Attempt,
		Correct:    r.Correct,
		Total:      r.Total,
		Percentage: r.Percentage,
		Passed:     r.Passed,
	}}
	if !r.Passed {
		s.State = ResultFailed{Attempt: st.Attempt}
		return s, effects
	}
	s.State = ResultPassed{Attempt: st.Attempt}
	return s, append(effects, RecordProgress{GoalID: s.Goal.ID, Percentage: 100, Status: StatusCompleted})
}
