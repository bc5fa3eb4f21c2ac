package gateway

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/pathwise/internal/scorer"
)

const reflectionQuestionSystem = `You are a tutor guiding a learner through a self-paced course.

Rules:
- Ask exactly one open question about the step content you are given.
- The question must make the learner explain, compare or apply an idea. Never ask for a definition that can be copied from the text.
- Keep it under 40 words and answerable in a few sentences.
- Do not reveal the answer.`

const reflectionAnalysisSystem = `You are a tutor reviewing a learner's reflection on a course step.

Rules:
- Give specific, encouraging feedback that refers to what the learner wrote.
- Set directive to "repeat" only when the answer shows a clear misunderstanding of the step or ignores the question. Otherwise set "continue".
- The recommendation is optional; leave it empty when nothing concrete applies.`

const finalTestSystem = `You are an examiner writing the final assessment of a course goal.

Rules:
- Write exactly the requested number of multiple choice questions.
- Each question has exactly 4 options and exactly one correct option.
- Cover different parts of the content. Do not ask two questions about the same fact.
- Distractors should reflect plausible misunderstandings, not nonsense.
- Questions must be answerable from the content alone.`

const entryGradeSystem = `You are grading a short open answer on a diagnostic test.

Rules:
- Compare the learner's answer with the reference answer.
- Mark it correct when it captures the reference's key idea, even if worded differently or incomplete in minor details.
- Mark it incorrect when the key idea is missing or wrong.`

const entryAnalysisSystem = `You are a learning advisor reading a learner's diagnostic entry test before they start a course goal.

Rules:
- Base the analysis only on the results given.
- Strengths and gaps are short phrases, at most 4 each.
- The recommendation tells the learner how to approach the steps that follow.`

const practiceQuestionSystem = `You are a tutor running a quick practice drill.

Rules:
- Write one multiple choice question about the content segment you are given.
- Exactly 4 options, exactly one correct.
- The question must be answerable from the segment alone.`

var promptFuncs = template.FuncMap{"inc": func(i int) int { return i + 1 }}

var (
	reflectionQuestionTmpl = template.Must(template.New("reflection-question").Funcs(promptFuncs).Parse(`Goal: {{.GoalText}}
Step {{inc .StepIndex}} of {{.StepCount}}

Step content:
{{.Excerpt}}`))

	reflectionAnalysisTmpl = template.Must(template.New("reflection-analysis").Parse(`Goal: {{.GoalText}}

Step content:
{{.Excerpt}}

Question: {{.Question}}
Learner's answer: {{.Answer}}`))

	finalTestTmpl = template.Must(template.New("final-test").Parse(`Goal: {{.GoalText}}
Number of questions: {{.Count}}

Content:
{{.Excerpt}}`))

	entryGradeTmpl = template.Must(template.New("entry-grade").Parse(`{{if .Case}}Case:
{{.Case}}

{{end}}Question: {{.Question}}
Reference answer: {{.Reference}}
Learner's answer: {{.Answer}}`))

	practiceQuestionTmpl = template.Must(template.New("practice-question").Funcs(promptFuncs).Parse(`Goal: {{.GoalText}}
Segment {{inc .SegmentIndex}} of {{.SegmentCount}}

Content:
{{.Segment}}`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// entryAnalysisMessage lists per-question outcomes and the level buckets.
func entryAnalysisMessage(req AnalyzeEntryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", req.GoalText)
	fmt.Fprintf(&b, "Overall score: %d%%\n\n", req.Percentage)

	b.WriteString("Results:\n")
	for i, r := range req.Results {
		mark := "incorrect"
		if r.Correct {
			mark = "correct"
		}
		fmt.Fprintf(&b, "%d. [level %d, %s] %s\n", i+1, r.Level, mark, r.Question)
	}

	b.WriteString("\nBy taxonomy level (1 remember, 2 understand, 3 apply):\n")
	for _, l := range scorer.Levels {
		t := req.Buckets[l]
		fmt.Fprintf(&b, "- level %d: %d/%d\n", l, t.Correct, t.Total)
	}

	if req.Excerpt != "" {
		b.WriteString("\nCourse content excerpt:\n")
		b.WriteString(req.Excerpt)
	}
	return b.String()
}
