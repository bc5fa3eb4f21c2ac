package gateway

import "github.com/abhisek/pathwise/internal/llm"

// Schemas list every property as required with additionalProperties off so
// they work under OpenAI strict mode. Optional text comes back as "".

func object(props map[string]any) map[string]any {
	required := make([]any, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func text(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func textList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

var questionDefinition = object(map[string]any{
	"question": text("The question stem, self-contained"),
	"options": map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"minItems":    4,
		"maxItems":    4,
		"description": "Exactly four candidate answers",
	},
	"correctIndex": map[string]any{
		"type":        "integer",
		"minimum":     0,
		"maximum":     3,
		"description": "Zero-based index of the single correct option",
	},
})

// ReflectionQuestionSchema is the shape of a generated reflection question.
var ReflectionQuestionSchema = &llm.Schema{
	Name:        "reflection-question",
	Description: "One open reflection question about a learning step",
	Definition: object(map[string]any{
		"question": text("A single open question that makes the learner explain or apply the step's idea"),
	}),
}

// ReflectionAnalysisSchema is the shape of reflection feedback.
var ReflectionAnalysisSchema = &llm.Schema{
	Name:        "reflection-analysis",
	Description: "Feedback on a learner's reflection answer with a branch decision",
	Definition: object(map[string]any{
		"feedback": text("Two to four sentences of encouraging, specific feedback"),
		"directive": map[string]any{
			"type":        "string",
			"enum":        []any{string(DirectiveContinue), string(DirectiveRepeat)},
			"description": "repeat when the answer shows the step was not understood, otherwise continue",
		},
		"recommendation": text("One concrete suggestion, or empty"),
	}),
}

// FinalTestSchema is the shape of a generated final assessment.
var FinalTestSchema = &llm.Schema{
	Name:        "final-test",
	Description: "A multiple choice assessment over the goal content",
	Definition: object(map[string]any{
		"questions": map[string]any{
			"type":  "array",
			"items": questionDefinition,
		},
	}),
}

// EntryGradeSchema is the shape of an open answer verdict.
var EntryGradeSchema = &llm.Schema{
	Name:        "entry-grade",
	Description: "Verdict on an open-ended answer compared with a reference answer",
	Definition: object(map[string]any{
		"correct":  map[string]any{"type": "boolean", "description": "Whether the answer captures the reference's key points"},
		"feedback": text("One or two sentences explaining the verdict"),
	}),
}

// EntryAnalysisSchema is the shape of the entry narrative.
var EntryAnalysisSchema = &llm.Schema{
	Name:        "entry-analysis",
	Description: "Narrative analysis of a diagnostic entry test",
	Definition: object(map[string]any{
		"summary":        text("Two sentences summarizing the learner's starting point"),
		"strengths":      textList("Short phrases naming what the learner already knows"),
		"gaps":           textList("Short phrases naming what the learner should focus on"),
		"recommendation": text("How to approach the learning path"),
	}),
}

// PracticeQuestionSchema is the shape of a drill question.
var PracticeQuestionSchema = &llm.Schema{
	Name:        "practice-question",
	Description: "One multiple choice question about a content segment",
	Definition:  questionDefinition,
}
