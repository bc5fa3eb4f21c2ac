package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionSchema(name string) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "minLength": 1},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 4,
					"maxItems": 4,
				},
				"correctIndex": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
			},
			"required": []any{"question", "options", "correctIndex"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"Q?","options":["a","b","c","d"],"correctIndex":2}`, false},
		{"missing field", `{"question":"Q?","options":["a","b","c","d"]}`, true},
		{"three options", `{"question":"Q?","options":["a","b","c"],"correctIndex":0}`, true},
		{"index out of range", `{"question":"Q?","options":["a","b","c","d"],"correctIndex":4}`, true},
		{"wrong type", `{"question":"Q?","options":["a","b","c","d"],"correctIndex":"1"}`, true},
		{"not json", `Sure! Here is your question`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionSchema("test-question"), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
				if string(inv.Content) != tt.raw {
					t.Fatalf("offending content not kept: %s", inv.Content)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	s := questionSchema("test-cached")
	a, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a != b {
		t.Fatal("expected the cached schema on the second call")
	}
}

func TestValidateJSON_BadSchema(t *testing.T) {
	bad := &Schema{Name: "test-bad", Definition: map[string]any{"type": 12}}
	err := ValidateJSON(bad, json.RawMessage(`{}`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
