package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/pathwise/internal/llm"
)

// HTTP paths served by the gateway service.
const (
	PathReflectionQuestion = "/v1/reflection/question"
	PathReflectionAnalyze  = "/v1/reflection/analyze"
	PathFinalTest          = "/v1/final-test"
	PathEntryGrade         = "/v1/entry/grade"
	PathEntryAnalyze       = "/v1/entry/analyze"
	PathPracticeQuestion   = "/v1/practice/question"
	PathHealth             = "/healthz"
)

// QuestionResponse is the body returned for a reflection question.
type QuestionResponse struct {
	Question string `json:"question"`
}

// QuestionsResponse is the body returned for a final test.
type QuestionsResponse struct {
	Questions []ClosedQuestion `json:"questions"`
}

// ErrorBody is the error envelope used by the gateway service.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// StatusError is a non-2xx reply from the gateway service.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: HTTP %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: HTTP %d: %s", e.Status, e.Message)
}

// Client implements Gateway against a remote gateway service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL. A nil httpClient uses a client
// with a one minute timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb ErrorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb); err == nil && eb.Error.Message != "" {
			se.Message = eb.Error.Message
			se.Code = eb.Error.Code
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Health checks that the service is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, PathHealth, nil, nil)
}

func (c *Client) ReflectionQuestion(ctx context.Context, req ReflectionQuestionRequest) (string, error) {
	var out QuestionResponse
	if err := c.do(ctx, http.MethodPost, PathReflectionQuestion, req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", &ErrInvalidOutput{Shape: llm.PurposeReflectionQuestion, Reason: "empty question"}
	}
	return out.Question, nil
}

func (c *Client) AnalyzeReflection(ctx context.Context, req AnalyzeReflectionRequest) (ReflectionFeedback, error) {
	var out ReflectionFeedback
	if err := c.do(ctx, http.MethodPost, PathReflectionAnalyze, req, &out); err != nil {
		return ReflectionFeedback{}, err
	}
	if out.Directive != DirectiveContinue && out.Directive != DirectiveRepeat {
		return ReflectionFeedback{}, &ErrInvalidOutput{Shape: llm.PurposeReflectionAnalysis, Reason: fmt.Sprintf("unknown directive %q", out.Directive)}
	}
	return out, nil
}

func (c *Client) FinalTest(ctx context.Context, req FinalTestRequest) ([]ClosedQuestion, error) {
	var out QuestionsResponse
	if err := c.do(ctx, http.MethodPost, PathFinalTest, req, &out); err != nil {
		return nil, err
	}
	if err := ValidateQuestions(llm.PurposeFinalTest, out.Questions, req.Count); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *Client) GradeEntryAnswer(ctx context.Context, req GradeEntryRequest) (Grade, error) {
	var out Grade
	if err := c.do(ctx, http.MethodPost, PathEntryGrade, req, &out); err != nil {
		return Grade{}, err
	}
	return out, nil
}

func (c *Client) AnalyzeEntry(ctx context.Context, req AnalyzeEntryRequest) (EntryAnalysis, error) {
	var out EntryAnalysis
	if err := c.do(ctx, http.MethodPost, PathEntryAnalyze, req, &out); err != nil {
		return EntryAnalysis{}, err
	}
	return out.withLists(), nil
}

func (c *Client) PracticeQuestion(ctx context.Context, req PracticeQuestionRequest) (ClosedQuestion, error) {
	var out ClosedQuestion
	if err := c.do(ctx, http.MethodPost, PathPracticeQuestion, req, &out); err != nil {
		return ClosedQuestion{}, err
	}
	if err := ValidateQuestions(llm.PurposePracticeQuestion, []ClosedQuestion{out}, 1); err != nil {
		return ClosedQuestion{}, err
	}
	return out, nil
}
