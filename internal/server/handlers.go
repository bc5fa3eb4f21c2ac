package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
)

type handler struct {
	gw      gateway.Gateway
	timeout time.Duration
	log     *logger.Logger
}

// bind decodes the JSON body into req, replying 400 on failure.
func bind[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return false
	}
	return true
}

func (h *handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *handler) fail(c *gin.Context, shape string, err error) {
	status, code := statusFor(err)
	h.log.Warn("gateway call failed", "shape", shape, "status", status, "error", err)
	respondError(c, status, code, err)
}

func (h *handler) health(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

func (h *handler) reflectionQuestion(c *gin.Context) {
	var req gateway.ReflectionQuestionRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	q, err := h.gw.ReflectionQuestion(ctx, req)
	if err != nil {
		h.fail(c, llm.PurposeReflectionQuestion, err)
		return
	}
	respondOK(c, gateway.QuestionResponse{Question: q})
}

func (h *handler) analyzeReflection(c *gin.Context) {
	var req gateway.AnalyzeReflectionRequest
	if !bind(c, &req) {
		return
	}
	if req.Answer == "" {
		respondError(c, http.StatusBadRequest, CodeBadRequest, errors.New("answer is required"))
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	fb, err := h.gw.AnalyzeReflection(ctx, req)
	if err != nil {
		h.fail(c, llm.PurposeReflectionAnalysis, err)
		return
	}
	respondOK(c, fb)
}

func (h *handler) finalTest(c *gin.Context) {
	var req gateway.FinalTestRequest
	if !bind(c, &req) {
		return
	}
	if req.Count <= 0 {
		respondError(c, http.StatusBadRequest, CodeBadRequest, errors.New("count must be positive"))
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	qs, err := h.gw.FinalTest(ctx, req)
	if err != nil {
		h.fail(c, llm.PurposeFinalTest, err)
		return
	}
	respondOK(c, gateway.QuestionsResponse{Questions: qs})
}

func (h *handler) gradeEntry(c *gin.Context) {
	var req gateway.GradeEntryRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	g, err := h.gw.GradeEntryAnswer(ctx, req)
	if err != nil {
		h.fail(c, llm.PurposeEntryGrade, err)
		return
	}
	respondOK(c, g)
}

func (h *handler) analyzeEntry(c *gin.Context) {
	var req gateway.AnalyzeEntryRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	a, err := h.gw.AnalyzeEntry(ctx, req)
	if err != nil {
		h.fail(c, llm.PurposeEntryAnalysis, err)
		return
	}
	respondOK(c, a)
}

func (h *handler) practiceQuestion(c *gin.Context) {
	var req gateway.PracticeQuestionRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	q, err := h.gw.PracticeQuestion(ctx, req)
	if err != nil {
		h.fail(c, llm.PurposePracticeQuestion, err)
		return
	}
	respondOK(c, q)
}
