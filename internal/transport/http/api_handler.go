package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// ChapterExtractor turns free-form study material into chapter titles.
type ChapterExtractor interface {
	ExtractChapters(ctx context.Context, text string) []string
}

type APIHandler struct {
	service   *app.QuizService
	extractor ChapterExtractor
	now       func() time.Time
}

func NewAPIHandler(service *app.QuizService, extractor ChapterExtractor) *APIHandler {
	return &APIHandler{service: service, extractor: extractor, now: time.Now}
}

type extractRequest struct {
	Context string `json:"context" binding:"required"`
}

func (h *APIHandler) Chapters(c *gin.Context) {
	chapters, err := h.service.Chapters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters, "setSize": h.service.SetSize()})
}

func (h *APIHandler) ExtractChapters(c *gin.Context) {
	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chapter extraction not configured"})
		return
	}
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": h.extractor.ExtractChapters(c.Request.Context(), req.Context)})
}

func (h *APIHandler) Progress(c *gin.Context) {
	report, err := h.service.Progress(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) History(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	history, err := h.service.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	summaries := make([]resultSummary, 0, len(history))
	for _, r := range history {
		summaries = append(summaries, summarize(r))
	}
	c.JSON(http.StatusOK, gin.H{"results": summaries})
}

func (h *APIHandler) Review(c *gin.Context) {
	review, err := h.service.Review(c.Request.Context(), c.Param("id"), c.Param("quizId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *APIHandler) Leaderboard(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if limit <= 0 {
		limit = 10
	}
	board, err := h.service.Leaderboard(c.Request.Context(), c.Query("learnerId"), c.Query("name"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// resultSummary is a history row without the per-question payload.
type resultSummary struct {
	QuizID         string    `json:"quizId"`
	Topic          string    `json:"topic"`
	Date           time.Time `json:"date"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percent        int       `json:"percent"`
}

func summarize(r domain.QuizResult) resultSummary {
	return resultSummary{
		QuizID:         r.QuizID,
		Topic:          r.Topic,
		Date:           r.Date,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percent:        r.Percent(),
	}
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionActive), errors.Is(err, domain.ErrSessionPending), errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrContentUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidSession), errors.Is(err, domain.ErrInvalidQuestion):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
