package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func TestProgressHistoryAndReview(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	if _, err := service.StartSession(ctx, "u1", "Physics", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, _ = service.Answer(ctx, "u1", 0)
	_, _ = service.Next(ctx, "u1")
	_, _ = service.Answer(ctx, "u1", 3)
	done, err := service.Next(ctx, "u1")
	if err != nil || done.Result == nil {
		t.Fatalf("complete: %v", err)
	}

	router := newTestRouter(service)

	var report domain.ProgressReport
	getJSON(t, router, "/api/learners/u1/progress", http.StatusOK, &report)
	if report.Experience != 10 || report.Level != 1 || len(report.Trend) != 1 || report.Trend[0].Score != 50 {
		t.Fatalf("unexpected report %+v", report)
	}

	var history struct {
		Results []resultSummary `json:"results"`
	}
	getJSON(t, router, "/api/learners/u1/history?limit=5", http.StatusOK, &history)
	if len(history.Results) != 1 || history.Results[0].Percent != 50 {
		t.Fatalf("unexpected history %+v", history)
	}

	var review domain.ResultReview
	getJSON(t, router, "/api/learners/u1/results/"+done.Result.QuizID+"/review", http.StatusOK, &review)
	if len(review.Items) != 2 || review.Items[1].Status != domain.ReviewWrong {
		t.Fatalf("unexpected review %+v", review)
	}

	getJSON(t, router, "/api/learners/u1/results/nope/review", http.StatusNotFound, nil)
	getJSON(t, router, "/api/learners/u1/history?limit=abc", http.StatusBadRequest, nil)
}

func TestChaptersAndLeaderboard(t *testing.T) {
	service, lb := newTestService()
	_ = lb.Upsert(context.Background(), "rival", "Rival", 90)
	router := newTestRouter(service)

	var chapters struct {
		Chapters []string `json:"chapters"`
		SetSize  int      `json:"setSize"`
	}
	getJSON(t, router, "/api/chapters", http.StatusOK, &chapters)
	if len(chapters.Chapters) != 1 || chapters.Chapters[0] != "Physics" || chapters.SetSize != 2 {
		t.Fatalf("unexpected chapters %+v", chapters)
	}

	var board domain.Leaderboard
	getJSON(t, router, "/api/leaderboard?learnerId=u1&name=Asha", http.StatusOK, &board)
	if len(board.Entries) != 2 || board.Entries[1].LearnerID != "u1" || !board.Entries[1].IsCurrentUser {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestExtractChaptersEndpoint(t *testing.T) {
	service, _ := newTestService()
	gin.SetMode(gin.TestMode)
	router := NewRouter(NewAPIHandler(service, stubExtractor{}), NewWSHandler(service, nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chapters/extract", strings.NewReader(`{"context":"Unit 1 Kinematics"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Kinematics") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/chapters/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty context, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{domain.ErrResultNotFound, http.StatusNotFound},
		{domain.ErrSessionActive, http.StatusConflict},
		{domain.ErrSessionPending, http.StatusConflict},
		{domain.ErrContentUnavailable, http.StatusServiceUnavailable},
		{domain.ErrNotAnswered, http.StatusBadRequest},
		{domain.ErrInvalidSet, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestHealthz(t *testing.T) {
	service, _ := newTestService()
	rec := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func newTestRouter(service *app.QuizService) http.Handler {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewAPIHandler(service, nil), NewWSHandler(service, nil), nil)
}

func getJSON(t *testing.T, h http.Handler, path string, wantStatus int, out any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != wantStatus {
		t.Fatalf("%s: expected %d, got %d (%s)", path, wantStatus, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
}

type stubExtractor struct{}

func (stubExtractor) ExtractChapters(context.Context, string) []string {
	return []string{"Kinematics"}
}
