package postgres

import (
	"errors"
	"testing"

	"examship-quiz-service/internal/domain"
)

func TestDecodeQuestion(t *testing.T) {
	q, err := decodeQuestion([]byte(`{"id":"chm-N-0","text":"Fourth state?","options":["Solid","Plasma"],"correctAnswerIndex":1,"userAnswer":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.ID != "chm-N-0" || q.CorrectAnswerIndex != 1 || q.UserAnswer != nil {
		t.Fatalf("unexpected question %+v", q)
	}

	if _, err := decodeQuestion([]byte(`{"id":"x","text":"t","options":["a"],"correctAnswerIndex":0}`)); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}
	if _, err := decodeQuestion([]byte(`not json`)); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestChapterRowsKeepOrder(t *testing.T) {
	chapters := []domain.Chapter{
		{Name: "Acids", Questions: []domain.Question{
			{ID: "a1", Text: "pH of water?", Options: []string{"6", "7"}, CorrectAnswerIndex: 1},
			{ID: "a2", Text: "Vinegar acid?", Options: []string{"Acetic", "Citric"}, CorrectAnswerIndex: 0},
		}},
		{Name: "Metals", Questions: []domain.Question{
			{ID: "m1", Text: "Liquid metal?", Options: []string{"Hg", "Fe"}, CorrectAnswerIndex: 0},
		}},
	}
	rows, err := chapterRows(chapters)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].Chapter != "Acids" || rows[1].Position != 1 || rows[2].ChapterOrder != 1 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	chapters[1].Questions[0].CorrectAnswerIndex = 5
	if _, err := chapterRows(chapters); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}
}
