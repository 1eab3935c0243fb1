package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"examship-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	Chapter      string          `bun:"chapter,pk"`
	Position     int             `bun:"position,pk"`
	ChapterOrder int             `bun:"chapter_order"`
	Data         json.RawMessage `bun:"data,type:jsonb"`
}

// SeedChapters upserts every chapter's questions, keeping the given chapter order.
// Returns the number of rows written.
func SeedChapters(ctx context.Context, db *bun.DB, chapters []domain.Chapter) (int, error) {
	rows, err := chapterRows(chapters)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (chapter, position) DO UPDATE").
			Set("data = EXCLUDED.data").
			Set("chapter_order = EXCLUDED.chapter_order").
			Set("updated_at = now()").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("seed question banks: %w", err)
	}
	return len(rows), nil
}

func chapterRows(chapters []domain.Chapter) ([]questionRow, error) {
	var rows []questionRow
	for order, c := range chapters {
		if err := domain.ValidateQuestions(c.Questions); err != nil {
			return nil, fmt.Errorf("chapter %q: %w", c.Name, err)
		}
		for pos, q := range c.Questions {
			q.UserAnswer = nil
			data, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			rows = append(rows, questionRow{
				Chapter:      c.Name,
				Position:     pos,
				ChapterOrder: order,
				Data:         data,
			})
		}
	}
	return rows, nil
}
