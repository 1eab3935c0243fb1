package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"examship-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// StaticBank reads chapter question lists stored as JSONB rows in question_banks.
type StaticBank struct {
	pool *pgxpool.Pool
}

func NewStaticBank(pool *pgxpool.Pool) *StaticBank {
	return &StaticBank{pool: pool}
}

func (b *StaticBank) Chapters(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT chapter FROM question_banks
		GROUP BY chapter
		ORDER BY MIN(chapter_order), chapter`)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, name)
	}
	return chapters, rows.Err()
}

func (b *StaticBank) Questions(ctx context.Context, chapter string) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx, `SELECT data FROM question_banks WHERE chapter=$1 ORDER BY position`, chapter)
	if err != nil {
		return nil, fmt.Errorf("load chapter: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q, err := decodeQuestion(raw)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: unknown chapter %q", domain.ErrContentUnavailable, chapter)
	}
	return questions, nil
}

func decodeQuestion(raw []byte) (domain.Question, error) {
	var q domain.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	q.UserAnswer = nil
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}
