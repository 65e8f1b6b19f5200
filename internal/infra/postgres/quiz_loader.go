package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizboard-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quiz JSONB from Postgres. The row's id, title and
// created_at columns take precedence over the same fields inside data.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		raw       []byte
		title     string
		createdAt int64
	)
	err := l.pool.QueryRow(ctx, `SELECT data, title, created_at FROM quizzes WHERE id=$1`, quizID).Scan(&raw, &title, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	quiz.ID = quizID
	if title != "" {
		quiz.Title = title
	}
	quiz.CreatedAt = createdAt
	return quiz, nil
}

// ListQuizzes returns the newest quizzes first.
func (l *QuizLoader) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, title, created_at,
			CASE WHEN jsonb_typeof(data->'categories') = 'array'
				THEN jsonb_array_length(data->'categories') ELSE 0 END
		FROM quizzes
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizSummary
	for rows.Next() {
		var s domain.QuizSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.Categories); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
