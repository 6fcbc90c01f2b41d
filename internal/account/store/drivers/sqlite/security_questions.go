package sqlite

import (
	"context"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
)

type questionsRepo struct {
	db dbtx
}

func (r *questionsRepo) SeedQuestions(ctx context.Context, questions []string) (int, error) {
	inserted := 0
	for _, q := range questions {
		res, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO security_questions (question) VALUES (?)`, q)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *questionsRepo) ListQuestions(ctx context.Context) ([]domain.SecurityQuestion, error) {
	return queryQuestions(ctx, r.db, `SELECT id, question FROM security_questions ORDER BY id`)
}

func queryQuestions(ctx context.Context, db dbtx, query string, args ...any) ([]domain.SecurityQuestion, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SecurityQuestion{}
	for rows.Next() {
		var q domain.SecurityQuestion
		if err := rows.Scan(&q.ID, &q.Question); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
