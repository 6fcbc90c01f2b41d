package sqlite

import (
	"context"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
)

type answersRepo struct {
	db dbtx
}

func (r *answersRepo) CreateAnswer(ctx context.Context, a domain.SecurityAnswer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_security_answers (user_id, question_id, answer_hash) VALUES (?, ?, ?)`,
		a.UserID, a.QuestionID, a.AnswerHash,
	)
	return mapConstraint(err)
}

func (r *answersRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_security_answers WHERE user_id = ?`, userID)
	return err
}

func (r *answersRepo) ListQuestionsForUser(ctx context.Context, userID string) ([]domain.SecurityQuestion, error) {
	return queryQuestions(ctx, r.db, `
		SELECT q.id, q.question
		FROM user_security_answers a
		JOIN security_questions q ON q.id = a.question_id
		WHERE a.user_id = ?
		ORDER BY q.id`, userID)
}

func (r *answersRepo) GetAnswerHashes(ctx context.Context, userID string) (map[int64]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT question_id, answer_hash FROM user_security_answers WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			hash string
		)
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, err
		}
		out[id] = hash
	}
	return out, rows.Err()
}
