package store

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
)

// ReplaceSecurityAnswers swaps a user's whole answer set in one transaction:
// every existing binding is deleted, then each of answers is inserted. Any
// failure rolls back to the previous set, so concurrent readers observe
// either the old set or the new one.
func ReplaceSecurityAnswers(ctx context.Context, s Store, userID string, answers []domain.SecurityAnswer) error {
	return s.WithTx(ctx, func(tx Tx) error {
		if err := tx.SecurityAnswers().DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		for _, a := range answers {
			a.UserID = userID
			if err := tx.SecurityAnswers().CreateAnswer(ctx, a); err != nil {
				return fmt.Errorf("insert answer for question %d: %w", a.QuestionID, err)
			}
		}
		return nil
	})
}
