package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/store"
	"github.com/aussiebroadwan/mindful/pkg/cryptox"
	"github.com/aussiebroadwan/mindful/pkg/slogx"
)

// SecurityQuestionService manages the question catalog and each user's
// hashed answers.
type SecurityQuestionService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

type AnswerInput struct {
	QuestionID int64
	Answer     string
}

// Seed adds any missing questions to the catalog.
func (s *SecurityQuestionService) Seed(ctx context.Context, questions []string) error {
	n, err := s.Store.SecurityQuestions().SeedQuestions(ctx, questions)
	if err != nil {
		return fmt.Errorf("seed security questions: %w", err)
	}
	slogx.FromContext(ctx).Info("security questions seeded", slog.Int("inserted", n))
	return nil
}

func (s *SecurityQuestionService) Catalog(ctx context.Context) ([]domain.SecurityQuestion, error) {
	qs, err := s.Store.SecurityQuestions().ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return qs, nil
}

// QuestionsFor lists the questions userID has answered, by question id.
func (s *SecurityQuestionService) QuestionsFor(ctx context.Context, userID string) ([]domain.SecurityQuestion, error) {
	qs, err := s.Store.SecurityAnswers().ListQuestionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user questions: %w", err)
	}
	return qs, nil
}

// SetAnswers replaces the user's whole answer set. At least
// domain.MinSecurityAnswers distinct catalog questions are required; the
// previous set survives any failure.
func (s *SecurityQuestionService) SetAnswers(ctx context.Context, userID string, answers []AnswerInput) error {
	log := slogx.FromContext(ctx)

	if err := checkAnswerSet(answers); err != nil {
		return err
	}

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	catalog, err := s.Store.SecurityQuestions().ListQuestions(ctx)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	known := make(map[int64]struct{}, len(catalog))
	for _, q := range catalog {
		known[q.ID] = struct{}{}
	}

	bindings := make([]domain.SecurityAnswer, 0, len(answers))
	for _, a := range answers {
		if _, ok := known[a.QuestionID]; !ok {
			return validationError("unknown security question %d", a.QuestionID)
		}
		hash, err := s.Hasher.HashAnswer(a.Answer)
		if err != nil {
			return fmt.Errorf("hash answer: %w", err)
		}
		bindings = append(bindings, domain.SecurityAnswer{
			UserID:     userID,
			QuestionID: a.QuestionID,
			AnswerHash: hash,
		})
	}

	if err := store.ReplaceSecurityAnswers(ctx, s.Store, userID, bindings); err != nil {
		return fmt.Errorf("replace security answers: %w", err)
	}

	log.Info("security answers replaced", slog.String("user_id", userID), slog.Int("count", len(bindings)))
	return nil
}

// checkAnswerSet enforces the shape of a submitted answer set.
func checkAnswerSet(answers []AnswerInput) error {
	if len(answers) < domain.MinSecurityAnswers {
		return validationError("at least %d security answers are required", domain.MinSecurityAnswers)
	}
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return validationError("security question %d answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
		if strings.TrimSpace(a.Answer) == "" {
			return validationError("answer for security question %d is empty", a.QuestionID)
		}
	}
	return nil
}
