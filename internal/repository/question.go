package repository

import (
	"context"

	"github.com/gridstake/gridstake/internal/domain"
)

// Question defines the data access interface for question instances and
// scoring rules
type Question interface {
	ListQuestionsBySession(ctx context.Context, sessionID string) ([]domain.QuestionInstance, error)
	InsertQuestion(ctx context.Context, question *domain.QuestionInstance) error
	// SetCorrectOption stamps the resolved option onto the question. A later
	// resolution pass may overwrite an earlier stamp.
	SetCorrectOption(ctx context.Context, questionID, option string) error
	GetScoringRules(ctx context.Context, ruleIDs []string) ([]domain.ScoringRule, error)
	InsertScoringRule(ctx context.Context, rule *domain.ScoringRule) error
}
