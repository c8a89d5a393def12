package scoring

import (
	"context"
	"fmt"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/leaderboard"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/metrics"
	"github.com/gridstake/gridstake/internal/repository"
)

// Service defines the interface for the scoring engine
type Service interface {
	// RunSessionScoring scores every correct answer in the session and
	// returns the number of entries created. Re-running for an
	// already-scored session creates zero new entries. The session moves to
	// SCORING at the start and FINALIZED at the end regardless of how many
	// entries were created, and finalization always republishes leaderboard
	// snapshots inside the same unit of work.
	RunSessionScoring(ctx context.Context, tx repository.Tx, sessionID, initiatedBy string) (int, error)
}

type service struct {
	leaderboardService leaderboard.Service
}

// NewService creates a new scoring service
func NewService(leaderboardService leaderboard.Service) Service {
	return &service{leaderboardService: leaderboardService}
}

func (s *service) RunSessionScoring(ctx context.Context, tx repository.Tx, sessionID, initiatedBy string) (int, error) {
	log := logger.FromContext(ctx)

	target, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if err := tx.UpdateSessionState(ctx, target.ID, domain.SessionStateScoring); err != nil {
		return 0, fmt.Errorf("failed to enter scoring state: %w", err)
	}

	questions, err := tx.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, s.finalize(ctx, tx, sessionID, 0)
	}
	questionMap := make(map[string]*domain.QuestionInstance, len(questions))
	ruleIDs := make([]string, 0, len(questions))
	seenRules := make(map[string]bool)
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
		if !seenRules[questions[i].ScoringRuleID] {
			seenRules[questions[i].ScoringRuleID] = true
			ruleIDs = append(ruleIDs, questions[i].ScoringRuleID)
		}
	}

	rules, err := tx.GetScoringRules(ctx, ruleIDs)
	if err != nil {
		return 0, err
	}
	ruleMap := make(map[string]*domain.ScoringRule, len(rules))
	for i := range rules {
		ruleMap[rules[i].ID] = &rules[i]
	}

	predictions, err := tx.ListPredictionsBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(predictions) == 0 {
		return 0, s.finalize(ctx, tx, sessionID, 0)
	}
	predictionIDs := make([]string, len(predictions))
	for i, p := range predictions {
		predictionIDs[i] = p.ID
	}

	answers, err := tx.ListAnswersForPredictions(ctx, predictionIDs)
	if err != nil {
		return 0, err
	}
	answersByPrediction := make(map[string][]domain.PredictionAnswer)
	for _, answer := range answers {
		answersByPrediction[answer.PredictionID] = append(answersByPrediction[answer.PredictionID], answer)
	}

	allocations, err := tx.ListAllocationsForPredictions(ctx, predictionIDs)
	if err != nil {
		return 0, err
	}
	creditsByKey := make(map[[2]string]int, len(allocations))
	for _, allocation := range allocations {
		creditsByKey[[2]string{allocation.PredictionID, allocation.QuestionInstanceID}] = allocation.Credits
	}

	created := 0
	for _, prediction := range predictions {
		for _, answer := range answersByPrediction[prediction.ID] {
			question, ok := questionMap[answer.QuestionInstanceID]
			if !ok || question.CorrectOption == nil {
				continue
			}
			if answer.SelectedOption != *question.CorrectOption {
				continue
			}
			rule, ok := ruleMap[question.ScoringRuleID]
			if !ok {
				// Partial data must not block the rest of the session.
				log.Warn("Skipping question with missing scoring rule",
					"question_id", question.ID, "rule_id", question.ScoringRuleID)
				continue
			}

			credits := creditsByKey[[2]string{prediction.ID, question.ID}]
			multiplier, err := ConfidenceMultiplier(credits)
			if err != nil {
				return 0, err
			}
			awarded, err := AwardedPoints(rule.BasePoints, credits)
			if err != nil {
				return 0, err
			}

			entry := &domain.ScoreEntry{
				UserID:               prediction.UserID,
				SessionID:            sessionID,
				QuestionInstanceID:   &question.ID,
				BasePoints:           intToDecimal(rule.BasePoints),
				ConfidenceMultiplier: multiplier,
				AwardedPoints:        awarded,
				Reason:               domain.ScoreReasonSessionScore,
				InitiatedBy:          initiatedBy,
				PredictionID:         &prediction.ID,
				ScoringRuleID:        &rule.ID,
				Credits:              credits,
			}
			inserted, err := tx.InsertScoreEntry(ctx, entry)
			if err != nil {
				return 0, err
			}
			if inserted {
				created++
			}
		}
	}

	if err := s.finalize(ctx, tx, sessionID, created); err != nil {
		return 0, err
	}

	metrics.ScoreEntriesCreated.Add(float64(created))
	log.Info("Session scoring complete",
		"session_id", sessionID, "entries_created", created, "initiated_by", initiatedBy)
	return created, nil
}

// finalize moves the session to FINALIZED and republishes leaderboard
// snapshots as the last step of the same unit of work.
func (s *service) finalize(ctx context.Context, tx repository.Tx, sessionID string, created int) error {
	if err := tx.UpdateSessionState(ctx, sessionID, domain.SessionStateFinalized); err != nil {
		return fmt.Errorf("failed to finalize session: %w", err)
	}
	if _, err := s.leaderboardService.PublishSnapshots(ctx, tx, &sessionID); err != nil {
		return fmt.Errorf("failed to publish leaderboard snapshots: %w", err)
	}
	if created == 0 {
		logger.FromContext(ctx).Info("Session finalized with no new score entries", "session_id", sessionID)
	}
	return nil
}
