package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gridstake/gridstake/internal/domain"
)

// ListQuestionsBySession returns a session's question instances in creation order
func (q *queries) ListQuestionsBySession(ctx context.Context, sessionID string) ([]domain.QuestionInstance, error) {
	query := `
		SELECT id, session_id, question_type, prompt, options, lock_at, scoring_rule_id, correct_option, created_at
		FROM question_instances
		WHERE session_id = $1
		ORDER BY created_at, id
	`
	rows, err := q.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.QuestionInstance
	for rows.Next() {
		var question domain.QuestionInstance
		var optionsJSON []byte
		err := rows.Scan(
			&question.ID,
			&question.SessionID,
			&question.QuestionType,
			&question.Prompt,
			&optionsJSON,
			&question.LockAt,
			&question.ScoringRuleID,
			&question.CorrectOption,
			&question.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return nil, fmt.Errorf("failed to decode question options: %w", err)
		}
		questions = append(questions, question)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return questions, nil
}

// InsertQuestion creates a new question instance
func (q *queries) InsertQuestion(ctx context.Context, question *domain.QuestionInstance) error {
	if question.ID == "" {
		question.ID = newID()
	}
	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("failed to encode question options: %w", err)
	}
	query := `
		INSERT INTO question_instances (id, session_id, question_type, prompt, options, lock_at, scoring_rule_id, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = q.db.Exec(ctx, query,
		question.ID, question.SessionID, question.QuestionType, question.Prompt,
		optionsJSON, question.LockAt, question.ScoringRuleID, question.CorrectOption,
	)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

// SetCorrectOption stamps the resolved option on a question
func (q *queries) SetCorrectOption(ctx context.Context, questionID, option string) error {
	tag, err := q.db.Exec(ctx, `UPDATE question_instances SET correct_option = $2 WHERE id = $1`, questionID, option)
	if err != nil {
		return fmt.Errorf("failed to set correct option: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}
	return nil
}

// GetScoringRules fetches the scoring rules with the given IDs
func (q *queries) GetScoringRules(ctx context.Context, ruleIDs []string) ([]domain.ScoringRule, error) {
	if len(ruleIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, name, question_type, base_points, created_by, created_at
		FROM scoring_rules
		WHERE id = ANY($1)
	`
	rows, err := q.db.Query(ctx, query, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scoring rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.ScoringRule
	for rows.Next() {
		var rule domain.ScoringRule
		err := rows.Scan(&rule.ID, &rule.Name, &rule.QuestionType, &rule.BasePoints, &rule.CreatedBy, &rule.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scoring rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return rules, nil
}

// InsertScoringRule creates a new scoring rule
func (q *queries) InsertScoringRule(ctx context.Context, rule *domain.ScoringRule) error {
	if rule.ID == "" {
		rule.ID = newID()
	}
	query := `
		INSERT INTO scoring_rules (id, name, question_type, base_points, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.db.Exec(ctx, query, rule.ID, rule.Name, rule.QuestionType, rule.BasePoints, rule.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert scoring rule: %w", err)
	}
	return nil
}
