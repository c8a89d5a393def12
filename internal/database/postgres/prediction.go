package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gridstake/gridstake/internal/domain"
)

// GetPrediction returns the user's prediction for a session, or nil when absent
func (q *queries) GetPrediction(ctx context.Context, userID, sessionID string) (*domain.Prediction, error) {
	query := `
		SELECT id, user_id, session_id, client_version, created_at, updated_at
		FROM predictions
		WHERE user_id = $1 AND session_id = $2
	`
	var p domain.Prediction
	err := q.db.QueryRow(ctx, query, userID, sessionID).Scan(
		&p.ID, &p.UserID, &p.SessionID, &p.ClientVersion, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &p, nil
}

// InsertPrediction creates a new prediction row
func (q *queries) InsertPrediction(ctx context.Context, prediction *domain.Prediction) error {
	if prediction.ID == "" {
		prediction.ID = newID()
	}
	query := `
		INSERT INTO predictions (id, user_id, session_id, client_version)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.db.Exec(ctx, query, prediction.ID, prediction.UserID, prediction.SessionID, prediction.ClientVersion)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// TouchPrediction updates the client version and bumps updated_at
func (q *queries) TouchPrediction(ctx context.Context, predictionID string, clientVersion *string) error {
	query := `UPDATE predictions SET client_version = $2, updated_at = NOW() WHERE id = $1`
	_, err := q.db.Exec(ctx, query, predictionID, clientVersion)
	if err != nil {
		return fmt.Errorf("failed to touch prediction: %w", err)
	}
	return nil
}

// ListPredictionsBySession returns every prediction submitted for a session
func (q *queries) ListPredictionsBySession(ctx context.Context, sessionID string) ([]domain.Prediction, error) {
	query := `
		SELECT id, user_id, session_id, client_version, created_at, updated_at
		FROM predictions
		WHERE session_id = $1
		ORDER BY created_at, id
	`
	rows, err := q.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		err := rows.Scan(&p.ID, &p.UserID, &p.SessionID, &p.ClientVersion, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return predictions, nil
}

// DeleteAnswersByPrediction removes a prediction's answers ahead of resubmission
func (q *queries) DeleteAnswersByPrediction(ctx context.Context, predictionID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM prediction_answers WHERE prediction_id = $1`, predictionID)
	if err != nil {
		return fmt.Errorf("failed to delete prediction answers: %w", err)
	}
	return nil
}

// DeleteAllocationsByPrediction removes a prediction's confidence allocations
func (q *queries) DeleteAllocationsByPrediction(ctx context.Context, predictionID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM prediction_confidence_allocations WHERE prediction_id = $1`, predictionID)
	if err != nil {
		return fmt.Errorf("failed to delete confidence allocations: %w", err)
	}
	return nil
}

// InsertAnswer creates one selected-option row
func (q *queries) InsertAnswer(ctx context.Context, answer *domain.PredictionAnswer) error {
	if answer.ID == "" {
		answer.ID = newID()
	}
	query := `
		INSERT INTO prediction_answers (id, prediction_id, user_id, question_instance_id, selected_option)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.db.Exec(ctx, query, answer.ID, answer.PredictionID, answer.UserID, answer.QuestionInstanceID, answer.SelectedOption)
	if err != nil {
		return fmt.Errorf("failed to insert prediction answer: %w", err)
	}
	return nil
}

// InsertAllocation creates one confidence-credit row
func (q *queries) InsertAllocation(ctx context.Context, allocation *domain.PredictionConfidenceAllocation) error {
	if allocation.ID == "" {
		allocation.ID = newID()
	}
	query := `
		INSERT INTO prediction_confidence_allocations (id, prediction_id, question_instance_id, credits)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.db.Exec(ctx, query, allocation.ID, allocation.PredictionID, allocation.QuestionInstanceID, allocation.Credits)
	if err != nil {
		return fmt.Errorf("failed to insert confidence allocation: %w", err)
	}
	return nil
}

// ListAnswersForPredictions returns answers for a set of predictions
func (q *queries) ListAnswersForPredictions(ctx context.Context, predictionIDs []string) ([]domain.PredictionAnswer, error) {
	if len(predictionIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, prediction_id, user_id, question_instance_id, selected_option, created_at
		FROM prediction_answers
		WHERE prediction_id = ANY($1)
	`
	rows, err := q.db.Query(ctx, query, predictionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.PredictionAnswer
	for rows.Next() {
		var a domain.PredictionAnswer
		err := rows.Scan(&a.ID, &a.PredictionID, &a.UserID, &a.QuestionInstanceID, &a.SelectedOption, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return answers, nil
}

// ListAllocationsForPredictions returns allocations for a set of predictions
func (q *queries) ListAllocationsForPredictions(ctx context.Context, predictionIDs []string) ([]domain.PredictionConfidenceAllocation, error) {
	if len(predictionIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, prediction_id, question_instance_id, credits
		FROM prediction_confidence_allocations
		WHERE prediction_id = ANY($1)
	`
	rows, err := q.db.Query(ctx, query, predictionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query confidence allocations: %w", err)
	}
	defer rows.Close()

	var allocations []domain.PredictionConfidenceAllocation
	for rows.Next() {
		var a domain.PredictionConfidenceAllocation
		err := rows.Scan(&a.ID, &a.PredictionID, &a.QuestionInstanceID, &a.Credits)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confidence allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return allocations, nil
}
