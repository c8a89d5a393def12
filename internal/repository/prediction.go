package repository

import (
	"context"

	"github.com/gridstake/gridstake/internal/domain"
)

// Prediction defines the data access interface for prediction submissions
type Prediction interface {
	GetPrediction(ctx context.Context, userID, sessionID string) (*domain.Prediction, error)
	InsertPrediction(ctx context.Context, prediction *domain.Prediction) error
	TouchPrediction(ctx context.Context, predictionID string, clientVersion *string) error
	ListPredictionsBySession(ctx context.Context, sessionID string) ([]domain.Prediction, error)

	// Answers and allocations are replaced wholesale on resubmission.
	DeleteAnswersByPrediction(ctx context.Context, predictionID string) error
	DeleteAllocationsByPrediction(ctx context.Context, predictionID string) error
	InsertAnswer(ctx context.Context, answer *domain.PredictionAnswer) error
	InsertAllocation(ctx context.Context, allocation *domain.PredictionConfidenceAllocation) error
	ListAnswersForPredictions(ctx context.Context, predictionIDs []string) ([]domain.PredictionAnswer, error)
	ListAllocationsForPredictions(ctx context.Context, predictionIDs []string) ([]domain.PredictionConfidenceAllocation, error)
}
