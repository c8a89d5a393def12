package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/repository"
	"github.com/gridstake/gridstake/internal/session"
)

// SubmitPredictionRequest is the payload for submitting picks for a session.
type SubmitPredictionRequest struct {
	UserID        string                    `json:"user_id"`
	ClientVersion *string                   `json:"client_version,omitempty"`
	Answers       []PredictionAnswerRequest `json:"answers"`
}

// PredictionAnswerRequest is one answer within a submission.
type PredictionAnswerRequest struct {
	QuestionInstanceID string `json:"question_instance_id"`
	SelectedOption     string `json:"selected_option"`
	ConfidenceCredits  int    `json:"confidence_credits"`
}

// SubmitPredictionResponse confirms an accepted submission.
type SubmitPredictionResponse struct {
	Message      string `json:"message"`
	PredictionID string `json:"prediction_id"`
}

// HandleSubmitPrediction accepts or replaces a user's picks for a session
func HandleSubmitPrediction(txManager repository.TxManager, sessionService session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		sessionID := chi.URLParam(r, "sessionID")

		var req SubmitPredictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if req.UserID == "" || len(req.Answers) == 0 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		submission := domain.PredictionSubmission{
			ClientVersion: req.ClientVersion,
			Answers:       make([]domain.PredictionSubmissionAnswer, 0, len(req.Answers)),
		}
		for _, answer := range req.Answers {
			submission.Answers = append(submission.Answers, domain.PredictionSubmissionAnswer{
				QuestionInstanceID: answer.QuestionInstanceID,
				SelectedOption:     answer.SelectedOption,
				ConfidenceCredits:  answer.ConfidenceCredits,
			})
		}

		tx, err := txManager.Begin(r.Context())
		if err != nil {
			log.Error("Failed to begin transaction", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgSubmitPredictionFailed)
			return
		}
		defer tx.Rollback(r.Context())

		prediction, err := sessionService.SubmitPrediction(r.Context(), tx, req.UserID, sessionID, submission)
		if err != nil {
			log.Warn("Prediction submission rejected", "session_id", sessionID, "error", err)
			respondServiceError(w, err, ErrMsgSubmitPredictionFailed)
			return
		}
		if err := tx.Commit(r.Context()); err != nil {
			log.Error("Failed to commit prediction", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgSubmitPredictionFailed)
			return
		}

		respondJSON(w, http.StatusOK, SubmitPredictionResponse{
			Message:      MsgPredictionAccepted,
			PredictionID: prediction.ID,
		})
	}
}
