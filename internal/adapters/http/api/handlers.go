package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/model"
)

type trainResponse struct {
	Message string `json:"message"`
	model.TrainingSummary
}

// HandleTrain handles GET|POST /train: rebuild and publish the frequency table.
func (s *Server) HandleTrain(c *gin.Context) {
	sum, err := s.deps.Train(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	writeJSON(c, http.StatusOK, trainResponse{Message: "training complete", TrainingSummary: sum})
}

// HandlePredict handles GET /predict?spot=&timestamp=.
func (s *Server) HandlePredict(c *gin.Context) {
	spot := strings.TrimSpace(c.Query("spot"))
	if spot == "" {
		writeError(c, http.StatusBadRequest, "missing_spot", ErrMissingSpot)
		return
	}
	res, err := s.deps.Predict(c.Request.Context(), spot, c.Query("timestamp"))
	if err != nil {
		s.fail(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// HandlePredictAll handles GET /predict/all?timestamp=.
func (s *Server) HandlePredictAll(c *gin.Context) {
	res, err := s.deps.PredictAll(c.Request.Context(), c.Query("timestamp"))
	if err != nil {
		s.fail(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// HandleSpots handles GET /spots.
func (s *Server) HandleSpots(c *gin.Context) {
	writeJSON(c, http.StatusOK, s.deps.Spots())
}

// feedbackRequest mirrors the OpenAPI schema for POST /feedback.
type feedbackRequest struct {
	SpotID     string   `json:"spot_id"`
	BusyRating *float64 `json:"busy_rating"`
	CreatedAt  string   `json:"created_at"`
}

func (r feedbackRequest) submission() (feedback.Submission, error) {
	switch {
	case strings.TrimSpace(r.SpotID) == "":
		return feedback.Submission{}, fmt.Errorf("%w: missing spot_id", ErrBadRequest)
	case r.BusyRating == nil:
		return feedback.Submission{}, fmt.Errorf("%w: missing busy_rating", ErrBadRequest)
	}
	sub := feedback.Submission{Location: model.Location(strings.TrimSpace(r.SpotID)), Rating: *r.BusyRating}
	if strings.TrimSpace(r.CreatedAt) != "" {
		at, err := model.ParseInstant(r.CreatedAt)
		if err != nil {
			return feedback.Submission{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		sub.At = at
	}
	return sub, nil
}

// HandleFeedback handles POST /feedback.
func (s *Server) HandleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	sub, err := req.submission()
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := s.deps.SubmitFeedback(c.Request.Context(), sub); err != nil {
		s.fail(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"status": "stored"})
}
