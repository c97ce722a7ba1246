// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okian/busyspot/internal/adapters/http/swagger"
	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/occupancy"
	"github.com/okian/busyspot/internal/domain/predict"
	"github.com/okian/busyspot/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Train(ctx context.Context) (model.TrainingSummary, error)
	Predict(ctx context.Context, spot, timestamp string) (model.PredictionResult, error)
	PredictAll(ctx context.Context, timestamp string) ([]model.PredictionResult, error)
	Spots() []model.Spot
	SubmitFeedback(ctx context.Context, sub feedback.Submission) error
}

// Server wires HTTP routes for the busyness API.
type Server struct {
	deps    Dependencies
	origins []string
	logger  logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowedOrigins restricts CORS to origins. Empty or "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds a gin engine with middleware and every route attached.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), SetupCORS(s.origins), MetricsMiddleware(), s.requestLogger())
	s.Register(r)
	swagger.Register(r)
	return r
}

// Register attaches the API routes to r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/", s.HandleRoot)
	r.GET("/healthz", s.HandleHealth)
	r.GET("/metrics", HandleMetrics())
	r.GET("/train", s.HandleTrain)
	r.POST("/train", s.HandleTrain)
	r.GET("/predict", s.HandlePredict)
	r.GET("/predict/all", s.HandlePredictAll)
	r.GET("/spots", s.HandleSpots)
	r.POST("/feedback", s.HandleFeedback)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: msg})
}

// classify maps domain errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, predict.ErrNoModel):
		return http.StatusServiceUnavailable, "no_model"
	case errors.Is(err, occupancy.ErrNoMatchingData):
		return http.StatusUnprocessableEntity, "no_matching_data"
	case errors.Is(err, occupancy.ErrSourceUnavailable):
		return http.StatusInternalServerError, "source_unavailable"
	case errors.Is(err, feedback.ErrUnknownSpot):
		return http.StatusBadRequest, "unknown_spot"
	case errors.Is(err, feedback.ErrInvalidRating):
		return http.StatusBadRequest, "invalid_rating"
	case errors.Is(err, feedback.ErrReadOnly):
		return http.StatusNotImplemented, "read_only"
	case errors.Is(err, feedback.ErrUnavailable):
		return http.StatusServiceUnavailable, "feedback_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			logger.String("path", c.FullPath()), logger.String("code", code), logger.Error(err))
	}
	writeError(c, status, code, err)
}
