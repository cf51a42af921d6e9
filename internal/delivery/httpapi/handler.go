package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
	"github.com/ruslanbay/codedrill/internal/service"
	"github.com/ruslanbay/codedrill/internal/srs"
)

type SchedulerService interface {
	RecordReview(ctx context.Context, userID, problemID string, outcome entities.Outcome) (*service.ReviewResult, error)
	AddToReview(ctx context.Context, userID, problemID string, initialLevel int) (*service.AddResult, error)
	RemoveFromReview(ctx context.Context, userID, problemID string) error
}

type DueQueryService interface {
	Buckets(ctx context.Context, userID string) (srs.Buckets, error)
	Stats(ctx context.Context, userID string) (*service.Stats, error)
}

type Handler struct {
	logger    *zap.Logger
	scheduler SchedulerService
	due       DueQueryService
}

func NewHandler(logger *zap.Logger, scheduler SchedulerService, due DueQueryService) *Handler {
	return &Handler{
		logger:    logger,
		scheduler: scheduler,
		due:       due,
	}
}

// Register mounts the scheduler routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/reviews", h.recordReview)
	api.POST("/review-items", h.addToReview)
	api.DELETE("/review-items", h.removeFromReview)
	api.GET("/review-items/due", h.dueBuckets)
	api.GET("/review-items/stats", h.stats)
}

func (h *Handler) recordReview(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return h.writeError(c, errBadRequest(err))
	}

	outcome, err := req.outcome()
	if err != nil {
		return h.writeError(c, errBadRequest(err))
	}

	result, err := h.scheduler.RecordReview(c.Request().Context(), req.UserID, req.ProblemID, outcome)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) addToReview(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return h.writeError(c, errBadRequest(err))
	}

	result, err := h.scheduler.AddToReview(c.Request().Context(), req.UserID, req.ProblemID, req.InitialLevel)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) removeFromReview(c echo.Context) error {
	var req pairRequest
	if err := c.Bind(&req); err != nil {
		return h.writeError(c, errBadRequest(err))
	}

	if err := h.scheduler.RemoveFromReview(c.Request().Context(), req.UserID, req.ProblemID); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) dueBuckets(c echo.Context) error {
	buckets, err := h.due.Buckets(c.Request().Context(), c.QueryParam("userId"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, buckets)
}

func (h *Handler) stats(c echo.Context) error {
	stats, err := h.due.Stats(c.Request().Context(), c.QueryParam("userId"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// writeError maps scheduler errors to statuses. A rejected transition never
// reports success with stale numbers: the body carries an error tag and the
// state stays unchanged.
func (h *Handler) writeError(c echo.Context, err error) error {
	var status int
	var tag string

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, tag = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrNotSchedulable):
		status, tag = http.StatusUnprocessableEntity, "not_schedulable"
	case errors.Is(err, service.ErrAlreadyScheduled):
		status, tag = http.StatusConflict, "already_scheduled"
	case errors.Is(err, service.ErrTransientStore):
		status, tag = http.StatusServiceUnavailable, "transient_store_error"
	default:
		status, tag = http.StatusInternalServerError, "internal"
		h.logger.Error("handle request",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.JSON(status, errorResponse{Error: tag, Message: err.Error()})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errBadRequest(err error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
}
