package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
	"github.com/ruslanbay/codedrill/internal/service"
	"github.com/ruslanbay/codedrill/internal/srs"
)

type stubScheduler struct {
	lastOutcome entities.Outcome
	lastUser    string
	lastProblem string
	recordErr   error
	addErr      error
}

func (s *stubScheduler) RecordReview(_ context.Context, userID, problemID string, outcome entities.Outcome) (*service.ReviewResult, error) {
	s.lastUser, s.lastProblem, s.lastOutcome = userID, problemID, outcome
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return &service.ReviewResult{NewLevel: 1, DueAt: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}, nil
}

func (s *stubScheduler) AddToReview(_ context.Context, userID, problemID string, _ int) (*service.AddResult, error) {
	s.lastUser, s.lastProblem = userID, problemID
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &service.AddResult{DueAt: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}, nil
}

func (s *stubScheduler) RemoveFromReview(_ context.Context, userID, problemID string) error {
	s.lastUser, s.lastProblem = userID, problemID
	return nil
}

type stubDueQuery struct{}

func (stubDueQuery) Buckets(_ context.Context, _ string) (srs.Buckets, error) {
	return srs.Buckets{}, nil
}

func (stubDueQuery) Stats(_ context.Context, _ string) (*service.Stats, error) {
	return &service.Stats{ByLevel: map[int]int{}}, nil
}

func newTestServer(scheduler SchedulerService) *echo.Echo {
	e := echo.New()
	NewHandler(zap.NewNop(), scheduler, stubDueQuery{}).Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecordReview_OK(t *testing.T) {
	scheduler := &stubScheduler{}
	e := newTestServer(scheduler)

	rec := doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"userId":"u1","problemId":"p1","outcome":"pass"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.OutcomePass, scheduler.lastOutcome)
	assert.Contains(t, rec.Body.String(), `"newLevel":1`)
	assert.Contains(t, rec.Body.String(), `"dueAt":"2026-03-02T09:00:00Z"`)
}

func TestRecordReview_LegacyForms(t *testing.T) {
	scheduler := &stubScheduler{}
	e := newTestServer(scheduler)

	rec := doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"userId":"u1","problemId":"p1","reviewOption":"forgot"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.OutcomeAgain, scheduler.lastOutcome)

	rec = doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"userId":"u1","problemId":"p1","reviewOption":"difficult"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.OutcomeFail, scheduler.lastOutcome)

	rec = doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"userId":"u1","problemId":"p1","wasSuccessful":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.OutcomePass, scheduler.lastOutcome)

	rec = doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"userId":"u1","problemId":"p1","wasSuccessful":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.OutcomeFail, scheduler.lastOutcome)
}

func TestRecordReview_MissingOutcome(t *testing.T) {
	e := newTestServer(&stubScheduler{})

	rec := doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"userId":"u1","problemId":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")
}

func TestRecordReview_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		tag    string
	}{
		{service.ErrNotSchedulable, http.StatusUnprocessableEntity, "not_schedulable"},
		{service.ErrTransientStore, http.StatusServiceUnavailable, "transient_store_error"},
		{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	}

	for _, tc := range cases {
		e := newTestServer(&stubScheduler{recordErr: tc.err})
		rec := doJSON(e, http.MethodPost, "/api/v1/reviews",
			`{"userId":"u1","problemId":"p1","outcome":"pass"}`)
		assert.Equal(t, tc.status, rec.Code, tc.tag)
		assert.Contains(t, rec.Body.String(), tc.tag)
	}
}

func TestAddToReview_Conflict(t *testing.T) {
	e := newTestServer(&stubScheduler{addErr: service.ErrAlreadyScheduled})

	rec := doJSON(e, http.MethodPost, "/api/v1/review-items",
		`{"userId":"u1","problemId":"p1","initialLevel":0}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_scheduled")
}

func TestAddToReview_Created(t *testing.T) {
	scheduler := &stubScheduler{}
	e := newTestServer(scheduler)

	rec := doJSON(e, http.MethodPost, "/api/v1/review-items",
		`{"userId":"u1","problemId":"p1","initialLevel":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", scheduler.lastUser)
	assert.Equal(t, "p1", scheduler.lastProblem)
}

func TestRemoveFromReview_NoContent(t *testing.T) {
	scheduler := &stubScheduler{}
	e := newTestServer(scheduler)

	rec := doJSON(e, http.MethodDelete, "/api/v1/review-items",
		`{"userId":"u1","problemId":"p1"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "p1", scheduler.lastProblem)
}

func TestDueAndStats_OK(t *testing.T) {
	e := newTestServer(&stubScheduler{})

	rec := doJSON(e, http.MethodGet, "/api/v1/review-items/due?userId=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/review-items/stats?userId=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
