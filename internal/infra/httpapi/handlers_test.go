package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"question_rotation_service/internal/app"
	"question_rotation_service/internal/domain/rotation"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	current *rotation.CurrentQuestion
	err     error
}

func (s stubLookup) GetCurrentQuestion(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.current, nil
}

func testServer(lookup app.LookupService) *Server {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewServer(lookup, nil, log)
}

func doCurrentQuestion(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestGetCurrentQuestion_OK(t *testing.T) {
	srv := testServer(stubLookup{current: &rotation.CurrentQuestion{
		RegionID:    3,
		QuestionID:  17,
		Content:     "hello",
		CycleID:     5,
		CycleEndsAt: time.Now().Add(time.Hour),
	}})

	rec := doCurrentQuestion(srv, "/current-question?region=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body CurrentQuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.RegionID)
	assert.Equal(t, int64(17), body.QuestionID)
	assert.Equal(t, "hello", body.Content)
	assert.Equal(t, int64(5), body.CycleID)
}

func TestGetCurrentQuestion_MissingParam(t *testing.T) {
	srv := testServer(stubLookup{})
	rec := doCurrentQuestion(srv, "/current-question")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCurrentQuestion_NonNumericRegion(t *testing.T) {
	srv := testServer(stubLookup{})
	rec := doCurrentQuestion(srv, "/current-question?region=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCurrentQuestion_UnknownRegion(t *testing.T) {
	srv := testServer(stubLookup{err: app.ErrUnknownRegion})
	rec := doCurrentQuestion(srv, "/current-question?region=99")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body GenericError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UnknownRegion", body.Error)
}

func TestGetCurrentQuestion_NoActiveAssignment(t *testing.T) {
	srv := testServer(stubLookup{err: fmt.Errorf("region 3: %w", app.ErrNoActiveAssignment)})
	rec := doCurrentQuestion(srv, "/current-question?region=3")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body GenericError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NoActiveAssignment", body.Error)
}

func TestGetCurrentQuestion_TransientFailure(t *testing.T) {
	srv := testServer(stubLookup{err: errors.New("store timeout")})
	rec := doCurrentQuestion(srv, "/current-question?region=3")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body GenericError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TransientFailure", body.Error)
}

func TestHealthz(t *testing.T) {
	srv := testServer(stubLookup{})
	rec := doCurrentQuestion(srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
