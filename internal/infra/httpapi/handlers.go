package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"question_rotation_service/internal/app"
	idb "question_rotation_service/internal/infra/database"

	"github.com/labstack/echo/v4"
)

// GenericError is the JSON error body for all non-200 responses.
type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type CurrentQuestionResponse struct {
	RegionID   int64  `json:"region_id"`
	QuestionID int64  `json:"question_id"`
	Content    string `json:"content"`
	CycleID    int64  `json:"cycle_id"`
}

// GET /current-question?region=<id>
func (srv *Server) GetCurrentQuestion(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), srv.requestTimeout)
	defer cancel()

	raw := c.QueryParam("region")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "BadRequest",
			Message: "query parameter missing or empty: region",
		})
	}
	regionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidRegionID",
			Message: err.Error(),
		})
	}

	cur, err := srv.lookup.GetCurrentQuestion(ctx, regionID)
	if err != nil && errors.Is(err, app.ErrUnknownRegion) {
		return c.JSON(http.StatusNotFound, GenericError{
			Error:   "UnknownRegion",
			Message: err.Error(),
		})
	} else if err != nil && errors.Is(err, app.ErrNoActiveAssignment) {
		// Region exists but the active cycle has no assignment for it:
		// a server-side data defect, not a client mistake.
		return c.JSON(http.StatusInternalServerError, GenericError{
			Error:   "NoActiveAssignment",
			Message: err.Error(),
		})
	} else if err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericError{
			Error:   "TransientFailure",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, CurrentQuestionResponse{
		RegionID:   cur.RegionID,
		QuestionID: cur.QuestionID,
		Content:    cur.Content,
		CycleID:    cur.CycleID,
	})
}

type createRegionRequest struct {
	Name string `json:"name"`
}

type regionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// POST /regions
func (srv *Server) CreateRegion(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), srv.requestTimeout)
	defer cancel()

	var req createRegionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "BadRequest", Message: err.Error()})
	}

	reg, err := srv.catalog.AddRegion(ctx, req.Name)
	if err != nil && errors.Is(err, app.ErrEmptyRegionName) {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "EmptyRegionName", Message: err.Error()})
	} else if err != nil && errors.Is(err, app.ErrRegionExists) {
		return c.JSON(http.StatusConflict, GenericError{Error: "RegionExists", Message: err.Error()})
	} else if err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericError{Error: "TransientFailure", Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, regionResponse{ID: reg.ID, Name: reg.Name})
}

type createQuestionRequest struct {
	Content string `json:"content"`
}

type questionResponse struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// POST /questions
func (srv *Server) CreateQuestion(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), srv.requestTimeout)
	defer cancel()

	var req createQuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "BadRequest", Message: err.Error()})
	}

	q, err := srv.catalog.AddQuestion(ctx, req.Content)
	if err != nil && errors.Is(err, app.ErrEmptyQuestionContent) {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "EmptyQuestionContent", Message: err.Error()})
	} else if err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericError{Error: "TransientFailure", Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, questionResponse{ID: q.ID, Content: q.Content})
}

type createEligibilityRequest struct {
	RegionID   int64 `json:"region_id"`
	QuestionID int64 `json:"question_id"`
}

// POST /eligibility
func (srv *Server) CreateEligibility(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), srv.requestTimeout)
	defer cancel()

	var req createEligibilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "BadRequest", Message: err.Error()})
	}

	err := srv.catalog.AddEligibility(ctx, req.RegionID, req.QuestionID)
	if err != nil && errors.Is(err, app.ErrUnknownRegion) {
		return c.JSON(http.StatusNotFound, GenericError{Error: "UnknownRegion", Message: err.Error()})
	} else if err != nil && errors.Is(err, idb.ErrQuestionNotFound) {
		return c.JSON(http.StatusNotFound, GenericError{Error: "QuestionNotFound", Message: err.Error()})
	} else if err != nil && errors.Is(err, app.ErrEligibilityExists) {
		return c.JSON(http.StatusConflict, GenericError{Error: "EligibilityExists", Message: err.Error()})
	} else if err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericError{Error: "TransientFailure", Message: err.Error()})
	}
	return c.NoContent(http.StatusCreated)
}

// GET /regions
func (srv *Server) ListRegions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), srv.requestTimeout)
	defer cancel()

	regions, err := srv.catalog.ListRegions(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericError{Error: "TransientFailure", Message: err.Error()})
	}
	resp := make([]regionResponse, 0, len(regions))
	for _, reg := range regions {
		resp = append(resp, regionResponse{ID: reg.ID, Name: reg.Name})
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /healthz
func (srv *Server) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
