package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/arbiter-social/arbiter/moderation/engine"
	"github.com/arbiter-social/arbiter/moderation/modstore"

	"github.com/labstack/echo/v4"
)

type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		srv.logger.Warn("sift-http-internal-error", "err", err)
	}
	c.JSON(code, GenericStatus{Status: "error", Daemon: "sift", Message: errorMessage})
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "sift"})
}

func (srv *Server) HandleModerate(c echo.Context) error {
	ctx := c.Request().Context()

	var sub engine.Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidRequestBody",
			Message: fmt.Sprintf("%s", err),
		})
	}
	if sub.Text == "" {
		return c.JSON(400, GenericError{
			Error:   "MissingText",
			Message: "text is required",
		})
	}
	if !engine.ValidContentType(sub.ContentType) {
		return c.JSON(400, GenericError{
			Error:   "InvalidContentType",
			Message: fmt.Sprintf("contentType must be one of post, reply, profile; got %q", sub.ContentType),
		})
	}
	if sub.AuthorID == "" {
		return c.JSON(400, GenericError{
			Error:   "MissingAuthorId",
			Message: "authorId is required",
		})
	}

	dec, err := srv.engine.ModerateBeforePublish(ctx, sub)
	if err != nil {
		return c.JSON(500, GenericError{
			Error:   "InternalError",
			Message: fmt.Sprintf("%s", err),
		})
	}
	return c.JSON(200, dec)
}

type BulkModerateRequest struct {
	Submissions []engine.Submission `json:"submissions"`
}

type BulkModerateResponse struct {
	Decisions []*engine.Decision `json:"decisions"`
}

func (srv *Server) HandleModerateBulk(c echo.Context) error {
	ctx := c.Request().Context()

	var req BulkModerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidRequestBody",
			Message: fmt.Sprintf("%s", err),
		})
	}
	for i, sub := range req.Submissions {
		if sub.Text == "" || sub.AuthorID == "" || !engine.ValidContentType(sub.ContentType) {
			return c.JSON(400, GenericError{
				Error:   "InvalidSubmission",
				Message: fmt.Sprintf("submission %d is missing text or authorId, or has a bad contentType", i),
			})
		}
	}

	decs, err := srv.engine.BulkModerate(ctx, req.Submissions)
	if err != nil {
		return c.JSON(500, GenericError{
			Error:   "InternalError",
			Message: fmt.Sprintf("%s", err),
		})
	}
	return c.JSON(200, BulkModerateResponse{Decisions: decs})
}

type QueueListResponse struct {
	Items []*modstore.QueueItem `json:"items"`
}

func (srv *Server) HandleListQueue(c echo.Context) error {
	ctx := c.Request().Context()

	f := modstore.ItemFilters{
		Status:      c.QueryParam("status"),
		Severity:    c.QueryParam("severity"),
		ContentType: c.QueryParam("contentType"),
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(400, GenericError{
				Error:   "InvalidLimit",
				Message: fmt.Sprintf("bad limit value: %s", v),
			})
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(400, GenericError{
				Error:   "InvalidOffset",
				Message: fmt.Sprintf("bad offset value: %s", v),
			})
		}
		f.Offset = n
	}

	items, err := srv.engine.ListQueue(ctx, f)
	if err != nil {
		return c.JSON(500, GenericError{
			Error:   "InternalError",
			Message: fmt.Sprintf("%s", err),
		})
	}
	return c.JSON(200, QueueListResponse{Items: items})
}

type DecisionRequest struct {
	Decision   string `json:"decision"`
	ReviewerID string `json:"reviewerId"`
	Reason     string `json:"reason"`
}

func (srv *Server) HandleQueueDecision(c echo.Context) error {
	ctx := c.Request().Context()

	queueID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidQueueId",
			Message: fmt.Sprintf("bad queue id: %s", c.Param("id")),
		})
	}

	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidRequestBody",
			Message: fmt.Sprintf("%s", err),
		})
	}
	if req.ReviewerID == "" {
		return c.JSON(400, GenericError{
			Error:   "MissingReviewerId",
			Message: "reviewerId is required",
		})
	}
	switch req.Decision {
	case engine.DecisionApprove, engine.DecisionReject, engine.DecisionEscalate:
	default:
		return c.JSON(400, GenericError{
			Error:   "InvalidDecision",
			Message: fmt.Sprintf("decision must be one of approve, reject, escalate; got %q", req.Decision),
		})
	}
	if req.Decision == engine.DecisionReject && req.Reason == "" {
		return c.JSON(400, GenericError{
			Error:   "MissingReason",
			Message: "a reject decision requires a reason",
		})
	}

	found, err := srv.engine.ProcessDecision(ctx, uint(queueID), req.Decision, req.ReviewerID, req.Reason)
	if errors.Is(err, engine.ErrItemReviewed) {
		return c.JSON(409, GenericError{
			Error:   "ItemAlreadyReviewed",
			Message: fmt.Sprintf("queue item %d has already been reviewed", queueID),
		})
	} else if err != nil {
		return c.JSON(500, GenericError{
			Error:   "InternalError",
			Message: fmt.Sprintf("%s", err),
		})
	}
	if !found {
		return c.JSON(404, GenericError{
			Error:   "QueueItemNotFound",
			Message: fmt.Sprintf("no queue item with id %d", queueID),
		})
	}
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "sift"})
}

type HistoryResponse struct {
	ContentID string                `json:"contentId"`
	Actions   []*modstore.ModAction `json:"actions"`
}

func (srv *Server) HandleContentHistory(c echo.Context) error {
	ctx := c.Request().Context()

	contentID := c.Param("contentId")
	actions, err := srv.engine.GetHistory(ctx, contentID)
	if err != nil {
		return c.JSON(500, GenericError{
			Error:   "InternalError",
			Message: fmt.Sprintf("%s", err),
		})
	}
	return c.JSON(200, HistoryResponse{ContentID: contentID, Actions: actions})
}

func (srv *Server) HandleStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := srv.engine.GetStats(ctx, c.QueryParam("timeframe"))
	if err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidTimeframe",
			Message: fmt.Sprintf("%s", err),
		})
	}
	return c.JSON(200, stats)
}

func (srv *Server) HandleGetSettings(c echo.Context) error {
	return c.JSON(200, srv.engine.GetSettings())
}

func (srv *Server) HandleUpdateSettings(c echo.Context) error {
	var patch engine.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidRequestBody",
			Message: fmt.Sprintf("%s", err),
		})
	}

	settings, err := srv.engine.UpdateSettings(patch)
	if err != nil {
		return c.JSON(400, GenericError{
			Error:   "InvalidSettings",
			Message: fmt.Sprintf("%s", err),
		})
	}
	return c.JSON(200, settings)
}
