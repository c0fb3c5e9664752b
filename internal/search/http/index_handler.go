package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentaldesk/searchsync/internal/httputil"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/http/dto"
	searchUseCase "github.com/rentaldesk/searchsync/internal/search/usecase"
	customValidation "github.com/rentaldesk/searchsync/internal/validation"
)

// IndexHandler exposes index maintenance and search to operators.
type IndexHandler struct {
	syncUseCase searchUseCase.SyncUseCase
	jobs        searchUseCase.ReindexJobManager
	logger      *slog.Logger
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(
	syncUseCase searchUseCase.SyncUseCase,
	jobs searchUseCase.ReindexJobManager,
	logger *slog.Logger,
) *IndexHandler {
	return &IndexHandler{
		syncUseCase: syncUseCase,
		jobs:        jobs,
		logger:      logger,
	}
}

// SyncItemHandler re-indexes one item, removing it when it no longer exists.
// PUT /v1/index/items/:id
func (h *IndexHandler) SyncItemHandler(c *gin.Context) {
	itemID, err := searchDomain.ParseDocumentID(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	state := h.syncUseCase.SyncUpdate(c.Request.Context(), itemID)
	c.JSON(http.StatusOK, dto.ItemSyncResponse{ItemID: itemID, State: string(state)})
}

// DeleteItemHandler removes one item from the index.
// DELETE /v1/index/items/:id
func (h *IndexHandler) DeleteItemHandler(c *gin.Context) {
	itemID, err := searchDomain.ParseDocumentID(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	state := h.syncUseCase.SyncDelete(c.Request.Context(), itemID)
	c.JSON(http.StatusOK, dto.ItemSyncResponse{ItemID: itemID, State: string(state)})
}

// InitIndexHandler creates the index when it does not exist.
// POST /v1/index - Returns 204 No Content.
func (h *IndexHandler) InitIndexHandler(c *gin.Context) {
	if err := h.syncUseCase.InitIndex(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}

// StatusHandler checks the search backend.
// GET /v1/index/status - Returns 200 when connected, 503 otherwise.
func (h *IndexHandler) StatusHandler(c *gin.Context) {
	status := h.syncUseCase.TestConnection(c.Request.Context())

	statusCode := http.StatusOK
	if !status.Connected {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, dto.MapStatusToResponse(status))
}

// StartReindexHandler starts a background resync.
// POST /v1/index/reindex - Body {"ids": [...]} is optional; no ids resyncs everything.
// Returns 202 Accepted with the job.
func (h *IndexHandler) StartReindexHandler(c *gin.Context) {
	var req dto.ReindexRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	job, err := h.jobs.Start(req.IDs)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("reindex job started", slog.String("job_id", job.ID), slog.Int("ids", len(req.IDs)))

	c.Header("Location", fmt.Sprintf("/v1/index/reindex/%s", job.ID))
	c.JSON(http.StatusAccepted, dto.MapReindexJobToResponse(job))
}

// GetReindexHandler returns the state of a background resync.
// GET /v1/index/reindex/:job_id
func (h *IndexHandler) GetReindexHandler(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("job_id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapReindexJobToResponse(job))
}

// ListReindexHandler lists background resyncs, newest first.
// GET /v1/index/reindex?offset=0&limit=20
func (h *IndexHandler) ListReindexHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapReindexJobsToListResponse(h.jobs.List(offset, limit)))
}

// SearchHandler passes a backend-native query through to the index.
// POST /v1/search - Returns the backend response unchanged.
func (h *IndexHandler) SearchHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	req := dto.SearchRequest{Query: body}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	resp, err := h.syncUseCase.Search(c.Request.Context(), req.Query)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Data(http.StatusOK, "application/json", resp)
}
