// Package http provides the admin and event HTTP handlers of the search sync service.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/gin-gonic/gin"

	"github.com/rentaldesk/searchsync/internal/httputil"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/http/dto"
	searchUseCase "github.com/rentaldesk/searchsync/internal/search/usecase"
	customValidation "github.com/rentaldesk/searchsync/internal/validation"
)

// EventHandler receives inventory mutation events from the back office.
type EventHandler struct {
	syncUseCase searchUseCase.SyncUseCase
	logger      *slog.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(syncUseCase searchUseCase.SyncUseCase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		syncUseCase: syncUseCase,
		logger:      logger,
	}
}

// ReceiveHandler applies one CloudEvent to the search index.
// POST /v1/events - accepts structured (application/cloudevents+json) and binary mode.
// Returns 202 Accepted once the event is valid; sync failures are reported in the
// body state, never as an error status, because the primary write already happened.
func (h *EventHandler) ReceiveHandler(c *gin.Context) {
	event, err := cehttp.NewEventFromHTTPRequest(c.Request)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid cloudevent: %w", err), h.logger)
		return
	}
	if err := event.Validate(); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid cloudevent: %w", err), h.logger)
		return
	}

	if err := dto.ValidateEventType(event.Type()); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	var data dto.ItemEventData
	if err := event.DataAs(&data); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid event data: %w", err), h.logger)
		return
	}
	if err := data.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()
	var state searchDomain.SyncState
	switch event.Type() {
	case dto.EventItemCreated:
		state = h.syncUseCase.SyncCreate(ctx, data.ID)
	case dto.EventItemUpdated:
		state = h.syncUseCase.SyncUpdate(ctx, data.ID)
	case dto.EventItemDeleted:
		state = h.syncUseCase.SyncDelete(ctx, data.ID)
	}

	h.logger.Debug("event applied",
		slog.String("event_id", event.ID()),
		slog.String("event_type", event.Type()),
		slog.String("event_source", event.Source()),
		slog.Int64("item_id", data.ID),
		slog.String("state", string(state)),
	)

	c.JSON(http.StatusAccepted, dto.EventResponse{
		EventID: event.ID(),
		Type:    event.Type(),
		ItemID:  data.ID,
		State:   string(state),
	})
}
