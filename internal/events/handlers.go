package events

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-gstbill/internal/common"
)

// HistorySource lists the recorded events for one aggregate.
type HistorySource interface {
	ListByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]Event, error)
}

// Handler exposes the event history of an aggregate.
type Handler struct {
	Store HistorySource
}

// History serves the ordered event log for one invoice.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "invoiceID"))
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "invoice not found", nil)
		return
	}

	list, err := h.Store.ListByAggregate(r.Context(), id)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "could not load events", nil)
		return
	}
	if list == nil {
		list = []Event{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}
