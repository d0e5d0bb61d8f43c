package events_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-gstbill/internal/events"
)

type stubHistory struct {
	events []events.Event
	err    error
}

func (s *stubHistory) ListByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]events.Event, error) {
	return s.events, s.err
}

func historyRouter(h *events.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/invoices/{invoiceID}/events", h.History)
	return r
}

func TestHistoryReturnsOrderedEvents(t *testing.T) {
	invoiceID := uuid.New()
	store := &stubHistory{events: []events.Event{
		{ID: uuid.New(), Topic: events.TopicInvoiceCreated, AggregateID: invoiceID, Payload: json.RawMessage(`{}`), OccurredAt: time.Now()},
		{ID: uuid.New(), Topic: events.TopicInvoicePaid, AggregateID: invoiceID, Payload: json.RawMessage(`{}`), OccurredAt: time.Now()},
	}}
	r := historyRouter(&events.Handler{Store: store})

	req := httptest.NewRequest(http.MethodGet, "/invoices/"+invoiceID.String()+"/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []events.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.Equal(t, events.TopicInvoiceCreated, body.Data[0].Topic)
}

func TestHistoryEmptyListNotNull(t *testing.T) {
	r := historyRouter(&events.Handler{Store: &stubHistory{}})

	req := httptest.NewRequest(http.MethodGet, "/invoices/"+uuid.NewString()+"/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestHistoryRejectsBadID(t *testing.T) {
	r := historyRouter(&events.Handler{Store: &stubHistory{}})

	req := httptest.NewRequest(http.MethodGet, "/invoices/not-a-uuid/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
