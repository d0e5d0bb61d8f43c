package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-gstbill/internal/events"
)

func TestComputeSignature(t *testing.T) {
	secret := "super-secret-signing-key"
	body := []byte(`{"hello":"world"}`)
	eventID := uuid.NewString()
	ts := int64(1780000000)

	got := ComputeSignature(secret, ts, eventID, body)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + "." + eventID + "."))
	mac.Write(body)
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), got)

	require.NotEqual(t, got, ComputeSignature("other-secret", ts, eventID, body))
}

func TestValidateURL(t *testing.T) {
	require.NoError(t, ValidateURL("https://example.com/hook"))
	require.NoError(t, ValidateURL("http://localhost:9999/hook"))
	require.NoError(t, ValidateURL("http://127.0.0.1/hook"))
	require.Error(t, ValidateURL("http://example.com/hook"))
	require.Error(t, ValidateURL("ftp://example.com/hook"))
	require.Error(t, ValidateURL("https://"))
}

type stubEndpoints struct {
	byTopic map[string][]Endpoint
	byID    map[uuid.UUID]Endpoint
}

func (s *stubEndpoints) ListActiveForTopic(_ context.Context, topic string) ([]Endpoint, error) {
	return s.byTopic[topic], nil
}

func (s *stubEndpoints) Get(_ context.Context, id uuid.UUID) (Endpoint, error) {
	ep, ok := s.byID[id]
	if !ok {
		return Endpoint{}, ErrNotFound
	}
	return ep, nil
}

type captureEnqueuer struct {
	tasks []*asynq.Task
}

func (c *captureEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func sampleEvent() events.Event {
	return events.Event{
		ID:          uuid.New(),
		Topic:       events.TopicInvoiceCreated,
		AggregateID: uuid.New(),
		Payload:     json.RawMessage(`{"number":"INV-2026-0001"}`),
		OccurredAt:  time.Now(),
	}
}

func TestSchedulerEnqueuesPerEndpoint(t *testing.T) {
	epA := Endpoint{ID: uuid.New(), URL: "https://a.example.com/hook", Secret: "secret-a-secret-a"}
	epB := Endpoint{ID: uuid.New(), URL: "https://b.example.com/hook", Secret: "secret-b-secret-b"}
	enq := &captureEnqueuer{}
	sched := &Scheduler{
		Endpoints: &stubEndpoints{byTopic: map[string][]Endpoint{events.TopicInvoiceCreated: {epA, epB}}},
		Client:    enq,
		Enabled:   true,
	}

	require.NoError(t, sched.Schedule(context.Background(), sampleEvent()))
	require.Len(t, enq.tasks, 2)
	require.Equal(t, TypeWebhookDelivery, enq.tasks[0].Type())

	var dt DeliveryTask
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &dt))
	require.Equal(t, epA.ID, dt.EndpointID)
	require.Equal(t, events.TopicInvoiceCreated, dt.Event.Topic)
}

func TestSchedulerDisabledIsNoop(t *testing.T) {
	enq := &captureEnqueuer{}
	sched := &Scheduler{
		Endpoints: &stubEndpoints{byTopic: map[string][]Endpoint{}},
		Client:    enq,
		Enabled:   false,
	}
	require.NoError(t, sched.Schedule(context.Background(), sampleEvent()))
	require.Empty(t, enq.tasks)
}

func TestDelivererPostsSignedPayload(t *testing.T) {
	var gotSig, gotEventID string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotEventID = r.Header.Get("X-Event-ID")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := Endpoint{ID: uuid.New(), URL: srv.URL, Secret: "delivery-secret-0001", Active: true}
	ev := sampleEvent()
	d := &Deliverer{
		Endpoints: &stubEndpoints{byID: map[uuid.UUID]Endpoint{ep.ID: ep}},
		Client:    srv.Client(),
		Logger:    zerolog.Nop(),
	}
	payload, err := json.Marshal(DeliveryTask{EndpointID: ep.ID, Event: ev})
	require.NoError(t, err)

	err = d.ProcessTask(context.Background(), asynq.NewTask(TypeWebhookDelivery, payload))
	require.NoError(t, err)
	require.Equal(t, ev.ID.String(), gotEventID)
	require.NotEmpty(t, gotSig)

	var envelope struct {
		EventID string          `json:"eventId"`
		Topic   string          `json:"topic"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &envelope))
	require.Equal(t, ev.ID.String(), envelope.EventID)
	require.Equal(t, ev.Topic, envelope.Topic)
	require.JSONEq(t, string(ev.Payload), string(envelope.Data))
}

func TestDelivererFailureReturnsErrorForRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ep := Endpoint{ID: uuid.New(), URL: srv.URL, Secret: "delivery-secret-0001", Active: true}
	d := &Deliverer{
		Endpoints: &stubEndpoints{byID: map[uuid.UUID]Endpoint{ep.ID: ep}},
		Client:    srv.Client(),
		Logger:    zerolog.Nop(),
	}
	payload, err := json.Marshal(DeliveryTask{EndpointID: ep.ID, Event: sampleEvent()})
	require.NoError(t, err)

	err = d.ProcessTask(context.Background(), asynq.NewTask(TypeWebhookDelivery, payload))
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestDelivererDropsMissingOrInactiveEndpoints(t *testing.T) {
	ev := sampleEvent()
	inactive := Endpoint{ID: uuid.New(), URL: "https://example.com/hook", Secret: "delivery-secret-0001"}
	d := &Deliverer{
		Endpoints: &stubEndpoints{byID: map[uuid.UUID]Endpoint{inactive.ID: inactive}},
		Logger:    zerolog.Nop(),
	}

	missing, err := json.Marshal(DeliveryTask{EndpointID: uuid.New(), Event: ev})
	require.NoError(t, err)
	require.NoError(t, d.ProcessTask(context.Background(), asynq.NewTask(TypeWebhookDelivery, missing)))

	queued, err := json.Marshal(DeliveryTask{EndpointID: inactive.ID, Event: ev})
	require.NoError(t, err)
	require.NoError(t, d.ProcessTask(context.Background(), asynq.NewTask(TypeWebhookDelivery, queued)))
}

func TestDelivererRejectsBadPayloadPermanently(t *testing.T) {
	d := &Deliverer{Endpoints: &stubEndpoints{}, Logger: zerolog.Nop()}

	err := d.ProcessTask(context.Background(), asynq.NewTask(TypeWebhookDelivery, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
