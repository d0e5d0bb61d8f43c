package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-gstbill/internal/events"
	"github.com/noah-isme/backend-gstbill/internal/obs"
)

// EndpointLoader fetches the endpoint at delivery time so secret rotation and
// deactivation take effect on queued tasks.
type EndpointLoader interface {
	Get(ctx context.Context, id uuid.UUID) (Endpoint, error)
}

// Deliverer executes webhook delivery tasks on the asynq worker.
type Deliverer struct {
	Endpoints EndpointLoader
	Client    *http.Client
	Logger    zerolog.Logger
	UserAgent string
}

// ProcessTask implements asynq.Handler. Returning an error triggers the
// queue's retry with backoff; asynq.SkipRetry short-circuits permanent
// failures.
func (d *Deliverer) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var dt DeliveryTask
	if err := json.Unmarshal(task.Payload(), &dt); err != nil {
		return fmt.Errorf("decode delivery task: %w: %w", err, asynq.SkipRetry)
	}

	ctx, span := otel.Tracer("notify.Deliverer").Start(ctx, "Deliverer.ProcessTask")
	defer span.End()
	span.SetAttributes(
		attribute.String("webhook.endpoint_id", dt.EndpointID.String()),
		attribute.String("webhook.topic", dt.Event.Topic),
	)

	endpoint, err := d.Endpoints.Get(ctx, dt.EndpointID)
	if errors.Is(err, ErrNotFound) {
		d.Logger.Warn().Str("endpoint_id", dt.EndpointID.String()).Msg("webhook endpoint removed, dropping delivery")
		return nil
	}
	if err != nil {
		return err
	}
	if !endpoint.Active {
		d.Logger.Debug().Str("endpoint_id", endpoint.ID.String()).Msg("webhook endpoint inactive, dropping delivery")
		return nil
	}
	if err := ValidateURL(endpoint.URL); err != nil {
		recordOutcome("rejected", 0)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	start := time.Now()
	status, err := d.deliver(ctx, endpoint, dt.Event)
	elapsed := time.Since(start)
	if err != nil || status < 200 || status >= 300 {
		recordOutcome("failed", elapsed)
		span.SetAttributes(attribute.Int("http.status_code", status))
		return fmt.Errorf("deliver %s to %s: status=%d err=%w",
			dt.Event.Topic, endpoint.URL, status, err)
	}
	recordOutcome("delivered", elapsed)
	span.SetAttributes(attribute.Int("http.status_code", status))
	return nil
}

func (d *Deliverer) deliver(ctx context.Context, ep Endpoint, ev events.Event) (int, error) {
	client := d.Client
	if client == nil {
		client = HTTPClient(0)
	}
	body, err := json.Marshal(struct {
		EventID    string          `json:"eventId"`
		Topic      string          `json:"topic"`
		Data       json.RawMessage `json:"data"`
		OccurredAt time.Time       `json:"occurredAt"`
	}{
		EventID:    ev.ID.String(),
		Topic:      ev.Topic,
		Data:       ev.Payload,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	ts := time.Now().Unix()
	userAgent := d.UserAgent
	if userAgent == "" {
		userAgent = "gstbill-webhooks/1.0"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Event-ID", ev.ID.String())
	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", ts))
	req.Header.Set("X-Signature", ComputeSignature(ep.Secret, ts, ev.ID.String(), body))

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

func recordOutcome(result string, elapsed time.Duration) {
	if obs.WebhookDeliveriesTotal != nil {
		obs.WebhookDeliveriesTotal.WithLabelValues(result).Inc()
	}
	if obs.WebhookAttemptLatency != nil {
		obs.WebhookAttemptLatency.WithLabelValues(result).Observe(obs.DurationMillis(elapsed))
	}
}
