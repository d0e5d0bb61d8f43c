package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-gstbill/internal/events"
)

// TypeWebhookDelivery is the asynq task type for webhook deliveries.
const TypeWebhookDelivery = "webhook:deliver"

// QueueWebhooks is the asynq queue deliveries are routed to.
const QueueWebhooks = "webhooks"

// DeliveryTask is the self-contained payload of one delivery attempt. It
// carries the full event so the worker never re-reads the events table.
type DeliveryTask struct {
	EndpointID uuid.UUID    `json:"endpoint_id"`
	Event      events.Event `json:"event"`
}

// TaskEnqueuer is the slice of asynq.Client the scheduler needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EndpointSource lists the subscribers for a topic.
type EndpointSource interface {
	ListActiveForTopic(ctx context.Context, topic string) ([]Endpoint, error)
}

// Scheduler fans an emitted event out to one asynq task per subscribed
// endpoint. It implements events.DeliveryScheduler.
type Scheduler struct {
	Endpoints  EndpointSource
	Client     TaskEnqueuer
	MaxRetries int
	Enabled    bool
}

// Schedule enqueues a delivery task for every active endpoint on the topic.
func (s *Scheduler) Schedule(ctx context.Context, event events.Event) error {
	if s == nil || !s.Enabled || s.Client == nil || s.Endpoints == nil {
		return nil
	}
	endpoints, err := s.Endpoints.ListActiveForTopic(ctx, event.Topic)
	if err != nil {
		return err
	}
	maxRetries := s.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 6
	}
	var joined error
	for _, ep := range endpoints {
		payload, err := json.Marshal(DeliveryTask{EndpointID: ep.ID, Event: event})
		if err != nil {
			joined = errors.Join(joined, err)
			continue
		}
		task := asynq.NewTask(TypeWebhookDelivery, payload)
		_, err = s.Client.EnqueueContext(ctx, task,
			asynq.Queue(QueueWebhooks),
			asynq.MaxRetry(maxRetries),
			asynq.TaskID(fmt.Sprintf("%s:%s:%s", TypeWebhookDelivery, ep.ID, event.ID)),
		)
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			joined = errors.Join(joined, fmt.Errorf("enqueue delivery for %s: %w", ep.ID, err))
		}
	}
	return joined
}
