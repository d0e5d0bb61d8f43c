// Package notify delivers domain events to registered webhook endpoints.
// Scheduling happens inline with the emitting request; delivery and retries
// run on the asynq worker.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Endpoint is a registered webhook subscriber.
type Endpoint struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Secret    string    `json:"-"`
	Topics    []string  `json:"topics"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndpointInput captures the payload for registering or updating an endpoint.
type EndpointInput struct {
	URL    string   `json:"url" validate:"required,url"`
	Secret string   `json:"secret" validate:"required,min=16"`
	Topics []string `json:"topics" validate:"required,min=1,dive,required"`
	Active *bool    `json:"active"`
}
