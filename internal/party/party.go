// Package party manages the customer list. Saved invoices keep their own
// snapshot of a customer, so deleting a party never rewrites history.
package party

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a billable party.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerInput captures the payload for creating a customer.
type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	GSTIN   string `json:"gstin" validate:"omitempty,gstin"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"required"`
	State   string `json:"state" validate:"required,instate"`
}
