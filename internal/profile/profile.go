// Package profile manages the issuer's business identity: the single record
// whose jurisdiction anchors every invoice's tax classification.
package profile

import "time"

// BusinessProfile is the issuer identity printed on every invoice. Exactly one
// row exists; updates replace it wholesale.
type BusinessProfile struct {
	Name          string    `json:"name" validate:"required"`
	Address       string    `json:"address" validate:"required"`
	City          string    `json:"city"`
	State         string    `json:"state" validate:"required,instate"`
	Pincode       string    `json:"pincode"`
	GSTIN         string    `json:"gstin" validate:"omitempty,gstin"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email" validate:"omitempty,email"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	IFSC          string    `json:"ifsc"`
	Terms         string    `json:"terms"`
	UpdatedAt     time.Time `json:"updated_at"`
}
