// Package catalog manages the product list used to build invoice lines.
// Prices are stored in paise and GST rates as whole percentages from the
// slabs the tax schedule allows.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable catalog entry.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	HSNCode   string    `json:"hsn_code"`
	Price     int64     `json:"price"`
	GSTRate   int32     `json:"gst_rate"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductInput captures the payload for creating or updating a product.
type ProductInput struct {
	Name    string `json:"name" validate:"required"`
	HSNCode string `json:"hsn_code" validate:"required"`
	Price   int64  `json:"price" validate:"gte=0"`
	GSTRate int32  `json:"gst_rate"`
	Unit    string `json:"unit" validate:"required"`
}
