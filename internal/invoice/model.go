// Package invoice assembles, persists, and serves GST tax invoices. Saved
// invoices are historical records: they carry their own customer and product
// snapshots and are never edited, only deleted or marked paid.
package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-gstbill/internal/gst"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// Line is one priced product snapshot on a saved invoice.
type Line struct {
	ID             uuid.UUID `json:"id"`
	InvoiceID      uuid.UUID `json:"invoice_id"`
	Position       int32     `json:"position"`
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	HSNCode        string    `json:"hsn_code"`
	Price          int64     `json:"price"`
	RateBps        int32     `json:"rate_bps"`
	Unit           string    `json:"unit"`
	Quantity       int64     `json:"quantity"`
	DiscountBps    int32     `json:"discount_bps"`
	DiscountAmount int64     `json:"discount_amount"`
	TaxableAmount  int64     `json:"taxable_amount"`
	TaxAmount      int64     `json:"tax_amount"`
	Total          int64     `json:"total"`
}

// Invoice is a saved tax invoice with its customer snapshot and totals.
type Invoice struct {
	ID              uuid.UUID     `json:"id"`
	Number          string        `json:"number"`
	Status          Status        `json:"status"`
	IssueDate       time.Time     `json:"issue_date"`
	DueDate         time.Time     `json:"due_date"`
	CustomerID      uuid.UUID     `json:"customer_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerGSTIN   string        `json:"customer_gstin,omitempty"`
	CustomerAddress string        `json:"customer_address"`
	CustomerState   string        `json:"customer_state"`
	Regime          gst.TaxRegime `json:"regime"`
	SubTotal        int64         `json:"sub_total"`
	TotalGST        int64         `json:"total_gst"`
	TotalDiscount   int64         `json:"total_discount"`
	GrandTotal      int64         `json:"grand_total"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Lines           []Line        `json:"lines,omitempty"`
}

// ItemSelection picks a catalog product onto an invoice.
type ItemSelection struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	Quantity    int64  `json:"quantity" validate:"gte=1"`
	DiscountBps int32  `json:"discount_bps" validate:"gte=0,lte=10000"`
}

// SaveInput is the payload for saving or previewing an invoice.
type SaveInput struct {
	Number     string          `json:"number"`
	IssueDate  string          `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate    string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	Status     Status          `json:"status" validate:"omitempty,oneof=DRAFT PENDING PAID"`
	Items      []ItemSelection `json:"items" validate:"dive"`
}

// QuoteLine is an ad-hoc line for a quick quote, priced without the catalog.
type QuoteLine struct {
	Name        string `json:"name" validate:"required"`
	Price       int64  `json:"price" validate:"gte=0"`
	GSTRate     int32  `json:"gst_rate"`
	Quantity    int64  `json:"quantity" validate:"gte=1"`
	DiscountBps int32  `json:"discount_bps" validate:"gte=0,lte=10000"`
}

// QuoteInput prices loose lines against a buyer state.
type QuoteInput struct {
	BuyerState string      `json:"buyer_state" validate:"omitempty,instate"`
	Lines      []QuoteLine `json:"lines" validate:"required,min=1,dive"`
}

// Preview is the dry-run result of pricing an invoice without saving it.
type Preview struct {
	Regime        gst.TaxRegime  `json:"regime"`
	Lines         []gst.LineItem `json:"lines"`
	SubTotal      int64          `json:"sub_total"`
	TotalGST      int64          `json:"total_gst"`
	CGST          int64          `json:"cgst,omitempty"`
	SGST          int64          `json:"sgst,omitempty"`
	IGST          int64          `json:"igst,omitempty"`
	TotalDiscount int64          `json:"total_discount"`
	GrandTotal    int64          `json:"grand_total"`
}
