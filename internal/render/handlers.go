package render

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-gstbill/internal/common"
	"github.com/noah-isme/backend-gstbill/internal/invoice"
	"github.com/noah-isme/backend-gstbill/internal/profile"
)

// InvoiceSource loads the invoice to print.
type InvoiceSource interface {
	Get(ctx context.Context, id string) (invoice.Invoice, error)
}

// SellerSource provides the issuer block of the document.
type SellerSource interface {
	Get(ctx context.Context) (profile.BusinessProfile, error)
}

// Handler serves the printable invoice document.
type Handler struct {
	Invoices InvoiceSource
	Seller   SellerSource
}

// Document handles GET /api/v1/invoices/{invoiceID}/document.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	if h.Invoices == nil || h.Seller == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "render handler not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "invoiceID"))
	inv, err := h.Invoices.Get(r.Context(), id)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	seller, err := h.Seller.Get(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := WriteDocument(w, BuildDocument(seller, inv)); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("invoice_id", id).Msg("render invoice document")
	}
}
