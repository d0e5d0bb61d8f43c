package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-gstbill/internal/common"
	"github.com/noah-isme/backend-gstbill/internal/gst"
	"github.com/noah-isme/backend-gstbill/internal/invoice"
	"github.com/noah-isme/backend-gstbill/internal/profile"
)

func sampleSeller() profile.BusinessProfile {
	return profile.BusinessProfile{
		Name:     "Acme Traders",
		Address:  "7 FC Road",
		City:     "Pune",
		State:    "Maharashtra",
		Pincode:  "411004",
		GSTIN:    "27AAPFU0939F1ZV",
		BankName: "HDFC Bank",
		Terms:    "Payment due within 15 days.",
	}
}

func sampleInvoice(regime gst.TaxRegime) invoice.Invoice {
	return invoice.Invoice{
		ID:              uuid.New(),
		Number:          "INV-2026-0042",
		Status:          invoice.StatusPending,
		IssueDate:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2026, 4, 16, 0, 0, 0, 0, time.UTC),
		CustomerName:    "Sharma Traders",
		CustomerGSTIN:   "29AAPFU0939F1ZV",
		CustomerAddress: "14 MG Road, Bengaluru",
		CustomerState:   "Karnataka",
		Regime:          regime,
		SubTotal:        360000,
		TotalGST:        64800,
		TotalDiscount:   40000,
		GrandTotal:      424800,
		Lines: []invoice.Line{
			{
				Position: 0, Name: "Steel Bottle 1L", HSNCode: "7310", Unit: "pcs",
				Quantity: 2, Price: 100000, RateBps: 1800, DiscountBps: 1000,
				DiscountAmount: 20000, TaxableAmount: 180000, TaxAmount: 32400, Total: 212400,
			},
		},
	}
}

func TestBuildDocumentIntraStateSplitsHalves(t *testing.T) {
	doc := BuildDocument(sampleSeller(), sampleInvoice(gst.RegimeCGSTSGST))

	require.True(t, doc.IntraState)
	require.Equal(t, "₹324.00", doc.CGST)
	require.Equal(t, "₹324.00", doc.SGST)
	require.Empty(t, doc.IGST)
	require.Equal(t, "₹4,248.00", doc.GrandTotal)
	require.Equal(t, "Rupees Four Thousand Two Hundred Forty Eight Only", doc.AmountInWords)
}

func TestBuildDocumentInterStateShowsIGST(t *testing.T) {
	doc := BuildDocument(sampleSeller(), sampleInvoice(gst.RegimeIGST))

	require.False(t, doc.IntraState)
	require.Equal(t, "₹648.00", doc.IGST)
	require.Empty(t, doc.CGST)
	require.Empty(t, doc.SGST)
}

func TestBuildDocumentOddPaisaGoesToCGST(t *testing.T) {
	inv := sampleInvoice(gst.RegimeCGSTSGST)
	inv.TotalGST = 64801

	doc := BuildDocument(sampleSeller(), inv)
	require.Equal(t, "₹324.01", doc.CGST)
	require.Equal(t, "₹324.00", doc.SGST)
}

func TestWriteDocument(t *testing.T) {
	var sb strings.Builder
	err := WriteDocument(&sb, BuildDocument(sampleSeller(), sampleInvoice(gst.RegimeCGSTSGST)))
	require.NoError(t, err)

	html := sb.String()
	for _, want := range []string{
		"TAX INVOICE",
		"INV-2026-0042",
		"Acme Traders",
		"Sharma Traders",
		"Steel Bottle 1L",
		"7310",
		"CGST",
		"SGST",
		"₹4,248.00",
		"Rupees Four Thousand Two Hundred Forty Eight Only",
		"Payment due within 15 days.",
	} {
		require.Contains(t, html, want)
	}
	require.NotContains(t, html, "IGST")
}

type stubInvoices struct {
	inv invoice.Invoice
	err error
}

func (s *stubInvoices) Get(context.Context, string) (invoice.Invoice, error) {
	return s.inv, s.err
}

type stubSeller struct{}

func (stubSeller) Get(context.Context) (profile.BusinessProfile, error) {
	return sampleSeller(), nil
}

func TestDocumentHandler(t *testing.T) {
	h := &Handler{
		Invoices: &stubInvoices{inv: sampleInvoice(gst.RegimeCGSTSGST)},
		Seller:   stubSeller{},
	}
	r := chi.NewRouter()
	r.Get("/invoices/{invoiceID}/document", h.Document)

	req := httptest.NewRequest(http.MethodGet, "/invoices/"+uuid.NewString()+"/document", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "INV-2026-0042")
}

func TestDocumentHandlerNotFound(t *testing.T) {
	h := &Handler{
		Invoices: &stubInvoices{err: common.NewAppError("NOT_FOUND", "invoice not found", http.StatusNotFound, nil)},
		Seller:   stubSeller{},
	}
	r := chi.NewRouter()
	r.Get("/invoices/{invoiceID}/document", h.Document)

	req := httptest.NewRequest(http.MethodGet, "/invoices/"+uuid.NewString()+"/document", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
