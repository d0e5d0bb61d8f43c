package gst

import "strings"

// TaxRegime tags how the total tax of an invoice is split for display.
type TaxRegime string

const (
	// RegimeCGSTSGST marks an intra-state supply: tax splits evenly into CGST and SGST.
	RegimeCGSTSGST TaxRegime = "CGST_SGST"
	// RegimeIGST marks an inter-state supply taxed as a single IGST component.
	RegimeIGST TaxRegime = "IGST"
)

// Classify determines the tax regime from the seller and buyer jurisdictions.
// Comparison is case-insensitive. A blank jurisdiction on either side falls
// back to the intra-state split rather than asserting an inter-state supply.
func Classify(sellerState, buyerState string) TaxRegime {
	seller := strings.TrimSpace(sellerState)
	buyer := strings.TrimSpace(buyerState)
	if seller == "" || buyer == "" {
		return RegimeCGSTSGST
	}
	if strings.EqualFold(seller, buyer) {
		return RegimeCGSTSGST
	}
	return RegimeIGST
}
