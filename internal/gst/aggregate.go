package gst

// Totals aggregates the amounts of one invoice.
type Totals struct {
	SubTotal      Money
	TotalGST      Money
	TotalDiscount Money
	GrandTotal    Money
}

// Aggregate sums priced line items into invoice totals. Summation follows the
// insertion order of items so identical input always yields identical output.
// TotalDiscount is accumulated per item from price x quantity x discount, not
// derived from SubTotal. GrandTotal is SubTotal plus TotalGST; the discount is
// already inside each taxable amount and must not be subtracted again. An
// empty slice yields all-zero totals.
func Aggregate(items []LineItem) Totals {
	var t Totals
	for _, it := range items {
		t.SubTotal += it.TaxableAmount
		t.TotalGST += it.TaxAmount
		t.TotalDiscount += mulBps(it.Price*it.Quantity, it.DiscountBps)
	}
	t.GrandTotal = t.SubTotal + t.TotalGST
	return t
}

// Halves splits TotalGST into the CGST and SGST display components of an
// intra-state invoice. The odd paisa, if any, lands on CGST.
func (t Totals) Halves() (cgst, sgst Money) {
	sgst = t.TotalGST / 2
	cgst = t.TotalGST - sgst
	return cgst, sgst
}
