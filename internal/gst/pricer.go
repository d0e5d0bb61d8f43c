package gst

import "errors"

var (
	// ErrInvalidQuantity is returned when a line is priced with a quantity below one.
	ErrInvalidQuantity = errors.New("gst: quantity must be at least 1")
	// ErrInvalidDiscount is returned when the discount falls outside 0-100%.
	ErrInvalidDiscount = errors.New("gst: discount must be between 0 and 100 percent")
)

// Product is the catalog snapshot a line item is priced from.
type Product struct {
	Name    string
	HSNCode string
	Price   Money
	RateBps Bps
	Unit    string
}

// LineItem carries a priced product selection. It is a value: the ordered
// line sequence of one invoice is its only home.
type LineItem struct {
	Product
	Quantity       int64
	DiscountBps    Bps
	DiscountAmount Money
	TaxableAmount  Money
	TaxAmount      Money
	Total          Money
}

// PriceItem prices a product selection into a line item.
//
// base = price x quantity, discount = base x discountBps, taxable = base -
// discount, tax = taxable x rateBps, total = taxable + tax. Each derived field
// is rounded to whole paise as it is computed, so aggregates built from these
// lines never accumulate sub-paisa drift. The product is never mutated.
func PriceItem(p Product, quantity int64, discountBps Bps) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if discountBps < 0 || discountBps > bpsDenominator {
		return LineItem{}, ErrInvalidDiscount
	}
	base := p.Price * quantity
	discount := mulBps(base, discountBps)
	taxable := base - discount
	tax := mulBps(taxable, p.RateBps)
	return LineItem{
		Product:        p,
		Quantity:       quantity,
		DiscountBps:    discountBps,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable + tax,
	}, nil
}
