// Package gst implements GST line-item pricing, invoice aggregation, and the
// intra/inter-state tax classification used when assembling tax invoices.
// All arithmetic is on scaled integers: amounts in paise, percentages in
// basis points, so computed fields are exact and reproducible.
package gst

// Money represents a monetary value stored in paise (minor units of INR).
type Money = int64

// Bps is a percentage expressed in basis points (100 bps == 1%).
type Bps = int32

// bpsDenominator converts basis points back to a plain ratio.
const bpsDenominator = 10_000

// mulBps multiplies an amount by a basis-point percentage, rounding half away
// from zero to whole paise. Amounts and percentages are non-negative in this
// domain, so the rounding term is always additive.
func mulBps(amount Money, pct Bps) Money {
	return (amount*int64(pct) + bpsDenominator/2) / bpsDenominator
}

// PercentToBps converts an integer percentage to basis points.
func PercentToBps(percent int) Bps {
	return Bps(percent * 100)
}
