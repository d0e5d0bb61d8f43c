package gst

// AllowedRates lists the GST slabs a catalog product may carry, in percent.
var AllowedRates = []int{0, 5, 12, 18, 28}

// ValidRate reports whether the basis-point rate maps to a permitted GST slab.
// The pricer itself accepts any rate; this guard belongs to catalog validation.
func ValidRate(rateBps Bps) bool {
	for _, pct := range AllowedRates {
		if rateBps == PercentToBps(pct) {
			return true
		}
	}
	return false
}
