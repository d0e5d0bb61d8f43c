package gst

import "strings"

// States enumerates the Indian states and union territories accepted as
// party jurisdictions.
var States = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya",
	"Mizoram", "Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim",
	"Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand",
	"West Bengal", "Delhi", "Jammu and Kashmir", "Ladakh", "Puducherry",
}

// KnownState reports whether name matches an enumerated jurisdiction,
// ignoring case and surrounding whitespace.
func KnownState(name string) bool {
	trimmed := strings.TrimSpace(name)
	for _, s := range States {
		if strings.EqualFold(s, trimmed) {
			return true
		}
	}
	return false
}
