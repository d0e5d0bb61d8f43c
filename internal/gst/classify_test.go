package gst_test

import (
	"testing"

	"github.com/noah-isme/backend-gstbill/internal/gst"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		seller string
		buyer  string
		want   gst.TaxRegime
	}{
		{"same state", "Maharashtra", "Maharashtra", gst.RegimeCGSTSGST},
		{"case insensitive", "Maharashtra", "maharashtra", gst.RegimeCGSTSGST},
		{"different states", "Maharashtra", "Karnataka", gst.RegimeIGST},
		{"blank seller", "", "Delhi", gst.RegimeCGSTSGST},
		{"blank buyer", "Delhi", "", gst.RegimeCGSTSGST},
		{"both blank", "", "", gst.RegimeCGSTSGST},
		{"whitespace only", "  ", "Delhi", gst.RegimeCGSTSGST},
		{"padded match", " Tamil Nadu ", "tamil nadu", gst.RegimeCGSTSGST},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gst.Classify(tc.seller, tc.buyer); got != tc.want {
				t.Fatalf("Classify(%q, %q) = %s, want %s", tc.seller, tc.buyer, got, tc.want)
			}
		})
	}
}

func TestKnownState(t *testing.T) {
	if !gst.KnownState("maharashtra") {
		t.Fatal("expected case-insensitive state match")
	}
	if !gst.KnownState(" Jammu and Kashmir ") {
		t.Fatal("expected trimmed state match")
	}
	if gst.KnownState("Atlantis") {
		t.Fatal("unexpected match for unknown state")
	}
}
