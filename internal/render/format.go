// Package render produces the printable HTML tax invoice. All formatting
// lives here; the pricing core hands over unformatted paise and this package
// turns them into rupee strings, Indian digit grouping, and words.
package render

import (
	"fmt"
	"strings"
)

// FormatINR renders paise as a rupee amount with en-IN digit grouping:
// the last three integer digits form one group, every group before it has two.
func FormatINR(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees := paise / 100
	fraction := paise % 100
	return fmt.Sprintf("%s₹%s.%02d", sign, groupIndian(rupees), fraction)
}

func groupIndian(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	head := s[:len(s)-3]
	tail := s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

var onesWords = []string{
	"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords spells out a paise amount in the Indian numbering system,
// e.g. "Rupees One Lakh Twenty Three Thousand Four Hundred Fifty Six and
// Seventy Eight Paise Only".
func AmountInWords(paise int64) string {
	if paise < 0 {
		return "Minus " + AmountInWords(-paise)
	}
	rupees := paise / 100
	fraction := paise % 100

	var b strings.Builder
	b.WriteString("Rupees ")
	b.WriteString(numberInWords(rupees))
	if fraction > 0 {
		b.WriteString(" and ")
		b.WriteString(numberInWords(fraction))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

func numberInWords(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	var parts []string
	append2 := func(v int64, unit string) {
		if v > 0 {
			parts = append(parts, twoDigitWords(v))
			if unit != "" {
				parts = append(parts, unit)
			}
		}
	}
	if n >= 1_00_00_000 {
		parts = append(parts, numberInWords(n/1_00_00_000), "Crore")
		n %= 1_00_00_000
	}
	append2(n/1_00_000, "Lakh")
	n %= 1_00_000
	append2(n/1_000, "Thousand")
	n %= 1_000
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, twoDigitWords(n))
	}
	return strings.Join(parts, " ")
}

func twoDigitWords(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}

// FormatPercent renders a basis-point rate as a percentage label.
func FormatPercent(bps int32) string {
	if bps%100 == 0 {
		return fmt.Sprintf("%d%%", bps/100)
	}
	return fmt.Sprintf("%.2f%%", float64(bps)/100)
}
