package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatINR(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{0, "₹0.00"},
		{50, "₹0.50"},
		{100, "₹1.00"},
		{212400, "₹2,124.00"},
		{424800, "₹4,248.00"},
		{12345678, "₹1,23,456.78"},
		{1234567890, "₹1,23,45,678.90"},
		{100000000000, "₹1,00,00,00,000.00"},
		{-212400, "-₹2,124.00"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatINR(tc.paise), "paise %d", tc.paise)
	}
}

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{0, "Rupees Zero Only"},
		{100, "Rupees One Only"},
		{50, "Rupees Zero and Fifty Paise Only"},
		{212400, "Rupees Two Thousand One Hundred Twenty Four Only"},
		{424800, "Rupees Four Thousand Two Hundred Forty Eight Only"},
		{12345678, "Rupees One Lakh Twenty Three Thousand Four Hundred Fifty Six and Seventy Eight Paise Only"},
		{1_00_00_000_00, "Rupees One Crore Only"},
		{2_50_00_000_00, "Rupees Two Crore Fifty Lakh Only"},
		{1_23_45_67_890_00, "Rupees One Hundred Twenty Three Crore Forty Five Lakh Sixty Seven Thousand Eight Hundred Ninety Only"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, AmountInWords(tc.paise), "paise %d", tc.paise)
	}
}

func TestFormatPercent(t *testing.T) {
	require.Equal(t, "18%", FormatPercent(1800))
	require.Equal(t, "0%", FormatPercent(0))
	require.Equal(t, "12.50%", FormatPercent(1250))
}
