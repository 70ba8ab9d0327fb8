package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

func TestFromText(t *testing.T) {
	cases := []struct {
		name string
		text string
		want models.BalancePair
	}{
		{
			name: "chequing phrasing",
			text: "Opening Balance $1,234.56\nsome rows\nClosing Balance $2,000.00",
			want: models.BalancePair{Opening: 1234.56, Closing: 2000.00},
		},
		{
			name: "credit card phrasing",
			text: "Previous Balance: $100.00\nNew Balance: $150.00",
			want: models.BalancePair{Opening: 100.00, Closing: 150.00},
		},
		{
			name: "previous statement balance variant",
			text: "Previous Statement Balance $820.11\nBalance Due $900.00",
			want: models.BalancePair{Opening: 820.11, Closing: 900.00},
		},
		{
			name: "balance forward",
			text: "Balance Forward 512.30\nEnding Balance 488.05",
			want: models.BalancePair{Opening: 512.30, Closing: 488.05},
		},
		{
			name: "missing balances degrade to the sentinel",
			text: "no balance phrases here at all",
			want: models.BalancePair{},
		},
		{
			name: "only closing found",
			text: "New Balance $42.00",
			want: models.BalancePair{Closing: 42.00},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromText(tc.text))
		})
	}
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.56", 1234.56, true},
		{"$ 42.00", 42.00, true},
		{"-20.00", -20.00, true},
		{"$-20.00", -20.00, true},
		{"0.00", 0.00, true},
		{"-", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseMoney(tc.in)
		assert.Equal(t, tc.ok, ok, "ok for %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "value for %q", tc.in)
		}
	}
}
