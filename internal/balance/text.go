// Package balance extracts opening/closing statement balances through two
// independent paths (embedded text layer, OCR over rasterized pages) and
// reconciles them into a single trusted pair. 0.0 is the shared "not found"
// sentinel throughout; no path ever raises for an extraction miss.
package balance

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

// Ordered pattern lists; the first match wins per balance. Chequing phrasing
// first, then the credit-card variants, then the loosest forms.
var openingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)opening\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)previous\s+statement\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)previous\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)balance\s+forward[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)beginning\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
}

var closingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)closing\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)new\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)ending\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)balance\s+due[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
	regexp.MustCompile(`(?i)total\s+balance[^0-9$-]{0,25}\$?\s*(-?[\d,]+\.\d{2})`),
}

// FromText scans concatenated page text for opening/closing balance phrases.
// Misses degrade to the 0.0 sentinel; this function never fails.
func FromText(text string) models.BalancePair {
	return models.BalancePair{
		Opening: firstMatch(openingPatterns, text),
		Closing: firstMatch(closingPatterns, text),
	}
}

func firstMatch(patterns []*regexp.Regexp, text string) float64 {
	for _, pat := range patterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			if v, ok := ParseMoney(m[1]); ok {
				return v
			}
		}
	}
	return 0.0
}

// ParseMoney converts "±d,ddd.dd" (optionally with a currency symbol) into a
// float. Thousands separators are stripped before conversion; decimal does
// the string-to-number work so "1,234.56" never picks up float noise.
func ParseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
