// Package detect identifies the issuing bank and statement kind from the
// first page of extracted text. Detection is substring matching over a
// normalized copy of the text: lowercased with all whitespace stripped, so
// spread-out PDF glyphs ("T D  C a n a d a") still match.
package detect

import (
	"strings"
	"unicode"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

// bankMarkers are checked in order; first match wins. The bank is fixed
// before any kind marker is consulted.
var bankMarkers = []struct {
	bank    models.Bank
	tokens  []string
	hint    string // filename substring, used only when page text matches nothing
}{
	{models.BankTD, []string{"tdcanadatrust", "tdbankgroup", "torontodominion", "tdrewards"}, "td"},
	{models.BankRBC, []string{"royalbankofcanada", "royalbank", "rbcrewards"}, "rbc"},
	{models.BankCIBC, []string{"cibc", "canadianimperialbank"}, "cibc"},
	{models.BankBMO, []string{"bankofmontreal", "bmostatement", "bmomastercard", "bmo"}, "bmo"},
}

// Credit-card statements carry a "statement date" line and a "previous
// statement" balance; deposit accounts carry opening/closing balance rows.
var (
	creditCardMarkers = [][]string{
		{"statementdate", "previousstatement"},
		{"previousbalance", "newbalance"},
		{"minimumpayment"},
	}
	chequingMarkers = [][]string{
		{"openingbalance", "closingbalance"},
		{"balanceforward", "closingbalance"},
		{"withdrawals", "deposits"},
	}
)

// Detect inspects the raw first-page text and (optionally) the originating
// filename. It never fails: unrecognized input yields {Unknown, Unknown},
// which routes the document to the advanced OCR fallback.
func Detect(firstPageText, filename string) models.DetectedFormat {
	norm := Normalize(firstPageText)

	bank := models.BankUnknown
	for _, m := range bankMarkers {
		for _, tok := range m.tokens {
			if strings.Contains(norm, tok) {
				bank = m.bank
				break
			}
		}
		if bank != models.BankUnknown {
			break
		}
	}

	// Filename hinting is weaker than page text: only use it when the text
	// itself identified nothing.
	if bank == models.BankUnknown && filename != "" {
		lower := strings.ToLower(filename)
		for _, m := range bankMarkers {
			if strings.Contains(lower, m.hint) {
				bank = m.bank
				break
			}
		}
	}

	if bank == models.BankUnknown {
		return models.DetectedFormat{Bank: models.BankUnknown, Kind: models.KindUnknown}
	}

	return models.DetectedFormat{Bank: bank, Kind: detectKind(norm)}
}

func detectKind(norm string) models.StatementKind {
	if matchesAll(norm, creditCardMarkers) {
		return models.KindCreditCard
	}
	if matchesAll(norm, chequingMarkers) {
		return models.KindChequingOrSavings
	}
	return models.KindUnknown
}

// matchesAll returns true when any marker group has every token present.
func matchesAll(norm string, groups [][]string) bool {
	for _, group := range groups {
		all := true
		for _, tok := range group {
			if !strings.Contains(norm, tok) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Normalize lowercases text and strips every whitespace rune.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
