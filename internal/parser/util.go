package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/statement-extractor/internal/balance"
)

var monthsByName = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// monthFromName resolves a month token like "DEC", "Dec." or "December".
func monthFromName(tok string) (time.Month, bool) {
	tok = strings.ToLower(strings.Trim(tok, ". "))
	if len(tok) < 3 {
		return 0, false
	}
	m, ok := monthsByName[tok[:3]]
	return m, ok
}

// statementDatePatterns locate the statement's reference date. The period's
// end date counts too: a statement "to January 14, 2024" is a January
// statement for rollover purposes.
var statementDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)statement\s+date[:\s]+([A-Za-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})`),
	regexp.MustCompile(`(?i)statement\s+period.*?to\s+([A-Za-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})`),
	regexp.MustCompile(`(?i)to\s+([A-Za-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})`),
	regexp.MustCompile(`(?i)statement\s+date[:\s]+(\d{1,2})/(\d{1,2})/(\d{4})`),
}

// statementRef derives the statement's reference year and month from the
// page text, falling back to the supplied clock when no phrase matches.
// The clock fallback is the single wall-clock dependence of a parse.
func statementRef(text string, now func() time.Time) (year int, month time.Month) {
	for i, pat := range statementDatePatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if i == 3 {
			// numeric MM/DD/YYYY form
			mon, _ := strconv.Atoi(m[1])
			yr, _ := strconv.Atoi(m[3])
			if mon >= 1 && mon <= 12 {
				return yr, time.Month(mon)
			}
			continue
		}
		mon, ok := monthFromName(m[1])
		if !ok {
			continue
		}
		yr, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		return yr, mon
	}
	t := now()
	return t.Year(), t.Month()
}

// rolloverYear applies the year-rollover rule: a transaction whose month
// exceeds the statement's month belongs to the previous calendar year
// (December charges on a January statement).
func rolloverYear(txnMonth time.Month, stmtYear int, stmtMonth time.Month) int {
	if txnMonth > stmtMonth {
		return stmtYear - 1
	}
	return stmtYear
}

// mkDate builds a midnight-UTC calendar date, which keeps repeated parses of
// the same bytes byte-identical.
func mkDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// parseAmount wraps the shared money parser; parsers deal only in
// well-formed `d,ddd.dd` captures so the bool is rarely false.
func parseAmount(s string) (float64, bool) {
	return balance.ParseMoney(s)
}

// summaryKeywords mark balance/total rows that must not become transactions
// or leak into a continuation description.
var summaryKeywords = []string{
	"previous statement", "previous balance", "new balance",
	"opening balance", "closing balance", "balance forward",
	"minimum payment", "payment due", "credit limit", "available credit",
	"total ", "statement date", "statement period", "annual interest",
	"page ", "continued",
}

func isSummaryLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// collapseSpaces normalizes description whitespace after continuation lines
// are appended.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
