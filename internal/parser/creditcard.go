package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/statement-extractor/internal/balance"
	"github.com/ledgerlens/statement-extractor/internal/classify"
	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
)

// creditCardRules are the per-bank patterns for credit-card statements.
//
// strict captures a full transaction row:
//
//	1: posting month  2: posting day  3: transaction month
//	4: transaction day  5: details  6: sign  7: amount
//
// loose is the retry for rows that look like a transaction (month+day
// prefix) but lost a column to PDF flattening:
//
//	1: month  2: day  3: details  4: sign  5: amount
//
// startHint is the cheap month+day prefix test that decides whether a
// non-matching line is a failed transaction row or a continuation.
// creditMarker, when set, flags bank-specific credit suffixes ("CR")
// carried instead of a minus sign.
type creditCardRules struct {
	strict       *regexp.Regexp
	loose        *regexp.Regexp
	startHint    *regexp.Regexp
	creditMarker *regexp.Regexp
}

// creditCardParser implements the common credit-card statement algorithm:
// dual posting/transaction dates per row, year inference against the
// statement month, a loose-pattern retry, and continuation-line merging with
// pre-first-transaction buffering.
type creditCardParser struct {
	bank  models.Bank
	rules creditCardRules
	now   func() time.Time
}

func (p *creditCardParser) Name() string {
	return fmt.Sprintf("%s credit card", p.bank)
}

func (p *creditCardParser) Parse(pages []string) (txns []models.ParsedTransaction, opening, closing float64, err error) {
	// A malformed document must degrade to an empty list, never abort the
	// batch.
	defer func() {
		if r := recover(); r != nil {
			logging.Component("parser").WithField("bank", p.bank).
				Errorf("credit card parse panicked: %v", r)
			txns, opening, closing = nil, 0, 0
		}
	}()

	allText := strings.Join(pages, "\n")
	pair := balance.FromText(allText)
	opening, closing = pair.Opening, pair.Closing

	stmtYear, stmtMonth := statementRef(allText, p.now)

	var preamble []string
	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			// A summary keyword inside a date-prefixed row is merchant text
			// ("TOTAL ENERGIES"), not a balance row; only skip keyword lines
			// that cannot be transactions.
			if isSummaryLine(line) && !p.rules.startHint.MatchString(line) {
				continue
			}

			if m := p.rules.strict.FindStringSubmatch(line); m != nil {
				txn, ok := p.buildTxn(m[3], m[4], m[5], m[6], m[7], line, stmtYear, stmtMonth)
				if ok {
					txns = p.append(txns, txn, &preamble)
				}
				continue
			}

			if p.rules.startHint.MatchString(line) {
				// Looks like a transaction row; retry with the loose pattern
				// before giving up on it.
				if m := p.rules.loose.FindStringSubmatch(line); m != nil {
					txn, ok := p.buildTxn(m[1], m[2], m[3], m[4], m[5], line, stmtYear, stmtMonth)
					if ok {
						txns = p.append(txns, txn, &preamble)
					}
				}
				continue
			}

			// Continuation of the previous description; before the first
			// transaction there is nothing to continue, so buffer the line
			// and prepend it once a transaction lands.
			if len(txns) > 0 {
				last := &txns[len(txns)-1]
				last.Details = collapseSpaces(last.Details + " " + line)
			} else {
				preamble = append(preamble, line)
			}
		}
	}

	return txns, opening, closing, nil
}

func (p *creditCardParser) append(txns []models.ParsedTransaction, txn models.ParsedTransaction, preamble *[]string) []models.ParsedTransaction {
	if len(txns) == 0 && len(*preamble) > 0 {
		txn.Details = collapseSpaces(strings.Join(*preamble, " ") + " " + txn.Details)
		*preamble = nil
	}
	return append(txns, txn)
}

func (p *creditCardParser) buildTxn(monTok, dayTok, details, sign, amtTok, line string, stmtYear int, stmtMonth time.Month) (models.ParsedTransaction, bool) {
	month, ok := monthFromName(monTok)
	if !ok {
		return models.ParsedTransaction{}, false
	}
	day, err := strconv.Atoi(dayTok)
	if err != nil || day < 1 || day > 31 {
		return models.ParsedTransaction{}, false
	}
	amt, ok := parseAmount(amtTok)
	if !ok {
		return models.ParsedTransaction{}, false
	}

	signed := amt
	if sign == "-" {
		signed = -amt
	}
	if p.rules.creditMarker != nil && p.rules.creditMarker.MatchString(line) {
		signed = -amt
	}

	details = collapseSpaces(details)
	return models.ParsedTransaction{
		Date:     mkDate(rolloverYear(month, stmtYear, stmtMonth), month, day),
		Details:  details,
		Amount:   abs(signed),
		Type:     classify.Classify(details, &signed),
		Category: models.CategoryUncategorized,
		Bank:     p.bank,
		Kind:     models.KindCreditCard,
	}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
