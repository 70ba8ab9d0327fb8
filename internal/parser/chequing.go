package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/statement-extractor/internal/balance"
	"github.com/ledgerlens/statement-extractor/internal/classify"
	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
)

// chequingRules are the per-bank patterns for chequing/savings statements.
//
// datePrefix opens a new running date context; its two capture groups hold
// the month name and day (day first when dayFirst is set, RBC style).
// twoNumber matches the flattened `details amount balance` row shape;
// oneNumber is the fallback for rows where the running balance column was
// lost in extraction.
type chequingRules struct {
	datePrefix *regexp.Regexp
	dayFirst   bool
	twoNumber  *regexp.Regexp
	oneNumber  *regexp.Regexp
}

// chequingParser implements the common deposit-account algorithm: a date
// prefix starts a date context that subsequent rows inherit, amounts come as
// a debit/credit column value plus a running balance, and the running
// balance's direction decides debit vs credit.
type chequingParser struct {
	bank  models.Bank
	rules chequingRules
	now   func() time.Time
}

func (p *chequingParser) Name() string {
	return fmt.Sprintf("%s chequing/savings", p.bank)
}

func (p *chequingParser) Parse(pages []string) (txns []models.ParsedTransaction, opening, closing float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Component("parser").WithField("bank", p.bank).
				Errorf("chequing parse panicked: %v", r)
			txns, opening, closing = nil, 0, 0
		}
	}()

	allText := strings.Join(pages, "\n")
	pair := balance.FromText(allText)
	opening, closing = pair.Opening, pair.Closing

	stmtYear, stmtMonth := statementRef(allText, p.now)

	st := chequingState{
		parser:      p,
		stmtYear:    stmtYear,
		stmtMonth:   stmtMonth,
		prevBalance: opening,
	}

	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			// Date-prefixed rows are transactions even when the merchant
			// name carries a summary keyword ("Total Wine").
			if isSummaryLine(line) && !p.rules.datePrefix.MatchString(line) {
				continue
			}
			st.consume(line)
		}
	}
	st.flushPending()

	return st.txns, opening, closing, nil
}

// chequingState carries the running parse context: the current date, a
// pending description waiting for its amount row, and the last seen running
// balance.
type chequingState struct {
	parser      *chequingParser
	stmtYear    int
	stmtMonth   time.Month
	txns        []models.ParsedTransaction
	curDate     time.Time
	pending     string
	havePending bool
	preamble    []string
	prevBalance float64
}

func (st *chequingState) consume(line string) {
	rules := st.parser.rules

	newContext := false
	if m := rules.datePrefix.FindStringSubmatch(line); m != nil {
		// A new date context: whatever was pending belongs to the previous
		// date, even if its amount row never arrived.
		st.flushPending()

		monTok, dayTok := m[1], m[2]
		if rules.dayFirst {
			monTok, dayTok = m[2], m[1]
		}
		if month, ok := monthFromName(monTok); ok {
			if day, err := strconv.Atoi(dayTok); err == nil && day >= 1 && day <= 31 {
				st.curDate = mkDate(rolloverYear(month, st.stmtYear, st.stmtMonth), month, day)
			}
		}

		rest := strings.TrimSpace(line[len(m[0]):])
		if rest == "" {
			return
		}
		line = rest
		newContext = true
	}

	if m := rules.twoNumber.FindStringSubmatch(line); m != nil {
		amt, okAmt := parseAmount(m[2])
		bal, okBal := parseAmount(m[3])
		if okAmt && okBal {
			st.commit(m[1], amt, bal, true)
			return
		}
	}

	if m := rules.oneNumber.FindStringSubmatch(line); m != nil {
		if amt, ok := parseAmount(m[2]); ok {
			st.commit(m[1], amt, 0, false)
			return
		}
	}

	// No amount on this line. A date-prefixed remainder starts a pending
	// description under the new date; otherwise the text continues whatever
	// came before it: the pending description, the last transaction, or
	// (before any date context) the preamble buffer.
	switch {
	case st.havePending:
		st.pending = collapseSpaces(st.pending + " " + line)
	case newContext:
		st.pending = line
		st.havePending = true
	case len(st.txns) > 0:
		last := &st.txns[len(st.txns)-1]
		last.Details = collapseSpaces(last.Details + " " + line)
	case st.curDate.IsZero():
		st.preamble = append(st.preamble, line)
	default:
		st.pending = line
		st.havePending = true
	}
}

// commit records a transaction from an amount-bearing row. The sign is
// derived from the running-balance delta when both balances are usable;
// otherwise the classifier works from the description alone.
func (st *chequingState) commit(details string, amt, bal float64, haveBalance bool) {
	details = collapseSpaces(details)
	if st.havePending {
		details = collapseSpaces(st.pending + " " + details)
		st.pending = ""
		st.havePending = false
	}

	signed := amt
	haveSign := false
	if haveBalance && st.prevBalance != 0 && bal != 0 {
		delta := bal - st.prevBalance
		if math.Abs(math.Abs(delta)-amt) < 0.015 {
			haveSign = true
			if delta > 0 {
				// Balance went up: money in. The classifier's sign
				// convention is negative-means-credit.
				signed = -amt
			}
		}
	}
	if haveBalance && bal != 0 {
		st.prevBalance = bal
	}

	var amountArg *float64
	if haveSign || amt != 0 {
		amountArg = &signed
	}

	txn := models.ParsedTransaction{
		Date:     st.curDate,
		Details:  details,
		Amount:   amt,
		Type:     classify.Classify(details, amountArg),
		Category: models.CategoryUncategorized,
		Bank:     st.parser.bank,
		Kind:     models.KindChequingOrSavings,
	}
	st.appendTxn(txn)
}

// flushPending turns a dangling description into an amount-less record so
// wrapped descriptions at a date boundary are not silently dropped.
func (st *chequingState) flushPending() {
	if !st.havePending {
		return
	}
	details := collapseSpaces(st.pending)
	st.pending = ""
	st.havePending = false
	if details == "" || st.curDate.IsZero() {
		return
	}
	st.appendTxn(models.ParsedTransaction{
		Date:     st.curDate,
		Details:  details,
		Amount:   0,
		Type:     classify.Classify(details, nil),
		Category: models.CategoryUncategorized,
		Bank:     st.parser.bank,
		Kind:     models.KindChequingOrSavings,
	})
}

func (st *chequingState) appendTxn(txn models.ParsedTransaction) {
	if len(st.txns) == 0 && len(st.preamble) > 0 {
		txn.Details = collapseSpaces(strings.Join(st.preamble, " ") + " " + txn.Details)
		st.preamble = nil
	}
	st.txns = append(st.txns, txn)
}
