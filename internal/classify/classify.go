// Package classify assigns Debit or Credit to a parsed statement line.
// Textual evidence outranks the amount's sign: sign conventions differ
// between banks and between card (liability) and deposit (asset) accounts,
// but "refund" means money in everywhere.
package classify

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
)

var creditKeywords = []string{
	"refund", "rebate", "deposit", "payroll", "reimbursement", "dividend",
	"tax return", "reversal", "cashback", "payment received",
	"payment - thank you", "interest paid", "transfer in", "direct credit",
	"e-transfer received", "gc deposit",
}

var debitKeywords = []string{
	"purchase", "withdrawal", "fee", "subscription", "utility", "rent",
	"insurance", "grocery", "restaurant", "fuel", "pharmacy",
	"bill payment", "service charge", "atm", "pos ", "card payment",
	"direct debit", "standing order", "transfer out",
}

// One Aho-Corasick pass per description instead of a substring loop per
// keyword; sets are fixed, so the matchers are built once. Documents may be
// classified from concurrent goroutines, so lookups go through
// MatchThreadSafe; plain Match mutates per-node counters on the shared
// matcher.
var (
	creditMatcher = ahocorasick.NewStringMatcher(creditKeywords)
	debitMatcher  = ahocorasick.NewStringMatcher(debitKeywords)
)

// Classify determines the transaction type for a description and optional
// signed amount. Priority: credit keywords, debit keywords, amount sign
// (negative means Credit), then Debit as the final default. A keyword that
// contradicts the sign wins, and the conflict is logged.
func Classify(details string, amount *float64) models.TransactionType {
	signGuess := models.Debit
	haveSign := amount != nil
	if haveSign && *amount < 0 {
		signGuess = models.Credit
	}

	lower := []byte(strings.ToLower(details))

	if len(creditMatcher.MatchThreadSafe(lower)) > 0 {
		if haveSign && signGuess != models.Credit {
			logConflict(details, *amount, models.Credit)
		}
		return models.Credit
	}
	if len(debitMatcher.MatchThreadSafe(lower)) > 0 {
		if haveSign && signGuess != models.Debit {
			logConflict(details, *amount, models.Debit)
		}
		return models.Debit
	}
	if haveSign {
		return signGuess
	}
	return models.Debit
}

func logConflict(details string, amount float64, chosen models.TransactionType) {
	logging.Component("classify").WithFields(map[string]interface{}{
		"details": details,
		"amount":  amount,
		"chosen":  chosen,
	}).Debug("keyword match overrides sign-based type")
}
