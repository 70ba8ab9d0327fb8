package models

import "time"

// Bank identifies the issuing institution of a statement.
type Bank string

const (
	BankTD      Bank = "TD"
	BankRBC     Bank = "RBC"
	BankCIBC    Bank = "CIBC"
	BankBMO     Bank = "BMO"
	BankUnknown Bank = "Unknown"
)

// StatementKind distinguishes credit-card statements (liability, balance
// grows with spending) from chequing/savings statements (asset, balance
// shrinks with spending).
type StatementKind string

const (
	KindCreditCard        StatementKind = "Credit Card"
	KindChequingOrSavings StatementKind = "Chequing or Savings"
	KindUnknown           StatementKind = "Unknown"
)

// DetectedFormat is derived once per document from the normalized first-page
// text and is immutable for the rest of the pipeline.
type DetectedFormat struct {
	Bank Bank          `json:"bank"`
	Kind StatementKind `json:"statementKind"`
}

// Known reports whether a bank-specific parser can be selected.
func (f DetectedFormat) Known() bool {
	return f.Bank != BankUnknown && f.Kind != KindUnknown
}

// TransactionType is always one of the two values; every line that becomes a
// transaction record passes classification first.
type TransactionType string

const (
	Debit  TransactionType = "Debit"
	Credit TransactionType = "Credit"
)

// CategoryUncategorized is the initial category of every parsed transaction.
// Categorization against learned vendor mappings happens downstream.
const CategoryUncategorized = "Uncategorized"

// ParsedTransaction is the unit produced by the extraction core.
// Amount is a non-negative magnitude; the sign lives in Type.
type ParsedTransaction struct {
	Date     time.Time       `json:"date"`
	Details  string          `json:"details"`
	Amount   float64         `json:"amount"`
	Type     TransactionType `json:"transactionType"`
	Category string          `json:"category"`
	Bank     Bank            `json:"bank"`
	Kind     StatementKind   `json:"statementType"`
}

// BalancePair holds opening/closing balances in the statement's native
// currency. 0.0 is the "not found" sentinel, not a real zero balance;
// callers translate it to absent before storage.
type BalancePair struct {
	Opening float64 `json:"opening"`
	Closing float64 `json:"closing"`
}

// RawDocument is the immutable input to the pipeline.
type RawDocument struct {
	Data     []byte
	Filename string
}

// Warning flags make degraded conditions observable to the caller without
// aborting the per-document parse. The caller decides what to surface.
type Warning string

const (
	// WarnMalformedInput: the PDF bytes could not be read by any extraction
	// path. This is the only case where an empty result means "unreadable"
	// rather than "zero real transactions".
	WarnMalformedInput Warning = "malformed-input"
	// WarnBalanceDiscrepancy: OCR and text-layer balances both matched but
	// disagreed by more than one cent.
	WarnBalanceDiscrepancy Warning = "balance-discrepancy"
	// WarnNoParserMatched: layout detection failed (or the matched parser
	// found nothing) and the advanced OCR fallback produced whatever
	// transactions exist in the result.
	WarnNoParserMatched Warning = "no-parser-matched"
	// WarnOCRUnavailable: the OCR engine or rasterizer was missing; balances
	// came from the text layer alone.
	WarnOCRUnavailable Warning = "ocr-unavailable"
)

// Result is everything one document yields. Both source BalancePairs are kept
// alongside the reconciled pair for diagnostics.
type Result struct {
	Format       DetectedFormat      `json:"format"`
	Transactions []ParsedTransaction `json:"transactions"`
	Balances     BalancePair         `json:"balances"`
	TextBalances BalancePair         `json:"textBalances"`
	OCRBalances  BalancePair         `json:"ocrBalances"`
	Warnings     []Warning           `json:"warnings,omitempty"`
}

// HasWarning reports whether w was recorded on the result.
func (r *Result) HasWarning(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}
