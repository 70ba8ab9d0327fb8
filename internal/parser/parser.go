// Package parser turns extracted statement text into transaction records.
// One parser exists per (bank, statement kind) pair; all of them share two
// engines, credit-card style and chequing style, instantiated with
// bank-specific patterns.
package parser

import (
	"fmt"
	"time"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

// Parser is the common contract of every bank-specific parser: raw page
// text in, ordered transactions plus the parser's own text-layer balance
// estimates out. A parse never fails on malformed lines; the error return
// is reserved for future parsers with real setup costs.
type Parser interface {
	Parse(pages []string) (txns []models.ParsedTransaction, opening, closing float64, err error)
	Name() string
}

// New returns the parser for a detected format, using the wall clock for
// the statement-date fallback.
func New(format models.DetectedFormat) (Parser, error) {
	return NewWithClock(format, time.Now)
}

// NewWithClock is New with an injectable clock, so tests of the
// no-statement-date fallback stay deterministic.
func NewWithClock(format models.DetectedFormat, now func() time.Time) (Parser, error) {
	credit := map[models.Bank]creditCardRules{
		models.BankTD:   tdCreditRules,
		models.BankRBC:  rbcCreditRules,
		models.BankCIBC: cibcCreditRules,
		models.BankBMO:  bmoCreditRules,
	}
	chequing := map[models.Bank]chequingRules{
		models.BankTD:   tdChequingRules,
		models.BankRBC:  rbcChequingRules,
		models.BankCIBC: cibcChequingRules,
		models.BankBMO:  bmoChequingRules,
	}

	switch format.Kind {
	case models.KindCreditCard:
		if rules, ok := credit[format.Bank]; ok {
			return &creditCardParser{bank: format.Bank, rules: rules, now: now}, nil
		}
	case models.KindChequingOrSavings:
		if rules, ok := chequing[format.Bank]; ok {
			return &chequingParser{bank: format.Bank, rules: rules, now: now}, nil
		}
	}
	return nil, fmt.Errorf("no parser for %s / %s", format.Bank, format.Kind)
}
