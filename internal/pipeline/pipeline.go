// Package pipeline wires the extraction stages into the per-document flow:
// text extraction, layout detection, bank-specific parsing (or the OCR
// fallback when no layout matched), dual-path balance extraction, and
// reconciliation. Processing a document never fails outright; degraded
// stages leave warnings on the result instead.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgerlens/statement-extractor/internal/balance"
	"github.com/ledgerlens/statement-extractor/internal/detect"
	"github.com/ledgerlens/statement-extractor/internal/extractor"
	"github.com/ledgerlens/statement-extractor/internal/fallback"
	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
	"github.com/ledgerlens/statement-extractor/internal/parser"
)

// Config carries the operator-tunable knobs. The zero value is usable.
type Config struct {
	Policy balance.Policy // reconciliation winner on disagreement
	DPI    float64        // rasterization density for the OCR paths
}

// Pipeline processes raw statement documents. Every stage is an injectable
// hook so tests can run the full flow without a PDF library or an OCR
// engine; the zero hooks use the real implementations.
type Pipeline struct {
	ExtractText func(data []byte) ([]string, error)
	NewParser   func(format models.DetectedFormat) (parser.Parser, error)
	Balances    interface {
		Extract(data []byte) (models.BalancePair, error)
	}
	Fallback interface {
		Extract(data []byte) []models.ParsedTransaction
	}
	Policy balance.Policy
}

// New builds a pipeline over the real extraction stages.
func New(cfg Config) *Pipeline {
	clock := time.Now
	return &Pipeline{
		ExtractText: extractor.ExtractText,
		NewParser: func(f models.DetectedFormat) (parser.Parser, error) {
			return parser.NewWithClock(f, clock)
		},
		Balances: &balance.OCRExtractor{DPI: cfg.DPI},
		Fallback: &fallback.Extractor{DPI: cfg.DPI, Clock: clock},
		Policy:   cfg.Policy,
	}
}

// Process runs one document through the full flow. Determinism over the same
// bytes is a contract: no stage consults mutable external state beyond the
// clock fallback for statements that carry no date, and the same input always
// yields the same result.
func (p *Pipeline) Process(ctx context.Context, doc models.RawDocument) *models.Result {
	log := logging.Component("pipeline").WithField("filename", doc.Filename)
	result := &models.Result{
		Format:       models.DetectedFormat{Bank: models.BankUnknown, Kind: models.KindUnknown},
		Transactions: []models.ParsedTransaction{},
	}

	pages, textErr := p.ExtractText(doc.Data)
	if textErr != nil {
		log.WithError(textErr).Warn("text extraction failed")
	}

	var firstPage string
	if len(pages) > 0 {
		firstPage = pages[0]
	}
	result.Format = detect.Detect(firstPage, doc.Filename)
	result.TextBalances = balance.FromText(strings.Join(pages, "\n"))

	if ctx.Err() != nil {
		return result
	}

	if result.Format.Known() {
		p.runParser(result, pages, log)
	}

	// The fallback runs when no layout matched, and also when a matched
	// parser came up empty: a recognized bank with an unrecognized table
	// layout is indistinguishable from a scan.
	if len(result.Transactions) == 0 {
		log.WithField("format", result.Format).Info("no parsed transactions, using OCR fallback")
		result.Transactions = append(result.Transactions, p.Fallback.Extract(doc.Data)...)
		if !result.HasWarning(models.WarnNoParserMatched) {
			result.Warnings = append(result.Warnings, models.WarnNoParserMatched)
		}
	}

	if ctx.Err() != nil {
		return result
	}

	ocrBal, ocrErr := p.Balances.Extract(doc.Data)
	result.OCRBalances = ocrBal
	if ocrErr != nil {
		log.WithError(ocrErr).Warn("OCR balance path unavailable")
		result.Warnings = append(result.Warnings, models.WarnOCRUnavailable)
	}

	merged, discrepancies := balance.Reconcile(result.OCRBalances, result.TextBalances, p.Policy)
	result.Balances = merged
	if len(discrepancies) > 0 {
		result.Warnings = append(result.Warnings, models.WarnBalanceDiscrepancy)
	}

	if textErr != nil && ocrErr != nil && len(result.Transactions) == 0 {
		result.Warnings = append(result.Warnings, models.WarnMalformedInput)
	}

	log.WithFields(map[string]interface{}{
		"bank":         result.Format.Bank,
		"kind":         result.Format.Kind,
		"transactions": len(result.Transactions),
		"warnings":     len(result.Warnings),
	}).Info("document processed")
	return result
}

func (p *Pipeline) runParser(result *models.Result, pages []string, log *logrus.Entry) {
	prs, err := p.NewParser(result.Format)
	if err != nil {
		log.Warnf("parser selection failed: %v", err)
		result.Warnings = append(result.Warnings, models.WarnNoParserMatched)
		return
	}

	txns, opening, closing, err := prs.Parse(pages)
	if err != nil {
		log.Warnf("%s parse failed: %v", prs.Name(), err)
		result.Warnings = append(result.Warnings, models.WarnNoParserMatched)
		return
	}
	result.Transactions = append(result.Transactions, txns...)

	// Parsers see pages individually and sometimes pick up a balance the
	// whole-text scan missed; prefer their values when present.
	if opening != 0 {
		result.TextBalances.Opening = opening
	}
	if closing != 0 {
		result.TextBalances.Closing = closing
	}
}
