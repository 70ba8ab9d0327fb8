package balance

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
)

// Policy decides which source wins when both paths report a positive value
// that disagrees by more than one cent. The text layer is decoded from exact
// embedded characters, so it is the default; preferring OCR is available
// because that assumption is a heuristic, not a measurement.
type Policy int

const (
	PreferText Policy = iota
	PreferOCR
)

// Discrepancy records a disagreement between the two extraction paths for
// diagnostic surfacing; reconciliation itself still picks a value.
type Discrepancy struct {
	Field string  `json:"field"` // "opening" or "closing"
	OCR   float64 `json:"ocr"`
	Text  float64 `json:"text"`
}

var centTolerance = decimal.New(1, -2)

// Reconcile merges the OCR- and text-derived balance pairs field by field.
// A 0.0 on either side means that source found nothing; 0.0 in the output
// means neither did, and callers must treat it as absent.
func Reconcile(ocr, text models.BalancePair, policy Policy) (models.BalancePair, []Discrepancy) {
	var discrepancies []Discrepancy
	merged := models.BalancePair{
		Opening: reconcileField("opening", ocr.Opening, text.Opening, policy, &discrepancies),
		Closing: reconcileField("closing", ocr.Closing, text.Closing, policy, &discrepancies),
	}
	return merged, discrepancies
}

func reconcileField(name string, ocr, text float64, policy Policy, out *[]Discrepancy) float64 {
	switch {
	case ocr > 0 && text > 0:
		if withinCent(ocr, text) {
			return text
		}
		logging.Component("reconcile").WithFields(map[string]interface{}{
			"field": name,
			"ocr":   ocr,
			"text":  text,
		}).Warn("balance sources disagree")
		*out = append(*out, Discrepancy{Field: name, OCR: ocr, Text: text})
		if policy == PreferOCR {
			return ocr
		}
		return text
	case text > 0:
		return text
	case ocr > 0:
		return ocr
	default:
		return 0.0
	}
}

func withinCent(a, b float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(centTolerance)
}
