package parser

import "regexp"

// CIBC credit-card rows use title-case month abbreviations and frequently
// drop the dollar sign from the amount column:
//
//	Oct 28  Oct 29  COSTCO WHOLESALE W123  210.16
var cibcCreditRules = creditCardRules{
	strict: regexp.MustCompile(
		`(?i)^([A-Z]{3})\s+(\d{1,2})\s+([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})\s*$`),
	loose: regexp.MustCompile(
		`(?i)^([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})\s*$`),
	startHint: regexp.MustCompile(`(?i)^[A-Z]{3}\s+\d{1,2}\b`),
}

var cibcChequingRules = chequingRules{
	datePrefix: regexp.MustCompile(`(?i)^([A-Z]{3})\s+(\d{1,2})\b`),
	twoNumber: regexp.MustCompile(
		`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s+\$?(-?[\d,]+\.\d{2})\s*$`),
	oneNumber: regexp.MustCompile(`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s*$`),
}
