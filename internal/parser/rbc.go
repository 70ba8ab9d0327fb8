package parser

import "regexp"

// RBC credit-card rows match the TD shape but the amount column keeps its
// dollar sign glued to the minus ("-$100.00") and descriptions often carry
// the bilingual slash ("PAYMENT - THANK YOU / PAIEMENT - MERCI").
var rbcCreditRules = creditCardRules{
	strict: regexp.MustCompile(
		`(?i)^([A-Z]{3})\s+(\d{1,2})\s+([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})\s*$`),
	loose: regexp.MustCompile(
		`(?i)^([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})\s*$`),
	startHint: regexp.MustCompile(`(?i)^[A-Z]{3}\s+\d{1,2}\b`),
}

// RBC chequing statements put the day before the month ("3 Nov").
var rbcChequingRules = chequingRules{
	datePrefix: regexp.MustCompile(`(?i)^(\d{1,2})\s+([A-Z]{3})\b`),
	dayFirst:   true,
	twoNumber: regexp.MustCompile(
		`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s+\$?(-?[\d,]+\.\d{2})\s*$`),
	oneNumber: regexp.MustCompile(`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s*$`),
}
