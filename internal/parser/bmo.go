package parser

import "regexp"

// BMO credit-card rows abbreviate months with a trailing period and mark
// credits with a "CR" suffix instead of a minus sign:
//
//	Dec. 29  Dec. 30  AIR CANADA TICKET 014  412.50
//	Jan. 03  Jan. 03  PAYMENT RECEIVED - THANK YOU  412.50 CR
var bmoCreditRules = creditCardRules{
	strict: regexp.MustCompile(
		`(?i)^([A-Z]{3})\.?\s+(\d{1,2})\s+([A-Z]{3})\.?\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})(?:\s+CR)?\s*$`),
	loose: regexp.MustCompile(
		`(?i)^([A-Z]{3})\.?\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})(?:\s+CR)?\s*$`),
	startHint:    regexp.MustCompile(`(?i)^[A-Z]{3}\.?\s+\d{1,2}\b`),
	creditMarker: regexp.MustCompile(`(?i)\d\s+CR\s*$`),
}

var bmoChequingRules = chequingRules{
	datePrefix: regexp.MustCompile(`(?i)^([A-Z]{3})\.?\s+(\d{1,2})\b`),
	twoNumber: regexp.MustCompile(
		`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s+\$?(-?[\d,]+\.\d{2})\s*$`),
	oneNumber: regexp.MustCompile(`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s*$`),
}
