package parser

import "regexp"

// TD credit-card rows carry a posting date and a transaction date, uppercase
// month abbreviations, and a leading minus on payments:
//
//	DEC 30  DEC 29  TIM HORTONS #1234 TORONTO  $4.50
//	JAN 02  JAN 02  PAYMENT - THANK YOU  -$20.00
var tdCreditRules = creditCardRules{
	strict: regexp.MustCompile(
		`(?i)^([A-Z]{3})\s+(\d{1,2})\s+([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})\s*$`),
	loose: regexp.MustCompile(
		`(?i)^([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})\s*$`),
	startHint: regexp.MustCompile(`(?i)^[A-Z]{3}\s+\d{1,2}\b`),
}

// TD chequing statements glue the date to the month ("OCT31"), though
// re-extracted text sometimes reintroduces the space.
var tdChequingRules = chequingRules{
	datePrefix: regexp.MustCompile(`(?i)^([A-Z]{3})\s*(\d{1,2})\b`),
	twoNumber: regexp.MustCompile(
		`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s+\$?(-?[\d,]+\.\d{2})\s*$`),
	oneNumber: regexp.MustCompile(`^(.*?)\s*\$?(-?[\d,]+\.\d{2})\s*$`),
}
