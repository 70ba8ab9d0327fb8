package parser

import (
	"testing"
	"time"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

func TestTDChequingParser_Parse(t *testing.T) {
	p, err := NewWithClock(
		models.DetectedFormat{Bank: models.BankTD, Kind: models.KindChequingOrSavings},
		fixedClock(2024, time.November, 15),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages := []string{
		`Opening Balance $1,000.00
OCT 31 GC DEPOSIT PAYROLL 500.00 1,500.00
NOV 01 CHEQUE 00123 200.00 1,300.00
Closing Balance $1,300.00`,
	}

	txns, opening, closing, err := p.Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opening != 1000.00 {
		t.Errorf("opening: got %f, want 1000.00", opening)
	}
	if closing != 1300.00 {
		t.Errorf("closing: got %f, want 1300.00", closing)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}

	// Balance rose by the amount, so the deposit is a credit.
	txn := txns[0]
	wantDate := time.Date(2024, time.October, 31, 0, 0, 0, 0, time.UTC)
	if !txn.Date.Equal(wantDate) {
		t.Errorf("txn[0].Date: got %v, want %v", txn.Date, wantDate)
	}
	if txn.Amount != 500.00 {
		t.Errorf("txn[0].Amount: got %f, want 500.00", txn.Amount)
	}
	if txn.Type != models.Credit {
		t.Errorf("txn[0].Type: got %q, want Credit", txn.Type)
	}

	// Balance fell, so the cheque is a debit.
	txn = txns[1]
	if txn.Amount != 200.00 {
		t.Errorf("txn[1].Amount: got %f, want 200.00", txn.Amount)
	}
	if txn.Type != models.Debit {
		t.Errorf("txn[1].Type: got %q, want Debit", txn.Type)
	}
	if txn.Kind != models.KindChequingOrSavings {
		t.Errorf("txn[1].Kind: got %q", txn.Kind)
	}
}

func TestChequingParser_ContinuationMerging(t *testing.T) {
	p, err := NewWithClock(
		models.DetectedFormat{Bank: models.BankTD, Kind: models.KindChequingOrSavings},
		fixedClock(2024, time.January, 31),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages := []string{
		"Jan 05  Coffee Shop\n   extra description text\nJan 06  Gas Station  $40.00",
	}

	txns, _, _, err := p.Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}

	// The wrapped description joins the Jan 05 entry, which surfaces as an
	// amount-less record when its amount row never arrives.
	txn := txns[0]
	if txn.Details != "Coffee Shop extra description text" {
		t.Errorf("txn[0].Details: got %q", txn.Details)
	}
	if txn.Amount != 0 {
		t.Errorf("txn[0].Amount: got %f, want 0", txn.Amount)
	}
	wantDate := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	if !txn.Date.Equal(wantDate) {
		t.Errorf("txn[0].Date: got %v, want %v", txn.Date, wantDate)
	}

	txn = txns[1]
	if txn.Details != "Gas Station" {
		t.Errorf("txn[1].Details: got %q", txn.Details)
	}
	if txn.Amount != 40.00 {
		t.Errorf("txn[1].Amount: got %f, want 40.00", txn.Amount)
	}
	if !txn.Date.Equal(time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("txn[1].Date: got %v", txn.Date)
	}
}

func TestRBCChequingParser_DayFirstDates(t *testing.T) {
	p, err := NewWithClock(
		models.DetectedFormat{Bank: models.BankRBC, Kind: models.KindChequingOrSavings},
		fixedClock(2024, time.November, 30),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages := []string{
		`Opening Balance 750.00
3 Nov e-Transfer received from A SMITH 250.00 1,000.00
4 Nov Monthly fee 5.00 995.00`,
	}

	txns, _, _, err := p.Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}

	if !txns[0].Date.Equal(time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("txn[0].Date: got %v", txns[0].Date)
	}
	if txns[0].Type != models.Credit {
		t.Errorf("txn[0].Type: got %q, want Credit", txns[0].Type)
	}
	if txns[1].Type != models.Debit {
		t.Errorf("txn[1].Type: got %q, want Debit", txns[1].Type)
	}
}

func TestChequingParser_SummaryWordInMerchantName(t *testing.T) {
	p, err := NewWithClock(
		models.DetectedFormat{Bank: models.BankTD, Kind: models.KindChequingOrSavings},
		fixedClock(2024, time.November, 30),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages := []string{
		`Opening Balance $1,000.00
NOV 02 Total Wine Purchase 45.00 955.00
Closing Balance $955.00`,
	}

	txns, _, _, err := p.Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Details != "Total Wine Purchase" {
		t.Errorf("Details: got %q", txns[0].Details)
	}
	if txns[0].Type != models.Debit {
		t.Errorf("Type: got %q, want Debit", txns[0].Type)
	}
}

func TestChequingParser_KeywordBeatsBalanceDelta(t *testing.T) {
	p, err := NewWithClock(
		models.DetectedFormat{Bank: models.BankCIBC, Kind: models.KindChequingOrSavings},
		fixedClock(2024, time.May, 31),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No usable running balance on the row, so the classifier works from
	// the description keywords alone.
	pages := []string{
		"MAY 10 Refund for returned item 30.00",
	}

	txns, _, _, err := p.Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Type != models.Credit {
		t.Errorf("Type: got %q, want Credit", txns[0].Type)
	}
}
