package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

func TestWriteCSV(t *testing.T) {
	txns := []models.ParsedTransaction{
		{
			Date:     time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
			Details:  "COFFEE SHOP DOWNTOWN",
			Amount:   4.5,
			Type:     models.Debit,
			Category: models.CategoryUncategorized,
			Bank:     models.BankTD,
			Kind:     models.KindChequingOrSavings,
		},
		{
			Date:     time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC),
			Details:  "PAYROLL DEPOSIT, ACME INC",
			Amount:   2500,
			Type:     models.Credit,
			Category: models.CategoryUncategorized,
			Bank:     models.BankTD,
			Kind:     models.KindChequingOrSavings,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Date,Details,Amount,Type,Category,Bank,Statement Type", lines[0])
	assert.Equal(t, "2024-01-05,COFFEE SHOP DOWNTOWN,4.50,Debit,Uncategorized,TD,Chequing or Savings", lines[1])
	// Commas in descriptions must be quoted, not split.
	assert.Contains(t, lines[2], `"PAYROLL DEPOSIT, ACME INC"`)
	assert.Contains(t, lines[2], "2500.00")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Details,Amount,Type,Category,Bank,Statement Type", strings.TrimSpace(buf.String()))
}
