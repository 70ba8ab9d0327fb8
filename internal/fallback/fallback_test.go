package fallback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

func TestDBSCAN1D(t *testing.T) {
	// Two tight groups and one outlier.
	values := []float64{40, 41, 42, 43, 10, 11, 12, 95}
	labels := dbscan1D(values, 3, 3)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[1], labels[2])
	assert.Equal(t, labels[2], labels[3])
	assert.Equal(t, labels[4], labels[5])
	assert.NotEqual(t, labels[0], labels[4])
	assert.Equal(t, -1, labels[7], "outlier should be noise")

	assert.Equal(t, labels[0], largestCluster(labels))
}

func TestDBSCAN1D_AllNoise(t *testing.T) {
	labels := dbscan1D([]float64{1, 50, 100}, 2, 2)
	assert.Equal(t, []int{-1, -1, -1}, labels)
	assert.Equal(t, -1, largestCluster(labels))
}

func TestFromLines(t *testing.T) {
	x := &Extractor{
		Clock:  func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) },
		MinPts: 2,
	}

	lines := []string{
		"Jan 05 COFFEE ROASTERY DOWNTOWN 4.50",
		"Jan 06 HARDWARE SUPPLY STORE 31.20",
		"ref 9912",
		"Jan 07 CONSULTING INVOICE PAID -120.00",
		"Jan 08 BOOKSTORE ON MAIN ST 18.75",
	}

	txns := x.FromLines(lines)
	require.Len(t, txns, 4)

	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, "COFFEE ROASTERY DOWNTOWN", txns[0].Details)
	assert.Equal(t, 4.50, txns[0].Amount)
	assert.Equal(t, models.Debit, txns[0].Type)
	assert.Equal(t, models.BankUnknown, txns[0].Bank)
	assert.Equal(t, models.KindUnknown, txns[0].Kind)

	// The short reference line is outside the dominant cluster and joins
	// the preceding description.
	assert.Equal(t, "HARDWARE SUPPLY STORE ref 9912", txns[1].Details)

	assert.Equal(t, models.Credit, txns[2].Type)
	assert.Equal(t, 120.00, txns[2].Amount)
}

func TestFromLines_NumericDates(t *testing.T) {
	x := &Extractor{
		Clock: func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) },
	}

	txns := x.FromLines([]string{"03/15/2023 VENDOR PAYMENT PORTAL 99.99"})
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestFromLines_SkipsSummaryRows(t *testing.T) {
	x := &Extractor{
		Clock: func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) },
	}

	txns := x.FromLines([]string{
		"Jan 05 MERCHANT ONE LOCATION A 10.00",
		"Total for period 10.00",
	})
	require.Len(t, txns, 1)
	assert.Equal(t, "MERCHANT ONE LOCATION A", txns[0].Details)
}

func TestFromLines_Empty(t *testing.T) {
	x := &Extractor{}
	assert.Nil(t, x.FromLines(nil))
}
