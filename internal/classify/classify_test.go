package classify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

func amt(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		details string
		amount  *float64
		want    models.TransactionType
	}{
		{"credit keyword beats positive sign", "Payroll Deposit", amt(500), models.Credit},
		{"debit keyword with positive sign", "POS Purchase Grocery Store", amt(42.50), models.Debit},
		{"sign decides when no keyword matches", "Unusual Vendor XYZ", amt(-10), models.Credit},
		{"positive sign without keyword", "Unusual Vendor XYZ", amt(10), models.Debit},
		{"no keyword no amount defaults to debit", "Unusual Vendor XYZ", nil, models.Debit},
		{"credit keyword without amount", "Refund - store return", nil, models.Credit},
		{"debit keyword beats negative sign", "Monthly service charge", amt(-4.95), models.Debit},
		{"card payment received", "PAYMENT - THANK YOU", amt(-20), models.Credit},
		{"case insensitive matching", "E-TRANSFER RECEIVED FROM A. SMITH", amt(250), models.Credit},
		{"credit keyword outranks debit keyword", "Refund for purchase", amt(15), models.Credit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.details, tc.amount))
		})
	}
}

// Documents are processed from concurrent goroutines (one per upload), so
// classification over the shared matchers must stay correct under parallel
// use. Run with -race.
func TestClassify_Concurrent(t *testing.T) {
	const workers = 8
	const rounds = 200

	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([][]models.TransactionType, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			out := make([]models.TransactionType, 0, rounds*2)
			for i := 0; i < rounds; i++ {
				out = append(out, Classify("Payroll Deposit refund", nil))
				out = append(out, Classify("POS Purchase Grocery Store", nil))
			}
			results[w] = out
		}(w)
	}

	close(start)
	wg.Wait()

	for w := 0; w < workers; w++ {
		for i, got := range results[w] {
			want := models.Credit
			if i%2 == 1 {
				want = models.Debit
			}
			if got != want {
				t.Fatalf("worker %d call %d: got %q, want %q", w, i, got, want)
			}
		}
	}
}
