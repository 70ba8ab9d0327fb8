package balance

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

// fakeEngine returns canned text per call so tests run without tesseract.
type fakeEngine struct {
	texts []string
	err   error
	calls int
}

func (f *fakeEngine) Recognize(png []byte, cfg EngineConfig) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	f.calls++
	if idx >= len(f.texts) {
		idx = len(f.texts) - 1
	}
	return f.texts[idx], nil
}

func whitePage(data []byte, dpi float64, maxPages int) ([]image.Image, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return []image.Image{img}, nil
}

func TestOCRExtractor(t *testing.T) {
	t.Run("balances recognized on first pass", func(t *testing.T) {
		x := &OCRExtractor{
			Engine:    &fakeEngine{texts: []string{"Previous Balance $100.00\nNew Balance $150.00"}},
			Rasterize: whitePage,
		}
		pair, err := x.Extract(nil)
		assert.NoError(t, err)
		assert.Equal(t, models.BalancePair{Opening: 100.00, Closing: 150.00}, pair)
	})

	t.Run("rasterization failure degrades to sentinel with error", func(t *testing.T) {
		x := &OCRExtractor{
			Engine: &fakeEngine{texts: []string{"irrelevant"}},
			Rasterize: func([]byte, float64, int) ([]image.Image, error) {
				return nil, errors.New("mupdf missing")
			},
		}
		pair, err := x.Extract(nil)
		assert.Error(t, err)
		assert.Equal(t, models.BalancePair{}, pair)
	})

	t.Run("engine failure on every pass reports unavailable", func(t *testing.T) {
		x := &OCRExtractor{
			Engine:    &fakeEngine{err: errors.New("tesseract not installed")},
			Rasterize: whitePage,
		}
		pair, err := x.Extract(nil)
		assert.Error(t, err)
		assert.Equal(t, models.BalancePair{}, pair)
	})

	t.Run("insane amounts are rejected", func(t *testing.T) {
		x := &OCRExtractor{
			Engine:    &fakeEngine{texts: []string{"Previous Balance 4165551234.00"}},
			Rasterize: whitePage,
		}
		pair, err := x.Extract(nil)
		assert.NoError(t, err)
		assert.Equal(t, models.BalancePair{}, pair)
	})
}

func TestScanForBalances(t *testing.T) {
	var pair models.BalancePair
	scanForBalances("Opening balance forward 1,000.00\njunk line\nBalance due $1,300.00", &pair)
	assert.Equal(t, models.BalancePair{Opening: 1000.00, Closing: 1300.00}, pair)

	// already-filled fields are not overwritten
	scanForBalances("Previous Balance $999.00", &pair)
	assert.Equal(t, 1000.00, pair.Opening)
}
