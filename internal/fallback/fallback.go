// Package fallback recovers transactions from statements no bank parser
// claims: image-only scans, unknown layouts, or text layers too mangled to
// match a bank's line format. Pages are rasterized, table-shaped regions are
// located and OCRed, and recognized lines are grouped into transaction blocks
// by density clustering on line length before a generic line format is
// applied.
package fallback

import (
	"image"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ledgerlens/statement-extractor/internal/balance"
	"github.com/ledgerlens/statement-extractor/internal/classify"
	"github.com/ledgerlens/statement-extractor/internal/extractor"
	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
)

// genericLine matches the lowest common denominator of a transaction row:
// a date in month-name or numeric form, free-text details, and a trailing
// signed amount.
var genericLine = regexp.MustCompile(
	`(?i)^((?:[A-Za-z]{3,9}\.?\s+\d{1,2})|(?:\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?))\s+(.+?)\s+(-?)\$?\s*([\d,]+\.\d{2})(?:\s*(CR))?\s*$`)

var monthsByName = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var summaryWords = []string{
	"total", "balance", "subtotal", "minimum payment", "credit limit",
	"available credit", "interest", "payment due",
}

// Extractor is the last-resort transaction recovery path. All hooks are
// optional; zero value uses tesseract and mupdf rasterization.
type Extractor struct {
	Engine    balance.Engine
	Rasterize func(data []byte, dpi float64, maxPages int) ([]image.Image, error)
	DPI       float64
	Clock     func() time.Time

	// Clustering knobs. Eps is the line-length distance (in characters)
	// within which two lines count as neighbours; MinPts the minimum
	// neighbourhood size for a core line.
	Eps    float64
	MinPts int
}

// Extract OCRs every page and returns whatever transactions the generic line
// format recovers. Failures degrade to an empty slice; the caller decides
// whether that warrants a warning.
func (x *Extractor) Extract(data []byte) []models.ParsedTransaction {
	log := logging.Component("fallback")

	engine := x.Engine
	if engine == nil {
		engine = balance.TesseractEngine{}
	}
	rasterize := x.Rasterize
	if rasterize == nil {
		rasterize = extractor.RasterizePages
	}
	dpi := x.DPI
	if dpi == 0 {
		dpi = 300
	}

	imgs, err := rasterize(data, dpi, 0)
	if err != nil {
		log.WithError(err).Debug("rasterization unavailable, no fallback transactions")
		return nil
	}

	var lines []string
	for _, img := range imgs {
		prepped := balance.Preprocess(img)
		regions := tableRegions(prepped)
		if len(regions) == 0 {
			regions = []image.Rectangle{prepped.Bounds()}
		}
		for _, region := range regions {
			crop := imaging.Crop(prepped, region)
			png, err := balance.EncodePNG(crop)
			if err != nil {
				continue
			}
			text, err := engine.Recognize(png, balance.EngineConfig{PSM: gosseract.PSM_SINGLE_BLOCK})
			if err != nil {
				log.WithError(err).Debug("OCR pass failed on region")
				continue
			}
			for _, line := range strings.Split(text, "\n") {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					lines = append(lines, trimmed)
				}
			}
		}
	}

	txns := x.FromLines(lines)
	log.WithField("transactions", len(txns)).Debug("fallback extraction done")
	return txns
}

// FromLines runs the clustering and generic-format stages over already
// recognized lines. Split out so the text stage can be tested without an OCR
// engine.
func (x *Extractor) FromLines(lines []string) []models.ParsedTransaction {
	if len(lines) == 0 {
		return nil
	}

	eps := x.Eps
	if eps == 0 {
		eps = 12
	}
	minPts := x.MinPts
	if minPts == 0 {
		minPts = 3
	}
	clock := x.Clock
	if clock == nil {
		clock = time.Now
	}

	lengths := make([]float64, len(lines))
	for i, l := range lines {
		lengths[i] = float64(len(l))
	}
	labels := dbscan1D(lengths, eps, minPts)
	body := largestCluster(labels)

	// Lines in the dominant cluster are candidate transaction rows; anything
	// else sitting between two rows is wrapped description text.
	var txns []models.ParsedTransaction
	for i, line := range lines {
		if isSummary(line) {
			continue
		}
		m := genericLine.FindStringSubmatch(line)
		inBody := body >= 0 && labels[i] == body
		if m != nil && (inBody || body < 0) {
			if txn, ok := buildTxn(m, clock()); ok {
				txns = append(txns, txn)
				continue
			}
		}
		if len(txns) > 0 {
			last := &txns[len(txns)-1]
			last.Details = last.Details + " " + line
		}
	}
	return txns
}

func buildTxn(m []string, now time.Time) (models.ParsedTransaction, bool) {
	date, ok := parseDate(m[1], now)
	if !ok {
		return models.ParsedTransaction{}, false
	}
	amt, ok := balance.ParseMoney(m[4])
	if !ok {
		return models.ParsedTransaction{}, false
	}
	details := strings.Join(strings.Fields(m[2]), " ")

	signed := amt
	if m[3] == "-" || m[5] != "" {
		signed = -amt
	}
	return models.ParsedTransaction{
		Date:     date,
		Details:  details,
		Amount:   amt,
		Type:     classify.Classify(details, &signed),
		Category: models.CategoryUncategorized,
		Bank:     models.BankUnknown,
		Kind:     models.KindUnknown,
	}, true
}

// parseDate accepts "Jan 5", "January 5", "01/05", "01/05/2024". Year-less
// forms take the clock's year.
func parseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if f := strings.Fields(s); len(f) == 2 {
		name := strings.ToLower(strings.TrimSuffix(f[0], "."))
		if len(name) > 3 {
			name = name[:3]
		}
		mon, ok := monthsByName[name]
		if !ok {
			return time.Time{}, false
		}
		day := atoi(f[1])
		if day < 1 || day > 31 {
			return time.Time{}, false
		}
		return time.Date(now.Year(), mon, day, 0, 0, 0, 0, time.UTC), true
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) < 2 {
		return time.Time{}, false
	}
	mon, day := atoi(parts[0]), atoi(parts[1])
	if mon < 1 || mon > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := now.Year()
	if len(parts) == 3 {
		year = atoi(parts[2])
		if year < 100 {
			year += 2000
		}
	}
	return time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC), true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func isSummary(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range summaryWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// tableRegions finds the large dark bands a transaction table occupies.
// Same row-profile trick as the balance line scan, but bands are merged when
// separated by only a few blank rows so a whole table comes out as one crop.
func tableRegions(img *image.NRGBA) []image.Rectangle {
	b := img.Bounds()
	width := b.Dx()
	if width == 0 {
		return nil
	}

	const (
		minDarkRatio = 0.01
		mergeGapPx   = 24
		minRegionPx  = 40
	)

	darkRow := make([]bool, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dark := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).R < 128 {
				dark++
			}
		}
		darkRow[y-b.Min.Y] = float64(dark)/float64(width) >= minDarkRatio
	}

	type band struct{ start, end int }
	var bands []band
	start := -1
	for y := 0; y <= len(darkRow); y++ {
		inBand := y < len(darkRow) && darkRow[y]
		if inBand && start < 0 {
			start = y
		}
		if !inBand && start >= 0 {
			bands = append(bands, band{start, y})
			start = -1
		}
	}

	var merged []band
	for _, bd := range bands {
		if n := len(merged); n > 0 && bd.start-merged[n-1].end <= mergeGapPx {
			merged[n-1].end = bd.end
			continue
		}
		merged = append(merged, bd)
	}

	var regions []image.Rectangle
	for _, bd := range merged {
		if bd.end-bd.start < minRegionPx {
			continue
		}
		top := intMax(b.Min.Y+bd.start-4, b.Min.Y)
		bottom := intMin(b.Min.Y+bd.end+4, b.Max.Y)
		regions = append(regions, image.Rect(b.Min.X, top, b.Max.X, bottom))
	}
	return regions
}

func intMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
