package balance

import (
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ledgerlens/statement-extractor/internal/extractor"
	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
)

// EngineConfig is one OCR pass configuration. Passes are tried in order
// until both balances are found.
type EngineConfig struct {
	Whitelist string // restrict recognized characters; "" means no restriction
	PSM       gosseract.PageSegMode
}

// Engine abstracts the OCR backend so tests can substitute recognized text.
type Engine interface {
	Recognize(png []byte, cfg EngineConfig) (string, error)
}

// TesseractEngine runs gosseract. A fresh client per call keeps the type
// safe for concurrent documents.
type TesseractEngine struct{}

func (TesseractEngine) Recognize(png []byte, cfg EngineConfig) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tesseract crashed: %v", r)
		}
	}()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(cfg.PSM); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	return client.Text()
}

// defaultPasses: a numeric-whitelist pass reads amounts most reliably, the
// general passes recover the keyword context the whitelist pass strips.
var defaultPasses = []EngineConfig{
	{Whitelist: "0123456789.,$-OoSsBbalncedwgtpruvifm ", PSM: gosseract.PSM_SINGLE_BLOCK},
	{PSM: gosseract.PSM_SINGLE_COLUMN},
	{PSM: gosseract.PSM_AUTO},
}

// Keyword sets for matching a recognized line to a balance field.
var (
	openingWords = []string{"opening", "previous", "beginning", "forward"}
	closingWords = []string{"closing", "new balance", "ending", "due"}

	trailingAmount = regexp.MustCompile(`\$?\s*(-?[\d,]+\.\d{2})\s*$`)
)

// OCRExtractor estimates statement balances from rasterized pages,
// independently of the text layer.
type OCRExtractor struct {
	Engine    Engine  // nil → TesseractEngine
	Rasterize func(data []byte, dpi float64, maxPages int) ([]image.Image, error) // nil → extractor.RasterizePages
	DPI       float64 // 0 → 300
	Passes    []EngineConfig
}

// Extract rasterizes the first two pages and scans OCR output for balance
// keywords. Tool failure (missing tesseract, unreadable PDF) returns the
// {0,0} sentinel plus an error so the caller can flag that balances came
// from the text layer alone.
func (x *OCRExtractor) Extract(data []byte) (models.BalancePair, error) {
	log := logging.Component("ocr-balance")

	engine := x.Engine
	if engine == nil {
		engine = TesseractEngine{}
	}
	rasterize := x.Rasterize
	if rasterize == nil {
		rasterize = extractor.RasterizePages
	}
	dpi := x.DPI
	if dpi == 0 {
		dpi = 300
	}
	passes := x.Passes
	if len(passes) == 0 {
		passes = defaultPasses
	}

	imgs, err := rasterize(data, dpi, 2)
	if err != nil {
		log.WithError(err).Debug("rasterization unavailable, degrading to text-layer balances")
		return models.BalancePair{}, fmt.Errorf("rasterize: %w", err)
	}

	var pair models.BalancePair
	recognized := false
	for _, img := range imgs {
		prepped := Preprocess(img)

		for _, cfg := range passes {
			if pair.Opening != 0 && pair.Closing != 0 {
				return pair, nil
			}
			png, err := EncodePNG(prepped)
			if err != nil {
				continue
			}
			text, err := engine.Recognize(png, cfg)
			if err != nil {
				log.WithError(err).Debug("OCR pass failed")
				continue
			}
			recognized = true
			scanForBalances(text, &pair)
		}

		// Full-page passes missed something: crop line-sized regions and
		// retry each. Misreads on dense pages often vanish on a tight crop.
		if pair.Opening == 0 || pair.Closing == 0 {
			for _, region := range lineRegions(prepped) {
				if pair.Opening != 0 && pair.Closing != 0 {
					break
				}
				crop := imaging.Crop(prepped, region)
				png, err := EncodePNG(crop)
				if err != nil {
					continue
				}
				text, err := engine.Recognize(png, EngineConfig{PSM: gosseract.PSM_SINGLE_LINE})
				if err != nil {
					continue
				}
				recognized = true
				scanForBalances(text, &pair)
			}
		}

		if pair.Opening != 0 && pair.Closing != 0 {
			break
		}
	}
	if !recognized && len(imgs) > 0 {
		return pair, fmt.Errorf("every OCR pass failed")
	}
	return pair, nil
}

// scanForBalances fills still-empty fields of pair from recognized lines.
// A line counts when it carries a keyword and ends with an amount inside the
// sanity bound; the bound rejects OCR misreads like a phone number glued to
// a decimal point.
func scanForBalances(text string, pair *models.BalancePair) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		m := trailingAmount.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amt, ok := ParseMoney(m[1])
		if !ok || !saneAmount(amt) {
			continue
		}
		if pair.Opening == 0 && containsAny(lower, openingWords) {
			pair.Opening = amt
		} else if pair.Closing == 0 && containsAny(lower, closingWords) {
			pair.Closing = amt
		}
	}
}

// saneAmount bounds accepted OCR values to 0 < amt < 1,000,000.
func saneAmount(v float64) bool {
	return v > 0 && v < 1_000_000
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
