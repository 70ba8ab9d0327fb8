package balance

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Preprocess prepares a rasterized page for OCR: grayscale, global Otsu
// threshold, then a light blur to knock out speckle noise from the
// rasterization.
func Preprocess(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	bw := threshold(gray, otsuLevel(gray))
	return imaging.Blur(bw, 0.5)
}

// EncodePNG renders an image into the PNG bytes the OCR engine consumes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// otsuLevel picks the binarization level that minimizes intra-class variance
// of the grayscale histogram.
func otsuLevel(img *image.NRGBA) uint8 {
	var hist [256]int
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[img.NRGBAAt(x, y).R]++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var maxVar float64
	level := uint8(127)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			level = uint8(t)
		}
	}
	return level
}

func threshold(img *image.NRGBA, level uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA{A: 255}
			if img.NRGBAAt(x, y).R > level {
				c.R, c.G, c.B = 255, 255, 255
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// lineRegions finds horizontal bands of dark pixels sized like a printed
// text line. It is a cheap stand-in for contour detection: scan row darkness,
// group consecutive dark rows into bands, keep bands within the height range
// a balance line occupies at our render DPI.
func lineRegions(img *image.NRGBA) []image.Rectangle {
	b := img.Bounds()
	width := b.Dx()
	if width == 0 {
		return nil
	}

	const (
		minDarkRatio = 0.01 // a row is "dark" if >=1% of its pixels are ink
		minBandPx    = 8
		maxBandPx    = 120
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

	var regions []image.Rectangle
	start := -1
	for y := 0; y <= len(darkRow); y++ {
		inBand := y < len(darkRow) && darkRow[y]
		if inBand && start < 0 {
			start = y
		}
		if !inBand && start >= 0 {
			h := y - start
			if h >= minBandPx && h <= maxBandPx {
				// pad a couple of rows so descenders survive the crop
				top := max(b.Min.Y+start-2, b.Min.Y)
				bottom := min(b.Min.Y+y+2, b.Max.Y)
				regions = append(regions, image.Rect(b.Min.X, top, b.Max.X, bottom))
			}
			start = -1
		}
	}
	return regions
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
