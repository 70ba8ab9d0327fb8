package extractor

import (
	"fmt"
	"image"

	fitz "github.com/gen2brain/go-fitz"
)

// extractWithFitz reads the text layer through MuPDF. It handles some font
// encodings the structured library cannot, and is the same backend used for
// rasterization, so a document readable by one path is readable by both.
func extractWithFitz(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mupdf crashed: %v", r)
		}
	}()

	doc, openErr := fitz.NewFromMemory(data)
	if openErr != nil {
		return nil, openErr
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		text, textErr := doc.Text(i)
		if textErr != nil {
			continue
		}
		pages = append(pages, text)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("mupdf extracted no text")
	}
	return pages, nil
}

// RasterizePages renders up to maxPages pages to images at the given DPI.
// maxPages <= 0 renders every page. Corrupt documents return an error; the
// OCR callers degrade to their sentinels.
func RasterizePages(data []byte, dpi float64, maxPages int) (imgs []image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mupdf crashed during rasterization: %v", r)
		}
	}()

	doc, openErr := fitz.NewFromMemory(data)
	if openErr != nil {
		return nil, fmt.Errorf("open PDF for rasterization: %w", openErr)
	}
	defer doc.Close()

	n := doc.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	for i := 0; i < n; i++ {
		img, imgErr := doc.ImageDPI(i, dpi)
		if imgErr != nil {
			continue
		}
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return nil, fmt.Errorf("rasterization produced no page images")
	}
	return imgs, nil
}
