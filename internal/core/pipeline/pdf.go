package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

// thumbnailDPI renders the first page at 2x the PDF's native 72 DPI so the
// downscaled thumbnail stays legible.
const thumbnailDPI = 144

// ExtractPDF pulls up to maxTextLen characters of text from the document and
// renders its first page into a 360px-wide PNG thumbnail.
//
// Partial results are kept: a render failure still returns whatever text was
// extracted, with the error describing the failed step. Callers treat any
// error as a degradation, never as a job failure. The document handle is
// closed on every path.
func ExtractPDF(data []byte) (string, []byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()

	var text string
	for i := 0; i < pages; i++ {
		t, perr := doc.Text(i)
		if perr != nil {
			// A single unreadable page does not stop the others.
			continue
		}
		text += t
		if utf8.RuneCountInString(text) >= maxTextLen {
			break
		}
	}
	text = truncateText(text)

	if pages == 0 {
		return text, nil, nil
	}

	img, err := doc.ImageDPI(0, thumbnailDPI)
	if err != nil {
		return text, nil, fmt.Errorf("render first page: %w", err)
	}

	thumb, err := renderThumbnail(img)
	if err != nil {
		return text, nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return text, thumb, nil
}
