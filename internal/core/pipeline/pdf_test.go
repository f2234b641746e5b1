package pipeline

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal valid PDF, one page per entry, each entry a
// slice of text lines. Object offsets are computed while writing so the
// xref table is exact. Line text must not contain parentheses or
// backslashes.
func buildPDF(pages [][]string) []byte {
	var objs []string

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, lines := range pages {
		var content strings.Builder
		content.WriteString("BT /F1 12 Tf 72 720 Td\n")
		for _, line := range lines {
			fmt.Fprintf(&content, "(%s) Tj 0 -14 Td\n", line)
		}
		content.WriteString("ET")

		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs)+1)
	for i, body := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestExtractPDFMultiPageTextAndThumbnail(t *testing.T) {
	data := buildPDF([][]string{
		{"alpha bravo"},
		{"charlie delta"},
		{"echo foxtrot"},
	})

	text, thumb, err := ExtractPDF(data)
	require.NoError(t, err)

	// All pages contribute, in document order.
	first := strings.Index(text, "alpha bravo")
	second := strings.Index(text, "charlie delta")
	third := strings.Index(text, "echo foxtrot")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	require.NotEqual(t, -1, third)
	assert.Less(t, first, second)
	assert.Less(t, second, third)

	require.NotNil(t, thumb)
	img, err := png.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, thumbWidth, img.Bounds().Dx())
	wantHeight := int(math.Round(792 * float64(thumbWidth) / 612))
	assert.Equal(t, wantHeight, img.Bounds().Dy())
}

func TestExtractPDFCapsTextAcrossPages(t *testing.T) {
	line := strings.Repeat("abcdefghij", 10)
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = line
	}
	// Three pages of 4000 characters each, well past the cap.
	data := buildPDF([][]string{lines, lines, lines})

	text, _, err := ExtractPDF(data)
	require.NoError(t, err)
	assert.Equal(t, maxTextLen, utf8.RuneCountInString(text))
}

// Corrupt input must degrade to empty outputs, never panic or succeed.
func TestExtractPDFCorruptDocument(t *testing.T) {
	text, thumb, err := ExtractPDF([]byte("definitely not a pdf"))

	assert.Error(t, err)
	assert.Empty(t, text)
	assert.Nil(t, thumb)
}

func TestExtractPDFEmptyInput(t *testing.T) {
	text, thumb, err := ExtractPDF(nil)

	assert.Error(t, err)
	assert.Empty(t, text)
	assert.Nil(t, thumb)
}
