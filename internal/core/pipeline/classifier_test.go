package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		head     []byte
		wantKind Kind
		wantMime string
	}{
		{"pdf by extension", "report.pdf", nil, KindPDF, "application/pdf"},
		{"plain text", "notes.txt", nil, KindText, "text/plain"},
		{"json counts as text", "data.json", nil, KindText, "application/json"},
		{"html is text-like", "page.html", nil, KindText, "text/html"},
		{"docx", "letter.docx", nil, KindDocument, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"binary is unsupported", "photo.png", nil, KindUnsupported, "image/png"},
		{"unknown extension sniffs pdf", "blob.weirdext", []byte("%PDF-1.4 something"), KindPDF, "application/pdf"},
		{"unknown extension sniffs text", "README", []byte("plain ascii content here"), KindText, "text/plain"},
		{"no name no bytes", "noext", nil, KindUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, kind := Classify(tt.fileName, tt.head)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantMime, mimeType)
		})
	}
}
