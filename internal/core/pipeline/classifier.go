package pipeline

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Kind selects the extraction strategy for a stored file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindText
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	case KindDocument:
		return "document"
	default:
		return "unsupported"
	}
}

// docconv handles these office formats; everything else that is not PDF or
// text-like is skipped without error.
var documentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword":                      true,
	"application/vnd.oasis.opendocument.text": true,
	"application/rtf":                         true,
}

// extTypes pins the extensions we care about so classification does not
// depend on the host's mime.types database. mime.TypeByExtension remains
// the fallback for everything else.
var extTypes = map[string]string{
	".txt":  "text/plain",
	".log":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".pdf":  "application/pdf",
	".html": "text/html",
	".htm":  "text/html",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".odt":  "application/vnd.oasis.opendocument.text",
	".rtf":  "application/rtf",
}

// Classify guesses a mime type from the file name, falling back to content
// sniffing on the leading bytes, and maps it to an extraction strategy.
// It has no side effects; an unsupported type is a valid outcome, not an
// error. The returned mime type is "" when nothing could be determined.
func Classify(name string, head []byte) (string, Kind) {
	mimeType := ""
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if known, ok := extTypes[ext]; ok {
			mimeType = known
		} else if byExt := mime.TypeByExtension(ext); byExt != "" {
			if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
				mimeType = parsed
			}
		}
	}
	if mimeType == "" && len(head) > 0 {
		if sniffed, _, err := mime.ParseMediaType(http.DetectContentType(head)); err == nil {
			mimeType = sniffed
		}
	}

	switch {
	case mimeType == "application/pdf":
		return mimeType, KindPDF
	case strings.HasPrefix(mimeType, "text/"), mimeType == "application/json":
		return mimeType, KindText
	case documentTypes[mimeType]:
		return mimeType, KindDocument
	default:
		return mimeType, KindUnsupported
	}
}
