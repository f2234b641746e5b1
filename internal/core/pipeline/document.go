package pipeline

import (
	"bytes"
	"fmt"

	"code.sajari.com/docconv"
)

// ExtractDocument converts office/structured documents to text via docconv,
// bounded to maxTextLen characters. No thumbnail is produced for these types.
func ExtractDocument(data []byte, mimeType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", fmt.Errorf("docconv %s: %w", mimeType, err)
	}
	return truncateText(res.Body), nil
}
