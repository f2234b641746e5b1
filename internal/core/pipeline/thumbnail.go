package pipeline

import (
	"bytes"
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// thumbWidth is the fixed output width; height follows the source aspect
// ratio.
const thumbWidth = 360

// renderThumbnail downscales img to thumbWidth preserving aspect ratio and
// encodes it as PNG. Resampling uses Lanczos for quality.
func renderThumbnail(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("empty source image")
	}

	height := int(math.Round(float64(h) * float64(thumbWidth) / float64(w)))
	if height < 1 {
		height = 1
	}
	thumb := imaging.Resize(img, thumbWidth, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
