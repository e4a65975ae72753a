package preview

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// decode turns the service payload into an image no larger than maxW x maxH
func decode(data []byte, maxW, maxH int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview image: %w", err)
	}
	if maxW > 0 && maxH > 0 {
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}
	return img, nil
}
