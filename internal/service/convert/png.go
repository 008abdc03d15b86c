package convert

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage reports bytes that no registered decoder recognizes.
var ErrNotImage = errors.New("data is not a recognized image")

// ToPNG decodes the input bytes and re-encodes them as PNG. Re-encoding also
// drops any metadata carried by the source. The detected source format is
// returned alongside the PNG bytes.
func ToPNG(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, format, fmt.Errorf("failed to encode %s image as png: %w", format, err)
	}

	return buf.Bytes(), format, nil
}
