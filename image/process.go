package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	"image/jpeg"
	_ "image/png" // Register PNG format

	"github.com/buckket/go-blurhash"
	"golang.org/x/image/draw"
)

const (
	// Posters are scaled down to at most this width, preserving aspect
	// ratio. Smaller originals are never upscaled.
	maxWidth = 500

	// Fixed quality for the lossy re-encode on the read path.
	jpegQuality = 80

	// BlurHash components (commonly 4x4 or 9x4)
	componentsX = 4
	componentsY = 4
)

// TransformedContentType is the content type of every Transform output.
const TransformedContentType = "image/jpeg"

// ErrTransform marks input that could not be decoded as an image. Callers
// surface it as a server-side failure, distinct from a missing object.
var ErrTransform = errors.New("image transform failed")

// Transform decodes the image, scales it down to at most maxWidth wide,
// and re-encodes it as JPEG at a fixed quality.
//
// It is a pure function of its input: no caching, no external state. The
// full image must be in memory because scaling needs random access.
func Transform(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image data is empty", ErrTransform)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth {
		scaledHeight := height * maxWidth / width
		if scaledHeight < 1 {
			scaledHeight = 1
		}

		scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, scaledHeight))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}

	return buf.Bytes(), nil
}

// Info holds the dimensions and BlurHash of an uploaded image.
type Info struct {
	Width    int32
	Height   int32
	BlurHash string
}

// GetInfo decodes the image data, retrieves dimensions and calculates the
// BlurHash placeholder stored alongside the movie record.
func GetInfo(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image data is empty", ErrTransform)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}

	bounds := img.Bounds()

	blurhashStr, err := blurhash.Encode(componentsX, componentsY, img)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode blurhash: %v", ErrTransform, err)
	}

	return &Info{
		Width:    int32(bounds.Dx()),
		Height:   int32(bounds.Dy()),
		BlurHash: blurhashStr,
	}, nil
}
