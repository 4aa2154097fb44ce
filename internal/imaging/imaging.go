// Package imaging normalizes object photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Limits applied to every photo.
const (
	MaxDimension   = 1024
	MaxUploadBytes = 10 << 20
	JPEGQuality    = 85
)

var (
	// ErrUnsupported is returned for anything that is not a JPEG or PNG.
	ErrUnsupported = errors.New("unsupported image format")
	// ErrTooLarge is returned when the upload exceeds MaxUploadBytes.
	ErrTooLarge = errors.New("image too large")
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
}

// Photo is a normalized JPEG photo.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process sniffs, decodes and re-encodes an uploaded photo as JPEG,
// shrinking it to fit MaxDimension. The declared content type of the
// upload is never trusted.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	detected := http.DetectContentType(data)
	decode, ok := decoders[detected]
	if !ok {
		return nil, fmt.Errorf("%w: %s (only JPEG and PNG accepted)", ErrUnsupported, detected)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrUnsupported, err)
	}
	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	bounds := img.Bounds()
	return &Photo{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// fit scales img down, keeping its aspect ratio, so that neither side
// exceeds maxDim. Smaller images are returned as they are.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
