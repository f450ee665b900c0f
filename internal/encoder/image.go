package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// maxImageBytes is the largest accepted input image (10MB).
	maxImageBytes = 10 * 1024 * 1024

	// maxImageSide is the largest accepted width/height in pixels.
	maxImageSide = 4096

	// maxEncodeSide is the largest side sent to the encoding server; bigger
	// images are downscaled first to keep uploads and detection fast.
	maxEncodeSide = 1600

	// resizeJPEGQuality for re-encoded downscaled images.
	resizeJPEGQuality = 90
)

// ErrInvalidImage is returned for input that is not a decodable image or
// exceeds the configured size limits.
var ErrInvalidImage = errors.New("invalid image")

// PrepareImage validates the raw image bytes and downscales oversized images
// before they are sent to the encoding server.
func PrepareImage(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidImage)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d byte limit", ErrInvalidImage, len(data), maxImageBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixel limit", ErrInvalidImage, cfg.Width, cfg.Height, maxImageSide)
	}

	if cfg.Width <= maxEncodeSide && cfg.Height <= maxEncodeSide {
		return data, nil
	}
	return resizeImage(data, maxEncodeSide)
}

// resizeImage scales an image to fit within maxSize while keeping aspect
// ratio. Returns JPEG-encoded bytes.
func resizeImage(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scale := float64(maxSize) / float64(width)
	if height > width {
		scale = float64(maxSize) / float64(height)
	}
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: resizeJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

// detectMIMEType detects the MIME type from image data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
