// Package imaging normalizes input images for the OCR engine. Tesseract
// handles PNG reliably across builds, so every supported format is decoded
// with Go's image registry and re-encoded as PNG. Small images are upscaled
// first; low-resolution screenshots OCR poorly at native size.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// minOCRWidth is the width below which images get upscaled before OCR.
const minOCRWidth = 600

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile reports whether the path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// LoadPNG reads an image file of any supported format and returns PNG bytes
// ready for the OCR engine, upscaling low-resolution inputs.
func LoadPNG(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return NormalizePNG(data)
}

// NormalizePNG decodes raw image bytes and re-encodes them as PNG,
// upscaling when the image is narrower than minOCRWidth.
func NormalizePNG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() < minOCRWidth {
		img = upscale(img, minOCRWidth)
	} else if format == "png" {
		// Already PNG and large enough, pass through untouched.
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// upscale resizes the image to the target width, preserving aspect ratio.
func upscale(img image.Image, targetWidth int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return img
	}
	scale := float64(targetWidth) / float64(bounds.Dx())
	targetHeight := int(float64(bounds.Dy()) * scale)
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
