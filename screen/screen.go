// Package screen captures the display so screenshots can be fed through
// the same OCR pipeline as image files.
package screen

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"
)

// CaptureFull captures the entire virtual screen across all active
// displays and returns PNG bytes.
func CaptureFull() ([]byte, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}

	// Union of all display bounds
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}

	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	return buf.Bytes(), nil
}

// CaptureDisplay captures a single display by index.
func CaptureDisplay(index int) ([]byte, error) {
	if index < 0 || index >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d not available (%d active)", index, screenshot.NumActiveDisplays())
	}

	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(index))
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", index, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	return buf.Bytes(), nil
}

// CaptureToFile captures the full screen into dir and returns the path
// of the written PNG. Filenames are timestamped so repeated captures in
// watch mode never collide.
func CaptureToFile(dir string) (string, error) {
	data, err := CaptureFull()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("capture_%s.png", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}
	return path, nil
}
