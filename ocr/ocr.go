// Package ocr wraps the Tesseract engine behind a small interface the
// pipeline can fake in tests.
package ocr

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"image-ocr-llm/imaging"
	"image-ocr-llm/logutil"
)

// Result is the outcome of recognizing one image.
type Result struct {
	Text       string
	Confidence float64 // mean word confidence in [0,1]
	WordCount  int
}

// Engine performs OCR on image files using Tesseract. A fresh gosseract
// client is created per call so the engine is safe for concurrent use by
// the batch worker pool.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client

	gpuWarnOnce sync.Once
	useGPU      bool
}

// NewEngine constructs a Tesseract-backed engine. The GPU flag is part of
// the configuration surface but the Tesseract backend is CPU-only; it is
// accepted and reported, not honored.
func NewEngine(languages []string, useGPU bool) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{
		languages:     languages,
		useGPU:        useGPU,
		clientFactory: gosseract.NewClient,
	}
}

// Languages returns the configured recognition languages.
func (e *Engine) Languages() []string { return e.languages }

// Recognize performs OCR on the image at path.
func (e *Engine) Recognize(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if e.useGPU {
		e.gpuWarnOnce.Do(func() {
			log.Printf("OCR_GPU is set but the Tesseract backend is CPU-only; flag ignored")
		})
	}

	imageData, err := imaging.LoadPNG(path)
	if err != nil {
		return Result{}, err
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return Result{}, fmt.Errorf("set languages: %w", err)
	}
	// PSM 3 (auto) suits arbitrary documents better than the single-block
	// default used for receipts.
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("extract text: %w", err)
	}
	text = strings.TrimSpace(text)

	count, confidence := wordStats(client)
	log.Printf("OCR completed: %d words, confidence %.2f, text %q",
		count, confidence, logutil.Sanitize(text))

	return Result{
		Text:       text,
		Confidence: confidence,
		WordCount:  count,
	}, nil
}

// wordStats derives word count and mean confidence from Tesseract's
// word-level bounding boxes. Boxes report confidence as 0-100.
func wordStats(client *gosseract.Client) (int, float64) {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0, 0
	}
	confidences := make([]float64, 0, len(boxes))
	for _, b := range boxes {
		confidences = append(confidences, b.Confidence/100.0)
	}
	return len(boxes), meanConfidence(confidences)
}

func meanConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}
