// Package pipeline implements the core flow of the tool: OCR an image,
// send the text to the LLM for correction, persist the results.
package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"image-ocr-llm/ocr"
)

// Recognizer extracts text from an image file.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (ocr.Result, error)
}

// Corrector fixes OCR errors in extracted text.
type Corrector interface {
	Correct(text, template string) (string, error)
	Model() string
}

// Recorder persists processed records (the history store).
type Recorder interface {
	Add(rec *Record) error
}

// OCRResult is the OCR half of a processing record.
type OCRResult struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"word_count"`
}

// CorrectionResult is the LLM half of a processing record.
type CorrectionResult struct {
	CorrectedText string `json:"corrected_text"`
	Success       bool   `json:"success"`
	Model         string `json:"model"`
	Error         string `json:"error,omitempty"`
}

// Record is the flat result written per processed image. A failed image
// carries only Filename and Error.
type Record struct {
	Filename   string            `json:"filename"`
	Timestamp  string            `json:"timestamp,omitempty"`
	OCR        *OCRResult        `json:"ocr,omitempty"`
	Correction *CorrectionResult `json:"correction,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Failed reports whether processing the image failed outright.
func (r *Record) Failed() bool { return r.Error != "" }

// Processing stages reported through the progress callback.
const (
	StageOCR        = "ocr"
	StageCorrection = "correction"
	StageDone       = "done"
)

// Processor chains the OCR engine and the corrector. A nil Corrector
// disables the LLM step, a nil History disables record keeping.
type Processor struct {
	Engine    Recognizer
	Corrector Corrector
	Template  string

	OutputDir         string
	SaveRawText       bool
	SaveCorrectedText bool
	SaveJSONResult    bool

	Workers int
	History Recorder

	// Progress, when set, receives (stage, filename) updates. Used by the
	// GUI to drive its progress bar.
	Progress func(stage, filename string)
}

func (p *Processor) notify(stage, filename string) {
	if p.Progress != nil {
		p.Progress(stage, filename)
	}
}

// ProcessImage runs OCR and correction for a single image. Errors are
// folded into the returned record; the caller decides whether to persist.
func (p *Processor) ProcessImage(ctx context.Context, path string) *Record {
	filename := filepath.Base(path)
	log.Printf("Processing image: %s", filename)

	p.notify(StageOCR, filename)
	ocrResult, err := p.Engine.Recognize(ctx, path)
	if err != nil {
		log.Printf("OCR failed for %s: %v", filename, err)
		return &Record{Filename: filename, Error: err.Error()}
	}

	rec := &Record{
		Filename:  filename,
		Timestamp: time.Now().Format(time.RFC3339),
		OCR: &OCRResult{
			RawText:    ocrResult.Text,
			Confidence: ocrResult.Confidence,
			WordCount:  ocrResult.WordCount,
		},
	}

	if p.Corrector != nil {
		p.notify(StageCorrection, filename)
		rec.Correction = p.correct(ocrResult.Text)
	}

	p.notify(StageDone, filename)
	return rec
}

// correct invokes the LLM and falls back to the raw text when the
// correction fails, so downstream artifacts always have usable text.
func (p *Processor) correct(rawText string) *CorrectionResult {
	corrected, err := p.Corrector.Correct(rawText, p.Template)
	if err != nil {
		log.Printf("LLM correction failed: %v", err)
		return &CorrectionResult{
			CorrectedText: rawText,
			Success:       false,
			Model:         p.Corrector.Model(),
			Error:         err.Error(),
		}
	}

	return &CorrectionResult{
		CorrectedText: corrected,
		Success:       true,
		Model:         p.Corrector.Model(),
	}
}

// ProcessAndSave processes one image, writes its artifacts, and records
// it in history. Used by the single-file, batch, capture, and GUI paths.
func (p *Processor) ProcessAndSave(ctx context.Context, path string) *Record {
	rec := p.ProcessImage(ctx, path)

	if err := p.SaveArtifacts(rec); err != nil {
		log.Printf("Failed to save artifacts for %s: %v", rec.Filename, err)
	}
	if p.History != nil {
		if err := p.History.Add(rec); err != nil {
			log.Printf("Failed to record history for %s: %v", rec.Filename, err)
		}
	}
	return rec
}

// OllamaCorrector adapts the llm package to the Corrector interface.
type OllamaCorrector struct {
	CorrectFunc func(text, template string) (string, error)
	ModelName   string
}

func (c *OllamaCorrector) Correct(text, template string) (string, error) {
	return c.CorrectFunc(text, template)
}

func (c *OllamaCorrector) Model() string { return c.ModelName }
