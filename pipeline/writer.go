package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SaveArtifacts writes the per-image output files honoring the save
// toggles: <stem>_raw.txt, <stem>_corrected.txt, <stem>_result.json.
// Failed records produce no artifacts.
func (p *Processor) SaveArtifacts(rec *Record) error {
	if rec.Failed() {
		log.Printf("Skipping artifacts for %s (processing failed)", rec.Filename)
		return nil
	}
	if !p.SaveRawText && !p.SaveCorrectedText && !p.SaveJSONResult {
		return nil
	}

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stem := strings.TrimSuffix(rec.Filename, filepath.Ext(rec.Filename))

	if p.SaveJSONResult {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		path := filepath.Join(p.OutputDir, stem+"_result.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write json result: %w", err)
		}
		log.Printf("Saved JSON result: %s", path)
	}

	if p.SaveRawText && rec.OCR != nil {
		path := filepath.Join(p.OutputDir, stem+"_raw.txt")
		if err := os.WriteFile(path, []byte(rec.OCR.RawText), 0o644); err != nil {
			return fmt.Errorf("write raw text: %w", err)
		}
		log.Printf("Saved raw text: %s", path)
	}

	if p.SaveCorrectedText && rec.Correction != nil {
		path := filepath.Join(p.OutputDir, stem+"_corrected.txt")
		if err := os.WriteFile(path, []byte(rec.Correction.CorrectedText), 0o644); err != nil {
			return fmt.Errorf("write corrected text: %w", err)
		}
		log.Printf("Saved corrected text: %s", path)
	}

	return nil
}

// writeBatchSummary writes the aggregate JSON for a batch run and returns
// its path. File name carries a timestamp: batch_result_YYYYMMDD_HHMMSS.json.
func (p *Processor) writeBatchSummary(records []*Record, now time.Time) (string, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal batch summary: %w", err)
	}

	path := filepath.Join(p.OutputDir, fmt.Sprintf("batch_result_%s.json", now.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write batch summary: %w", err)
	}
	return path, nil
}
