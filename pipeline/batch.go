package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"image-ocr-llm/imaging"
	"image-ocr-llm/worker"
)

// BatchResult aggregates one directory run.
type BatchResult struct {
	Records     []*Record
	SummaryPath string
	Succeeded   int
	Failed      int
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imaging.IsImageFile(entry.Name()) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// ProcessDirectory processes every image in dir through the worker pool.
// Records keep the sorted file order regardless of worker count. Per-image
// failures are recorded, never abort the batch; a cancelled context stops
// submitting new work.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (*BatchResult, error) {
	images, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		log.Printf("No image files found in %s", dir)
		return &BatchResult{}, nil
	}

	log.Printf("Found %d image files in %s", len(images), dir)

	records := make([]*Record, len(images))
	pool := worker.New(p.Workers)

	for i, path := range images {
		i, path := i, path
		accepted := pool.SubmitWait(ctx, func(ctx context.Context) {
			log.Printf("[%d/%d] %s", i+1, len(images), filepath.Base(path))
			records[i] = p.ProcessAndSave(ctx, path)
		})
		if !accepted {
			records[i] = &Record{Filename: filepath.Base(path), Error: ctx.Err().Error()}
		}
	}
	pool.Close()

	// Tasks skipped by a cancelled context leave nil slots behind.
	for i, rec := range records {
		if rec == nil {
			records[i] = &Record{Filename: filepath.Base(images[i]), Error: context.Canceled.Error()}
		}
	}

	result := &BatchResult{Records: records}
	for _, rec := range records {
		if rec.Failed() {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	summaryPath, err := p.writeBatchSummary(records, time.Now())
	if err != nil {
		log.Printf("Failed to write batch summary: %v", err)
	} else {
		result.SummaryPath = summaryPath
		log.Printf("Batch summary saved: %s", summaryPath)
	}

	log.Printf("Batch complete: %d processed, %d succeeded, %d failed",
		len(records), result.Succeeded, result.Failed)
	return result, nil
}
