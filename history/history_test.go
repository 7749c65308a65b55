package history

import (
	"path/filepath"
	"testing"

	"image-ocr-llm/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndList(t *testing.T) {
	store := openTestStore(t)

	first := &pipeline.Record{
		Filename:  "a.png",
		Timestamp: "2026-08-27T10:00:00Z",
		OCR:       &pipeline.OCRResult{RawText: "raw a", Confidence: 0.91, WordCount: 2},
		Correction: &pipeline.CorrectionResult{
			CorrectedText: "fixed a", Success: true, Model: "mistral",
		},
	}
	second := &pipeline.Record{Filename: "b.png", Error: "unreadable"}

	if err := store.Add(first); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(second); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	// Newest first.
	if entries[0].Filename != "b.png" || entries[1].Filename != "a.png" {
		t.Errorf("Unexpected order: %s, %s", entries[0].Filename, entries[1].Filename)
	}
	if entries[0].Error != "unreadable" {
		t.Errorf("Expected error preserved, got %q", entries[0].Error)
	}

	got := entries[1]
	if got.RawText != "raw a" || got.CorrectedText != "fixed a" || !got.Success {
		t.Errorf("Unexpected entry: %+v", got)
	}
	if got.Confidence < 0.90 || got.Confidence > 0.92 {
		t.Errorf("Confidence not preserved: %v", got.Confidence)
	}
	if got.Model != "mistral" {
		t.Errorf("Model not preserved: %q", got.Model)
	}
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 5; i++ {
		if err := store.Add(&pipeline.Record{Filename: "x.png", Timestamp: "t"}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries with limit, got %d", len(entries))
	}
}

func TestClearAndCount(t *testing.T) {
	store := openTestStore(t)
	store.Add(&pipeline.Record{Filename: "x.png", Timestamp: "t"})

	n, err := store.Count()
	if err != nil || n != 1 {
		t.Fatalf("Expected count 1, got %d (%v)", n, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	n, err = store.Count()
	if err != nil || n != 0 {
		t.Errorf("Expected count 0 after clear, got %d (%v)", n, err)
	}
}

func TestCorrectionErrorFallsThroughToEntry(t *testing.T) {
	store := openTestStore(t)
	store.Add(&pipeline.Record{
		Filename:  "y.png",
		Timestamp: "t",
		OCR:       &pipeline.OCRResult{RawText: "raw"},
		Correction: &pipeline.CorrectionResult{
			CorrectedText: "raw", Success: false, Model: "mistral", Error: "timeout",
		},
	})

	entries, err := store.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Error != "timeout" {
		t.Errorf("Expected correction error in entry, got %q", entries[0].Error)
	}
}
