// Package history keeps an append-only log of processed images in a local
// sqlite database, so past runs can be reviewed without digging through
// output directories.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"image-ocr-llm/pipeline"
)

// Entry is one row of the processing history, newest first in List.
type Entry struct {
	ID            int64
	Filename      string
	Timestamp     string
	RawText       string
	Confidence    float64
	WordCount     int
	CorrectedText string
	Success       bool
	Model         string
	Error         string
}

type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		raw_text TEXT,
		confidence REAL,
		word_count INTEGER,
		corrected_text TEXT,
		success INTEGER,
		model TEXT,
		error TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &Store{db: db}, nil
}

// Add appends a processed record.
func (s *Store) Add(rec *pipeline.Record) error {
	entry := fromRecord(rec)
	_, err := s.db.Exec(
		`INSERT INTO results (filename, timestamp, raw_text, confidence, word_count,
			corrected_text, success, model, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Filename, entry.Timestamp, entry.RawText, entry.Confidence,
		entry.WordCount, entry.CorrectedText, entry.Success, entry.Model, entry.Error,
	)
	return err
}

// List returns up to limit entries, newest first. limit<=0 means all.
func (s *Store) List(limit int) ([]*Entry, error) {
	query := `SELECT id, filename, timestamp, raw_text, confidence, word_count,
		corrected_text, success, model, error FROM results ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Filename, &e.Timestamp, &e.RawText,
			&e.Confidence, &e.WordCount, &e.CorrectedText, &e.Success,
			&e.Model, &e.Error); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM results")
	return err
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func fromRecord(rec *pipeline.Record) *Entry {
	entry := &Entry{
		Filename:  rec.Filename,
		Timestamp: rec.Timestamp,
		Error:     rec.Error,
	}
	if rec.OCR != nil {
		entry.RawText = rec.OCR.RawText
		entry.Confidence = rec.OCR.Confidence
		entry.WordCount = rec.OCR.WordCount
	}
	if rec.Correction != nil {
		entry.CorrectedText = rec.Correction.CorrectedText
		entry.Success = rec.Correction.Success
		entry.Model = rec.Correction.Model
		if entry.Error == "" {
			entry.Error = rec.Correction.Error
		}
	}
	return entry
}
