package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrRecordTooLarge is returned by Append when an encoded record exceeds the
// dataset's size ceiling. Callers are expected to retry with placeholder
// image fields.
var ErrRecordTooLarge = errors.New("dataset: record exceeds size ceiling")

// CaptureResult is the metadata record written to the dataset after a
// successful capture. It is written once and never mutated.
type CaptureResult struct {
	Symbol       string    `json:"symbol"`
	Interval     string    `json:"interval"`
	Indicators   []string  `json:"indicators"`
	Theme        string    `json:"theme"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	ImageBase64  string    `json:"imageBase64"`
	ImageDataURL string    `json:"imageDataUrl"`
	StorageKey   string    `json:"storageKey"`
	PublicURL    string    `json:"publicUrl"`
	CapturedAt   time.Time `json:"capturedAt"`
}

// Dataset appends capture records to a JSONL stream on disk. Records larger
// than maxRecordBytes are rejected with ErrRecordTooLarge before anything is
// written.
type Dataset struct {
	path           string
	maxRecordBytes int
	logger         *lumberjack.Logger
	mu             sync.Mutex
}

// NewDataset creates the dataset directory and an appender for results.jsonl.
func NewDataset(dir string, maxRecordBytes int) (*Dataset, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "results.jsonl")
	return &Dataset{
		path:           path,
		maxRecordBytes: maxRecordBytes,
		logger: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    200,
			MaxBackups: 10,
			Compress:   false,
		},
	}, nil
}

// Append writes one record as a JSON line. The size ceiling is checked on the
// encoded line, mirroring the record stream's rejection of oversized payloads.
func (d *Dataset) Append(rec CaptureResult) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("dataset: marshal record: %w", err)
	}
	if d.maxRecordBytes > 0 && len(line) > d.maxRecordBytes {
		return fmt.Errorf("%w: %d bytes (ceiling %d)", ErrRecordTooLarge, len(line), d.maxRecordBytes)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.logger.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("dataset: append record: %w", err)
	}
	return nil
}

// List reads back all records from the current dataset file, oldest first.
// Unparseable lines are skipped.
func (d *Dataset) List() ([]CaptureResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []CaptureResult{}, nil
		}
		return nil, fmt.Errorf("dataset: open %s: %w", d.path, err)
	}
	defer f.Close()

	var out []CaptureResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var rec CaptureResult
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: scan %s: %w", d.path, err)
	}
	if out == nil {
		out = []CaptureResult{}
	}
	return out, nil
}

// Find returns the most recent record with the given storage key.
func (d *Dataset) Find(key string) (CaptureResult, bool, error) {
	records, err := d.List()
	if err != nil {
		return CaptureResult{}, false, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].StorageKey == key {
			return records[i], true, nil
		}
	}
	return CaptureResult{}, false, nil
}

// Close flushes and closes the underlying writer.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logger.Close()
}
