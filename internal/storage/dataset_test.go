package storage

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testRecord(key string) CaptureResult {
	return CaptureResult{
		Symbol:       "BINANCE:BTCUSDT",
		Interval:     "1h",
		Indicators:   []string{"RSI", "EMA 20"},
		Theme:        "dark",
		Width:        1280,
		Height:       720,
		ImageBase64:  "aGVsbG8=",
		ImageDataURL: "data:image/png;base64,aGVsbG8=",
		StorageKey:   key,
		PublicURL:    "file:///tmp/" + key + ".png",
		CapturedAt:   time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func TestDatasetAppendAndList(t *testing.T) {
	ds, err := NewDataset(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDataset() = %v; want nil", err)
	}
	t.Cleanup(func() {
		if err := ds.Close(); err != nil {
			t.Errorf("Close() = %v; want nil", err)
		}
	})

	if err := ds.Append(testRecord("first")); err != nil {
		t.Fatalf("Append() = %v; want nil", err)
	}
	if err := ds.Append(testRecord("second")); err != nil {
		t.Fatalf("Append() = %v; want nil", err)
	}

	records, err := ds.List()
	if err != nil {
		t.Fatalf("List() = %v; want nil", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records; want 2", len(records))
	}
	if records[0].StorageKey != "first" || records[1].StorageKey != "second" {
		t.Fatalf("List() order = [%s, %s]; want [first, second]", records[0].StorageKey, records[1].StorageKey)
	}
	if records[0].ImageBase64 != "aGVsbG8=" {
		t.Fatalf("ImageBase64 = %q; want %q", records[0].ImageBase64, "aGVsbG8=")
	}
}

func TestDatasetRejectsOversizedRecord(t *testing.T) {
	ds, err := NewDataset(t.TempDir(), 500)
	if err != nil {
		t.Fatalf("NewDataset() = %v; want nil", err)
	}
	t.Cleanup(func() { _ = ds.Close() })

	rec := testRecord("huge")
	rec.ImageBase64 = strings.Repeat("A", 1000)

	err = ds.Append(rec)
	if !errors.Is(err, ErrRecordTooLarge) {
		t.Fatalf("Append() = %v; want ErrRecordTooLarge", err)
	}

	// Nothing was written for the rejected record.
	records, err := ds.List()
	if err != nil {
		t.Fatalf("List() = %v; want nil", err)
	}
	if len(records) != 0 {
		t.Fatalf("List() returned %d records; want 0", len(records))
	}

	// The placeholder fallback fits under the same ceiling.
	rec.ImageBase64 = "[Base64 data too large: 1000 chars]"
	rec.ImageDataURL = "[Data URL too large: 1022 chars]"
	if err := ds.Append(rec); err != nil {
		t.Fatalf("Append(fallback) = %v; want nil", err)
	}
}

func TestDatasetFind(t *testing.T) {
	ds, err := NewDataset(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDataset() = %v; want nil", err)
	}
	t.Cleanup(func() { _ = ds.Close() })

	if err := ds.Append(testRecord("alpha")); err != nil {
		t.Fatalf("Append() = %v; want nil", err)
	}

	got, found, err := ds.Find("alpha")
	if err != nil || !found {
		t.Fatalf("Find(alpha) = (%v, %v); want (found, nil)", found, err)
	}
	if got.StorageKey != "alpha" {
		t.Fatalf("Find(alpha).StorageKey = %q; want alpha", got.StorageKey)
	}

	if _, found, err := ds.Find("missing"); err != nil || found {
		t.Fatalf("Find(missing) = (%v, %v); want (false, nil)", found, err)
	}
}

func TestDatasetListEmpty(t *testing.T) {
	ds, err := NewDataset(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDataset() = %v; want nil", err)
	}
	t.Cleanup(func() { _ = ds.Close() })

	records, err := ds.List()
	if err != nil {
		t.Fatalf("List() = %v; want nil", err)
	}
	if len(records) != 0 {
		t.Fatalf("List() returned %d records; want 0", len(records))
	}
}
