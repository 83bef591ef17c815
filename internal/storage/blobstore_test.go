package storage

import (
	"bytes"
	"strings"
	"testing"
)

func TestBlobStorePutGetRoundTrip(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewBlobStore() = %v; want nil", err)
	}

	data := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	if err := store.Put("chart_TEST_20260101T000000Z", data); err != nil {
		t.Fatalf("Put() = %v; want nil", err)
	}

	got, err := store.Get("chart_TEST_20260101T000000Z")
	if err != nil {
		t.Fatalf("Get() = %v; want nil", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Get() = %v; want %v", got, data)
	}
}

func TestBlobStoreGetMissingKey(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewBlobStore() = %v; want nil", err)
	}
	if _, err := store.Get("nope"); err == nil {
		t.Fatal("expected Get() to return an error for a missing key")
	}
	if store.Exists("nope") {
		t.Fatal("Exists() = true for a missing key")
	}
}

func TestBlobStoreRejectsEmptyKey(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewBlobStore() = %v; want nil", err)
	}
	if err := store.Put("", []byte("x")); err == nil {
		t.Fatal("expected Put() to reject an empty key")
	}
}

func TestBlobStorePublicURL(t *testing.T) {
	t.Run("file_locator_without_base", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir(), "")
		if err != nil {
			t.Fatalf("NewBlobStore() = %v; want nil", err)
		}
		if err := store.Put("key1", []byte("x")); err != nil {
			t.Fatalf("Put() = %v; want nil", err)
		}

		u, err := store.PublicURL("key1")
		if err != nil {
			t.Fatalf("PublicURL() = %v; want nil", err)
		}
		if !strings.HasPrefix(u, "file://") || !strings.HasSuffix(u, "key1.png") {
			t.Fatalf("PublicURL() = %q; want file:// locator ending in key1.png", u)
		}
	})

	t.Run("configured_base", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir(), "https://blobs.example.com/charts/")
		if err != nil {
			t.Fatalf("NewBlobStore() = %v; want nil", err)
		}
		if err := store.Put("key2", []byte("x")); err != nil {
			t.Fatalf("Put() = %v; want nil", err)
		}

		u, err := store.PublicURL("key2")
		if err != nil {
			t.Fatalf("PublicURL() = %v; want nil", err)
		}
		if u != "https://blobs.example.com/charts/key2.png" {
			t.Fatalf("PublicURL() = %q; want %q", u, "https://blobs.example.com/charts/key2.png")
		}
	})

	t.Run("missing_key", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir(), "")
		if err != nil {
			t.Fatalf("NewBlobStore() = %v; want nil", err)
		}
		if _, err := store.PublicURL("ghost"); err == nil {
			t.Fatal("expected PublicURL() to fail for a missing key")
		}
	})
}
