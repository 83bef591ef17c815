package pipeline

import (
	"context"
	"fmt"

	"github.com/dgnsrekt/tv_snapshot/internal/storage"
)

// ListResults returns every persisted capture record, oldest first.
func (r *Runner) ListResults(ctx context.Context) ([]storage.CaptureResult, error) {
	return r.dataset.List()
}

// FindResult returns the most recent persisted record for a capture key.
func (r *Runner) FindResult(ctx context.Context, key string) (storage.CaptureResult, error) {
	rec, ok, err := r.dataset.Find(key)
	if err != nil {
		return storage.CaptureResult{}, newError(CodePersistFailed, "read capture records", err)
	}
	if !ok {
		return storage.CaptureResult{}, newError(CodeResultNotFound, fmt.Sprintf("no capture record for key %q", key), nil)
	}
	return rec, nil
}

// ResultImage loads the stored PNG for a capture key.
func (r *Runner) ResultImage(ctx context.Context, key string) ([]byte, error) {
	if !r.blobs.Exists(key) {
		return nil, newError(CodeResultNotFound, fmt.Sprintf("no stored image for key %q", key), nil)
	}
	data, err := r.blobs.Get(key)
	if err != nil {
		return nil, newError(CodePersistFailed, "read stored image", err)
	}
	return data, nil
}
