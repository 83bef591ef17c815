package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/tv_snapshot/internal/browser"
	"github.com/dgnsrekt/tv_snapshot/internal/capture"
	"github.com/dgnsrekt/tv_snapshot/internal/chart"
	"github.com/dgnsrekt/tv_snapshot/internal/config"
	"github.com/dgnsrekt/tv_snapshot/internal/storage"
)

// session is the slice of browser.Session the pipeline depends on.
type session interface {
	Ctx() context.Context
	Close()
}

// Seam variables so pipeline tests can stub the browser-bound stages.
var (
	launchSession = func(ctx context.Context, opts browser.Options) (session, error) {
		return browser.Launch(ctx, opts)
	}
	openChart = func(ctx context.Context, nav chart.Navigator, symbol string) error {
		return nav.Open(ctx, symbol)
	}
	applyInteractions = chart.ApplyInteractions
	captureViewport   = capture.Viewport
	timeNow           = time.Now
)

// Runner executes the capture pipeline: resolve config, launch session,
// navigate, interact, capture, persist. Exactly one capture runs at a time;
// the browser and its single page are owned exclusively for the run's
// lifetime and released on every exit path.
type Runner struct {
	cfg     *config.Config
	blobs   *storage.BlobStore
	dataset *storage.Dataset
	mu      sync.Mutex
}

func NewRunner(cfg *config.Config, blobs *storage.BlobStore, dataset *storage.Dataset) *Runner {
	return &Runner{cfg: cfg, blobs: blobs, dataset: dataset}
}

// Run performs one capture pass for the raw input mapping. Interaction
// failures are advisory and surface only in the returned outcomes; session,
// navigation, capture, and final-persist failures are fatal.
func (r *Runner) Run(ctx context.Context, raw map[string]any) (storage.CaptureResult, []chart.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := config.ResolveRequest(raw)
	if err != nil {
		return storage.CaptureResult{}, nil, newError(CodeValidation, "resolve capture request", err)
	}

	started := timeNow()
	slog.Info("capture run starting",
		"symbol", req.Symbol,
		"interval", req.Interval,
		"indicators", len(req.Indicators),
		"theme", req.Theme,
		"hide_ui", req.HideUI,
	)

	sess, err := launchSession(ctx, browser.Options{
		ChromePath: r.cfg.ChromePath,
		Headless:   r.cfg.Headless,
		UserAgent:  r.cfg.UserAgent,
		Width:      req.Width,
		Height:     req.Height,
	})
	if err != nil {
		return storage.CaptureResult{}, nil, newError(CodeBrowserUnavailable, "launch browser session", err)
	}
	defer sess.Close()

	nav := chart.Navigator{
		NavigationTimeout: time.Duration(r.cfg.NavigationTimeoutMS) * time.Millisecond,
		MarkerTimeout:     time.Duration(r.cfg.MarkerTimeoutMS) * time.Millisecond,
	}
	if err := openChart(sess.Ctx(), nav, req.Symbol); err != nil {
		return storage.CaptureResult{}, nil, newError(CodeNavigationFailed, "open chart page", err)
	}

	outcomes := applyInteractions(sess.Ctx(), req)

	img, err := captureViewport(sess.Ctx())
	if err != nil {
		return storage.CaptureResult{}, outcomes, newError(CodeCaptureFailed, "capture viewport", err)
	}

	result, err := r.persist(req, img)
	if err != nil {
		return storage.CaptureResult{}, outcomes, err
	}

	slog.Info("capture run finished",
		"storage_key", result.StorageKey,
		"image_bytes", len(img),
		"duration_ms", timeNow().Sub(started).Milliseconds(),
	)
	return result, outcomes, nil
}

// persist encodes the image, writes the blob (advisory), resolves the public
// locator (advisory), and appends the metadata record with a single
// placeholder fallback retry. A second append failure is fatal.
func (r *Runner) persist(req config.CaptureRequest, img []byte) (storage.CaptureResult, error) {
	now := timeNow()
	key := storage.DeriveOutputName(req.OutputFileName, req.Symbol, now)
	b64 := capture.EncodeBase64(img)

	rec := storage.CaptureResult{
		Symbol:       req.Symbol,
		Interval:     req.Interval,
		Indicators:   req.Indicators,
		Theme:        req.Theme,
		Width:        req.Width,
		Height:       req.Height,
		ImageBase64:  b64,
		ImageDataURL: capture.DataURL(b64),
		StorageKey:   key,
		CapturedAt:   now.UTC().Truncate(time.Second),
	}

	if err := r.blobs.Put(key, img); err != nil {
		slog.Warn("blob write failed, continuing without stored image", "key", key, "error", err)
	} else if u, err := r.blobs.PublicURL(key); err != nil {
		slog.Warn("public locator resolution failed", "key", key, "error", err)
	} else {
		rec.PublicURL = u
	}

	if err := r.dataset.Append(rec); err != nil {
		slog.Warn("metadata append failed, retrying with placeholder image fields",
			"key", key, "base64_chars", len(rec.ImageBase64), "error", err)

		fallback := rec
		fallback.ImageBase64 = capture.Base64Placeholder(len(rec.ImageBase64))
		fallback.ImageDataURL = capture.DataURLPlaceholder(len(rec.ImageDataURL))
		if retryErr := r.dataset.Append(fallback); retryErr != nil {
			return storage.CaptureResult{}, newError(CodePersistFailed, "metadata append failed after placeholder fallback", retryErr)
		}
		return fallback, nil
	}
	return rec, nil
}
