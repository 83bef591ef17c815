package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/chromedp"
)

// Options holds browser launch configuration for one capture session.
type Options struct {
	ChromePath string
	Headless   bool
	UserAgent  string
	Width      int
	Height     int
}

// Session owns one headless browser process and its single page. The
// pipeline instance holds it exclusively for its entire lifetime and must
// release it on every exit path.
type Session struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	closeOnce     sync.Once
}

// Launch starts a browser process with the configured viewport and user
// agent and opens one page context. Failure here is fatal to the pipeline.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("launch browser: invalid viewport %dx%d", opts.Width, opts.Height)
	}

	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ChromePath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, flags...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to start and the first page to
	// open, so launch failures surface here instead of mid-pipeline.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	slog.Info("browser session started",
		"headless", opts.Headless,
		"viewport", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
	)

	return &Session{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Ctx returns the page context used for all subsequent browser actions.
func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Close tears down the page and the browser process. It is idempotent and
// safe to defer alongside explicit close calls.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		slog.Info("stopping browser session")
		s.browserCancel()
		s.allocCancel()
	})
}
