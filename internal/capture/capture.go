package capture

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Viewport captures a lossless PNG of the currently visible viewport (not
// the full scrollable page). A capture failure is not recoverable by the
// pipeline.
func Viewport(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("capture screenshot: empty image")
	}
	return buf, nil
}
