package chart

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
)

const chartBaseURL = "https://www.tradingview.com/chart/"

// readyMarker is the DOM element whose presence signals the chart surface
// has rendered. The generic canvas fallback covers markup changes upstream.
const readyMarker = `.chart-markup-table, canvas`

// ChartURL builds the target chart URL with the symbol escaped into the
// query string.
func ChartURL(symbol string) string {
	return chartBaseURL + "?symbol=" + url.QueryEscape(symbol)
}

// Navigator loads the chart page and waits for readiness.
type Navigator struct {
	NavigationTimeout time.Duration
	MarkerTimeout     time.Duration
}

// Open navigates to the chart for symbol. Navigation failure is fatal;
// failure to see the readiness marker is advisory — the page may still be
// partially usable, so it logs and proceeds after a settle delay.
func (n Navigator) Open(ctx context.Context, symbol string) error {
	target := ChartURL(symbol)
	slog.Info("navigating to chart", "url", target)

	navCtx, cancel := context.WithTimeout(ctx, n.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}

	markerCtx, cancelMarker := context.WithTimeout(ctx, n.MarkerTimeout)
	defer cancelMarker()
	if err := chromedp.Run(markerCtx, chromedp.WaitVisible(readyMarker, chromedp.ByQuery)); err != nil {
		slog.Warn("readiness marker not found, continuing after settle",
			"marker", readyMarker, "error", err)
		if waitErr := settleWait(ctx, uiSettleLong); waitErr != nil {
			return fmt.Errorf("settle after missing marker: %w", waitErr)
		}
		return nil
	}

	slog.Debug("chart readiness marker visible", "marker", readyMarker)
	return nil
}
