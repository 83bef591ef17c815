package chart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/tv_snapshot/internal/config"
)

// Outcome records the result of one best-effort interaction step. A step
// that failed is marked skipped with the triggering error's message; the
// sequence always continues past it.
type Outcome struct {
	Step   string `json:"step"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Seam variables so sequencer tests can stub page lookups.
var (
	clickByText = realClickByText
	fillByType  = realFillByType
	evalOnPage  = realEvalOnPage
)

const (
	usernameSelector = `input[type="email"], input[type="text"]`
	passwordSelector = `input[type="password"]`
)

// ApplyInteractions mutates the live page to match the request. Every
// sub-step is individually best-effort: a failure is logged, recorded in the
// returned outcomes, and the remaining steps still run.
func ApplyInteractions(ctx context.Context, req config.CaptureRequest) []Outcome {
	var outcomes []Outcome

	if req.Username != "" && req.Password != "" {
		outcomes = append(outcomes, attempt(ctx, "login", func(ctx context.Context) error {
			return login(ctx, req.Username, req.Password)
		}))
	}

	if strings.EqualFold(req.Theme, "light") {
		outcomes = append(outcomes, attempt(ctx, "theme", applyLightTheme))
	}

	outcomes = append(outcomes, attempt(ctx, "timeframe", func(ctx context.Context) error {
		return selectTimeframe(ctx, req.Interval)
	}))

	for _, indicator := range req.Indicators {
		indicator := indicator
		outcomes = append(outcomes, attempt(ctx, "indicator:"+indicator, func(ctx context.Context) error {
			return insertIndicator(ctx, indicator)
		}))
	}

	if req.HideUI {
		outcomes = append(outcomes, attempt(ctx, "hide_ui", hideUI))
	}

	return outcomes
}

// attempt runs one named step and converts its error into a skipped outcome.
func attempt(ctx context.Context, step string, fn func(context.Context) error) Outcome {
	if err := fn(ctx); err != nil {
		slog.Warn("interaction step skipped", "step", step, "error", err)
		return Outcome{Step: step, Reason: err.Error()}
	}
	slog.Debug("interaction step ok", "step", step)
	return Outcome{Step: step, OK: true}
}

// login performs the advisory sign-in flow. Any missing affordance or
// timed-out field lookup aborts only this step.
func login(ctx context.Context, username, password string) error {
	if err := clickByText(ctx, "sign in"); err != nil {
		return fmt.Errorf("sign-in affordance: %w", err)
	}
	if err := settleWait(ctx, uiSettleLong); err != nil {
		return err
	}

	if err := fillByType(ctx, usernameSelector, username); err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := fillByType(ctx, passwordSelector, password); err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	if err := clickByText(ctx, "sign in"); err != nil {
		return fmt.Errorf("submit affordance: %w", err)
	}
	return settleWait(ctx, uiSettleLong)
}

// applyLightTheme issues the theme-toggle chord. Default rendering is
// assumed dark, so this runs only for light requests; the result is not
// verified.
func applyLightTheme(ctx context.Context) error {
	if err := dispatchShortcut(ctx, toggleTheme); err != nil {
		return fmt.Errorf("theme toggle: %w", err)
	}
	return settleWait(ctx, uiSettleMedium)
}

// selectTimeframe types the interval into the page's keystroke target: one
// key per digit of the numeric run, then the alphabetic code.
func selectTimeframe(ctx context.Context, interval string) error {
	digits, code, err := ParseInterval(interval)
	if err != nil {
		return err
	}

	for _, d := range digits {
		if err := dispatchChar(ctx, d); err != nil {
			return fmt.Errorf("timeframe digit %q: %w", d, err)
		}
		if err := settleWait(ctx, keySettle); err != nil {
			return err
		}
	}
	for _, c := range code {
		if err := dispatchChar(ctx, c); err != nil {
			return fmt.Errorf("timeframe code %q: %w", c, err)
		}
	}
	return settleWait(ctx, uiSettleShort)
}

// insertIndicator opens the indicator search, types the full indicator text
// with an inter-character delay, and accepts the first match.
func insertIndicator(ctx context.Context, name string) error {
	if err := dispatchShortcut(ctx, openIndicatorSearch); err != nil {
		return fmt.Errorf("open search: %w", err)
	}
	if err := settleWait(ctx, uiSettleMedium); err != nil {
		return err
	}

	for _, r := range name {
		if err := dispatchChar(ctx, r); err != nil {
			return fmt.Errorf("type %q: %w", name, err)
		}
		if err := settleWait(ctx, typeDelay); err != nil {
			return err
		}
	}
	if err := settleWait(ctx, uiSettleMedium); err != nil {
		return err
	}

	if err := dispatchShortcut(ctx, acceptFirstMatch); err != nil {
		return fmt.Errorf("accept match: %w", err)
	}
	return settleWait(ctx, uiSettleLong)
}

// hideUI evaluates the suppression script inside the page.
func hideUI(ctx context.Context) error {
	var hidden int
	if err := evalOnPage(ctx, jsHideUI(), &hidden); err != nil {
		return fmt.Errorf("hide ui: %w", err)
	}
	slog.Debug("ui elements suppressed", "count", hidden)
	return nil
}

func realClickByText(ctx context.Context, text string) error {
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(jsClickByText(text), &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element with text %q", text)
	}
	return nil
}

func realFillByType(ctx context.Context, selector, value string) error {
	fieldCtx, cancel := context.WithTimeout(ctx, fieldWait)
	defer cancel()
	return chromedp.Run(fieldCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func realEvalOnPage(ctx context.Context, js string, out any) error {
	return chromedp.Run(ctx, chromedp.Evaluate(js, out))
}
