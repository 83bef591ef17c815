package chart

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// Fixed settle delays between interactions. The host page gives no events to
// wait on for these, so the sequencer sleeps a bounded amount after each one.
const (
	keySettle      = 150 * time.Millisecond
	typeDelay      = 50 * time.Millisecond
	uiSettleShort  = 500 * time.Millisecond
	uiSettleMedium = time.Second
	uiSettleLong   = 2 * time.Second
	fieldWait      = 5 * time.Second
)

// shortcut describes one trusted keyboard chord.
// Modifiers is a bitmask: 1=Alt, 2=Ctrl, 4=Meta, 8=Shift.
type shortcut struct {
	Key       string
	Code      string
	KeyCode   int64
	Modifiers input.Modifier
}

// Page-specific keyboard contract. These bindings belong to the remote
// charting page and may change upstream; they are an external assumption,
// not something this package can verify.
var (
	openIndicatorSearch = shortcut{Key: "/", Code: "Slash", KeyCode: 191}
	acceptFirstMatch    = shortcut{Key: "Enter", Code: "Enter", KeyCode: 13}
	toggleTheme         = shortcut{Key: "t", Code: "KeyT", KeyCode: 84, Modifiers: input.ModifierAlt}
)

// Seam variables so sequencer tests can stub trusted input dispatch.
var (
	dispatchShortcut = realDispatchShortcut
	dispatchChar     = realDispatchChar
	settleWait       = realSettleWait
)

// realDispatchShortcut sends a trusted keyDown + keyUp sequence for a chord.
func realDispatchShortcut(ctx context.Context, sc shortcut) error {
	return chromedp.Run(ctx,
		input.DispatchKeyEvent(input.KeyDown).
			WithKey(sc.Key).
			WithCode(sc.Code).
			WithWindowsVirtualKeyCode(sc.KeyCode).
			WithModifiers(sc.Modifiers),
		input.DispatchKeyEvent(input.KeyUp).
			WithKey(sc.Key).
			WithCode(sc.Code).
			WithWindowsVirtualKeyCode(sc.KeyCode).
			WithModifiers(sc.Modifiers),
	)
}

// realDispatchChar types one character using the rawKeyDown + char + keyUp
// pattern. rawKeyDown fires without text insertion, then the "char" event
// inserts the character and fires native input events that controlled
// components respond to.
func realDispatchChar(ctx context.Context, ch rune) error {
	s := string(ch)
	return chromedp.Run(ctx,
		input.DispatchKeyEvent(input.KeyRawDown).WithKey(s),
		input.DispatchKeyEvent(input.KeyChar).
			WithKey(s).
			WithText(s).
			WithUnmodifiedText(s),
		input.DispatchKeyEvent(input.KeyUp).WithKey(s),
	)
}

func realSettleWait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
