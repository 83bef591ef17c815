package chart

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/tv_snapshot/internal/config"
)

// stubSeams replaces the dispatch/lookup seams for a test and restores them
// on cleanup. Unset stubs succeed silently.
type stubSeams struct {
	shortcuts []shortcut
	chars     []rune
	clicks    []string
	fills     []string
	evals     []string

	shortcutErr func(sc shortcut) error
	charErr     func(ch rune) error
	clickErr    func(text string) error
}

func installStubs(t *testing.T) *stubSeams {
	t.Helper()
	s := &stubSeams{}

	origShortcut := dispatchShortcut
	origChar := dispatchChar
	origSettle := settleWait
	origClick := clickByText
	origFill := fillByType
	origEval := evalOnPage
	t.Cleanup(func() {
		dispatchShortcut = origShortcut
		dispatchChar = origChar
		settleWait = origSettle
		clickByText = origClick
		fillByType = origFill
		evalOnPage = origEval
	})

	dispatchShortcut = func(_ context.Context, sc shortcut) error {
		s.shortcuts = append(s.shortcuts, sc)
		if s.shortcutErr != nil {
			return s.shortcutErr(sc)
		}
		return nil
	}
	dispatchChar = func(_ context.Context, ch rune) error {
		s.chars = append(s.chars, ch)
		if s.charErr != nil {
			return s.charErr(ch)
		}
		return nil
	}
	settleWait = func(context.Context, time.Duration) error { return nil }
	clickByText = func(_ context.Context, text string) error {
		s.clicks = append(s.clicks, text)
		if s.clickErr != nil {
			return s.clickErr(text)
		}
		return nil
	}
	fillByType = func(_ context.Context, selector, value string) error {
		s.fills = append(s.fills, selector+"="+value)
		return nil
	}
	evalOnPage = func(_ context.Context, js string, out any) error {
		s.evals = append(s.evals, js)
		return nil
	}

	return s
}

func TestSelectTimeframeEmitsDigitsThenCode(t *testing.T) {
	s := installStubs(t)

	if err := selectTimeframe(context.Background(), "15m"); err != nil {
		t.Fatalf("selectTimeframe() = %v; want nil", err)
	}
	if got, want := string(s.chars), "15m"; got != want {
		t.Fatalf("typed keys = %q; want %q", got, want)
	}
}

func TestSelectTimeframeLowercasesCode(t *testing.T) {
	s := installStubs(t)

	if err := selectTimeframe(context.Background(), "1D"); err != nil {
		t.Fatalf("selectTimeframe() = %v; want nil", err)
	}
	if got, want := string(s.chars), "1d"; got != want {
		t.Fatalf("typed keys = %q; want %q", got, want)
	}
}

func TestApplyInteractionsAttemptsEveryIndicatorInOrder(t *testing.T) {
	s := installStubs(t)

	// Every indicator-search open fails, so each insertion is skipped, but
	// both must still be attempted in order.
	s.shortcutErr = func(sc shortcut) error {
		if sc == openIndicatorSearch {
			return errors.New("search did not open")
		}
		return nil
	}

	req := config.DefaultRequest()
	req.Indicators = []string{"RSI", "EMA 20"}
	req.HideUI = false

	outcomes := ApplyInteractions(context.Background(), req)

	var insertions []string
	for _, o := range outcomes {
		if strings.HasPrefix(o.Step, "indicator:") {
			insertions = append(insertions, o.Step)
			if o.OK {
				t.Errorf("outcome %s = ok; want skipped", o.Step)
			}
			if o.Reason == "" {
				t.Errorf("outcome %s has no skip reason", o.Step)
			}
		}
	}
	if len(insertions) != 2 {
		t.Fatalf("attempted %d insertions; want 2", len(insertions))
	}
	if insertions[0] != "indicator:RSI" || insertions[1] != "indicator:EMA 20" {
		t.Fatalf("insertion order = %v; want [indicator:RSI indicator:EMA 20]", insertions)
	}
}

func TestApplyInteractionsIndicatorTextTypedInFull(t *testing.T) {
	s := installStubs(t)

	req := config.DefaultRequest()
	req.Indicators = []string{"EMA 20"}
	req.Interval = "1h"
	req.HideUI = false

	ApplyInteractions(context.Background(), req)

	// Interval keys first, then the indicator text character by character.
	if got, want := string(s.chars), "1hEMA 20"; got != want {
		t.Fatalf("typed keys = %q; want %q", got, want)
	}
	if len(s.shortcuts) != 2 {
		t.Fatalf("dispatched %d shortcuts; want 2 (open search, accept match)", len(s.shortcuts))
	}
	if s.shortcuts[0] != openIndicatorSearch || s.shortcuts[1] != acceptFirstMatch {
		t.Fatalf("shortcut order = %+v; want open search then accept", s.shortcuts)
	}
}

func TestApplyInteractionsLoginOnlyWithFullCredentials(t *testing.T) {
	t.Run("skipped_without_password", func(t *testing.T) {
		s := installStubs(t)
		req := config.DefaultRequest()
		req.Username = "trader"

		outcomes := ApplyInteractions(context.Background(), req)
		for _, o := range outcomes {
			if o.Step == "login" {
				t.Fatal("login attempted without a password")
			}
		}
		if len(s.clicks) != 0 {
			t.Fatalf("clicks = %v; want none", s.clicks)
		}
	})

	t.Run("runs_with_credentials", func(t *testing.T) {
		s := installStubs(t)
		req := config.DefaultRequest()
		req.Username = "trader"
		req.Password = "hunter2"

		outcomes := ApplyInteractions(context.Background(), req)
		if outcomes[0].Step != "login" || !outcomes[0].OK {
			t.Fatalf("first outcome = %+v; want successful login", outcomes[0])
		}
		if len(s.fills) != 2 {
			t.Fatalf("filled %d fields; want 2", len(s.fills))
		}
		if !strings.Contains(s.fills[1], `input[type="password"]`) {
			t.Fatalf("second fill = %q; want password selector", s.fills[1])
		}
	})

	t.Run("missing_affordance_is_advisory", func(t *testing.T) {
		s := installStubs(t)
		s.clickErr = func(string) error { return errors.New("not found") }

		req := config.DefaultRequest()
		req.Username = "trader"
		req.Password = "hunter2"
		req.Indicators = []string{"RSI"}

		outcomes := ApplyInteractions(context.Background(), req)
		if outcomes[0].Step != "login" || outcomes[0].OK {
			t.Fatalf("first outcome = %+v; want skipped login", outcomes[0])
		}
		// The rest of the sequence still ran.
		last := outcomes[len(outcomes)-1]
		if last.Step != "hide_ui" || !last.OK {
			t.Fatalf("last outcome = %+v; want successful hide_ui", last)
		}
	})
}

func TestApplyInteractionsThemeToggleOnlyForLight(t *testing.T) {
	t.Run("dark_skips_toggle", func(t *testing.T) {
		s := installStubs(t)
		req := config.DefaultRequest()
		req.Indicators = nil
		req.HideUI = false

		ApplyInteractions(context.Background(), req)
		for _, sc := range s.shortcuts {
			if sc == toggleTheme {
				t.Fatal("theme toggle dispatched for dark theme")
			}
		}
	})

	t.Run("light_dispatches_toggle", func(t *testing.T) {
		s := installStubs(t)
		req := config.DefaultRequest()
		req.Theme = "light"
		req.Indicators = nil
		req.HideUI = false

		ApplyInteractions(context.Background(), req)
		if len(s.shortcuts) == 0 || s.shortcuts[0] != toggleTheme {
			t.Fatalf("shortcuts = %+v; want leading theme toggle", s.shortcuts)
		}
	})
}

func TestApplyInteractionsHideUI(t *testing.T) {
	s := installStubs(t)
	req := config.DefaultRequest()
	req.Indicators = nil

	outcomes := ApplyInteractions(context.Background(), req)
	last := outcomes[len(outcomes)-1]
	if last.Step != "hide_ui" || !last.OK {
		t.Fatalf("last outcome = %+v; want successful hide_ui", last)
	}
	if len(s.evals) != 1 {
		t.Fatalf("evaluated %d scripts; want 1", len(s.evals))
	}
}

func TestApplyInteractionsBadIntervalIsAdvisory(t *testing.T) {
	installStubs(t)
	req := config.DefaultRequest()
	req.Interval = "not-an-interval"
	req.Indicators = []string{"RSI"}
	req.HideUI = false

	outcomes := ApplyInteractions(context.Background(), req)
	if outcomes[0].Step != "timeframe" || outcomes[0].OK {
		t.Fatalf("first outcome = %+v; want skipped timeframe", outcomes[0])
	}
	if outcomes[1].Step != "indicator:RSI" || !outcomes[1].OK {
		t.Fatalf("second outcome = %+v; want successful indicator", outcomes[1])
	}
}
