package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// CaptureRequest is the fully resolved configuration for one capture run.
// It is immutable once resolved.
type CaptureRequest struct {
	Symbol         string   `json:"symbol"`
	Interval       string   `json:"interval"`
	Indicators     []string `json:"indicators"`
	Theme          string   `json:"theme"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	HideUI         bool     `json:"hideUi"`
	Username       string   `json:"username,omitempty"`
	Password       string   `json:"password,omitempty"`
	OutputFileName string   `json:"outputFileName,omitempty"`
}

// DefaultRequest returns the documented defaults for every request field.
// This is the single declared defaults table; no other literal fallbacks
// exist elsewhere in the pipeline.
func DefaultRequest() CaptureRequest {
	return CaptureRequest{
		Symbol:     "BINANCE:BTCUSDT",
		Interval:   "1h",
		Indicators: []string{"RSI", "EMA 20", "EMA 50"},
		Theme:      "dark",
		Width:      1280,
		Height:     720,
		HideUI:     true,
	}
}

// ResolveRequest merges a raw input mapping over the defaults. Fields absent
// from the mapping keep their default value; present fields pass through
// unchanged. Unknown keys are ignored. A present field of the wrong type is
// an error rather than a silent fallback.
func ResolveRequest(raw map[string]any) (CaptureRequest, error) {
	req := DefaultRequest()
	if raw == nil {
		return req, nil
	}

	var err error
	if req.Symbol, err = stringField(raw, "symbol", req.Symbol); err != nil {
		return CaptureRequest{}, err
	}
	if req.Interval, err = stringField(raw, "interval", req.Interval); err != nil {
		return CaptureRequest{}, err
	}
	if req.Indicators, err = stringSliceField(raw, "indicators", req.Indicators); err != nil {
		return CaptureRequest{}, err
	}
	if req.Theme, err = stringField(raw, "theme", req.Theme); err != nil {
		return CaptureRequest{}, err
	}
	if req.Width, err = intField(raw, "width", req.Width); err != nil {
		return CaptureRequest{}, err
	}
	if req.Height, err = intField(raw, "height", req.Height); err != nil {
		return CaptureRequest{}, err
	}
	if req.HideUI, err = boolField(raw, "hideUi", req.HideUI); err != nil {
		return CaptureRequest{}, err
	}
	if req.Username, err = stringField(raw, "username", req.Username); err != nil {
		return CaptureRequest{}, err
	}
	if req.Password, err = stringField(raw, "password", req.Password); err != nil {
		return CaptureRequest{}, err
	}
	if req.OutputFileName, err = stringField(raw, "outputFileName", req.OutputFileName); err != nil {
		return CaptureRequest{}, err
	}

	return req, nil
}

// LoadInput reads the per-run input mapping from a JSON file. A missing file
// is not an error; it resolves to an empty mapping so every field takes its
// default.
func LoadInput(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("no input file, using defaults", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read input file %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse input file %s: %w", path, err)
	}
	return raw, nil
}

func stringField(raw map[string]any, key, fallback string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("input field %q: expected string, got %T", key, v)
	}
	return s, nil
}

func intField(raw map[string]any, key string, fallback int) (int, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64: // JSON numbers decode as float64
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("input field %q: expected number, got %T", key, v)
	}
}

func boolField(raw map[string]any, key string, fallback bool) (bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("input field %q: expected bool, got %T", key, v)
	}
	return b, nil
}

func stringSliceField(raw map[string]any, key string, fallback []string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("input field %q: expected string elements, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("input field %q: expected string array, got %T", key, v)
	}
}
