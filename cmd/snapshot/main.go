package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dgnsrekt/tv_snapshot/internal/config"
	"github.com/dgnsrekt/tv_snapshot/internal/pipeline"
	"github.com/dgnsrekt/tv_snapshot/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("config loaded",
		"input_file", cfg.InputFile,
		"data_dir", cfg.DataDir,
		"headless", cfg.Headless,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	raw, err := config.LoadInput(cfg.InputFile)
	if err != nil {
		slog.Error("failed to read input file", "path", cfg.InputFile, "error", err)
		os.Exit(1)
	}

	blobs, err := storage.NewBlobStore(cfg.DataDir, cfg.PublicURLBase)
	if err != nil {
		slog.Error("failed to open blob store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	dataset, err := storage.NewDataset(cfg.DataDir, cfg.MaxRecordBytes)
	if err != nil {
		slog.Error("failed to open dataset", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer func() { _ = dataset.Close() }()

	runner := pipeline.NewRunner(cfg, blobs, dataset)
	result, outcomes, err := runner.Run(context.Background(), raw)
	for _, o := range outcomes {
		if !o.OK {
			slog.Warn("interaction skipped", "step", o.Step, "reason", o.Reason)
		}
	}
	if err != nil {
		slog.Error("capture failed", "error", err)
		os.Exit(1)
	}

	slog.Info("capture complete",
		"storage_key", result.StorageKey,
		"public_url", result.PublicURL,
		"captured_at", result.CapturedAt,
	)
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
