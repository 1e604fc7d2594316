package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvmeta/internal/config"
	"tvmeta/internal/logging"
	"tvmeta/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "nested", "tvmeta.log")
	logger, err := logging.New(logging.Options{
		Format:      format,
		Level:       level,
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWithFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "tvmeta.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")
	if !strings.Contains(readLog(t, cfg.Logging.File), "hello from config") {
		t.Fatal("expected message in rotated log file")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logger.Info("message without caller")
	content := readLog(t, path)
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if strings.Contains(content, "\x1b[") {
		t.Fatalf("expected no colour codes in file output, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, path := newFileLogger(t, "console", "debug")
	logger.Info("message with caller")
	if content := readLog(t, path); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentPrefix(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logging.NewComponentLogger(logger, "resolver").Info("cache hit", logging.String("series", "South Park"))
	content := readLog(t, path)
	if !strings.Contains(content, "INFO resolver: cache hit") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, `series="South Park"`) {
		t.Fatalf("expected quoted attribute, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logger, path := newFileLogger(t, "json", "info")
	logger.Info("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["msg"] != "json message" || record["level"] != "info" || record["k"] != "v" {
		t.Fatalf("unexpected record %#v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, path := newFileLogger(t, "console", "invalid")
	logger.Debug("hidden")
	logger.Info("visible")
	content := readLog(t, path)
	if strings.Contains(content, "hidden") || !strings.Contains(content, "visible") {
		t.Fatalf("unexpected level filtering: %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSeriesID(ctx, 75897)
	ctx = services.WithOperation(ctx, "resolve_episode")
	ctx = services.WithRequestID(ctx, "req-xyz")

	logger, path := newFileLogger(t, "json", "info")
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldSeriesID] != float64(75897) {
		t.Fatalf("series id = %v", record[logging.FieldSeriesID])
	}
	if record[logging.FieldOperation] != "resolve_episode" {
		t.Fatalf("operation = %v", record[logging.FieldOperation])
	}
	if record[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("correlation id = %v", record[logging.FieldCorrelationID])
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	logger, path := newFileLogger(t, "json", "info")
	logging.WarnWithContext(logger, "write-back failed", "cache_write_failed", logging.String(logging.FieldImpact, "next lookup hits remote"))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldEventType] != "cache_write_failed" {
		t.Fatalf("event type = %v", record[logging.FieldEventType])
	}
	if record[logging.FieldImpact] != "next lookup hits remote" {
		t.Fatalf("impact = %v", record[logging.FieldImpact])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
}
