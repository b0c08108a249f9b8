package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/redline-eval/redline/internal/logging"
	"github.com/redline-eval/redline/pkg/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))

	logger.Info("dropped")
	logger.Warn("kept", zap.Int("risk_score", 35))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at warn level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}
	if entry["msg"] != "kept" || entry["level"] != "WARN" || entry["logger"] != "redline" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["risk_score"] != float64(35) {
		t.Errorf("risk_score = %v, want 35", entry["risk_score"])
	}
}

func TestNewUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(config.LogConfig{Level: "loud", Format: "console"}, zapcore.AddSync(&buf))
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info level fallback, got %q", buf.String())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redline.log")
	var buf bytes.Buffer
	logger := logging.NewWithWriter(config.LogConfig{Level: "info", Format: "console", File: path, MaxSize: 1}, zapcore.AddSync(&buf))
	logger.Info("to both")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to both"`) {
		t.Errorf("expected JSON entry in file, got %q", data)
	}
}
