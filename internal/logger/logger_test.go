package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"INFO", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Level != "INFO" || cfg.ConsoleEnabled == nil || !*cfg.ConsoleEnabled || cfg.FileEnabled {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	content := `logging:
  level: DEBUG
  console_format: json
  file_enabled: true
  file_path: pet.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Level != "DEBUG" || cfg.ConsoleFormat != "json" || !cfg.FileEnabled || cfg.FilePath != "pet.log" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if cfg.FileMaxSizeMB != 20 || cfg.FileMaxBackups != 5 {
		t.Fatalf("expected size override and default backups, got %#v", cfg)
	}
	if cfg.ConsoleEnabled == nil || !*cfg.ConsoleEnabled {
		t.Fatalf("expected console to stay enabled when unset")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte("logging: [unclosed"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/tmp/pet.log")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Level != "ERROR" || cfg.ConsoleFormat != "json" || !cfg.FileEnabled || cfg.FilePath != "/tmp/pet.log" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestNewWritesToConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "DEBUG"
	cfg.FileEnabled = true
	cfg.FilePath = filepath.Join(t.TempDir(), "pet.log")

	l, closer := New(cfg, &buf)
	l.Debug("decay tick", "user_id", "u1")
	l.With("component", "store").Info("saved")
	if err := closer.Close(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(buf.String(), "decay tick") || !strings.Contains(buf.String(), "component=store") {
		t.Fatalf("unexpected console output: %s", buf.String())
	}
	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("expected log file, got %v", err)
	}
	if !strings.Contains(string(data), `"msg":"saved"`) {
		t.Fatalf("expected json line in file, got %s", data)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "WARN"

	l, _ := New(cfg, &buf)
	l.Info("quiet")
	l.Warn("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
