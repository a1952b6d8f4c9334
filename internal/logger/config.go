package logger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config controls log outputs.
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

type fileConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs INFO as text to stdout.
func DefaultConfig() Config {
	enabled := true
	return Config{
		Level:          "INFO",
		ConsoleEnabled: &enabled,
		ConsoleFormat:  "text",
		FilePath:       "logs/petd.log",
		FileFormat:     "json",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig reads the logging section of a YAML file and applies the
// LOG_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return cfg, fmt.Errorf("failed to parse log config %s: %w", path, err)
			}
			cfg = merge(cfg, fc.Logging)
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read log config %s: %w", path, err)
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_CONSOLE_FORMAT"); v != "" {
		cfg.ConsoleFormat = v
	}
	if v := os.Getenv("LOG_FILE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.FileEnabled = enabled
		}
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		cfg.FilePath = v
	}
	return cfg, nil
}

func merge(base, in Config) Config {
	if in.Level != "" {
		base.Level = in.Level
	}
	if in.ConsoleEnabled != nil {
		base.ConsoleEnabled = in.ConsoleEnabled
	}
	if in.ConsoleFormat != "" {
		base.ConsoleFormat = in.ConsoleFormat
	}
	base.FileEnabled = in.FileEnabled
	if in.FilePath != "" {
		base.FilePath = in.FilePath
	}
	if in.FileFormat != "" {
		base.FileFormat = in.FileFormat
	}
	if in.FileMaxSizeMB > 0 {
		base.FileMaxSizeMB = in.FileMaxSizeMB
	}
	if in.FileMaxBackups > 0 {
		base.FileMaxBackups = in.FileMaxBackups
	}
	if in.FileMaxAgeDays > 0 {
		base.FileMaxAgeDays = in.FileMaxAgeDays
	}
	return base
}
