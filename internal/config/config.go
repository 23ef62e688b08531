package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"provtrack/internal/artifact"
	"provtrack/internal/index"
	"provtrack/internal/loader"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Markers struct {
		Comment        string `yaml:"comment"`
		KernelStart    string `yaml:"kernel_start"`
		KernelEnd      string `yaml:"kernel_end"`
		CallSiteAnchor string `yaml:"call_site_anchor"` // LanguageB only
		DebugHandles   bool   `yaml:"debug_handles"`    // LanguageB: match name:N by its bare name
	} `yaml:"markers"`
	Files  loader.Patterns `yaml:"files"`
	Output struct {
		Dir         string `yaml:"dir"`
		BuildReport bool   `yaml:"build_report"` // write build_report.json next to each page
	} `yaml:"output"`
	LogLevel string `yaml:"log_level"`
	Variant  string `yaml:"variant"` // auto, language_a, language_b
}

func DefaultConfig() *Config {
	var cfg Config
	m := index.DefaultMarkers()
	cfg.Markers.Comment = m.Comment
	cfg.Markers.KernelStart = m.KernelStart
	cfg.Markers.KernelEnd = m.KernelEnd
	cfg.Files = loader.DefaultPatterns()
	cfg.Output.Dir = "provtrack_out"
	cfg.LogLevel = "info"
	cfg.Variant = "auto"
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := DefaultConfig()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, err
			}
		}
	}

	// 3. Override with Environment Variables if present
	if level := os.Getenv("PROVTRACK_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if dir := os.Getenv("PROVTRACK_OUTPUT_DIR"); dir != "" {
		cfg.Output.Dir = dir
	}
	if v := os.Getenv("PROVTRACK_VARIANT"); v != "" {
		cfg.Variant = v
	}

	if _, err := cfg.PreferredVariant(); err != nil {
		return nil, err
	}
	cfg.fillPatterns()
	return cfg, nil
}

// fillPatterns restores defaults for pattern lists a config file left empty.
func (c *Config) fillPatterns() {
	def := loader.DefaultPatterns()
	if len(c.Files.PreGraph) == 0 {
		c.Files.PreGraph = def.PreGraph
	}
	if len(c.Files.PostGraph) == 0 {
		c.Files.PostGraph = def.PostGraph
	}
	if len(c.Files.LanguageA) == 0 {
		c.Files.LanguageA = def.LanguageA
	}
	if len(c.Files.LanguageB) == 0 {
		c.Files.LanguageB = def.LanguageB
	}
	if len(c.Files.Mapping) == 0 {
		c.Files.Mapping = def.Mapping
	}
}

func (c *Config) IndexMarkers() index.Markers {
	return index.Markers{
		Comment:        c.Markers.Comment,
		KernelStart:    c.Markers.KernelStart,
		KernelEnd:      c.Markers.KernelEnd,
		CallSiteAnchor: c.Markers.CallSiteAnchor,
		DebugHandles:   c.Markers.DebugHandles,
	}
}

func (c *Config) PreferredVariant() (artifact.Variant, error) {
	return artifact.ParseVariant(c.Variant)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
