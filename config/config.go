// Package config loads the stargate shell configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gosuda/stargate/command"
)

const (
	DefaultPrompt  = "sg> "
	defaultHistory = ".stargate_history"
)

// Config is the normalized shell configuration.
type Config struct {
	Path           string
	CommandTimeout time.Duration
	Multiplexer    string
	StructuredFlag string
	ObjectNative   []string
	SearchPaths    []string
	HistoryFile    string
	Prompt         string
	LogLevel       slog.Level
	TUI            bool
}

// ValidationError lists every problem found in a config file.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type configFile struct {
	CommandTimeout string   `yaml:"command_timeout"`
	Multiplexer    string   `yaml:"multiplexer"`
	StructuredFlag string   `yaml:"structured_flag"`
	ObjectNative   []string `yaml:"object_native"`
	SearchPaths    []string `yaml:"search_paths"`
	HistoryFile    string   `yaml:"history_file"`
	Prompt         *string  `yaml:"prompt"`
	LogLevel       string   `yaml:"log_level"`
	TUI            bool     `yaml:"tui"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg, _ := configFile{}.toConfig("")
	return cfg
}

// DefaultPath is ~/.config/stargate/config.yaml, or empty when the home
// directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "stargate", "config.yaml")
}

// Load reads path. A missing file at the default location yields the
// defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode parses a config document. Unknown keys are rejected.
func Decode(r io.Reader, path string) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var raw configFile
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return raw.toConfig(path)
}

func (raw configFile) toConfig(path string) (*Config, error) {
	var errs ValidationError
	cfg := &Config{
		Path:           path,
		CommandTimeout: command.DefaultTimeout,
		Multiplexer:    strings.TrimSpace(raw.Multiplexer),
		StructuredFlag: strings.TrimSpace(raw.StructuredFlag),
		ObjectNative:   raw.ObjectNative,
		Prompt:         DefaultPrompt,
		LogLevel:       slog.LevelWarn,
		TUI:            raw.TUI,
	}
	if cfg.StructuredFlag == "" {
		cfg.StructuredFlag = command.DefaultStructuredFlag
	}
	if raw.CommandTimeout != "" {
		d, err := time.ParseDuration(raw.CommandTimeout)
		switch {
		case err != nil:
			errs.Issues = append(errs.Issues, fmt.Sprintf("command_timeout: %v", err))
		case d <= 0:
			errs.Issues = append(errs.Issues, "command_timeout must be positive")
		default:
			cfg.CommandTimeout = d
		}
	}
	if raw.Prompt != nil {
		cfg.Prompt = *raw.Prompt
	}
	if raw.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw.LogLevel)); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log_level: unknown level %q", raw.LogLevel))
		}
	}
	for i, p := range raw.SearchPaths {
		if strings.TrimSpace(p) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("search_paths[%d] must be a non-empty path", i))
			continue
		}
		cfg.SearchPaths = append(cfg.SearchPaths, expandHome(p))
	}
	for i, name := range raw.ObjectNative {
		if strings.TrimSpace(name) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("object_native[%d] must be a non-empty command name", i))
		}
	}
	cfg.HistoryFile = expandHome(raw.HistoryFile)
	if cfg.HistoryFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.HistoryFile = filepath.Join(home, defaultHistory)
		}
	}
	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return cfg, nil
}

func expandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Executor builds the process executor described by the config.
func (c *Config) Executor(logger *slog.Logger) *command.Process {
	return &command.Process{
		Multiplexer:    c.Multiplexer,
		SearchPaths:    c.SearchPaths,
		StructuredFlag: c.StructuredFlag,
		ObjectNative:   c.ObjectNative,
		Timeout:        c.CommandTimeout,
		Logger:         logger,
	}
}
