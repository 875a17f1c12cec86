// Package config loads skate's settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds driver settings. None of them change language semantics
// except Strict.
type Config struct {
	Prompt      string   `yaml:"prompt"`
	HistoryFile string   `yaml:"history_file"`
	Strict      bool     `yaml:"strict"`
	MaxTraces   int      `yaml:"max_traces"`
	Journal     string   `yaml:"journal"`
	Socket      string   `yaml:"socket"`
	HTTPAddr    string   `yaml:"http_addr"`
	Load        []string `yaml:"load"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

func Default() Config {
	return Config{
		Prompt:      "skate> ",
		HistoryFile: filepath.Join(homeDir(), ".skate_history"),
		MaxTraces:   1000,
		Socket:      "/tmp/skate.sock",
	}
}

// DefaultPath returns the config path from SKATE_CONFIG, or ~/.skate.yaml.
func DefaultPath() string {
	return envOr("SKATE_CONFIG", filepath.Join(homeDir(), ".skate.yaml"))
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	cfg.normalize()
	return cfg, nil
}

// FromEnv applies SKATE_* environment overrides on top of cfg.
func FromEnv(cfg Config) Config {
	cfg.Socket = envOr("SKATE_SOCK", cfg.Socket)
	cfg.Journal = envOr("SKATE_JOURNAL", cfg.Journal)
	cfg.HTTPAddr = envOr("SKATE_HTTP", cfg.HTTPAddr)
	if v := os.Getenv("SKATE_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Strict = b
		}
	}
	return cfg
}

func (c *Config) normalize() {
	if c.Prompt == "" {
		c.Prompt = Default().Prompt
	}
	if c.MaxTraces <= 0 {
		c.MaxTraces = Default().MaxTraces
	}
	c.HistoryFile = expandHome(strings.TrimSpace(c.HistoryFile))
	c.Journal = expandHome(strings.TrimSpace(c.Journal))
	base := filepath.Dir(c.Path)
	for i, p := range c.Load {
		p = expandHome(strings.TrimSpace(p))
		if p != "" && !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		c.Load[i] = p
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
