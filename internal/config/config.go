package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all attune configuration.
type Config struct {
	Addr            string        `yaml:"addr"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Text            TextConfig    `yaml:"text"`
	Face            FaceConfig    `yaml:"face"`
	Output          OutputConfig  `yaml:"output"`
}

// TextConfig selects and sizes the text classifier.
type TextConfig struct {
	Backend  string `yaml:"backend"` // "onnx" or "static"
	ModelDir string `yaml:"model_dir"`
	PoolSize int    `yaml:"pool_size"`
}

// FaceConfig selects the face classifier.
type FaceConfig struct {
	Backend  string        `yaml:"backend"` // "score", "cues" or "remote"
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// OutputConfig lists where analyses go.
type OutputConfig struct {
	Targets     []string `yaml:"targets"` // stdout, file, webhook, sqlite
	File        string   `yaml:"file"`
	FileMaxSize int64    `yaml:"file_max_size"`
	WebhookURL  string   `yaml:"webhook_url"`
	DBPath      string   `yaml:"db_path"`
	Verbosity   string   `yaml:"verbosity"` // "minimal" or "standard"
	Pretty      bool     `yaml:"pretty"`
}

// Has reports whether target is among the configured outputs.
func (o OutputConfig) Has(target string) bool {
	return slices.Contains(o.Targets, target)
}

var (
	textBackends = []string{"onnx", "static"}
	faceBackends = []string{"score", "cues", "remote"}
	outputKinds  = []string{"stdout", "file", "webhook", "sqlite"}
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		Text: TextConfig{
			Backend:  "onnx",
			ModelDir: "models/text",
			PoolSize: 2,
		},
		Face: FaceConfig{
			Backend: "score",
			Timeout: 10 * time.Second,
		},
		Output: OutputConfig{
			Targets:     []string{"stdout"},
			File:        "attune.jsonl",
			FileMaxSize: 10 << 20,
			DBPath:      "attune.db",
			Verbosity:   "standard",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// ATTUNE_CONFIG (if set), then ATTUNE_* environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("ATTUNE_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.overlayEnv()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.Addr = getenv("ATTUNE_ADDR", c.Addr)
	c.LogLevel = getenv("ATTUNE_LOG_LEVEL", c.LogLevel)
	c.ShutdownTimeout = getenvDuration("ATTUNE_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.Text.Backend = getenv("ATTUNE_TEXT_BACKEND", c.Text.Backend)
	c.Text.ModelDir = getenv("ATTUNE_MODEL_DIR", c.Text.ModelDir)
	c.Text.PoolSize = getenvInt("ATTUNE_POOL_SIZE", c.Text.PoolSize)

	c.Face.Backend = getenv("ATTUNE_FACE_BACKEND", c.Face.Backend)
	c.Face.Endpoint = getenv("ATTUNE_FACE_ENDPOINT", c.Face.Endpoint)
	c.Face.Token = getenv("ATTUNE_FACE_TOKEN", c.Face.Token)
	c.Face.Timeout = getenvDuration("ATTUNE_FACE_TIMEOUT", c.Face.Timeout)

	if v, ok := os.LookupEnv("ATTUNE_OUTPUT"); ok {
		c.Output.Targets = ParseTargets(v)
	}
	c.Output.File = getenv("ATTUNE_OUTPUT_FILE", c.Output.File)
	c.Output.FileMaxSize = int64(getenvInt("ATTUNE_OUTPUT_FILE_MAX_SIZE", int(c.Output.FileMaxSize)))
	c.Output.WebhookURL = getenv("ATTUNE_WEBHOOK_URL", c.Output.WebhookURL)
	c.Output.DBPath = getenv("ATTUNE_DB_PATH", c.Output.DBPath)
	c.Output.Verbosity = getenv("ATTUNE_VERBOSITY", c.Output.Verbosity)
	c.Output.Pretty = getenvBool("ATTUNE_OUTPUT_PRETTY", c.Output.Pretty)
}

// ParseTargets splits a comma-separated output list. "none" and the empty
// string yield no targets.
func ParseTargets(s string) []string {
	targets := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "none" {
			continue
		}
		if !slices.Contains(targets, part) {
			targets = append(targets, part)
		}
	}
	return targets
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty (ATTUNE_ADDR)"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %v", c.ShutdownTimeout))
	}

	switch {
	case !slices.Contains(textBackends, c.Text.Backend):
		errs = append(errs, fmt.Errorf("text backend must be one of %v, got %q", textBackends, c.Text.Backend))
	case c.Text.Backend == "onnx":
		if info, err := os.Stat(c.Text.ModelDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("model dir %q not found (ATTUNE_MODEL_DIR)", c.Text.ModelDir))
		}
		if c.Text.PoolSize < 1 {
			errs = append(errs, fmt.Errorf("pool size must be at least 1, got %d", c.Text.PoolSize))
		}
	}

	if !slices.Contains(faceBackends, c.Face.Backend) {
		errs = append(errs, fmt.Errorf("face backend must be one of %v, got %q", faceBackends, c.Face.Backend))
	}
	if c.Face.Backend == "remote" {
		if err := checkURL(c.Face.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("face endpoint (ATTUNE_FACE_ENDPOINT): %w", err))
		}
	}

	for _, t := range c.Output.Targets {
		if !slices.Contains(outputKinds, t) {
			errs = append(errs, fmt.Errorf("unknown output %q, want one of %v", t, outputKinds))
		}
	}
	if c.Output.Has("file") && c.Output.File == "" {
		errs = append(errs, errors.New("file output requires ATTUNE_OUTPUT_FILE"))
	}
	if c.Output.Has("webhook") {
		if err := checkURL(c.Output.WebhookURL); err != nil {
			errs = append(errs, fmt.Errorf("webhook url (ATTUNE_WEBHOOK_URL): %w", err))
		}
	}
	if c.Output.Has("sqlite") && c.Output.DBPath == "" {
		errs = append(errs, errors.New("sqlite output requires ATTUNE_DB_PATH"))
	}
	if c.Output.Verbosity != "minimal" && c.Output.Verbosity != "standard" {
		errs = append(errs, fmt.Errorf("verbosity must be minimal or standard, got %q", c.Output.Verbosity))
	}

	return errors.Join(errs...)
}

func checkURL(raw string) error {
	if raw == "" {
		return errors.New("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
