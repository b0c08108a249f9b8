// Package config handles loading and managing redline configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/scoring"
)

// Config is the top-level configuration for redline.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Judge   JudgeConfig   `yaml:"judge"`
	Arena   ArenaConfig   `yaml:"arena"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ScoringConfig controls the rule tables.
type ScoringConfig struct {
	RulesFile string `yaml:"rules_file"` // empty uses the embedded rules
}

// JudgeConfig controls the hybrid judge. The API key is never read from
// this file; commands resolve it from the environment.
type JudgeConfig struct {
	RuleWeight  float64 `yaml:"rule_weight"`
	JudgeWeight float64 `yaml:"judge_weight"`
	Timeout     int     `yaml:"timeout"` // seconds
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Seed        int     `yaml:"seed"`
}

// ArenaConfig controls the refinement loop.
type ArenaConfig struct {
	Retries      int    `yaml:"retries"`
	Backoff      int    `yaml:"backoff_ms"`
	Model        string `yaml:"model"`
	EvaluatorURL string `yaml:"evaluator_url"` // empty evaluates in process
}

// ServerConfig controls the HTTP daemon.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	RateLimit      float64  `yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst      int      `yaml:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig selects the artifact store backend.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, s3 or gcs
	LocalPath string `yaml:"local_path"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible endpoint override
}

// LogConfig controls logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`   // optional rotated log file
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	jc := judge.DefaultConfig()
	return &Config{
		Judge: JudgeConfig{
			RuleWeight:  jc.RuleWeight,
			JudgeWeight: jc.JudgeWeight,
			Timeout:     int(jc.Timeout / time.Second),
			Model:       judge.DefaultModel,
		},
		Arena: ArenaConfig{
			Retries: 2,
			Backoff: 500,
			Model:   judge.DefaultModel,
		},
		Server: ServerConfig{
			Port:      "8080",
			RateBurst: 10,
		},
		Storage: StorageConfig{
			Backend:   "local",
			LocalPath: filepath.Join(DataDir(), "artifacts"),
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if err := c.JudgeConfig().Validate(); err != nil {
		return fmt.Errorf("judge: %w", err)
	}
	switch c.Storage.Backend {
	case "local":
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage: %s backend requires a bucket", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Storage.Backend)
	}
	if c.Arena.Retries < 0 {
		return fmt.Errorf("arena: retries must not be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	return nil
}

// JudgeConfig returns the blend settings for judge.New.
func (c *Config) JudgeConfig() judge.Config {
	return judge.Config{
		RuleWeight:  c.Judge.RuleWeight,
		JudgeWeight: c.Judge.JudgeWeight,
		Timeout:     time.Duration(c.Judge.Timeout) * time.Second,
	}
}

// OpenAIConfig returns the chat endpoint settings with the given key.
func (c *Config) OpenAIConfig(apiKey string) judge.OpenAIConfig {
	return judge.OpenAIConfig{
		APIKey:  apiKey,
		Model:   c.Judge.Model,
		BaseURL: c.Judge.BaseURL,
		Seed:    c.Judge.Seed,
	}
}

// NewJudge builds the hybrid judge. Without an API key the judge has no
// scorer and every call falls back to the rule score.
func (c *Config) NewJudge(apiKey string, logger *zap.Logger) (*judge.Judge, error) {
	rs, err := c.RuleSet()
	if err != nil {
		return nil, err
	}

	var scorer judge.Scorer
	s, err := judge.NewOpenAIScorer(c.OpenAIConfig(apiKey), rs)
	switch {
	case errors.Is(err, judge.ErrNoCredential):
	case err != nil:
		return nil, err
	default:
		scorer = s
	}
	return judge.New(scorer, c.JudgeConfig(), judge.WithLogger(logger))
}

// RuleSet loads the configured rule file, or the embedded rules when none
// is set.
func (c *Config) RuleSet() (*scoring.RuleSet, error) {
	if c.Scoring.RulesFile == "" {
		return scoring.DefaultRules(), nil
	}
	return scoring.LoadRules(c.Scoring.RulesFile)
}

// Engine builds a scoring engine over RuleSet.
func (c *Config) Engine() (*scoring.Engine, error) {
	rs, err := c.RuleSet()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngineFromRules(rs)
}

// FindConfigFile looks for .redline/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".redline", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// DataDir returns the per-user data directory, ~/.local/share/redline.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "share", "redline")
}
