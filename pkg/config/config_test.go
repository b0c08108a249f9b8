package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redline-eval/redline/pkg/judge"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Judge.RuleWeight != 0.7 || cfg.Judge.JudgeWeight != 0.3 {
		t.Errorf("expected default weights 0.7/0.3, got %v/%v", cfg.Judge.RuleWeight, cfg.Judge.JudgeWeight)
	}
	if cfg.Judge.Timeout != 30 {
		t.Errorf("expected default timeout 30, got %d", cfg.Judge.Timeout)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("expected local storage, got %q", cfg.Storage.Backend)
	}
	if !strings.HasSuffix(cfg.Storage.LocalPath, filepath.Join("redline", "artifacts")) {
		t.Errorf("unexpected local path %q", cfg.Storage.LocalPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "non-existent file returns defaults",
			yaml: "", // signal: don't create a file
			check: func(t *testing.T, cfg *Config) {
				if cfg.Judge.Timeout != 30 {
					t.Errorf("expected default timeout 30, got %d", cfg.Judge.Timeout)
				}
				if cfg.Log.Level != "info" {
					t.Errorf("expected default log level, got %q", cfg.Log.Level)
				}
			},
		},
		{
			name: "valid YAML overrides defaults",
			yaml: `
judge:
  rule_weight: 0.6
  judge_weight: 0.4
  timeout: 5
  model: gpt-4o
arena:
  retries: 0
  evaluator_url: http://localhost:9000
server:
  port: "9090"
  rate_limit: 2.5
storage:
  backend: s3
  bucket: narratives
  region: us-east-1
log:
  level: debug
  format: console
`,
			check: func(t *testing.T, cfg *Config) {
				jc := cfg.JudgeConfig()
				if jc.RuleWeight != 0.6 || jc.JudgeWeight != 0.4 {
					t.Errorf("expected weights 0.6/0.4, got %v/%v", jc.RuleWeight, jc.JudgeWeight)
				}
				if jc.Timeout != 5*time.Second {
					t.Errorf("expected timeout 5s, got %v", jc.Timeout)
				}
				if cfg.OpenAIConfig("k").Model != "gpt-4o" {
					t.Errorf("expected model gpt-4o, got %q", cfg.Judge.Model)
				}
				if cfg.Arena.Retries != 0 || cfg.Arena.EvaluatorURL != "http://localhost:9000" {
					t.Errorf("unexpected arena config %+v", cfg.Arena)
				}
				if cfg.Server.Port != "9090" || cfg.Server.RateLimit != 2.5 {
					t.Errorf("unexpected server config %+v", cfg.Server)
				}
				if cfg.Storage.Bucket != "narratives" {
					t.Errorf("expected bucket narratives, got %q", cfg.Storage.Bucket)
				}
				if cfg.Log.Format != "console" {
					t.Errorf("expected console format, got %q", cfg.Log.Format)
				}
			},
		},
		{
			name:    "invalid YAML returns error",
			yaml:    "{{invalid yaml",
			wantErr: true,
		},
		{
			name:    "weights must sum to one",
			yaml:    "judge:\n  rule_weight: 0.5\n  judge_weight: 0.2\n",
			wantErr: true,
		},
		{
			name:    "cloud backend needs bucket",
			yaml:    "storage:\n  backend: gcs\n",
			wantErr: true,
		},
		{
			name:    "unknown backend",
			yaml:    "storage:\n  backend: ftp\n",
			wantErr: true,
		},
		{
			name:    "unknown log format",
			yaml:    "log:\n  format: xml\n",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")

			if tc.yaml == "" {
				// Don't create file - test loading non-existent path
				cfg, err := Load(path)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				tc.check(t, cfg)
				return
			}

			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatalf("write test config: %v", err)
			}

			cfg, err := Load(path)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

func TestRuleSet(t *testing.T) {
	cfg := DefaultConfig()
	rs, err := cfg.RuleSet()
	if err != nil {
		t.Fatalf("embedded rules: %v", err)
	}
	if rs.RoutineEngineering.MaxPenalty != 30 {
		t.Errorf("expected embedded routine cap 30, got %d", rs.RoutineEngineering.MaxPenalty)
	}

	cfg.Scoring.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.Engine(); err == nil {
		t.Error("expected error for missing rules file")
	}
}

func TestNewJudge(t *testing.T) {
	cfg := DefaultConfig()
	j, err := cfg.NewJudge("", nil)
	if err != nil {
		t.Fatalf("NewJudge: %v", err)
	}
	fb, ok := j.Score(context.Background(), "narrative", 0.6).(judge.Fallback)
	if !ok {
		t.Fatal("expected fallback without an API key")
	}
	if fb.Reason != judge.ReasonNoCredential {
		t.Errorf("reason = %q, want %q", fb.Reason, judge.ReasonNoCredential)
	}

	cfg.Judge.RuleWeight = 0.9
	if _, err := cfg.NewJudge("", nil); err == nil {
		t.Error("expected error for weights not summing to 1")
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("found in current directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".redline")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		got := FindConfigFile(root)
		if got != configPath {
			t.Errorf("FindConfigFile = %q, want %q", got, configPath)
		}
	})

	t.Run("found in parent directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".redline")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		sub := filepath.Join(root, "a", "b", "c")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("create sub: %v", err)
		}

		got := FindConfigFile(sub)
		if got != configPath {
			t.Errorf("FindConfigFile = %q, want %q", got, configPath)
		}
	})

	t.Run("not found", func(t *testing.T) {
		root := t.TempDir()
		got := FindConfigFile(root)
		if got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}
