package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_PATH", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")

	cfg := LoadConfig(logger.NewNop())
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.InitialDelay != time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Fatalf("unexpected rate limit default: %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadConfig_FileOverridesRetryAndRateLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	body := `retry:
  max_retries: 5
  initial_delay_seconds: 2
  max_delay_seconds: 20
  backoff_multiplier: 3
rate_limit:
  requests_per_minute: 10
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG_PATH", path)

	cfg := LoadConfig(logger.NewNop())
	if cfg.Retry.MaxRetries != 5 || cfg.Retry.InitialDelay != 2*time.Second || cfg.Retry.MaxDelay != 20*time.Second {
		t.Fatalf("file overrides not applied: %+v", cfg.Retry)
	}
	if cfg.Retry.BackoffMultiplier != 3 {
		t.Fatalf("backoff multiplier not applied: %v", cfg.Retry.BackoffMultiplier)
	}
	if cfg.RateLimitPerMinute != 10 {
		t.Fatalf("rate limit not applied: %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadConfig_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte("retry:\n  max_retries: 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG_PATH", path)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")

	cfg := LoadConfig(logger.NewNop())
	if cfg.Retry.MaxRetries != 1 {
		t.Fatalf("override not applied: %+v", cfg.Retry)
	}
	if cfg.Retry.MaxDelay != 10*time.Second || cfg.RateLimitPerMinute != 30 {
		t.Fatalf("untouched fields must keep defaults: %+v", cfg)
	}
}

func TestLoadConfig_UnreadableFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := LoadConfig(logger.NewNop())
	if cfg.Retry.MaxRetries != 3 {
		t.Fatalf("expected defaults on unreadable file: %+v", cfg.Retry)
	}
}
