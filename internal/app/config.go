package app

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/services"
	"github.com/skyvolt/aeroscope-backend/internal/utils"
)

type Config struct {
	JWTSecretKey       string
	Retry              services.RetryConfig
	RateLimitPerMinute int
}

// pipelineFile is the optional YAML tuning file. Env vars cover secrets and
// connection details; the file covers operator-tuned pipeline knobs.
type pipelineFile struct {
	Retry struct {
		MaxRetries          *int     `yaml:"max_retries"`
		InitialDelaySeconds *int     `yaml:"initial_delay_seconds"`
		MaxDelaySeconds     *int     `yaml:"max_delay_seconds"`
		BackoffMultiplier   *float64 `yaml:"backoff_multiplier"`
	} `yaml:"retry"`
	RateLimit struct {
		RequestsPerMinute *int `yaml:"requests_per_minute"`
	} `yaml:"rate_limit"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		JWTSecretKey:       utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		Retry:              services.DefaultRetryConfig(),
		RateLimitPerMinute: utils.GetEnvAsInt("RATE_LIMIT_PER_MINUTE", 30, log),
	}

	path := utils.GetEnv("PIPELINE_CONFIG_PATH", "", log)
	if path == "" {
		return cfg
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Pipeline config file unreadable, using defaults", "path", path, "error", err)
		return cfg
	}
	var file pipelineFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		log.Warn("Pipeline config file unparseable, using defaults", "path", path, "error", err)
		return cfg
	}

	if file.Retry.MaxRetries != nil && *file.Retry.MaxRetries >= 0 {
		cfg.Retry.MaxRetries = *file.Retry.MaxRetries
	}
	if file.Retry.InitialDelaySeconds != nil && *file.Retry.InitialDelaySeconds > 0 {
		cfg.Retry.InitialDelay = time.Duration(*file.Retry.InitialDelaySeconds) * time.Second
	}
	if file.Retry.MaxDelaySeconds != nil && *file.Retry.MaxDelaySeconds > 0 {
		cfg.Retry.MaxDelay = time.Duration(*file.Retry.MaxDelaySeconds) * time.Second
	}
	if file.Retry.BackoffMultiplier != nil && *file.Retry.BackoffMultiplier >= 1 {
		cfg.Retry.BackoffMultiplier = *file.Retry.BackoffMultiplier
	}
	if file.RateLimit.RequestsPerMinute != nil && *file.RateLimit.RequestsPerMinute > 0 {
		cfg.RateLimitPerMinute = *file.RateLimit.RequestsPerMinute
	}

	log.Info("Pipeline config file applied", "path", path)
	return cfg
}
