package domain

import (
	"time"
)

// Config represents the main application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ModelConfig locates the trained scorer artifact.
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// RulesConfig carries overridable clinical thresholds so rule changes ship
// as configuration rather than recompiled logic. Zero values fall back to
// the built-in defaults.
type RulesConfig struct {
	PlateletLow      int     `mapstructure:"platelet_low"`
	PlateletCritical int     `mapstructure:"platelet_critical"`
	SpO2Low          int     `mapstructure:"spo2_low"`
	WBCHigh          int     `mapstructure:"wbc_high"`
	WBCLow           int     `mapstructure:"wbc_low"`
	HbLowFemale      float64 `mapstructure:"hb_low_female"`
	HbLowMale        float64 `mapstructure:"hb_low_male"`
	HbCritical       float64 `mapstructure:"hb_critical"`
	BPHigh           int     `mapstructure:"bp_high"`
	BPCrisis         int     `mapstructure:"bp_crisis"`
	BPLow            int     `mapstructure:"bp_low"`
}

// CacheConfig configures the in-memory result cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Size    int  `mapstructure:"size"`
}

// FeedbackConfig configures the clinician feedback store.
type FeedbackConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// RateLimitConfig configures the per-server request rate limit.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
