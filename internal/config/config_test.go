package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinical-dss-server/internal/domain"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "configs/clinical_model.json", cfg.Model.Path)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 512, cfg.Cache.Size)
	assert.Equal(t, "data/feedback.db", cfg.Feedback.DBPath)
	assert.Equal(t, 25.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 50, cfg.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CDSS_SERVER_PORT", "9090")
	t.Setenv("CDSS_LOGGING_LEVEL", "debug")
	t.Setenv("CDSS_MODEL_PATH", "/opt/models/clinical.json")

	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/opt/models/clinical.json", cfg.Model.Path)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *domain.Config)
		wantErr bool
	}{
		{"defaults pass", func(cfg *domain.Config) {}, false},
		{"zero port", func(cfg *domain.Config) { cfg.Server.Port = 0 }, true},
		{"port too large", func(cfg *domain.Config) { cfg.Server.Port = 70000 }, true},
		{"empty model path", func(cfg *domain.Config) { cfg.Model.Path = "" }, true},
		{"enabled cache needs size", func(cfg *domain.Config) { cfg.Cache.Size = 0 }, true},
		{"disabled cache skips size check", func(cfg *domain.Config) {
			cfg.Cache.Enabled = false
			cfg.Cache.Size = 0
		}, false},
		{"zero rate limit", func(cfg *domain.Config) { cfg.RateLimit.RequestsPerSecond = 0 }, true},
		{"zero burst", func(cfg *domain.Config) { cfg.RateLimit.Burst = 0 }, true},
		{"bad log format", func(cfg *domain.Config) { cfg.Logging.Format = "xml" }, true},
		{"text log format", func(cfg *domain.Config) { cfg.Logging.Format = "text" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager()
			require.NoError(t, err)
			tt.mutate(m.GetConfig())

			err = m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(domain.LoggingConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = NewLogger(domain.LoggingConfig{Level: "warn", Format: "json"})
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	// Unknown level falls back to info.
	logger = NewLogger(domain.LoggingConfig{Level: "verbose", Format: "json"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
