package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "arrear.db", cfg.DB)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.ReferenceFile)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORSOrigins)
	assert.Equal(t, 720*time.Hour, cfg.Retention)
	assert.Equal(t, arrear.DefaultPolicy(), cfg.Policy())
	assert.Equal(t, arrear.DefaultMaxMonths, cfg.MaxMonths)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ARREAR_ADDR", ":9090")
	t.Setenv("ARREAR_DB", ":memory:")
	t.Setenv("ARREAR_LOG_FORMAT", "console")
	t.Setenv("ARREAR_CORS_ORIGINS", "https://payroll.example")
	t.Setenv("ARREAR_RETENTION", "0")
	t.Setenv("ARREAR_SUPPRESS_INCREMENT_ON_PROMOTION", "false")
	t.Setenv("ARREAR_INCREMENT_TIMING", "after_pay")
	t.Setenv("ARREAR_MAX_MONTHS", "120")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, ":memory:", cfg.DB)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, []string{"https://payroll.example"}, cfg.CORSOrigins)
	assert.Zero(t, cfg.Retention)
	assert.Equal(t, arrear.Policy{SuppressIncrementOnPromotion: false, IncrementTiming: arrear.IncrementAfterPay}, cfg.Policy())
	assert.Equal(t, 120, cfg.MaxMonths)
}

func TestConfig_EngineOptions(t *testing.T) {
	t.Setenv("ARREAR_MAX_MONTHS", "12")
	t.Setenv("ARREAR_INCREMENT_TIMING", "after_pay")
	cfg, err := config.Load()
	require.NoError(t, err)

	e := arrear.NewEngine(nil, nil, cfg.EngineOptions()...)

	assert.Equal(t, 12, e.MaxMonths())
	assert.Equal(t, arrear.IncrementAfterPay, e.Policy().IncrementTiming)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "ARREAR_READ_TIMEOUT", "soon"},
		{"negative rate limit", "ARREAR_RATE_LIMIT", "-1"},
		{"unknown timing", "ARREAR_INCREMENT_TIMING", "sometimes"},
		{"unknown log format", "ARREAR_LOG_FORMAT", "xml"},
		{"zero interval", "ARREAR_RETENTION_INTERVAL", "0s"},
		{"zero max months", "ARREAR_MAX_MONTHS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
