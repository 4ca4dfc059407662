package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 20, cfg.Limits.History)
	assert.Equal(t, 50, cfg.Limits.Results)
	assert.Equal(t, 0.7, cfg.Simulation.KeepProbability)
	assert.Equal(t, "simulated", cfg.Pricing.Source)
	assert.Equal(t, "log", cfg.Events.Publisher)
	assert.Equal(t, 500*time.Millisecond, cfg.Scanner.TickInterval)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("PRICING_SOURCE", "html")
	t.Setenv("PRICING_URL_TEMPLATES", "amazon=https://amazon.example/{slug}, target = https://target.example/p/{id},broken")
	t.Setenv("ALERT_CHECK_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, 50, cfg.Limits.History)
	assert.Equal(t, map[string]string{
		"amazon": "https://amazon.example/{slug}",
		"target": "https://target.example/p/{id}",
	}, cfg.Pricing.URLTemplates)
	assert.Equal(t, 5*time.Minute, cfg.Events.CheckInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad port", env: map[string]string{"PORT": "70000"}},
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "mongo"}},
		{name: "zero history", env: map[string]string{"HISTORY_LIMIT": "0"}},
		{name: "inverted delay", env: map[string]string{"SIMULATION_MIN_DELAY": "5s", "SIMULATION_MAX_DELAY": "1s"}},
		{name: "keep probability", env: map[string]string{"SCANNER_KEEP_PROBABILITY": "1.5"}},
		{name: "html without templates", env: map[string]string{"PRICING_SOURCE": "html"}},
		{name: "unknown publisher", env: map[string]string{"EVENTS_PUBLISHER": "kafka"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "shop", Password: "p@ss", Name: "shoplens", SSLMode: "disable"}
	assert.Equal(t, "postgres://shop:p%40ss@db:5432/shoplens?sslmode=disable", d.DSN())
}
