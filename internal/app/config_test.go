package app

import (
	"testing"
	"time"

	"github.com/specialistvlad/deploygrid/internal/deployer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{PlanPaths: []string{"plan.hcl"}})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, deployer.KindDryRun, cfg.Deployer)
	assert.Equal(t, OutputText, cfg.OutputFormat)
}

func TestNewConfig_Normalizes(t *testing.T) {
	cfg, err := NewConfig(Config{
		PlanPaths:       []string{"plan.hcl"},
		LogFormat:       "JSON",
		LogLevel:        "Debug",
		OutputFormat:    "Json",
		Deployer:        deployer.KindHTTP,
		DeployerURL:     "http://localhost:8545/deploy",
		DeployerTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, OutputJSON, cfg.OutputFormat)
}

func TestNewConfig_Invalid(t *testing.T) {
	base := func() Config { return Config{PlanPaths: []string{"plan.hcl"}} }
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no plan", func(c *Config) { c.PlanPaths = nil }, "plan path"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log-format"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log-level"},
		{"workers", func(c *Config) { c.WorkerCount = -1 }, "invalid workers"},
		{"port", func(c *Config) { c.HealthcheckPort = 70000 }, "invalid healthcheck-port"},
		{"deployer", func(c *Config) { c.Deployer = "chain" }, "invalid deployer"},
		{"http without url", func(c *Config) { c.Deployer = deployer.KindHTTP }, "deployer-url is required"},
		{"timeout", func(c *Config) { c.DeployerTimeout = -time.Second }, "invalid deployer-timeout"},
		{"resume without state", func(c *Config) { c.ResumeRunID = "abc" }, "resume requires"},
		{"output", func(c *Config) { c.OutputFormat = "yaml" }, "invalid output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := NewConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
