package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/deploygrid/internal/app"
	"github.com/specialistvlad/deploygrid/internal/deployer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse([]string{"plan.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	want := &app.Config{
		PlanPaths:       []string{"plan.hcl"},
		LogFormat:       "text",
		LogLevel:        "info",
		WorkerCount:     1,
		Deployer:        deployer.KindDryRun,
		DeployerTimeout: 30 * time.Second,
		OutputFormat:    app.OutputText,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_AllFlags(t *testing.T) {
	cfg, exit, err := Parse([]string{
		"-p", "plans/",
		"-workers", "4",
		"-log-format", "json",
		"-log-level", "debug",
		"-deployer", "http",
		"-deployer-url", "http://localhost:9000/deploy",
		"-deployer-timeout", "5s",
		"-state", "runs.db",
		"-resume", "run-1",
		"-output", "json",
		"-healthcheck-port", "9090",
		"extra.yaml",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, []string{"plans/", "extra.yaml"}, cfg.PlanPaths)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, deployer.KindHTTP, cfg.Deployer)
	assert.Equal(t, "http://localhost:9000/deploy", cfg.DeployerURL)
	assert.Equal(t, 5*time.Second, cfg.DeployerTimeout)
	assert.Equal(t, "runs.db", cfg.StatePath)
	assert.Equal(t, "run-1", cfg.ResumeRunID)
	assert.Equal(t, app.OutputJSON, cfg.OutputFormat)
	assert.Equal(t, 9090, cfg.HealthcheckPort)
	assert.False(t, cfg.PlanOnly)
}

func TestParse_PlanFlagWins(t *testing.T) {
	cfg, _, err := Parse([]string{"-plan", "a.hcl", "-p", "b.hcl", "-plan-only"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.hcl"}, cfg.PlanPaths)
	assert.True(t, cfg.PlanOnly)
}

func TestParse_UsageWhenNoPlan(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	_, exit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Contains(t, out.String(), "-deployer-url")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
		{"bad log level", []string{"-log-level", "trace", "plan.hcl"}, "invalid log-level"},
		{"http without url", []string{"-deployer", "http", "plan.hcl"}, "deployer-url is required"},
		{"resume without state", []string{"-resume", "x", "plan.hcl"}, "resume requires"},
		{"bad workers", []string{"-workers", "-2", "plan.hcl"}, "invalid workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}
