package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/deploygrid/internal/deployer"
)

// Output formats for the run report.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPaths []string // .hcl/.yaml files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int

	Deployer        deployer.Kind
	DeployerURL     string
	DeployerTimeout time.Duration

	StatePath   string // sqlite file; empty disables persistence
	ResumeRunID string

	OutputFormat string
	PlanOnly     bool
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.PlanPaths) == 0 {
		return nil, errors.New("at least one plan path is required")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("invalid workers: %d, must be at least 1", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port: %d", cfg.HealthcheckPort)
	}

	if cfg.Deployer == "" {
		cfg.Deployer = deployer.KindDryRun
	}
	switch cfg.Deployer {
	case deployer.KindDryRun:
	case deployer.KindHTTP:
		if cfg.DeployerURL == "" {
			return nil, errors.New("deployer-url is required with -deployer=http")
		}
	default:
		return nil, fmt.Errorf("invalid deployer: %q, must be 'dryrun' or 'http'", cfg.Deployer)
	}
	if cfg.DeployerTimeout < 0 {
		return nil, errors.New("invalid deployer-timeout: must not be negative")
	}

	if cfg.ResumeRunID != "" && cfg.StatePath == "" {
		return nil, errors.New("resume requires a state database (-state)")
	}

	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = OutputText
	}
	if cfg.OutputFormat != OutputText && cfg.OutputFormat != OutputJSON {
		return nil, errors.New("invalid output: must be 'text' or 'json'")
	}

	return &cfg, nil
}
