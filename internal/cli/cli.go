package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/deploygrid/internal/app"
	"github.com/specialistvlad/deploygrid/internal/deployer"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("deploygrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
deploygrid - Deploys interdependent components in dependency order.

Usage:
  deploygrid [options] [PLAN_PATH...]

Arguments:
  PLAN_PATH
    Path to a .hcl, .yaml or .yml plan file, or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	planFlag := flagSet.String("plan", "", "Path to the plan file or directory.")
	pFlag := flagSet.String("p", "", "Path to the plan file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 1, "Number of independent components deployed concurrently.")
	deployerFlag := flagSet.String("deployer", string(deployer.KindDryRun), "Deployer to use. Options: 'dryrun' or 'http'.")
	deployerURLFlag := flagSet.String("deployer-url", "", "Deploy service endpoint for -deployer=http.")
	deployerTimeoutFlag := flagSet.Duration("deployer-timeout", 30*time.Second, "Timeout for one deploy request.")
	stateFlag := flagSet.String("state", "", "SQLite file recording runs. Empty disables persistence.")
	resumeFlag := flagSet.String("resume", "", "ID of a recorded run whose deployed components are reused.")
	outputFlag := flagSet.String("output", app.OutputText, "Report format. Options: 'text' or 'json'.")
	planOnlyFlag := flagSet.Bool("plan-only", false, "Print the deployment order without deploying.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	switch {
	case *planFlag != "":
		paths = append(paths, *planFlag)
	case *pFlag != "":
		paths = append(paths, *pFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Plan paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No plan path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		PlanPaths:       paths,
		LogFormat:       *logFormatFlag,
		LogLevel:        *logLevelFlag,
		HealthcheckPort: *healthPortFlag,
		WorkerCount:     *workersFlag,
		Deployer:        deployer.Kind(*deployerFlag),
		DeployerURL:     *deployerURLFlag,
		DeployerTimeout: *deployerTimeoutFlag,
		StatePath:       *stateFlag,
		ResumeRunID:     *resumeFlag,
		OutputFormat:    *outputFlag,
		PlanOnly:        *planOnlyFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
