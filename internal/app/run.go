package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/ctxlog"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
	"github.com/specialistvlad/deploygrid/internal/planfile"
	"github.com/specialistvlad/deploygrid/internal/resolver"
	"github.com/specialistvlad/deploygrid/internal/statestore"
)

// Run loads the plan, deploys it and writes the report. The returned error
// is non-nil when the run did not complete.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	logger := a.logger
	logger.Debug("App.Run method started.")

	if err := a.startHealthCheckServer(); err != nil {
		return err
	}
	defer func() {
		if cerr := a.closeHealthCheckServer(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	descriptors, err := planfile.Load(ctx, a.config.PlanPaths...)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	logger.Info("Plan loaded.", "components", len(descriptors))

	if a.config.PlanOnly {
		plan, err := resolver.Resolve(descriptors)
		if err != nil {
			return fmt.Errorf("failed to resolve plan: %w", err)
		}
		return a.writePlan(plan)
	}

	var store *statestore.Store
	if a.config.StatePath != "" {
		store, err = statestore.Open(a.config.StatePath)
		if err != nil {
			return fmt.Errorf("failed to open state database: %w", err)
		}
		defer store.Close()
		logger.Debug("State database opened.", "path", a.config.StatePath)
	}

	opts := []orchestrator.Option{
		orchestrator.WithWorkers(a.config.WorkerCount),
		orchestrator.WithObserver(a.metrics),
	}
	if a.config.ResumeRunID != "" {
		resolved, err := a.loadResume(ctx, store, descriptors)
		if err != nil {
			return err
		}
		opts = append(opts, orchestrator.WithResolved(resolved))
	}

	logger.Info("Starting deployment run.", "workers", a.config.WorkerCount, "deployer", a.config.Deployer)
	report, runErr := orchestrator.New(opts...).Run(ctx, descriptors, a.deploy)
	a.metrics.RunFinished(report.State)

	if store != nil {
		if err := store.SaveReport(ctx, report); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to save run %s: %w", report.RunID, err))
		}
		logger.Debug("Run saved.", "run_id", report.RunID)
	}

	if err := a.writeReport(report); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return fmt.Errorf("deployment failed: %w", runErr)
	}
	logger.Debug("App.Run method finished.")
	return nil
}

// loadResume returns the handles known to an earlier run.
func (a *App) loadResume(ctx context.Context, store *statestore.Store, descriptors []component.Descriptor) (map[string]component.Handle, error) {
	logger := ctxlog.FromContext(ctx)

	prev, err := store.GetRun(ctx, a.config.ResumeRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run to resume: %w", err)
	}
	if plan, err := resolver.Resolve(descriptors); err == nil && prev.PlanHash != "" && plan.Hash() != prev.PlanHash {
		logger.Warn("Plan changed since the resumed run.", "resume_run_id", prev.ID)
	}

	resolved, err := store.LoadResolved(ctx, prev.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run to resume: %w", err)
	}
	logger.Info("Resuming run.", "resume_run_id", prev.ID, "state", prev.State, "reused", len(resolved))
	return resolved, nil
}
