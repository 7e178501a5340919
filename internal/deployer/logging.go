package deployer

import (
	"context"
	"time"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/ctxlog"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
)

// Logging records every deployer call with its duration and outcome.
func Logging(next orchestrator.DeployFunc) orchestrator.DeployFunc {
	return func(ctx context.Context, name string, cfg component.Config) (component.Handle, error) {
		logger := ctxlog.FromContext(ctx).With("component", name)
		logger.Debug("Deployer call started.", "params", len(cfg))

		start := time.Now()
		h, err := next(ctx, name, cfg)
		elapsed := time.Since(start)
		if err != nil {
			logger.Debug("Deployer call failed.", "error", err, "elapsed", elapsed)
			return h, err
		}
		logger.Debug("Deployer call finished.", "handle", h.String(), "elapsed", elapsed)
		return h, nil
	}
}
