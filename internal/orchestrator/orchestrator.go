package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/ctxlog"
	"github.com/specialistvlad/deploygrid/internal/funcs"
	"github.com/specialistvlad/deploygrid/internal/registry"
	"github.com/specialistvlad/deploygrid/internal/resolver"
	"github.com/zclconf/go-cty/cty/function"
	"golang.org/x/sync/errgroup"
)

// DeployFunc deploys one component with its resolved configuration and
// returns the resulting handle. It is supplied by the caller; the
// orchestrator never talks to a network itself.
type DeployFunc func(ctx context.Context, name string, cfg component.Config) (component.Handle, error)

// Observer is notified around every deploy call.
type Observer interface {
	DeployStarted(name string)
	DeployFinished(name string, elapsed time.Duration, err error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers allows up to n independent components of a plan level to be
// deployed concurrently. Values below 2 keep deployment sequential.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithResolved supplies handles from an earlier run. Matching components are
// reported as reused and not deployed again.
func WithResolved(handles map[string]component.Handle) Option {
	return func(o *Orchestrator) {
		o.resolved = make(map[string]component.Handle, len(handles))
		for name, h := range handles {
			o.resolved[name] = h
		}
	}
}

// WithObserver installs deploy hooks, e.g. metrics.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithFunctions replaces the functions available to template expressions.
func WithFunctions(table map[string]function.Function) Option {
	return func(o *Orchestrator) { o.funcs = table }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.runID = id }
}

// Orchestrator runs deployments. It holds configuration only; every Run
// gets its own registry.
type Orchestrator struct {
	workers  int
	resolved map[string]component.Handle
	observer Observer
	now      func() time.Time
	funcs    map[string]function.Function
	runID    string
}

// New returns an Orchestrator with the given options applied.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		workers: 1,
		now:     time.Now,
		funcs:   funcs.Table(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run resolves and deploys descriptors. On failure the partial report is
// returned along with the error that stopped the run: *ResolutionError,
// *DeployError, *ConfigError, *InvariantError or the context's error.
func (o *Orchestrator) Run(ctx context.Context, descriptors []component.Descriptor, deploy DeployFunc) (*Report, error) {
	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	report := &Report{RunID: runID, State: StatePending, Started: o.now()}
	defer func() { report.Finished = o.now() }()
	report.advance(StateResolving)

	plan, err := resolver.Resolve(descriptors)
	if err != nil {
		report.advance(StateResolutionFailed)
		logger.Error("Deployment plan could not be resolved.", "error", err)
		return report, &ResolutionError{Err: err}
	}
	report.Plan = plan
	logger.Info("Deployment plan resolved.", "components", plan.Len(), "order", plan.Order())

	r := &run{
		o:       o,
		plan:    plan,
		deploy:  deploy,
		byName:  make(map[string]component.Descriptor, len(descriptors)),
		reused:  make(map[string]bool),
		entries: make(map[string]Entry, plan.Len()),
	}
	for _, d := range descriptors {
		r.byName[d.Name] = d
	}

	for name := range o.resolved {
		if _, ok := r.byName[name]; !ok {
			logger.Warn("Ignoring pre-resolved handle for a component outside the plan.", "component", name)
		}
	}
	// A handle is reusable only if every dependency is reused too; otherwise
	// its config would point at a handle this run replaces.
	seed := make(map[string]component.Handle)
	for _, name := range plan.Order() {
		h, ok := o.resolved[name]
		if !ok {
			continue
		}
		if dep, fresh := firstFreshDependency(plan, name, r.reused); fresh {
			logger.Warn("Redeploying pre-resolved component because a dependency is deployed again.", "component", name, "dependency", dep)
			continue
		}
		seed[name] = h
		r.reused[name] = true
	}
	r.reg = registry.NewFrom(seed)
	report.Registry = r.reg

	report.advance(StateDeploying)
	if o.workers > 1 {
		err = r.runLevels(ctx)
	} else {
		err = r.runSequential(ctx)
	}
	report.Entries = r.sortedEntries()

	if err != nil {
		report.advance(StateDeployFailed)
		logger.Error("Deployment run failed.", "error", err, "succeeded", len(report.Succeeded()))
		return report, err
	}
	report.advance(StateComplete)
	logger.Info("Deployment run complete.", "components", len(report.Entries))
	return report, nil
}

// run is the mutable state of one Run call.
type run struct {
	o      *Orchestrator
	plan   *resolver.Plan
	deploy DeployFunc
	byName map[string]component.Descriptor
	reused map[string]bool
	reg    *registry.Registry

	mu      sync.Mutex
	seq     int
	entries map[string]Entry
}

func (r *run) runSequential(ctx context.Context) error {
	for _, name := range r.plan.Order() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled before %q: %w", name, err)
		}
		if err := r.deployOne(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// runLevels deploys level by level. Siblings in one level share no edge, so
// their configs only depend on handles recorded by earlier levels.
func (r *run) runLevels(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var stopped atomic.Bool

	for depth, level := range r.plan.Levels() {
		logger.Debug("Starting plan level.", "level", depth, "components", level)

		g := new(errgroup.Group)
		g.SetLimit(r.o.workers)
		for _, name := range level {
			if stopped.Load() {
				break
			}
			g.Go(func() error {
				if stopped.Load() {
					return nil
				}
				if err := ctx.Err(); err != nil {
					stopped.Store(true)
					return fmt.Errorf("run cancelled before %q: %w", name, err)
				}
				if err := r.deployOne(ctx, name); err != nil {
					stopped.Store(true)
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) deployOne(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx).With("component", name)

	if r.reused[name] {
		h, err := r.reg.Lookup(name)
		if err != nil {
			return r.fail(ctx, name, nil, time.Time{}, &InvariantError{Component: name, Err: err})
		}
		logger.Info("Reusing previously deployed component.", "handle", h)
		r.record(Entry{Name: name, Status: StatusReused, Handle: h})
		return nil
	}

	handles := make(map[string]component.Handle)
	for _, dep := range r.plan.Dependencies(name) {
		h, err := r.reg.Lookup(dep)
		if err != nil {
			return r.fail(ctx, name, nil, time.Time{}, &InvariantError{Component: name, Err: err})
		}
		handles[dep] = h
	}

	cfg, err := r.byName[name].Template.Resolve(handles, r.o.funcs)
	if err != nil {
		return r.fail(ctx, name, nil, time.Time{}, &ConfigError{Component: name, Err: err})
	}

	logger.Info("Deploying component.", "dependencies", len(handles))
	if r.o.observer != nil {
		r.o.observer.DeployStarted(name)
	}
	started := r.o.now()
	h, err := r.deploy(ctx, name, cfg)
	if err == nil && h == "" {
		err = &DeployError{Reason: "deployer returned an empty handle"}
	}
	if r.o.observer != nil {
		r.o.observer.DeployFinished(name, r.o.now().Sub(started), err)
	}
	if err != nil {
		return r.fail(ctx, name, cfg, started, wrapDeployError(name, err))
	}

	if err := r.reg.Record(name, h); err != nil {
		return r.fail(ctx, name, cfg, started, &InvariantError{Component: name, Err: err})
	}
	r.record(Entry{
		Name:     name,
		Status:   StatusDeployed,
		Handle:   h,
		Config:   cfg,
		Started:  started,
		Finished: r.o.now(),
	})
	logger.Info("Component deployed.", "handle", h)
	return nil
}

func (r *run) fail(ctx context.Context, name string, cfg component.Config, started time.Time, err error) error {
	ctxlog.FromContext(ctx).Error("Component failed.", "component", name, "error", err)
	r.record(Entry{
		Name:     name,
		Status:   StatusFailed,
		Err:      err,
		Config:   cfg,
		Started:  started,
		Finished: r.o.now(),
	})
	return err
}

func (r *run) record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e.Sequence = r.seq
	r.entries[e.Name] = e
}

func (r *run) sortedEntries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, _ := r.plan.Index(out[i].Name)
		pj, _ := r.plan.Index(out[j].Name)
		return pi < pj
	})
	return out
}

// firstFreshDependency returns a dependency of name that is not reused.
func firstFreshDependency(plan *resolver.Plan, name string, reused map[string]bool) (string, bool) {
	for _, dep := range plan.Dependencies(name) {
		if !reused[dep] {
			return dep, true
		}
	}
	return "", false
}

func wrapDeployError(name string, err error) error {
	var de *DeployError
	if errors.As(err, &de) {
		out := *de
		out.Component = name
		// Keep the outer context when the deployer wrapped its DeployError.
		if error(de) != err {
			out.Err = err
		}
		return &out
	}
	return &DeployError{Component: name, Reason: err.Error(), Err: err}
}
