package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"github.com/specialistvlad/addongraph/internal/dag"
	"github.com/specialistvlad/addongraph/internal/executor"
	"github.com/specialistvlad/addongraph/internal/manifest"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

// Discover returns every manifest location under the configured paths.
func (a *App) Discover(ctx context.Context) ([]string, error) {
	logger := ctxlog.FromContext(a.Context(ctx))
	locations, err := manifest.DiscoverAll(a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to discover manifests: %w", err)
	}
	logger.Debug("Discovered manifests.", "count", len(locations))
	return locations, nil
}

// Resolve discovers and resolves every manifest under the configured paths.
func (a *App) Resolve(ctx context.Context) (*resolver.Result, error) {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Resolve started.")

	locations, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}

	r := resolver.New(a.reader, resolver.Options{
		ReadConcurrency:     a.config.ReadConcurrency,
		FailOnManifestError: a.config.FailOnManifestError,
		Metrics:             a.metrics,
	})
	res, err := r.Resolve(ctx, locations)
	if err != nil {
		return res, fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	return res, nil
}

// Load resolves the manifests and then loads the ordered addons in parallel
// with load. A nil load uses Activate.
func (a *App) Load(ctx context.Context, load executor.LoadFunc) (*resolver.Result, *executor.Report, error) {
	ctx = a.Context(ctx)

	res, err := a.Resolve(ctx)
	if err != nil {
		return res, nil, err
	}
	if a.config.Strict && res.HasErrors() {
		return res, nil, fmt.Errorf("resolution reported %d error(s)", len(res.Errors()))
	}

	if load == nil {
		load = a.activator(res)
	}
	g, err := LoadGraph(res)
	if err != nil {
		return res, nil, err
	}

	a.logger.Info("Starting parallel load.", "addons", g.Len(), "workers", a.config.WorkerCount)
	exec := executor.New(g, executor.WithWorkers(a.config.WorkerCount), executor.WithMetrics(a.metrics))
	report, err := exec.Run(ctx, load)
	if err != nil {
		return res, report, fmt.Errorf("load failed: %w", err)
	}
	a.logger.Info("Load finished.", "loaded", len(report.Loaded))
	return res, report, nil
}

// LoadGraph builds the graph the loader runs on: only the addons in the
// resolved order, joined by the edges between them. Undeclared and cyclic
// addons never reach the loader.
func LoadGraph(res *resolver.Result) (*dag.Graph, error) {
	g := dag.New()
	ordered := make(map[string]struct{}, len(res.Order))
	for _, id := range res.Order {
		ordered[id] = struct{}{}
		if err := g.AddNode(id); err != nil {
			return nil, err
		}
	}
	for _, id := range res.Order {
		for _, dep := range res.Graph.Dependencies(id) {
			if _, ok := ordered[dep]; !ok {
				continue
			}
			constraint, _ := res.Graph.RequiredVersion(id, dep)
			if err := g.AddDependency(id, dep, constraint); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// activator returns the default LoadFunc. Activating an addon re-reads its
// manifest to make sure it has not changed under the run, then logs it.
func (a *App) activator(res *resolver.Result) executor.LoadFunc {
	return func(ctx context.Context, id string) error {
		logger := ctxlog.FromContext(ctx)
		m, ok := res.Manifests[id]
		if !ok {
			return fmt.Errorf("addon %q has no manifest", id)
		}
		current, err := a.reader.Read(ctx, m.Location)
		if err != nil {
			return err
		}
		if current.Name != m.Name || current.Version != m.Version {
			return fmt.Errorf("manifest for %q changed during the run (now %s %s)", id, current.Name, current.Version)
		}
		logger.Info("Addon activated.", "addon", id, "version", m.Version, "location", m.Location)
		return nil
	}
}
