// Package resolver turns a set of addon manifests into a load order.
//
// Resolution never aborts on bad input: unreadable manifests, unknown
// dependencies, version mismatches and cycles are all reported as
// Diagnostics alongside whatever order could be computed. Only an empty
// graph, a cancelled context or, when requested, a manifest error fails the
// whole batch.
package resolver

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"github.com/specialistvlad/addongraph/internal/manifest"
	"github.com/specialistvlad/addongraph/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Options tunes a Resolver.
type Options struct {
	// ReadConcurrency caps parallel manifest reads; 0 uses GOMAXPROCS.
	ReadConcurrency int
	// FailOnManifestError makes a single unreadable manifest fail the batch
	// instead of being reported and skipped.
	FailOnManifestError bool
	// Metrics receives resolution metrics; nil disables them.
	Metrics *metrics.Recorder
}

// Resolver reads manifests and orders the addons they declare.
type Resolver struct {
	reader manifest.Reader
	opts   Options
}

// New creates a Resolver reading through reader. Only the first opts value
// is used.
func New(reader manifest.Reader, opts ...Options) *Resolver {
	r := &Resolver{reader: reader}
	if len(opts) > 0 {
		r.opts = opts[0]
	}
	if r.opts.ReadConcurrency <= 0 {
		r.opts.ReadConcurrency = runtime.GOMAXPROCS(0)
	}
	return r
}

// ResolveDependencies resolves the manifests at locations with the default
// file reader.
func ResolveDependencies(ctx context.Context, locations []string) (*Result, error) {
	return New(manifest.NewFileReader()).Resolve(ctx, locations)
}

// Resolve reads a manifest from every location and resolves them together.
// Manifests are read concurrently but keep the order of locations.
func (r *Resolver) Resolve(ctx context.Context, locations []string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading manifests.", "count", len(locations), "concurrency", r.opts.ReadConcurrency)

	manifests := make([]*manifest.Manifest, len(locations))
	readErrs := make([]error, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ReadConcurrency)
	for i, loc := range locations {
		i, loc := i, loc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := r.reader.Read(gctx, loc)
			if err != nil {
				if r.opts.FailOnManifestError {
					return manifestError(loc, err)
				}
				readErrs[i] = err
				return nil
			}
			manifests[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var diags []Diagnostic
	read := make([]*manifest.Manifest, 0, len(manifests))
	for i, m := range manifests {
		if readErrs[i] != nil {
			logger.Warn("Skipping unreadable manifest.", "location", locations[i], "error", readErrs[i])
			diags = append(diags, Diagnostic{
				Kind:     ManifestError,
				Severity: SeverityError,
				Location: locations[i],
				Message:  readErrs[i].Error(),
				Err:      manifestError(locations[i], readErrs[i]),
			})
			continue
		}
		if m != nil {
			read = append(read, m)
		}
	}
	return r.resolve(ctx, read, diags)
}

// ResolveManifests resolves manifests that were already read.
func (r *Resolver) ResolveManifests(ctx context.Context, manifests []*manifest.Manifest) (*Result, error) {
	return r.resolve(ctx, manifests, nil)
}

func (r *Resolver) resolve(ctx context.Context, manifests []*manifest.Manifest, diags []Diagnostic) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	b := newBuilder(diags)
	b.declare(manifests)
	res := &Result{Graph: b.graph, Manifests: b.declared, Diagnostics: b.diags}

	if b.graph.Len() == 0 {
		r.record(res, time.Since(start), metrics.OutcomeError)
		logger.Warn("Nothing to resolve.", "diagnostics", len(res.Diagnostics))
		return res, ErrEmptyGraph
	}

	b.link()
	b.sort()
	res.Order = b.order
	res.Diagnostics = b.diags

	outcome := metrics.OutcomeOK
	if len(res.Order) < len(b.declared) || res.HasErrors() {
		outcome = metrics.OutcomePartial
	}
	r.record(res, time.Since(start), outcome)
	for _, d := range res.Diagnostics {
		logger.Debug("Resolution diagnostic.", "kind", d.Kind, "severity", d.Severity, "node", d.Node, "message", d.Message)
	}
	logger.Info("Resolution complete.",
		"declared", len(b.declared),
		"ordered", len(res.Order),
		"errors", len(res.Errors()),
		"warnings", len(res.Warnings()),
	)
	return res, nil
}

func (r *Resolver) record(res *Result, d time.Duration, outcome string) {
	if r.opts.Metrics == nil {
		return
	}
	r.opts.Metrics.ObserveResolution(d, outcome, res.Graph.Len())
	for _, diag := range res.Diagnostics {
		r.opts.Metrics.CountDiagnostic(string(diag.Kind), diag.Severity.String())
	}
}

func manifestError(location string, err error) error {
	var me *manifest.Error
	if errors.As(err, &me) {
		return err
	}
	return &manifest.Error{Location: location, Err: err}
}
