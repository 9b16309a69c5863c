package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eugenenazirov/servicekit/internal/identity"
	"github.com/eugenenazirov/servicekit/internal/sources"
)

// resolvedSource names the merged tree in decode errors.
const resolvedSource = "resolved configuration"

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDiscoveryOptions passes options through to every sources.Discovery the
// resolver builds.
func WithDiscoveryOptions(opts ...sources.DiscoveryOption) ResolverOption {
	return func(r *Resolver) {
		r.discoveryOpts = append(r.discoveryOpts, opts...)
	}
}

// WithEnvironment replaces the process environment snapshot. It is called
// once per resolution.
func WithEnvironment(snapshot func() sources.EnvSnapshot) ResolverOption {
	return func(r *Resolver) {
		r.environ = snapshot
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver runs the two-phase discovery and merge pipeline.
type Resolver struct {
	discoveryOpts []sources.DiscoveryOption
	environ       func() sources.EnvSnapshot
	logger        *zap.Logger
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		environ: sources.ProcessEnvironment,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) discovery() *sources.Discovery {
	opts := append([]sources.DiscoveryOption{sources.WithLogger(r.logger)}, r.discoveryOpts...)
	return sources.NewDiscovery(opts...)
}

// Manifest lists the sources that resolution would consult for stem, scoped
// to env when env is not empty. Nothing is read.
func (r *Resolver) Manifest(stem identity.ServiceName, env identity.Environment) (sources.Manifest, error) {
	return r.discovery().Discover(stem, env)
}

// Resolve builds the configuration for name. The returned manifest lists the
// unscoped sources followed by the environment-scoped ones.
func (r *Resolver) Resolve(name identity.ServiceName, overrides Overrides) (Configuration, sources.Manifest, error) {
	stem, err := overrides.Stem(name)
	if err != nil {
		return Configuration{}, sources.Manifest{}, fmt.Errorf("config file: %w", err)
	}

	snapshot := r.environ()
	cli := overrides.Tree()
	discovery := r.discovery()

	base, err := discovery.Discover(stem, "")
	if err != nil {
		return Configuration{}, sources.Manifest{}, err
	}
	baseTree, err := base.Merge(snapshot)
	if err != nil {
		return Configuration{}, sources.Manifest{}, err
	}
	unscoped := sources.Merge(baseTree, cli)

	env, err := environmentOf(unscoped)
	if err != nil {
		return Configuration{}, sources.Manifest{}, err
	}

	scoped, err := discovery.Discover(stem, env)
	if err != nil {
		return Configuration{}, sources.Manifest{}, err
	}
	scopedTree, err := scoped.Merge(snapshot)
	if err != nil {
		return Configuration{}, sources.Manifest{}, err
	}
	merged := sources.Merge(sources.Merge(unscoped, scopedTree), cli)

	cfg := Defaults(name)
	if err := decode(merged, &cfg); err != nil {
		return Configuration{}, sources.Manifest{}, &sources.ParseError{Source: resolvedSource, Err: err}
	}
	// Scoped sources were chosen by env; they cannot switch it.
	cfg.Environment = env
	if err := validate(cfg); err != nil {
		return Configuration{}, sources.Manifest{}, &sources.ParseError{Source: resolvedSource, Err: err}
	}

	manifest := base.Concat(scoped)
	r.logger.Debug("configuration sources",
		zap.String("environment", env.String()),
		zap.Strings("known", manifest.Known().Strings()),
	)
	r.logger.Debug("configuration sources not found",
		zap.Strings("missing", manifest.Missing().Strings()),
	)

	return cfg, manifest, nil
}

// environmentOf reads the environment key from the unscoped tree.
func environmentOf(tree sources.Tree) (identity.Environment, error) {
	value, ok := tree.Lookup("environment")
	if !ok {
		return identity.DefaultEnvironment, nil
	}
	raw, ok := value.(string)
	if !ok {
		return "", &sources.ParseError{
			Source: "environment",
			Err:    fmt.Errorf("expected a string, got %T", value),
		}
	}
	return identity.ParseEnvironment(raw)
}
