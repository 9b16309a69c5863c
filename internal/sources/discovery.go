package sources

import (
	"os"

	"go.uber.org/zap"

	"github.com/eugenenazirov/servicekit/internal/identity"
)

// DirResolver returns a directory path or an error when the platform cannot
// provide one.
type DirResolver func() (string, error)

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithHomeDir overrides how the home directory is found.
func WithHomeDir(resolver DirResolver) DiscoveryOption {
	return func(d *Discovery) {
		d.homeDir = resolver
	}
}

// WithConfigDir overrides how the user configuration directory is found.
func WithConfigDir(resolver DirResolver) DiscoveryOption {
	return func(d *Discovery) {
		d.configDir = resolver
	}
}

// WithWorkingDir overrides how the working directory is found.
func WithWorkingDir(resolver DirResolver) DiscoveryOption {
	return func(d *Discovery) {
		d.workingDir = resolver
	}
}

// WithLogger sets the logger used for skipped locations.
func WithLogger(logger *zap.Logger) DiscoveryOption {
	return func(d *Discovery) {
		d.logger = logger
	}
}

// Discovery enumerates canonical locations and builds manifests.
type Discovery struct {
	homeDir    DirResolver
	configDir  DirResolver
	workingDir DirResolver
	logger     *zap.Logger
}

// NewDiscovery returns a Discovery that searches the real platform
// directories unless overridden.
func NewDiscovery(opts ...DiscoveryOption) *Discovery {
	d := &Discovery{
		homeDir:    os.UserHomeDir,
		configDir:  os.UserConfigDir,
		workingDir: os.Getwd,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Locations returns the canonical directories, lowest precedence first:
// home, user config, working directory. Unresolvable ones are omitted.
func (d *Discovery) Locations() []string {
	candidates := []struct {
		name    string
		resolve DirResolver
	}{
		{name: "home", resolve: d.homeDir},
		{name: "config", resolve: d.configDir},
		{name: "working", resolve: d.workingDir},
	}

	locations := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.resolve == nil {
			continue
		}
		dir, err := candidate.resolve()
		if err != nil || dir == "" {
			d.logger.Debug("skipping configuration location",
				zap.String("location", candidate.name),
				zap.Error(err),
			)
			continue
		}
		locations = append(locations, dir)
	}
	return locations
}

// Discover builds the manifest for name, scoped to env when env is not
// empty: every format in every location, then one environment namespace.
func (d *Discovery) Discover(name identity.ServiceName, env identity.Environment) (Manifest, error) {
	var definitions []Definition

	for _, dir := range d.Locations() {
		for _, format := range Formats() {
			def, err := format.Locate(dir, name.FileName(), env)
			if err != nil {
				return Manifest{}, err
			}
			definitions = append(definitions, def)
		}
	}

	definitions = append(definitions, EnvVar(EnvPrefix(name, env)))

	return Manifest{definitions: definitions}, nil
}
