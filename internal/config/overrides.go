package config

import (
	"github.com/eugenenazirov/servicekit/internal/identity"
	"github.com/eugenenazirov/servicekit/internal/sources"
)

// Overrides holds the values supplied on the command line. Nil pointers, a
// zero Verbosity count and a false System mean the user did not set them, so
// they never mask lower-precedence sources.
type Overrides struct {
	// ConfigFile replaces the service name as the stem for file names and
	// environment variable prefixes.
	ConfigFile     string
	Environment    *identity.Environment
	Verbosity      int
	Color          *Color
	Host           *string
	Port           *int
	Name           *string
	ServiceManager *ServiceManagerKind
	System         bool
}

// Stem returns the identifier used for discovery: ConfigFile when set,
// otherwise name.
func (o Overrides) Stem(name identity.ServiceName) (identity.ServiceName, error) {
	if o.ConfigFile == "" {
		return name, nil
	}
	return identity.ParseServiceName(o.ConfigFile)
}

// Tree renders the overrides as a canonical source tree.
func (o Overrides) Tree() sources.Tree {
	tree := sources.Tree{}

	if o.Environment != nil {
		tree.Set([]string{"environment"}, o.Environment.String())
	}
	if o.Verbosity > 0 {
		tree.Set([]string{"verbosity"}, VerbosityFromCount(o.Verbosity).String())
	}
	if o.Color != nil {
		tree.Set([]string{"color"}, string(*o.Color))
	}
	if o.Host != nil {
		tree.Set([]string{"server", "host"}, *o.Host)
	}
	if o.Port != nil {
		tree.Set([]string{"server", "port"}, *o.Port)
	}
	if o.Name != nil {
		tree.Set([]string{"service", "name"}, *o.Name)
	}
	if o.ServiceManager != nil {
		tree.Set([]string{"service", "service_manager"}, string(*o.ServiceManager))
	}
	if o.System {
		tree.Set([]string{"service", "system"}, true)
	}

	return tree
}
