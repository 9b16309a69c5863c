package sources

import (
	"os"
	"sort"
	"strings"

	"github.com/eugenenazirov/servicekit/internal/identity"
)

// KeySeparator splits an environment variable name into nested keys.
const KeySeparator = "__"

// EnvSnapshot is a point-in-time copy of the process environment. Resolution
// reads variables only through a snapshot so tests can substitute a fixed map.
type EnvSnapshot map[string]string

// ProcessEnvironment captures the live process environment.
func ProcessEnvironment() EnvSnapshot {
	env := os.Environ()
	snapshot := make(EnvSnapshot, len(env))
	for _, entry := range env {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}
		snapshot[name] = value
	}
	return snapshot
}

// EnvPrefix builds "{NAME}__" or, scoped, "{NAME}__{ENV}__".
func EnvPrefix(name identity.ServiceName, env identity.Environment) string {
	prefix := name.EnvPrefix() + KeySeparator
	if env != "" {
		prefix += env.EnvPrefix() + KeySeparator
	}
	return prefix
}

func resolveEnv(prefix string, snapshot EnvSnapshot) Tree {
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	tree := Tree{}
	for _, name := range names {
		if len(name) <= len(prefix) || !strings.EqualFold(name[:len(prefix)], prefix) {
			continue
		}

		segments := strings.Split(name[len(prefix):], KeySeparator)
		path := make([]string, 0, len(segments))
		for _, segment := range segments {
			key := CanonicalKey(segment)
			if key == "" {
				path = nil
				break
			}
			path = append(path, key)
		}
		if len(path) == 0 {
			continue
		}

		tree.Set(path, snapshot[name])
	}
	return tree
}
