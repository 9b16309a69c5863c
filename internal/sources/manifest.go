package sources

// Manifest is an ordered list of definitions. Order is precedence: a later
// definition overrides keys set by an earlier one.
type Manifest struct {
	definitions []Definition
}

// NewManifest copies defs into a Manifest in the given order.
func NewManifest(defs ...Definition) Manifest {
	return Manifest{definitions: append([]Definition(nil), defs...)}
}

// Definitions returns a copy of the ordered definitions.
func (m Manifest) Definitions() []Definition {
	return append([]Definition(nil), m.definitions...)
}

func (m Manifest) Len() int {
	return len(m.definitions)
}

// Concat layers other on top of m.
func (m Manifest) Concat(other Manifest) Manifest {
	out := make([]Definition, 0, len(m.definitions)+len(other.definitions))
	out = append(out, m.definitions...)
	out = append(out, other.definitions...)
	return Manifest{definitions: out}
}

// Known keeps file and environment definitions in their relative order.
func (m Manifest) Known() Manifest {
	return m.filter(func(d Definition) bool { return d.Found() })
}

// Missing keeps NotFound definitions in their relative order.
func (m Manifest) Missing() Manifest {
	return m.filter(func(d Definition) bool { return !d.Found() })
}

// Strings renders every definition for diagnostics.
func (m Manifest) Strings() []string {
	out := make([]string, len(m.definitions))
	for i, def := range m.definitions {
		out[i] = def.String()
	}
	return out
}

// Merge resolves every definition in order and folds the results together,
// later definitions winning. The first resolution error aborts the merge.
func (m Manifest) Merge(env EnvSnapshot) (Tree, error) {
	merged := Tree{}
	for _, def := range m.definitions {
		tree, err := def.Resolve(env)
		if err != nil {
			return nil, err
		}
		merged = Merge(merged, tree)
	}
	return merged, nil
}

func (m Manifest) filter(keep func(Definition) bool) Manifest {
	out := make([]Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		if keep(def) {
			out = append(out, def)
		}
	}
	return Manifest{definitions: out}
}
