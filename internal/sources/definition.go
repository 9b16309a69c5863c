package sources

import "os"

// Kind tags the variant held by a Definition.
type Kind int

const (
	KindNotFound Kind = iota
	KindFile
	KindEnvVar
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindEnvVar:
		return "env"
	default:
		return "missing"
	}
}

// Definition describes one configuration input. It is a closed variant:
// a NotFound candidate path, an existing file in a known Format, or an
// environment-variable namespace. File definitions are only produced by
// Format.Locate after the file was seen on disk; NotFound definitions are a
// snapshot and are never re-checked.
type Definition struct {
	kind   Kind
	path   string
	format Format
	prefix string
}

// NotFound records a candidate path that did not exist.
func NotFound(path string) Definition {
	return Definition{kind: KindNotFound, path: path}
}

// EnvVar describes every variable whose name starts with prefix. It is always
// considered present.
func EnvVar(prefix string) Definition {
	return Definition{kind: KindEnvVar, prefix: prefix}
}

func (d Definition) Kind() Kind { return d.kind }
func (d Definition) Path() string { return d.path }
func (d Definition) Format() Format { return d.format }
func (d Definition) Prefix() string { return d.prefix }
func (d Definition) Found() bool { return d.kind != KindNotFound }

func (d Definition) String() string {
	switch d.kind {
	case KindFile:
		return d.format.Extension() + ":" + d.path
	case KindEnvVar:
		return "env:" + d.prefix
	default:
		return "missing:" + d.path
	}
}

// Resolve reads the definition into a Tree. NotFound yields an empty Tree.
// Environment values are kept as strings; the schema coerces them later.
func (d Definition) Resolve(env EnvSnapshot) (Tree, error) {
	switch d.kind {
	case KindFile:
		data, err := os.ReadFile(d.path)
		if err != nil {
			return nil, &IOError{Path: d.path, Err: err}
		}
		tree, err := d.format.Parse(data)
		if err != nil {
			return nil, &ParseError{Source: d.path, Err: err}
		}
		return tree, nil
	case KindEnvVar:
		return resolveEnv(d.prefix, env), nil
	default:
		return Tree{}, nil
	}
}
