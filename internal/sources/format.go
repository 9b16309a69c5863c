package sources

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/servicekit/internal/identity"
)

// Format is one of the interchangeable serialisations of the configuration
// schema.
type Format int

const (
	FormatYAML Format = iota + 1
	FormatJSON
	FormatTOML
)

// Formats returns every format in discovery order. Later formats override
// earlier ones within the same location.
func Formats() []Format {
	return []Format{FormatYAML, FormatJSON, FormatTOML}
}

// Extension is the file extension without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

func (f Format) String() string {
	return f.Extension()
}

// EmptyDocument is the smallest valid document in this format.
func (f Format) EmptyDocument() string {
	if f == FormatJSON {
		return "{}"
	}
	return ""
}

// FileName builds "{stem}.{env.}{ext}"; env is omitted when empty.
func (f Format) FileName(stem string, env identity.Environment) string {
	if env == "" {
		return fmt.Sprintf("%s.%s", stem, f.Extension())
	}
	return fmt.Sprintf("%s.%s.%s", stem, env.FileName(), f.Extension())
}

// Locate checks a single candidate file in dir. It returns a file Definition
// when the file exists and a NotFound Definition otherwise. Only stat is
// performed; the file is not opened.
func (f Format) Locate(dir, stem string, env identity.Environment) (Definition, error) {
	path := filepath.Join(dir, f.FileName(stem, env))

	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return Definition{kind: KindFile, path: path, format: f}, nil
	case err == nil:
		return NotFound(path), nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return NotFound(path), nil
	default:
		return Definition{}, &IOError{Path: path, Err: err}
	}
}

// Parse decodes data into a canonical Tree.
func (f Format) Parse(data []byte) (Tree, error) {
	raw := map[string]any{}

	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatJSON:
		stripped := jsonc.ToJSON(data)
		if len(bytes.TrimSpace(stripped)) == 0 {
			return Tree{}, nil
		}
		if err := json.Unmarshal(stripped, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %d", int(f))
	}

	return Canonicalize(raw), nil
}

// ParseFormat accepts a format name or its extension.
func ParseFormat(raw string) (Format, error) {
	value := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
	if value == "yml" {
		value = "yaml"
	}
	for _, f := range Formats() {
		if f.Extension() == value {
			return f, nil
		}
	}
	accepted := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		accepted = append(accepted, f.Extension())
	}
	return 0, &identity.ValidationError{Field: "format", Value: raw, Accepted: accepted}
}
