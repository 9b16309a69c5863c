package config

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/servicekit/internal/sources"
)

// Marshal renders cfg in format. Secrets print as a placeholder.
func Marshal(cfg Configuration, format sources.Format) ([]byte, error) {
	switch format {
	case sources.FormatYAML:
		return yaml.Marshal(cfg)
	case sources.FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	case sources.FormatTOML:
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}
