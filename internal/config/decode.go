package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/eugenenazirov/servicekit/internal/sources"
)

// decode applies tree on top of cfg. Environment variables arrive as strings,
// so input is weakly typed; enum-like fields parse through UnmarshalText.
func decode(tree sources.Tree, cfg *Configuration) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			oneOrManyHook,
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(tree))
}

// oneOrManyHook wraps a single mapping in a list when the target is a slice
// of structs, so "logging" accepts one logger or many.
func oneOrManyHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.Struct {
		return data, nil
	}
	if from.Kind() != reflect.Map {
		return data, nil
	}
	return []any{data}, nil
}
