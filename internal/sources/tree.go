package sources

import (
	"fmt"
	"sort"
	"strings"
)

// Tree is a nested key/value mapping. Keys are canonical (lowercase, dashes
// replaced by underscores); values are scalars, slices or nested Trees.
type Tree map[string]any

// CanonicalKey lowercases key and replaces dashes with underscores so that
// "service-manager" and "SERVICE_MANAGER" address the same field.
func CanonicalKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

// Canonicalize converts parser output into a Tree with canonical keys.
func Canonicalize(value map[string]any) Tree {
	out, _ := canonicalValue(value).(Tree)
	if out == nil {
		return Tree{}
	}
	return out
}

func canonicalValue(value any) any {
	switch v := value.(type) {
	case Tree:
		return canonicalMap(v)
	case map[string]any:
		return canonicalMap(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = item
		}
		return canonicalMap(converted)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonicalValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonicalMap(item)
		}
		return out
	default:
		return v
	}
}

func canonicalMap(in map[string]any) Tree {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	// Sorted so that keys colliding after canonicalisation merge deterministically.
	sort.Strings(keys)

	out := make(Tree, len(in))
	for _, key := range keys {
		canonical := CanonicalKey(key)
		value := canonicalValue(in[key])
		if existing, ok := out[canonical].(Tree); ok {
			if incoming, ok := value.(Tree); ok {
				out[canonical] = Merge(existing, incoming)
				continue
			}
		}
		out[canonical] = value
	}
	return out
}

// Merge layers overlay on top of base and returns a new Tree. Nested Trees are
// merged key by key; any other value in overlay replaces the one in base.
// Neither argument is modified.
func Merge(base, overlay Tree) Tree {
	out := base.Clone()
	for key, value := range overlay {
		if existing, ok := out[key].(Tree); ok {
			if incoming, ok := value.(Tree); ok {
				out[key] = Merge(existing, incoming)
				continue
			}
		}
		out[key] = cloneValue(value)
	}
	return out
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for key, value := range t {
		out[key] = cloneValue(value)
	}
	return out
}

// Lookup walks a dotted path such as "service.name".
func (t Tree) Lookup(path string) (any, bool) {
	var current any = t
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(Tree)
		if !ok {
			return nil, false
		}
		current, ok = node[CanonicalKey(segment)]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores value at path, creating intermediate Trees and replacing any
// scalar that stands in the way.
func (t Tree) Set(path []string, value any) {
	node := t
	for _, segment := range path[:len(path)-1] {
		child, ok := node[segment].(Tree)
		if !ok {
			child = Tree{}
			node[segment] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Tree:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
