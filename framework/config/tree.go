package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tree is a nested key/value structure as read from config files. Nested
// maps are always Tree values.
type Tree map[string]any

// Get looks up a dotted path such as "settings.addr".
func (t Tree) Get(path string) (any, bool) {
	var cur any = t
	for _, key := range strings.Split(path, ".") {
		node, ok := cur.(Tree)
		if !ok {
			return nil, false
		}
		if cur, ok = node[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, or fallback.
func (t Tree) GetString(path, fallback string) string {
	if v, ok := t.Get(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// GetBool returns the bool at path, or fallback.
func (t Tree) GetBool(path string, fallback bool) bool {
	if v, ok := t.Get(path); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// Sub returns the subtree at path, or an empty tree.
func (t Tree) Sub(path string) Tree {
	if v, ok := t.Get(path); ok {
		if sub, ok := v.(Tree); ok {
			return sub
		}
	}
	return Tree{}
}

// Nest places value under the chain of keys: Nest([a b], v) is {a: {b: v}}.
func Nest(keys []string, value Tree) Tree {
	if len(keys) == 0 {
		return value
	}
	return Tree{keys[0]: Nest(keys[1:], value)}
}

// Merge merges src into a copy of dst recursively. Trees under the same key
// merge, lists concatenate, and any other collision collects both values
// into a list.
func Merge(dst, src Tree) Tree {
	out := make(Tree, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		cur, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		out[k] = mergeValues(cur, v)
	}
	return out
}

func mergeValues(a, b any) any {
	at, aTree := a.(Tree)
	bt, bTree := b.(Tree)
	if aTree && bTree {
		return Merge(at, bt)
	}
	return append(asList(a), asList(b)...)
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return append([]any(nil), list...)
	}
	return []any{v}
}

// Overlay returns base with the top-level keys of top replacing its own.
func Overlay(base, top Tree) Tree {
	out := make(Tree, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

// ReadFile parses a YAML config file. ok is false when the document is not
// a mapping; such files carry no configuration.
func ReadFile(path string) (tree Tree, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("config: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	tree, ok = normalize(doc).(Tree)
	return tree, ok, nil
}

// LoadTree reads files below root and merges them in order, each nested
// under its path relative to root without the extension:
// root/db/mysql.yaml lands under {"db": {"mysql": ...}}.
func LoadTree(root string, files []string) (Tree, error) {
	out := Tree{}
	for _, file := range files {
		tree, ok, err := ReadFile(file)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		out = Merge(out, Nest(strings.Split(rel, "/"), tree))
	}
	return out, nil
}

// normalize turns decoded YAML maps into Tree values all the way down.
func normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		t := make(Tree, len(n))
		for k, child := range n {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		t := make(Tree, len(n))
		for k, child := range n {
			t[fmt.Sprint(k)] = normalize(child)
		}
		return t
	case []any:
		for i, child := range n {
			n[i] = normalize(child)
		}
		return n
	}
	return v
}
