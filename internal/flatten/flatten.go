package flatten

import (
	"sort"
	"strconv"
	"strings"

	"sjsage522/tapeworker/internal/record"
)

// Separator joins the segments of a path
const Separator = "."

// FlatRecord maps dot-joined paths to scalar leaves. Paths keep the order in
// which the traversal first reached them.
type FlatRecord struct {
	paths  []string
	values map[string]any
}

// Get returns the leaf stored at path
func (f FlatRecord) Get(path string) (any, bool) {
	v, ok := f.values[path]
	return v, ok
}

// Paths returns a copy of the paths in traversal order
func (f FlatRecord) Paths() []string {
	out := make([]string, len(f.paths))
	copy(out, f.paths)
	return out
}

// Len returns the number of leaves
func (f FlatRecord) Len() int {
	return len(f.paths)
}

// Each calls fn for every leaf in traversal order
func (f FlatRecord) Each(fn func(path string, value any)) {
	for _, p := range f.paths {
		fn(p, f.values[p])
	}
}

// Flatten collapses a nested value into a FlatRecord.
//
// Object keys become path segments, array elements use their index. Empty
// objects and arrays have no leaves and therefore produce no entry. A key
// containing the separator or a backslash is escaped with a backslash so
// that distinct leaves never share a path. A scalar at the root is stored
// under the empty path.
func Flatten(v any) FlatRecord {
	f := FlatRecord{values: make(map[string]any)}
	f.walk("", v, true)
	return f
}

func (f *FlatRecord) walk(prefix string, v any, root bool) {
	switch node := v.(type) {
	case record.Record:
		for _, e := range node {
			f.walk(join(prefix, escape(e.Key), root), e.Value, false)
		}
	case map[string]any:
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f.walk(join(prefix, escape(k), root), node[k], false)
		}
	case []any:
		for i, item := range node {
			f.walk(join(prefix, strconv.Itoa(i), root), item, false)
		}
	default:
		f.add(prefix, v)
	}
}

func (f *FlatRecord) add(path string, v any) {
	if _, exists := f.values[path]; !exists {
		f.paths = append(f.paths, path)
	}
	f.values[path] = v
}

func join(prefix, segment string, root bool) string {
	if root {
		return segment
	}
	return prefix + Separator + segment
}

var escaper = strings.NewReplacer(`\`, `\\`, Separator, `\`+Separator)

func escape(key string) string {
	if !strings.ContainsAny(key, `\`+Separator) {
		return key
	}
	return escaper.Replace(key)
}
