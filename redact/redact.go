// Package redact removes configured sensitive field paths from arbitrary
// object graphs before they are handed to a log sink.
//
// A Path is matched relative to every node of the graph, not just the root:
// the single-key path "password" strips that field wherever it appears, while
// "user.token" strips token beneath every node that carries a user object,
// including nodes inside arrays.
package redact

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// DefaultMaxDepth bounds traversal and cloning. Inputs nested deeper than
// this are rejected with ErrDepthExceeded instead of being truncated.
const DefaultMaxDepth = 128

var (
	// ErrDepthExceeded is returned when an input graph nests deeper than the
	// configured limit.
	ErrDepthExceeded = errors.New("redact: depth limit exceeded")

	// ErrCycle is returned when the same map or slice is reached twice on one
	// traversal path.
	ErrCycle = errors.New("redact: cycle detected in input graph")

	// ErrNotCloneable is returned for values that cannot be snapshotted into
	// a plain JSON-like tree (channels, functions, cyclic structs).
	ErrNotCloneable = errors.New("redact: value is not cloneable")
)

// Path is an ordered, non-empty key chain identifying a value relative to a
// node in an object graph.
type Path []string

// ParsePath splits a dotted path string into a Path.
func ParsePath(s string) Path {
	return Path(strings.Split(s, "."))
}

// ParsePaths maps ParsePath over a list of dotted path strings, skipping
// empty entries.
func ParsePaths(ss []string) []Path {
	paths := make([]Path, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		paths = append(paths, ParsePath(s))
	}
	return paths
}

func (p Path) String() string { return strings.Join(p, ".") }

// Option configures a Redactor.
type Option func(*Redactor)

// WithMaxDepth overrides the traversal depth limit.
func WithMaxDepth(n int) Option {
	return func(r *Redactor) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithPlaceholder replaces matched values with the given string instead of
// deleting them.
func WithPlaceholder(s string) Option {
	return func(r *Redactor) { r.placeholder = s }
}

// WithFingerprint replaces matched values with a short keyed fingerprint so
// repeated occurrences of the same secret remain correlatable across log
// lines without exposing it. Takes precedence over WithPlaceholder.
func WithFingerprint(key []byte) Option {
	return func(r *Redactor) { r.fpKey = append([]byte(nil), key...) }
}

// Redactor strips a fixed set of paths from object graphs. It is immutable
// after construction and safe for concurrent use.
type Redactor struct {
	paths       []Path
	maxDepth    int
	placeholder string
	fpKey       []byte
}

// New builds a Redactor for the given paths. Empty paths are ignored.
func New(paths []Path, opts ...Option) *Redactor {
	r := &Redactor{maxDepth: DefaultMaxDepth}
	for _, p := range paths {
		if len(p) > 0 {
			r.paths = append(r.paths, p)
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sanitize returns a deep copy of v with every configured path removed at
// every depth where its key chain occurs. The input is never mutated and the
// result never aliases it.
//
// Scalars, nil and empty maps are returned unchanged without cloning. Inputs
// that are not already generic map/slice trees (structs, typed maps) are
// snapshotted through encoding/json first.
func (r *Redactor) Sanitize(v any) (any, error) {
	if v == nil || !isContainer(v) {
		return v, nil
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return v, nil
	}

	clone, err := r.clone(v, 0, map[uintptr]bool{})
	if err != nil {
		return nil, err
	}
	r.strip(clone)
	return clone, nil
}

func isContainer(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	case reflect.Pointer:
		e := reflect.ValueOf(v).Elem()
		return e.IsValid() && isContainer(e.Interface())
	}
	return false
}

// clone copies v into a fresh generic tree. seen holds the map/slice
// identities on the current descent path, so shared-but-acyclic subtrees are
// allowed while true cycles surface as ErrCycle.
func (r *Redactor) clone(v any, depth int, seen map[uintptr]bool) (any, error) {
	if depth > r.maxDepth {
		return nil, ErrDepthExceeded
	}
	switch t := v.(type) {
	case nil, bool, string, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return t, nil
	case map[string]any:
		ptr := reflect.ValueOf(t).Pointer()
		if seen[ptr] {
			return nil, ErrCycle
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		out := make(map[string]any, len(t))
		for k, val := range t {
			c, err := r.clone(val, depth+1, seen)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []any:
		ptr := reflect.ValueOf(t).Pointer()
		if seen[ptr] {
			return nil, ErrCycle
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		out := make([]any, len(t))
		for i, val := range t {
			c, err := r.clone(val, depth+1, seen)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return snapshot(t)
	}
}

// snapshot round-trips a typed value through JSON to obtain a fresh generic
// tree. encoding/json reports cyclic values itself, which keeps this path
// bounded.
func snapshot(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCloneable, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCloneable, err)
	}
	return out, nil
}

// strip walks the cloned tree and applies every path at every node. The
// clone is acyclic and depth-bounded by construction.
func (r *Redactor) strip(node any) {
	switch n := node.(type) {
	case map[string]any:
		for _, p := range r.paths {
			r.apply(n, p)
		}
		for _, v := range n {
			r.strip(v)
		}
	case []any:
		for _, v := range n {
			r.strip(v)
		}
	}
}

// apply follows one key chain starting at n and redacts the terminal value
// if the whole chain resolves. Siblings are never touched.
func (r *Redactor) apply(n map[string]any, p Path) {
	cur := n
	for i, key := range p {
		if i == len(p)-1 {
			if val, ok := cur[key]; ok {
				r.redact(cur, key, val)
			}
			return
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
}

func (r *Redactor) redact(n map[string]any, key string, val any) {
	switch {
	case len(r.fpKey) > 0:
		n[key] = r.fingerprint(val)
	case r.placeholder != "":
		n[key] = r.placeholder
	default:
		delete(n, key)
	}
}
