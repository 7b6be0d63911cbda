// ABOUTME: Dynamic record value tree as handed over by the CMS host.
// ABOUTME: Tagged node kinds plus path parsing and deterministic traversal.

package hostproto

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Node is one value in the record tree. Concrete kinds are Object, Array,
// and JSON scalars (string, float64, bool, nil). The host serializes block
// children keyed either by field ID or by field API key, so lookups must
// always consider both.
type Node any

// Object is a composite node: a block, a locale map, or the record root.
type Object map[string]Node

// Array is a repeatable block or a multi-value field.
type Array []Node

// Path addresses a node in the tree. Segments are object keys or decimal
// array indexes, serialized dot-joined ("content.0.55.en").
type Path []string

// ParsePath splits a dot-joined host path. An empty string is the root.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, "."))
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Parent returns the path minus its last segment, or nil for the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Child returns a new path with segment appended. The receiver is not
// shared: callers may keep extending siblings independently.
func (p Path) Child(segment string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, segment)
}

// DecodeTree parses the host's JSON value tree into Object/Array/scalar
// nodes. The root must be a JSON object.
func DecodeTree(data []byte) (Object, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode value tree: %w", err)
	}
	return Object(convert(raw).(map[string]Node)), nil
}

// FromAny converts a decoded-JSON value (map[string]any / []any / scalar)
// into tree nodes.
func FromAny(v any) Node {
	converted := convert(v)
	if m, ok := converted.(map[string]Node); ok {
		return Object(m)
	}
	return converted
}

func convert(v any) any {
	switch val := v.(type) {
	case map[string]any:
		obj := make(map[string]Node, len(val))
		for k, child := range val {
			obj[k] = FromAny(child)
		}
		return obj
	case []any:
		arr := make(Array, len(val))
		for i, child := range val {
			arr[i] = FromAny(child)
		}
		return arr
	default:
		return v
	}
}

// Lookup walks path from root and returns the node there. The second
// return is false when any segment is missing or addresses a scalar.
func Lookup(root Node, path Path) (Node, bool) {
	cur := root
	for _, seg := range path {
		switch node := cur.(type) {
		case Object:
			child, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = child
		case Array:
			idx, ok := arrayIndex(seg, len(node))
			if !ok {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func arrayIndex(seg string, length int) (int, bool) {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

// SortedKeys returns an Object's keys in ascending lexical order. JSON
// document order is lost at decode time, so lexical order is the
// deterministic iteration order used everywhere a tie can matter.
func SortedKeys(obj Object) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Walk visits every node depth-first starting at root, calling visit with
// each node's path. Object children are visited in sorted key order,
// array elements by index. Returning false from visit stops the walk.
func Walk(root Node, visit func(path Path, node Node) bool) {
	walk(root, Path{}, visit)
}

func walk(node Node, path Path, visit func(Path, Node) bool) bool {
	if !visit(path, node) {
		return false
	}
	switch n := node.(type) {
	case Object:
		for _, k := range SortedKeys(n) {
			if !walk(n[k], path.Child(k), visit) {
				return false
			}
		}
	case Array:
		for i, child := range n {
			if !walk(child, path.Child(fmt.Sprintf("%d", i)), visit) {
				return false
			}
		}
	}
	return true
}
