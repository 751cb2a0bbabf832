package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// Namespace is the variable tree available to one expansion. Every node is
// either a scalar or a mapping of named children, addressed by dotted paths
// such as "package.version" or "input.filename".
type Namespace struct {
	root *node
	mu   sync.RWMutex
}

type node struct {
	value    any
	children map[string]*node
}

func (n *node) isMapping() bool {
	return n.children != nil
}

func NewNamespace() *Namespace {
	return &Namespace{root: &node{children: make(map[string]*node)}}
}

func splitPath(path string) []string {
	path = strings.Trim(path, ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Set stores value at path, creating intermediate mappings. A scalar found on
// the way is replaced by a mapping; a mapping at the leaf is replaced by the
// scalar.
func (ns *Namespace) Set(path string, value any) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	cur := ns.root
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur.children[seg]
		if !ok || !next.isMapping() {
			next = &node{children: make(map[string]*node)}
			cur.children[seg] = next
		}
		cur = next
	}

	leaf := segments[len(segments)-1]
	if m, ok := value.(map[string]any); ok {
		cur.children[leaf] = fromMap(m)
		return
	}
	cur.children[leaf] = &node{value: value}
}

func (ns *Namespace) SetVar(key, value string) {
	ns.Set(key, value)
}

// Get returns the value at path. Mappings are returned as map[string]any.
func (ns *Namespace) Get(path string) (any, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	n := ns.lookup(path)
	if n == nil {
		return nil, false
	}
	if n.isMapping() {
		return n.toMap(), true
	}
	return n.value, true
}

// GetVar returns the stringified value at path, or "" when absent.
func (ns *Namespace) GetVar(path string) string {
	v, ok := ns.Get(path)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Has reports whether path resolves to a node.
func (ns *Namespace) Has(path string) bool {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.lookup(path) != nil
}

func (ns *Namespace) lookup(path string) *node {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil
	}
	cur := ns.root
	for _, seg := range segments {
		if !cur.isMapping() {
			return nil
		}
		next, ok := cur.children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Merge sets every entry of values under prefix. An empty prefix merges at
// the top level.
func (ns *Namespace) Merge(prefix string, values map[string]any) {
	for k, v := range values {
		if prefix == "" {
			ns.Set(k, v)
			continue
		}
		ns.Set(prefix+"."+k, v)
	}
}

// Flatten returns the dotted-key scalar view. The result is rebuilt on every
// call so it always reflects the current tree.
func (ns *Namespace) Flatten() map[string]string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	out := make(map[string]string)
	flattenInto(out, "", ns.root)
	return out
}

func flattenInto(out map[string]string, prefix string, n *node) {
	for _, key := range sortedKeys(n.children) {
		child := n.children[key]
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child.isMapping() {
			flattenInto(out, full, child)
			continue
		}
		out[full] = Stringify(child.value)
	}
}

// Keys returns the flattened keys in sorted order.
func (ns *Namespace) Keys() []string {
	flat := ns.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns the tree as nested maps, suitable as expression bindings.
func (ns *Namespace) Snapshot() map[string]any {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.root.toMap()
}

// Clone returns an independent deep copy.
func (ns *Namespace) Clone() *Namespace {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return &Namespace{root: ns.root.clone()}
}

func (n *node) toMap() map[string]any {
	out := make(map[string]any, len(n.children))
	for k, child := range n.children {
		if child.isMapping() {
			out[k] = child.toMap()
			continue
		}
		out[k] = child.value
	}
	return out
}

func (n *node) clone() *node {
	if !n.isMapping() {
		return &node{value: n.value}
	}
	c := &node{children: make(map[string]*node, len(n.children))}
	for k, child := range n.children {
		c.children[k] = child.clone()
	}
	return c
}

func fromMap(m map[string]any) *node {
	n := &node{children: make(map[string]*node, len(m))}
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			n.children[k] = fromMap(sub)
			continue
		}
		n.children[k] = &node{value: v}
	}
	return n
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stringify renders a namespace value the way it appears in expanded text.
// Composite values are rendered as JSON with sorted keys.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		return oj.JSON(val, &ojg.Options{Sort: true})
	default:
		return fmt.Sprint(val)
	}
}
