package route

import (
	"strings"
)

// Tree is a prefix-segmented route tree mapping (method, path) to the
// values registered at the matching template's terminal node, plus the
// raw text captured by each template variable.
//
// The tree is populated during a single-threaded registration phase and
// is immutable afterwards; Lookup performs no writes and is safe for
// unlimited concurrent use once registration has completed.
type Tree[T any] struct {
	root *node[T]
}

// node is one level of the tree. Child precedence during lookup is
// literal, then pattern children in registration order, then the
// catch-all child.
type node[T any] struct {
	literals map[string]*node[T]
	patterns []*patternEdge[T]
	catchAll *node[T]
	values   map[string][]T
}

// patternEdge is a pattern-variable child, keyed by the compiled
// pattern's source so that templates sharing a constraint share the
// child node.
type patternEdge[T any] struct {
	seg   Segment
	child *node[T]
}

// NewTree creates an empty route tree.
func NewTree[T any]() *Tree[T] {
	return &Tree[T]{root: newNode[T]()}
}

func newNode[T any]() *node[T] {
	return &node[T]{
		literals: make(map[string]*node[T]),
		values:   make(map[string][]T),
	}
}

// Add walks or creates tree nodes for each template segment and appends
// value to the terminal node's list for method. Registration order
// within the list is preserved; it is the tie-break order for content
// negotiation.
func (t *Tree[T]) Add(tpl *Template, method string, value T) {
	n := t.root
	for i := range tpl.segments {
		n = n.child(&tpl.segments[i])
	}
	n.values[method] = append(n.values[method], value)
}

// Values returns the values already registered at the template's
// terminal node for method, without creating any nodes. It is used to
// detect ambiguous registrations before Add.
func (t *Tree[T]) Values(tpl *Template, method string) []T {
	n := t.root
	for i := range tpl.segments {
		seg := &tpl.segments[i]
		switch {
		case seg.IsLiteral():
			n = n.literals[seg.Literal]
		case seg.IsCatchAll():
			n = n.catchAll
		default:
			n = n.patternChild(seg.Source)
		}
		if n == nil {
			return nil
		}
	}
	return n.values[method]
}

// child returns the child node for a segment, creating it if needed.
func (n *node[T]) child(seg *Segment) *node[T] {
	switch {
	case seg.IsLiteral():
		c, ok := n.literals[seg.Literal]
		if !ok {
			c = newNode[T]()
			n.literals[seg.Literal] = c
		}
		return c
	case seg.IsCatchAll():
		if n.catchAll == nil {
			n.catchAll = newNode[T]()
		}
		return n.catchAll
	default:
		if c := n.patternChild(seg.Source); c != nil {
			return c
		}
		edge := &patternEdge[T]{seg: *seg, child: newNode[T]()}
		n.patterns = append(n.patterns, edge)
		return edge.child
	}
}

// patternChild finds an existing pattern child by compiled source.
func (n *node[T]) patternChild(source string) *node[T] {
	for _, pe := range n.patterns {
		if pe.seg.Source == source {
			return pe.child
		}
	}
	return nil
}

// Lookup resolves a concrete request path for a method. It returns the
// terminal node's registered values and the variable captures in the
// order the winning template declares them. ok is false when every
// branch fails, including when a path matches structurally but has no
// value registered for the method.
func (t *Tree[T]) Lookup(method, path string) (values []T, captures []string, ok bool) {
	segs := SplitPath(path)
	caps := make([]string, 0, 8)
	values, ok = t.root.match(segs, method, &caps)
	if !ok {
		return nil, nil, false
	}
	return values, caps, true
}

// match descends the tree with backtracking. A chosen child that leads
// to a dead end (no value for the method at the required terminal) is
// abandoned and the next-precedence option at the same node is tried
// before failing up to the parent. Captures are appended on descent and
// truncated on backtrack.
func (n *node[T]) match(segs []string, method string, caps *[]string) ([]T, bool) {
	if len(segs) == 0 {
		if vals := n.values[method]; len(vals) > 0 {
			return vals, true
		}
		return nil, false
	}

	head, rest := segs[0], segs[1:]

	if child, ok := n.literals[head]; ok {
		if vals, ok := child.match(rest, method, caps); ok {
			return vals, true
		}
	}

	// Single-segment pattern attempts, in registration order.
	for _, pe := range n.patterns {
		vals, ok := pe.seg.matchText(head)
		if !ok {
			continue
		}
		mark := len(*caps)
		*caps = append(*caps, vals...)
		if out, ok := pe.child.match(rest, method, caps); ok {
			return out, true
		}
		*caps = (*caps)[:mark]
	}

	// Patterns containing "/" may span raw segments. Spanning attempts
	// run only after every single-segment attempt at this node has
	// failed, consuming the fewest additional segments first.
	for k := 2; k <= len(segs); k++ {
		joined := strings.Join(segs[:k], "/")
		for _, pe := range n.patterns {
			if !pe.seg.Spans() {
				continue
			}
			vals, ok := pe.seg.matchText(joined)
			if !ok {
				continue
			}
			mark := len(*caps)
			*caps = append(*caps, vals...)
			if out, ok := pe.child.match(segs[k:], method, caps); ok {
				return out, true
			}
			*caps = (*caps)[:mark]
		}
	}

	if n.catchAll != nil {
		mark := len(*caps)
		*caps = append(*caps, head)
		if out, ok := n.catchAll.match(rest, method, caps); ok {
			return out, true
		}
		*caps = (*caps)[:mark]
	}

	return nil, false
}
