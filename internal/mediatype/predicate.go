package mediatype

import (
	"sort"
	"strings"
)

// Predicate reports whether an endpoint accepts a given media range.
// Its String form is canonical and is used to detect endpoints that
// would be indistinguishable at dispatch time.
type Predicate interface {
	Accepts(r Range) bool
	String() string
}

// Any returns a predicate accepting every media range.
func Any() Predicate {
	return anyPredicate{}
}

type anyPredicate struct{}

func (anyPredicate) Accepts(Range) bool { return true }
func (anyPredicate) String() string     { return "*/*" }

// Exact returns a predicate accepting ranges that include the given
// media type, such as "application/json".
func Exact(mediaType string) Predicate {
	return exactPredicate{mediaType: strings.ToLower(mediaType)}
}

type exactPredicate struct {
	mediaType string
}

func (p exactPredicate) Accepts(r Range) bool { return r.Includes(p.mediaType) }
func (p exactPredicate) String() string       { return p.mediaType }

// OneOf returns a predicate accepting ranges that include any of the
// given media types. With no arguments it is equivalent to Any.
func OneOf(mediaTypes ...string) Predicate {
	if len(mediaTypes) == 0 {
		return Any()
	}
	if len(mediaTypes) == 1 {
		return Exact(mediaTypes[0])
	}
	types := make([]string, len(mediaTypes))
	for i, mt := range mediaTypes {
		types[i] = strings.ToLower(mt)
	}
	sort.Strings(types)
	return oneOfPredicate{types: types}
}

type oneOfPredicate struct {
	types []string
}

func (p oneOfPredicate) Accepts(r Range) bool {
	for _, mt := range p.types {
		if r.Includes(mt) {
			return true
		}
	}
	return false
}

func (p oneOfPredicate) String() string { return strings.Join(p.types, "|") }
