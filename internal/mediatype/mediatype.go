// Package mediatype implements parsing and matching of HTTP media-range
// headers with quality-value weighting.
package mediatype

import (
	"sort"
	"strings"
)

// DefaultQualityKey is the standard quality parameter name. Callers may
// negotiate on a different key (for example a server-defined "qs").
const DefaultQualityKey = "q"

// qualityScale is the fixed-point scale for quality values: qualities
// carry at most three fractional digits, so thousandths are exact.
const qualityScale = 1000

// Param is a single media-range parameter. Parameters preserve their
// declaration order, so they are held as a list rather than a map.
type Param struct {
	Key   string
	Value string
}

// Range is one parsed media range: a type/subtype pair, its quality,
// and any non-quality parameters in declaration order.
type Range struct {
	Type    string
	Subtype string
	Params  []Param

	quality int // thousandths
}

// Quality returns the range's quality value in [0, 1].
func (r Range) Quality() float64 {
	return float64(r.quality) / qualityScale
}

// QualityThousandths returns the quality as an exact integer in
// [0, 1000], suitable for comparisons without float rounding.
func (r Range) QualityThousandths() int {
	return r.quality
}

// String returns the type/subtype pair.
func (r Range) String() string {
	return r.Type + "/" + r.Subtype
}

// Includes reports whether the range covers the given concrete media
// type, honoring */* and type/* wildcards in the range.
func (r Range) Includes(mediaType string) bool {
	t, s, _ := strings.Cut(strings.ToLower(mediaType), "/")
	if r.Type == "*" {
		return true
	}
	if r.Type != t {
		return false
	}
	return r.Subtype == "*" || r.Subtype == s
}

// Param returns the value of the named parameter and whether it was
// present.
func (r Range) Param(key string) (string, bool) {
	for _, p := range r.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Group is an ordered list of media ranges parsed from one header
// value. The slice preserves header declaration order; quality-based
// ranking is obtained through ByQuality.
type Group []Range

// ByQuality returns the ranges sorted by descending quality. Ranges of
// equal quality keep their declaration order.
func (g Group) ByQuality() []Range {
	out := make([]Range, len(g))
	copy(out, g)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].quality > out[j].quality
	})
	return out
}

// parseQuality parses a quality value into thousandths. The grammar
// permits "0", "1", and decimals with at most three fractional digits;
// "1" may only be followed by zeros. Returns -1 on any violation,
// including over-precise values such as "0.9999".
func parseQuality(s string) int {
	if len(s) == 0 || len(s) > 5 {
		return -1
	}

	switch s[0] {
	case '1':
		if len(s) == 1 {
			return qualityScale
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		for i := 2; i < len(s); i++ {
			if s[i] != '0' {
				return -1
			}
		}
		return qualityScale
	case '0':
		if len(s) == 1 {
			return 0
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		result := 0
		multiplier := 100
		for i := 2; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return -1
			}
			result += int(s[i]-'0') * multiplier
			multiplier /= 10
		}
		return result
	}

	return -1
}
