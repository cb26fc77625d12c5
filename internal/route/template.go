package route

import (
	"regexp"
	"strings"

	"github.com/vyrodovalexey/avadispatch/internal/util"
)

// defaultVarPattern matches a variable that appears inside a mixed
// literal/variable segment without an explicit constraint.
const defaultVarPattern = `[^/]+`

// Segment is one path-template component. A segment is either a literal
// (Literal is non-empty or the segment carries no variables), a
// catch-all variable ({name} on its own, matching any single raw
// segment), or a pattern segment compiled from literal runs and
// constrained variables (for example "{id: \d+}-rev-{rev}").
type Segment struct {
	// Literal is the raw text for pure literal segments.
	Literal string

	// Vars holds variable names in order of appearance.
	Vars []string

	// Source is the anchored regex source for pattern segments. It is
	// the identity used to share pattern children between templates.
	Source string

	pattern  *regexp.Regexp
	groups   []int // submatch index per variable
	catchAll bool
	spans    bool
}

// IsLiteral reports whether the segment matches exact text only.
func (s *Segment) IsLiteral() bool { return len(s.Vars) == 0 }

// IsCatchAll reports whether the segment is an unconstrained variable.
func (s *Segment) IsCatchAll() bool { return s.catchAll }

// Spans reports whether the segment's pattern contains a slash and may
// therefore consume more than one raw path segment.
func (s *Segment) Spans() bool { return s.spans }

// matchText matches a pattern segment against raw request text and
// returns the captured variable values in declaration order.
func (s *Segment) matchText(text string) ([]string, bool) {
	m := s.pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	vals := make([]string, len(s.Vars))
	for i, g := range s.groups {
		vals[i] = m[g]
	}
	return vals, true
}

// Template is an ordered sequence of Segments parsed from a path
// template string such as "/users/{id: \d+}/files/{name}".
type Template struct {
	raw      string
	segments []Segment
	vars     []string
}

// ParseTemplate parses a path template. At most one leading and one
// trailing slash are trimmed; an empty template (or "/") yields zero
// segments and matches the root path.
//
// Variable syntax inside a segment is {name} or {name: pattern}. A
// pattern whose source contains "/" may span multiple raw path
// segments. A pattern that fails to compile is a registration-time
// error.
func ParseTemplate(raw string) (*Template, error) {
	t := &Template{raw: raw}

	trimmed := trimSlashes(raw)
	if trimmed == "" {
		return t, nil
	}

	for _, part := range strings.Split(trimmed, "/") {
		if part == "" {
			return nil, util.NewTemplateError(raw, "empty segment")
		}
		seg, err := parseSegment(raw, part)
		if err != nil {
			return nil, err
		}
		t.segments = append(t.segments, *seg)
		t.vars = append(t.vars, seg.Vars...)
	}

	return t, nil
}

// MustParseTemplate parses a template and panics on error. Intended for
// statically known templates in tests and examples.
func MustParseTemplate(raw string) *Template {
	t, err := ParseTemplate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Join returns a new template composed of the receiver's segments
// followed by the suffix's segments. This is the explicit prefix/suffix
// composition used when a shared class-level prefix applies to several
// endpoint templates.
func (t *Template) Join(suffix *Template) *Template {
	joined := &Template{
		raw: strings.TrimSuffix(t.raw, "/") + "/" + strings.TrimPrefix(suffix.raw, "/"),
	}
	joined.segments = append(joined.segments, t.segments...)
	joined.segments = append(joined.segments, suffix.segments...)
	joined.vars = append(joined.vars, t.vars...)
	joined.vars = append(joined.vars, suffix.vars...)
	return joined
}

// String returns the template source text.
func (t *Template) String() string { return t.raw }

// Vars returns the ordered names of all variables in the template.
func (t *Template) Vars() []string { return t.vars }

// Segments returns the parsed segments.
func (t *Template) Segments() []Segment { return t.segments }

// parseSegment parses a single template segment, compiling a regex when
// the segment carries variables.
func parseSegment(template, text string) (*Segment, error) {
	if !strings.Contains(text, "{") {
		if strings.Contains(text, "}") {
			return nil, util.NewTemplateError(template, "unbalanced '}' in segment "+text)
		}
		return &Segment{Literal: text}, nil
	}

	var (
		src    strings.Builder
		vars   []string
		spans  bool
		single bool // segment is exactly one bare variable
	)
	src.WriteString("^")

	i := 0
	for i < len(text) {
		if text[i] != '{' {
			j := strings.IndexByte(text[i:], '{')
			if j < 0 {
				j = len(text) - i
			}
			lit := text[i : i+j]
			if strings.Contains(lit, "}") {
				return nil, util.NewTemplateError(template, "unbalanced '}' in segment "+text)
			}
			src.WriteString(regexp.QuoteMeta(lit))
			i += j
			continue
		}

		end, ok := matchBrace(text, i)
		if !ok {
			return nil, util.NewTemplateError(template, "unbalanced '{' in segment "+text)
		}
		name, pattern := splitVarSpec(text[i+1 : end])
		if name == "" {
			return nil, util.NewTemplateError(template, "missing variable name in segment "+text)
		}
		if pattern == "" {
			pattern = defaultVarPattern
			single = i == 0 && end == len(text)-1
		} else if strings.Contains(pattern, "/") {
			spans = true
		}
		src.WriteString("(")
		src.WriteString(pattern)
		src.WriteString(")")
		vars = append(vars, name)
		i = end + 1
	}
	src.WriteString("$")

	// A lone unconstrained variable is the catch-all case: it matches
	// any single raw segment and sits at the lowest precedence.
	if single && len(vars) == 1 {
		return &Segment{Vars: vars, catchAll: true}, nil
	}

	re, err := regexp.Compile(src.String())
	if err != nil {
		return nil, util.NewTemplateErrorWithCause(template, "invalid pattern in segment "+text, err)
	}

	seg := &Segment{
		Vars:    vars,
		Source:  src.String(),
		pattern: re,
		spans:   spans,
	}
	seg.groups = varGroups(re, len(vars))
	return seg, nil
}

// varGroups maps each template variable, in declaration order, to its
// top-level capture group index. Variable patterns may contain their
// own capture groups; those are nested inside the wrapping group and
// are skipped by tracking group nesting in the compiled source.
func varGroups(re *regexp.Regexp, n int) []int {
	groups := make([]int, 0, n)
	src := re.String()
	depth := 0
	idx := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '[':
			// Skip character classes; parens inside are literal.
			for i++; i < len(src) && src[i] != ']'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case '(':
			capturing := true
			if i+1 < len(src) && src[i+1] == '?' {
				// Only (?P<name>...) groups capture; (?:...) and
				// flag groups do not.
				capturing = strings.HasPrefix(src[i+1:], "?P<")
			}
			if capturing {
				idx++
				if depth == 0 {
					groups = append(groups, idx)
				}
			}
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return groups
}

// matchBrace returns the index of the '}' closing the '{' at start,
// honoring nested braces so that regex repetitions like \d{2} inside a
// variable constraint do not terminate the variable early.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// splitVarSpec splits a variable spec "name" or "name: pattern" into
// its parts, trimming surrounding whitespace.
func splitVarSpec(spec string) (name, pattern string) {
	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		return strings.TrimSpace(spec[:idx]), strings.TrimSpace(spec[idx+1:])
	}
	return strings.TrimSpace(spec), ""
}

// trimSlashes removes at most one leading and one trailing slash.
func trimSlashes(path string) string {
	path = strings.TrimPrefix(path, "/")
	return strings.TrimSuffix(path, "/")
}

// SplitPath splits a concrete request path into raw segments using the
// same trimming rules as template parsing: "foo/bar", "/foo/bar", and
// "/foo/bar/" all yield ["foo" "bar"], and "/" yields no segments.
func SplitPath(path string) []string {
	trimmed := trimSlashes(path)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// NormalizePath returns the canonical form of a request path used for
// cache keying: the path with at most one leading and one trailing
// slash removed.
func NormalizePath(path string) string {
	return trimSlashes(path)
}
