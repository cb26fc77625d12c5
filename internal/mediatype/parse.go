package mediatype

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avadispatch/internal/util"
)

// ParseError indicates a grammar violation in a media-range header.
// The parser does not attempt recovery: the first violation aborts the
// parse, and callers must not fall back to a default interpretation.
type ParseError struct {
	Header  string
	Pos     int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed media range header at offset %d: %s", e.Pos, e.Message)
}

// Is checks if the error matches the target.
func (e *ParseError) Is(target error) bool {
	if target == util.ErrInvalidInput {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// Parse parses a media-range header value into a Group, preserving
// declaration order. qualityKey names the parameter carrying the
// range's quality weight; an empty key means DefaultQualityKey. A range
// without the quality parameter defaults to quality 1.
//
// The grammar is strict: ranges are separated by top-level commas and
// parameters by top-level semicolons (separators inside quoted values
// are verbatim); whitespace is permitted only immediately after a
// separator; quality values carry at most three fractional digits; a
// quote outside a well-formed quoted span is a violation. Any
// violation returns a *ParseError.
func Parse(header, qualityKey string) (Group, error) {
	if qualityKey == "" {
		qualityKey = DefaultQualityKey
	}
	if header == "" {
		return nil, nil
	}

	p := &parser{s: header, qualityKey: qualityKey}
	return p.parse()
}

// parser scans a header byte by byte, tracking the position for error
// reporting.
type parser struct {
	s          string
	i          int
	qualityKey string
}

func (p *parser) errf(format string, args ...any) *ParseError {
	return &ParseError{Header: p.s, Pos: p.i, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() (Group, error) {
	var g Group
	for {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		g = append(g, *r)

		if p.i >= len(p.s) {
			return g, nil
		}
		p.i++ // consume ','
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errf("trailing comma")
		}
	}
}

// parseRange parses one type/subtype token plus its parameters.
func (p *parser) parseRange() (*Range, error) {
	tok, err := p.token("media range")
	if err != nil {
		return nil, err
	}
	if strings.Count(tok, "/") != 1 {
		return nil, p.errf("media range %q must be type/subtype", tok)
	}
	t, s, _ := strings.Cut(tok, "/")
	if t == "" || s == "" {
		return nil, p.errf("media range %q must be type/subtype", tok)
	}

	r := &Range{
		Type:    strings.ToLower(t),
		Subtype: strings.ToLower(s),
		quality: qualityScale,
	}

	for p.i < len(p.s) && p.s[p.i] == ';' {
		p.i++ // consume ';'
		p.skipSpace()
		key, value, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		if key == p.qualityKey {
			q := parseQuality(value)
			if q < 0 {
				return nil, p.errf("invalid quality value %q", value)
			}
			r.quality = q
			continue
		}
		r.Params = append(r.Params, Param{Key: key, Value: value})
	}

	return r, nil
}

// parseParam parses a single key=value parameter. The value may be
// quoted, in which case commas and semicolons inside it are verbatim.
func (p *parser) parseParam() (key, value string, err error) {
	start := p.i
	for p.i < len(p.s) {
		switch c := p.s[p.i]; c {
		case '=':
			goto haveKey
		case ',', ';':
			return "", "", p.errf("parameter without '='")
		case ' ', '\t':
			return "", "", p.errf("whitespace not permitted inside parameter")
		case '"':
			return "", "", p.errf("unexpected quote in parameter key")
		default:
			p.i++
		}
	}
	return "", "", p.errf("parameter without '='")

haveKey:
	key = p.s[start:p.i]
	if key == "" {
		return "", "", p.errf("empty parameter key")
	}
	p.i++ // consume '='

	if p.i < len(p.s) && p.s[p.i] == '"' {
		value, err = p.quotedValue()
		return key, value, err
	}

	vstart := p.i
	for p.i < len(p.s) {
		switch c := p.s[p.i]; c {
		case ',', ';':
			goto haveValue
		case ' ', '\t':
			return "", "", p.errf("whitespace not permitted inside parameter value")
		case '"':
			return "", "", p.errf("misplaced quote in parameter value")
		default:
			p.i++
		}
	}
haveValue:
	value = p.s[vstart:p.i]
	if value == "" {
		return "", "", p.errf("empty parameter value")
	}
	return key, value, nil
}

// quotedValue consumes a "..." span. The opening quote is at p.i.
func (p *parser) quotedValue() (string, error) {
	p.i++ // consume opening '"'
	start := p.i
	for p.i < len(p.s) {
		if p.s[p.i] == '"' {
			value := p.s[start:p.i]
			p.i++ // consume closing '"'
			if p.i < len(p.s) && p.s[p.i] != ',' && p.s[p.i] != ';' {
				return "", p.errf("unexpected character after quoted value")
			}
			return value, nil
		}
		p.i++
	}
	return "", p.errf("unterminated quoted value")
}

// token consumes a run of token characters up to a separator or end of
// input. Whitespace and quotes inside a token are grammar violations.
func (p *parser) token(what string) (string, error) {
	start := p.i
	for p.i < len(p.s) {
		switch c := p.s[p.i]; c {
		case ',', ';':
			goto done
		case ' ', '\t':
			return "", p.errf("whitespace not permitted in %s", what)
		case '"':
			return "", p.errf("unexpected quote in %s", what)
		default:
			p.i++
		}
	}
done:
	if p.i == start {
		return "", p.errf("empty %s", what)
	}
	return p.s[start:p.i], nil
}

// skipSpace consumes spaces and tabs. It is invoked only immediately
// after a separator, the one position where whitespace is legal.
func (p *parser) skipSpace() {
	for p.i < len(p.s) && (p.s[p.i] == ' ' || p.s[p.i] == '\t') {
		p.i++
	}
}
