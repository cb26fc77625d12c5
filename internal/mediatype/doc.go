// Package mediatype implements strict media-range parsing and
// content-type acceptance predicates for dispatch.
//
// The parser is deliberately unforgiving: a header that violates the
// grammar produces a *ParseError rather than a best-effort
// interpretation, so callers can surface the violation instead of
// silently routing to a default endpoint.
package mediatype
