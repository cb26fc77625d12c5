package registry

import (
	"github.com/vyrodovalexey/avadispatch/internal/mediatype"
	"github.com/vyrodovalexey/avadispatch/internal/route"
)

// Endpoint is one registered handler, bound to a path template, an HTTP
// method, and a content-type acceptance predicate. The handler itself
// is opaque to dispatch; callers assert it to their own type after
// resolution.
type Endpoint struct {
	id       int
	template *route.Template
	method   string
	consumes mediatype.Predicate
	produces []string
	handler  any
}

// ID returns the endpoint's stable registration index. IDs are dense
// and assigned in registration order, so they survive serialization in
// dispatch cache entries.
func (e *Endpoint) ID() int { return e.id }

// Template returns the endpoint's parsed path template.
func (e *Endpoint) Template() *route.Template { return e.template }

// Method returns the HTTP method the endpoint is registered for.
func (e *Endpoint) Method() string { return e.method }

// Consumes returns the content-type acceptance predicate.
func (e *Endpoint) Consumes() mediatype.Predicate { return e.consumes }

// Produces returns the media types the endpoint declares it emits.
func (e *Endpoint) Produces() []string { return e.produces }

// Handler returns the opaque handler supplied at registration.
func (e *Endpoint) Handler() any { return e.handler }

// bindParams zips the endpoint template's ordered variable names with
// the raw captures from a tree lookup.
func (e *Endpoint) bindParams(captures []string) map[string]string {
	vars := e.template.Vars()
	if len(vars) == 0 {
		return nil
	}
	params := make(map[string]string, len(vars))
	for i, name := range vars {
		if i < len(captures) {
			params[name] = captures[i]
		}
	}
	return params
}
