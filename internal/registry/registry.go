package registry

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avadispatch/internal/mediatype"
	"github.com/vyrodovalexey/avadispatch/internal/observability"
	"github.com/vyrodovalexey/avadispatch/internal/route"
	"github.com/vyrodovalexey/avadispatch/internal/util"
)

// ContentTypeHeader is the request header consulted when several
// endpoints share a template and method and dispatch must negotiate.
const ContentTypeHeader = "Content-Type"

// Option configures a single Register call.
type Option func(*registration)

type registration struct {
	prefix   *route.Template
	consumes mediatype.Predicate
	produces []string
}

// WithPrefix prepends a shared template prefix to the registered
// template, the composition used when several endpoints hang off one
// declared base path.
func WithPrefix(prefix *route.Template) Option {
	return func(r *registration) { r.prefix = prefix }
}

// WithConsumes restricts the endpoint to requests whose Content-Type
// the predicate accepts. The default accepts every content type.
func WithConsumes(p mediatype.Predicate) Option {
	return func(r *registration) { r.consumes = p }
}

// WithProduces declares the media types the endpoint emits. Dispatch
// does not act on this; it is carried for callers.
func WithProduces(mediaTypes ...string) Option {
	return func(r *registration) { r.produces = mediaTypes }
}

// DispatchResult is the outcome of a successful Resolve.
type DispatchResult struct {
	Endpoint *Endpoint
	// Params maps the winning template's variable names to the raw
	// path text they captured.
	Params map[string]string
	// Negotiated is true when more than one endpoint shared the
	// terminal and the Content-Type header participated in selection.
	// Cache layers use it to key such results by content type.
	Negotiated bool
}

// Registry holds the registered endpoints and resolves requests against
// them.
//
// Registration is single-threaded: all Register calls happen before
// Freeze, and only a frozen registry may serve Resolve. This keeps the
// route tree free of locks on the hot path.
type Registry struct {
	tree       *route.Tree[*Endpoint]
	endpoints  []*Endpoint
	qualityKey string
	frozen     atomic.Bool
	logger     observability.Logger
}

// New creates an empty registry. qualityKey names the media-range
// parameter carrying quality weights; empty means the standard "q".
func New(qualityKey string, logger observability.Logger) *Registry {
	if qualityKey == "" {
		qualityKey = mediatype.DefaultQualityKey
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Registry{
		tree:       route.NewTree[*Endpoint](),
		qualityKey: qualityKey,
		logger:     logger,
	}
}

// QualityKey returns the configured quality parameter name.
func (r *Registry) QualityKey() string { return r.qualityKey }

// Len returns the number of registered endpoints.
func (r *Registry) Len() int { return len(r.endpoints) }

// Endpoint returns the endpoint with the given registration ID, or nil.
// Cache layers use it to rehydrate serialized dispatch results.
func (r *Registry) Endpoint(id int) *Endpoint {
	if id < 0 || id >= len(r.endpoints) {
		return nil
	}
	return r.endpoints[id]
}

// Register parses template and adds handler under it for method. Two
// endpoints may share a template and method only when their consumes
// predicates differ, since an identical predicate would make the pair
// indistinguishable at dispatch time.
func (r *Registry) Register(method, template string, handler any, opts ...Option) (*Endpoint, error) {
	if r.frozen.Load() {
		return nil, util.ErrFrozen
	}

	reg := registration{consumes: mediatype.Any()}
	for _, opt := range opts {
		opt(&reg)
	}

	tpl, err := route.ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	if reg.prefix != nil {
		tpl = reg.prefix.Join(tpl)
	}

	signature := reg.consumes.String()
	for _, existing := range r.tree.Values(tpl, method) {
		if existing.consumes.String() == signature {
			return nil, util.NewAmbiguousRegistrationError(tpl.String(), method, signature)
		}
	}

	ep := &Endpoint{
		id:       len(r.endpoints),
		template: tpl,
		method:   method,
		consumes: reg.consumes,
		produces: reg.produces,
		handler:  handler,
	}
	r.endpoints = append(r.endpoints, ep)
	r.tree.Add(tpl, method, ep)

	r.logger.Debug("endpoint registered",
		observability.String("method", method),
		observability.String("template", tpl.String()),
		observability.String("consumes", signature),
		observability.Int("id", ep.id),
	)
	return ep, nil
}

// Freeze marks the end of the registration phase. After Freeze the
// registry is immutable and safe for concurrent Resolve calls.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
	r.logger.Info("registry frozen",
		observability.Int("endpoints", len(r.endpoints)))
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Resolve finds the endpoint for a request. When several endpoints
// share the matched terminal, the Content-Type header selects among
// them: the header's ranges are considered in descending quality order
// and the first endpoint (in registration order) accepting a range
// wins. An absent header, or one accepting none of the candidates,
// falls back to the first-registered candidate. A malformed header is
// an error; it never falls back.
func (r *Registry) Resolve(ctx context.Context, method, path string, header http.Header) (*DispatchResult, error) {
	start := time.Now()
	m := GetMetrics()

	candidates, captures, ok := r.tree.Lookup(method, path)
	if !ok {
		m.ObserveResolve(outcomeNoMatch, time.Since(start))
		return nil, util.NewEndpointNotFoundError(method, path)
	}

	if len(candidates) == 1 {
		ep := candidates[0]
		m.ObserveResolve(outcomeMatched, time.Since(start))
		return &DispatchResult{
			Endpoint: ep,
			Params:   ep.bindParams(captures),
		}, nil
	}

	ep, err := r.negotiate(candidates, header)
	if err != nil {
		m.ObserveResolve(outcomeParseError, time.Since(start))
		r.logger.WithContext(ctx).Warn("content negotiation failed",
			observability.String("method", method),
			observability.String("path", path),
			observability.Error(err),
		)
		return nil, err
	}

	m.ObserveResolve(outcomeNegotiated, time.Since(start))
	return &DispatchResult{
		Endpoint:   ep,
		Params:     ep.bindParams(captures),
		Negotiated: true,
	}, nil
}

// negotiate picks one endpoint from candidates using the Content-Type
// header. Candidates arrive in registration order.
func (r *Registry) negotiate(candidates []*Endpoint, header http.Header) (*Endpoint, error) {
	value := ""
	if header != nil {
		value = header.Get(ContentTypeHeader)
	}
	if value == "" {
		return candidates[0], nil
	}

	group, err := mediatype.Parse(value, r.qualityKey)
	if err != nil {
		return nil, err
	}

	for _, rng := range group.ByQuality() {
		for _, ep := range candidates {
			if ep.consumes.Accepts(rng) {
				return ep, nil
			}
		}
	}
	return candidates[0], nil
}
