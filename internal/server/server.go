package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avadispatch/internal/config"
	"github.com/vyrodovalexey/avadispatch/internal/observability"
	"github.com/vyrodovalexey/avadispatch/internal/registry"
	"github.com/vyrodovalexey/avadispatch/internal/util"
)

// ginModeOnce ensures gin.SetMode is called once to avoid race
// conditions when several servers are created.
var ginModeOnce sync.Once

// Resolver resolves a request to a dispatch result. Both
// *registry.Registry and *cache.CachingResolver satisfy it.
type Resolver interface {
	Resolve(ctx context.Context, method, path string, header http.Header) (*registry.DispatchResult, error)
}

// Handler is the callable registered as an endpoint's handler. It runs
// after dispatch with the resolved endpoint and bound path parameters.
type Handler func(c *gin.Context, result *registry.DispatchResult)

// Server is the HTTP boundary: every request that is not an
// operational endpoint goes through the Resolver and then to the
// matched endpoint's Handler.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        config.ServerConfig
	logger     observability.Logger
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	resolver   atomic.Pointer[resolverBox]
	mu         sync.Mutex
	running    bool
}

// resolverBox wraps the interface so it can live in an atomic.Pointer.
type resolverBox struct {
	r Resolver
}

// New creates a server dispatching through resolver.
func New(
	cfg config.ServerConfig,
	resolver Resolver,
	logger observability.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
) *Server {
	if logger == nil {
		logger = observability.NopLogger()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	s := &Server{
		engine:  gin.New(),
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
	s.resolver.Store(&resolverBox{r: resolver})

	s.engine.Use(
		Recovery(logger),
		RequestID(),
		Logging(logger),
	)
	if metrics != nil {
		s.engine.Use(MetricsMiddleware(metrics))
	}

	if metrics != nil && cfg.MetricsPath != "" {
		s.engine.GET(cfg.MetricsPath, gin.WrapH(metrics.Handler()))
	}
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Dispatch owns every path gin has no static route for.
	s.engine.NoRoute(s.dispatch)

	return s
}

// SetResolver atomically swaps the resolver. In-flight requests keep
// the resolver they started with; new requests see the new one. This
// is how configuration reloads publish a rebuilt registry.
func (s *Server) SetResolver(r Resolver) {
	s.resolver.Store(&resolverBox{r: r})
}

// Engine returns the underlying gin engine, for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout.Duration(),
		WriteTimeout: s.cfg.WriteTimeout.Duration(),
		IdleTimeout:  s.cfg.IdleTimeout.Duration(),
	}

	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", addr),
		observability.Duration("readTimeout", s.cfg.ReadTimeout.Duration()),
		observability.Duration("writeTimeout", s.cfg.WriteTimeout.Duration()),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// dispatch resolves the request and invokes the matched endpoint's
// handler.
func (s *Server) dispatch(c *gin.Context) {
	ctx := c.Request.Context()

	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, "dispatch",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.path", c.Request.URL.Path),
			),
		)
		defer span.End()
	}

	res, err := s.resolver.Load().r.Resolve(ctx, c.Request.Method, c.Request.URL.Path, c.Request.Header)
	if err != nil {
		s.dispatchError(c, span, err)
		return
	}

	template := res.Endpoint.Template().String()
	c.Set(endpointContextKey, template)
	if span != nil {
		span.SetAttributes(attribute.String("dispatch.endpoint", template))
	}

	ctx = util.ContextWithEndpoint(ctx, template)
	ctx = util.ContextWithPathParams(ctx, res.Params)
	c.Request = c.Request.WithContext(ctx)

	handler, ok := res.Endpoint.Handler().(Handler)
	if !ok {
		s.logger.Error("endpoint handler has wrong type",
			observability.String("template", template),
			observability.String("method", res.Endpoint.Method()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "endpoint misconfigured",
		})
		return
	}

	handler(c, res)
}

// dispatchError maps resolution errors to HTTP responses. A malformed
// media-range header is the client's mistake; an unmatched path is not
// found; anything else is internal.
func (s *Server) dispatchError(c *gin.Context, span trace.Span, err error) {
	if span != nil {
		span.RecordError(err)
	}

	switch {
	case errors.Is(err, util.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})

	case errors.Is(err, util.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "no endpoint matched the request",
		})

	default:
		s.logger.WithContext(c.Request.Context()).Error("dispatch failed",
			observability.String("method", c.Request.Method),
			observability.String("path", c.Request.URL.Path),
			observability.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal Server Error",
		})
	}
}
