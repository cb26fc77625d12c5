package main

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avadispatch/internal/cache"
	"github.com/vyrodovalexey/avadispatch/internal/config"
	"github.com/vyrodovalexey/avadispatch/internal/mediatype"
	"github.com/vyrodovalexey/avadispatch/internal/observability"
	"github.com/vyrodovalexey/avadispatch/internal/registry"
	"github.com/vyrodovalexey/avadispatch/internal/route"
	"github.com/vyrodovalexey/avadispatch/internal/server"
	"github.com/vyrodovalexey/avadispatch/internal/util"
)

// application holds all application components.
type application struct {
	server  *server.Server
	metrics *observability.Metrics
	tracer  *observability.Tracer
	config  *config.Config
	logger  observability.Logger

	mu    sync.Mutex
	cache cache.Cache
}

// buildRegistry constructs a frozen endpoint registry from the
// configured routes. Each route registers one endpoint per method,
// all sharing the route's handler.
func buildRegistry(cfg *config.Config, logger observability.Logger) (*registry.Registry, error) {
	reg := registry.New(cfg.Dispatch.QualityKey, logger)

	for _, rc := range cfg.Routes {
		opts := []registry.Option{}

		if rc.Prefix != "" {
			prefix, err := route.ParseTemplate(rc.Prefix)
			if err != nil {
				return nil, util.NewConfigErrorWithCause("routes."+rc.Name+".prefix", "invalid prefix template", err)
			}
			opts = append(opts, registry.WithPrefix(prefix))
		}

		if len(rc.Consumes) > 0 {
			opts = append(opts, registry.WithConsumes(mediatype.OneOf(rc.Consumes...)))
		}
		if len(rc.Produces) > 0 {
			opts = append(opts, registry.WithProduces(rc.Produces...))
		}

		handler := routeHandler(rc)

		for _, method := range rc.Methods {
			if _, err := reg.Register(strings.ToUpper(method), rc.Template, handler, opts...); err != nil {
				return nil, err
			}
		}
	}

	reg.Freeze()
	return reg, nil
}

// routeHandler builds the handler for a configured route. The daemon
// has no application logic of its own, so matched requests are
// answered with the dispatch outcome. Embedders replace this by
// registering their own handlers programmatically.
func routeHandler(rc config.RouteConfig) server.Handler {
	return func(c *gin.Context, result *registry.DispatchResult) {
		if len(result.Endpoint.Produces()) > 0 {
			c.Header("Content-Type", result.Endpoint.Produces()[0])
		}
		c.JSON(http.StatusOK, gin.H{
			"route":      rc.Name,
			"endpoint":   result.Endpoint.Template().String(),
			"method":     result.Endpoint.Method(),
			"params":     result.Params,
			"negotiated": result.Negotiated,
		})
	}
}

// buildResolver wraps the registry in a caching resolver when the
// cache is enabled. The returned cache is nil when caching is off.
func buildResolver(
	cfg *config.Config,
	reg *registry.Registry,
	logger observability.Logger,
) (server.Resolver, cache.Cache, error) {
	if cfg.Cache == nil || !cfg.Cache.Enabled {
		return reg, nil, nil
	}

	c, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return nil, nil, err
	}

	resolver := cache.NewCachingResolver(reg, c,
		cfg.Cache.TTL.Duration(),
		cfg.Cache.NegativeTTL.Duration(),
		logger,
	)
	return resolver, c, nil
}

// reload rebuilds the registry and resolver from a fresh configuration
// and atomically swaps them into the running server. The previous
// cache backend is closed after the swap so in-flight lookups finish
// against it.
func (app *application) reload(newCfg *config.Config) error {
	reg, err := buildRegistry(newCfg, app.logger)
	if err != nil {
		return err
	}

	resolver, newCache, err := buildResolver(newCfg, reg, app.logger)
	if err != nil {
		return err
	}

	app.server.SetResolver(resolver)

	app.mu.Lock()
	oldCache := app.cache
	app.cache = newCache
	app.config = newCfg
	app.mu.Unlock()

	if oldCache != nil {
		if closeErr := oldCache.Close(); closeErr != nil {
			app.logger.Warn("failed to close previous cache", observability.Error(closeErr))
		}
	}

	app.logger.Info("dispatch table reloaded",
		observability.Int("endpoints", reg.Len()),
	)
	return nil
}

// closeCache closes the active cache backend, if any.
func (app *application) closeCache() error {
	app.mu.Lock()
	c := app.cache
	app.cache = nil
	app.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}
