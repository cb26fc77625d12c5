package config

import (
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avadispatch/internal/route"
	"github.com/vyrodovalexey/avadispatch/internal/util"
)

var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// ValidateConfig checks the configuration for errors that would only
// surface later at registration or serve time.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return util.NewConfigError("config", "configuration is nil")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return util.NewConfigError("server.port", "port must be between 1 and 65535")
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return util.NewConfigError("logging.level", "unknown level "+cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "", "json", "console":
	default:
		return util.NewConfigError("logging.format", "unknown format "+cfg.Logging.Format)
	}

	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		return util.NewConfigError("tracing.samplingRate", "sampling rate must be between 0.0 and 1.0")
	}

	if key := cfg.Dispatch.QualityKey; strings.ContainsAny(key, " \t,;=\"") {
		return util.NewConfigError("dispatch.qualityKey", "quality key must not contain separators or whitespace")
	}

	if err := validateCache(cfg.Cache); err != nil {
		return err
	}

	return validateRoutes(cfg.Routes)
}

func validateCache(cfg *CacheConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	switch cfg.Type {
	case "", CacheTypeMemory:
	case CacheTypeRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return util.NewConfigError("cache.redis.url", "redis URL is required")
		}
		if cfg.Redis.TTLJitter < 0 || cfg.Redis.TTLJitter > 1 {
			return util.NewConfigError("cache.redis.ttlJitter", "jitter must be between 0.0 and 1.0")
		}
	default:
		return util.NewConfigError("cache.type", "unknown cache type "+cfg.Type)
	}

	return nil
}

func validateRoutes(routes []RouteConfig) error {
	names := make(map[string]bool, len(routes))

	for _, r := range routes {
		if r.Name == "" {
			return util.NewConfigError("routes.name", "route name is required")
		}
		if names[r.Name] {
			return util.NewConfigError("routes.name", "duplicate route name "+r.Name)
		}
		names[r.Name] = true

		if r.Template == "" {
			return util.NewConfigError("routes.template", "route "+r.Name+" has no template")
		}
		if _, err := route.ParseTemplate(r.Template); err != nil {
			return util.NewConfigErrorWithCause("routes.template", "route "+r.Name+" has an invalid template", err)
		}
		if r.Prefix != "" {
			if _, err := route.ParseTemplate(r.Prefix); err != nil {
				return util.NewConfigErrorWithCause("routes.prefix", "route "+r.Name+" has an invalid prefix", err)
			}
		}

		if len(r.Methods) == 0 {
			return util.NewConfigError("routes.methods", "route "+r.Name+" declares no methods")
		}
		for _, m := range r.Methods {
			if !validMethods[strings.ToUpper(m)] {
				return util.NewConfigError("routes.methods", "route "+r.Name+" has unknown method "+m)
			}
		}

		for _, ct := range r.Consumes {
			if !isMediaType(ct) {
				return util.NewConfigError("routes.consumes", "route "+r.Name+" has invalid media type "+ct)
			}
		}
		for _, ct := range r.Produces {
			if !isMediaType(ct) {
				return util.NewConfigError("routes.produces", "route "+r.Name+" has invalid media type "+ct)
			}
		}
	}

	return nil
}

// isMediaType reports whether s has the shape type/subtype.
func isMediaType(s string) bool {
	t, sub, ok := strings.Cut(s, "/")
	return ok && t != "" && sub != "" && !strings.ContainsAny(s, " \t,;=\"")
}
