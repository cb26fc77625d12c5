package config

// Config is the root configuration for the dispatch service.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`

	// Tracing configures OpenTelemetry trace export.
	Tracing TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty"`

	// Dispatch configures resolution behavior.
	Dispatch DispatchConfig `yaml:"dispatch,omitempty" json:"dispatch,omitempty"`

	// Cache configures the dispatch result cache.
	Cache *CacheConfig `yaml:"cache,omitempty" json:"cache,omitempty"`

	// Routes declares the endpoints to register at startup.
	Routes []RouteConfig `yaml:"routes" json:"routes"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the listen address. Empty means all interfaces.
	Host string `yaml:"host,omitempty" json:"host,omitempty"`

	// Port is the listen port.
	Port int `yaml:"port" json:"port"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// IdleTimeout is the maximum keep-alive idle time.
	IdleTimeout Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`

	// MetricsPath is the path serving Prometheus metrics.
	MetricsPath string `yaml:"metricsPath,omitempty" json:"metricsPath,omitempty"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// Format is the log output format: json or console.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Output is the log destination: stdout or stderr.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// TracingConfig configures OpenTelemetry trace export.
type TracingConfig struct {
	// Enabled turns trace export on.
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// ServiceName identifies this service in exported traces.
	ServiceName string `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`

	// SamplingRate is the trace sampling ratio (0.0 to 1.0).
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
}

// DispatchConfig configures resolution behavior.
type DispatchConfig struct {
	// QualityKey is the media-range parameter carrying quality
	// weights. Defaults to "q".
	QualityKey string `yaml:"qualityKey,omitempty" json:"qualityKey,omitempty"`
}

// RouteConfig declares one endpoint registration.
type RouteConfig struct {
	// Name identifies the route in logs and handler lookup.
	Name string `yaml:"name" json:"name"`

	// Prefix is an optional path template prepended to Template.
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`

	// Template is the path template, such as "/users/{id: \d+}".
	Template string `yaml:"template" json:"template"`

	// Methods lists the HTTP methods to register the route for.
	Methods []string `yaml:"methods" json:"methods"`

	// Consumes restricts the route to the listed content types.
	// Empty means the route accepts any content type.
	Consumes []string `yaml:"consumes,omitempty" json:"consumes,omitempty"`

	// Produces declares the media types the route emits.
	Produces []string `yaml:"produces,omitempty" json:"produces,omitempty"`
}

// Default server settings.
const (
	DefaultPort        = 8080
	DefaultMetricsPath = "/metrics"
)

// SetDefaults fills unset fields with defaults.
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "avadispatch"
	}
	if c.Tracing.SamplingRate == 0 {
		c.Tracing.SamplingRate = 1.0
	}
}
