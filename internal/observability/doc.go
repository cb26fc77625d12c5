// Package observability provides the logging, metrics, and tracing
// facilities shared by the dispatch framework:
//
//   - Structured logging backed by zap, behind a small Logger interface
//     so that library packages never depend on zap directly.
//   - Prometheus metrics with a custom registry served via promhttp,
//     shared by the registry and cache packages through collector
//     registration.
//   - OpenTelemetry tracing with an optional OTLP/gRPC exporter and
//     ratio-based sampling.
package observability
