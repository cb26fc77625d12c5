// Package server is the HTTP boundary of the dispatcher. It hosts a
// gin engine whose catch-all route resolves each request through a
// Resolver and invokes the matched endpoint's handler, plus the
// operational endpoints (metrics, health). The resolver is swappable
// at runtime so configuration reloads can publish a rebuilt registry
// without restarting the listener.
package server
