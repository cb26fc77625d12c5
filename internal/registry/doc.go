// Package registry binds handlers to path templates and resolves
// requests to endpoints.
//
// The registry has two phases. During registration, endpoints are added
// single-threaded; Freeze ends the phase. After Freeze, Resolve walks
// the immutable route tree with no locking and, when several endpoints
// share a terminal, negotiates among them using the request's
// Content-Type header.
package registry
