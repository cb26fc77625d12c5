// Package route implements path-template parsing and the route tree
// used to resolve (method, path) pairs to registered endpoints.
//
// A template is a slash-separated sequence of segments. Each segment is
// a literal, an unconstrained variable ({name}), or a mix of literal
// runs and constrained variables ({id: \d+}-rev-{rev}). A constraint
// whose pattern contains "/" may span multiple raw path segments.
//
// Lookup precedence at each tree level is literal, then constrained
// patterns in registration order, then the catch-all variable, with
// full backtracking: a branch that dead-ends (no endpoint for the
// request method at its terminal) is abandoned in favor of the next
// alternative at the same node.
//
// The tree is built single-threaded during registration and is
// immutable afterwards; lookups require no synchronization.
package route
