// Package util provides shared error types and context helpers used
// across the dispatch framework.
package util
