package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewEndpointNotFoundError("GET", "/users/42")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "GET")
	assert.Contains(t, err.Error(), "/users/42")

	var notFound *EndpointNotFoundError
	require.ErrorAs(t, error(err), &notFound)
	assert.Equal(t, "GET", notFound.Method)
	assert.Equal(t, "/users/42", notFound.Path)
}

func TestAmbiguousRegistrationError(t *testing.T) {
	t.Parallel()

	err := NewAmbiguousRegistrationError("/users/{id}", "POST", "application/json")

	assert.ErrorIs(t, err, ErrAmbiguous)
	assert.Contains(t, err.Error(), "/users/{id}")
	assert.Contains(t, err.Error(), "POST")
	assert.Contains(t, err.Error(), "application/json")
}

func TestTemplateError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad regex")
	err := NewTemplateErrorWithCause("/x/{id: [}", "invalid pattern", cause)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/x/{id: [}")

	plain := NewTemplateError("/y", "empty segment")
	assert.ErrorIs(t, plain, ErrInvalidInput)
	assert.Nil(t, errors.Unwrap(error(plain)))
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("server.port", "out of range")
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "out of range")

	cause := errors.New("parse failure")
	wrapped := NewConfigErrorWithCause("routes.template", "invalid", cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	base := errors.New("base")
	wrapped := WrapError(base, "context")

	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "context")
	assert.Nil(t, WrapError(nil, "context"))
}
