package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GET|users/42", BuildKey("GET", "/users/42"))

	// Slash-variant paths share one key.
	assert.Equal(t, BuildKey("GET", "/users/42"), BuildKey("GET", "users/42/"))

	// Method and root path keep keys distinct.
	assert.NotEqual(t, BuildKey("GET", "/users/42"), BuildKey("POST", "/users/42"))
	assert.Equal(t, "GET|", BuildKey("GET", "/"))
}

func TestContentTypeKey(t *testing.T) {
	t.Parallel()

	base := BuildKey("POST", "/ingest")
	assert.Equal(t, "POST|ingest|application/json", ContentTypeKey(base, "application/json"))
	assert.NotEqual(t, ContentTypeKey(base, "a/b"), ContentTypeKey(base, "a/c"))
}

func TestHashKey(t *testing.T) {
	t.Parallel()

	h := HashKey("GET|users/42")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashKey("GET|users/42"))
	assert.NotEqual(t, h, HashKey("GET|users/43"))
}
