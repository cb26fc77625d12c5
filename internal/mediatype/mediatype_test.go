package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avadispatch/internal/util"
)

func TestParseSingleRange(t *testing.T) {
	t.Parallel()

	g, err := Parse("application/json", "")
	require.NoError(t, err)
	require.Len(t, g, 1)
	assert.Equal(t, "application", g[0].Type)
	assert.Equal(t, "json", g[0].Subtype)
	assert.Equal(t, qualityScale, g[0].QualityThousandths())
	assert.Empty(t, g[0].Params)
}

func TestParseMultipleRanges(t *testing.T) {
	t.Parallel()

	g, err := Parse("text/html, application/json;q=0.8, */*;q=0.1", "")
	require.NoError(t, err)
	require.Len(t, g, 3)
	assert.Equal(t, "text/html", g[0].String())
	assert.Equal(t, 1000, g[0].QualityThousandths())
	assert.Equal(t, "application/json", g[1].String())
	assert.Equal(t, 800, g[1].QualityThousandths())
	assert.Equal(t, "*/*", g[2].String())
	assert.Equal(t, 100, g[2].QualityThousandths())
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	g, err := Parse("application/json;charset=utf-8;q=0.5;version=2", "")
	require.NoError(t, err)
	require.Len(t, g, 1)

	r := g[0]
	assert.Equal(t, 500, r.QualityThousandths())

	charset, ok := r.Param("charset")
	require.True(t, ok)
	assert.Equal(t, "utf-8", charset)

	version, ok := r.Param("version")
	require.True(t, ok)
	assert.Equal(t, "2", version)

	// The quality key is consumed, not kept as a parameter.
	_, ok = r.Param("q")
	assert.False(t, ok)
}

func TestParseQuotedValue(t *testing.T) {
	t.Parallel()

	g, err := Parse(`application/json;note="a,b;c",text/plain`, "")
	require.NoError(t, err)
	require.Len(t, g, 2)

	note, ok := g[0].Param("note")
	require.True(t, ok)
	assert.Equal(t, "a,b;c", note)
	assert.Equal(t, "text/plain", g[1].String())
}

func TestParseCustomQualityKey(t *testing.T) {
	t.Parallel()

	g, err := Parse("application/json;weight=0.25;q=0.9", "weight")
	require.NoError(t, err)
	require.Len(t, g, 1)
	assert.Equal(t, 250, g[0].QualityThousandths())

	// With a custom key, "q" is an ordinary parameter.
	q, ok := g[0].Param("q")
	require.True(t, ok)
	assert.Equal(t, "0.9", q)
}

func TestParseEmptyHeader(t *testing.T) {
	t.Parallel()

	g, err := Parse("", "")
	require.NoError(t, err)
	assert.Empty(t, g)
}

func TestParseViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"missing subtype", "application"},
		{"empty type", "/json"},
		{"empty subtype", "application/"},
		{"double slash", "a/b/c"},
		{"whitespace inside range", "application/ json"},
		{"whitespace before separator", "application/json ;q=1"},
		{"whitespace inside value", "application/json;charset=utf 8"},
		{"leading whitespace", " application/json"},
		{"trailing comma", "application/json,"},
		{"empty range", "application/json,,text/plain"},
		{"parameter without equals", "application/json;charset"},
		{"empty parameter key", "application/json;=utf-8"},
		{"empty parameter value", "application/json;charset="},
		{"stray quote in range", `applica"tion/json`},
		{"stray quote in key", `application/json;char"set=utf-8`},
		{"quote mid-value", `application/json;charset=ut"f-8`},
		{"unterminated quote", `application/json;note="abc`},
		{"text after closing quote", `application/json;note="abc"def`},
		{"quality two", "application/json;q=2"},
		{"quality above one", "application/json;q=1.5"},
		{"quality four digits", "application/json;q=0.1234"},
		{"quality no leading digit", "application/json;q=.5"},
		{"quality negative", "application/json;q=-1"},
		{"quality non-numeric", "application/json;q=high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.header, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrInvalidInput)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.header, perr.Header)
		})
	}
}

func TestParseQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"1", 1000},
		{"1.0", 1000},
		{"1.00", 1000},
		{"1.000", 1000},
		{"0", 0},
		{"0.5", 500},
		{"0.05", 50},
		{"0.005", 5},
		{"0.999", 999},
		{"", -1},
		{"1.", -1},
		{"0.", -1},
		{"1.001", -1},
		{"0.1234", -1},
		{"2", -1},
		{"00", -1},
		{"0.x", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseQuality(tt.in), "parseQuality(%q)", tt.in)
	}
}

func TestGroupByQuality(t *testing.T) {
	t.Parallel()

	g, err := Parse("a/b;q=0.2, c/d, e/f;q=0.2, g/h;q=0.9", "")
	require.NoError(t, err)

	sorted := g.ByQuality()
	require.Len(t, sorted, 4)
	assert.Equal(t, "c/d", sorted[0].String())
	assert.Equal(t, "g/h", sorted[1].String())
	// Equal qualities keep declaration order.
	assert.Equal(t, "a/b", sorted[2].String())
	assert.Equal(t, "e/f", sorted[3].String())

	// The receiver is untouched.
	assert.Equal(t, "a/b", g[0].String())
}

func TestRangeIncludes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rng       string
		mediaType string
		want      bool
	}{
		{"application/json", "application/json", true},
		{"application/json", "APPLICATION/JSON", true},
		{"application/json", "application/xml", false},
		{"application/*", "application/json", true},
		{"application/*", "text/plain", false},
		{"*/*", "anything/at-all", true},
	}

	for _, tt := range tests {
		g, err := Parse(tt.rng, "")
		require.NoError(t, err)
		assert.Equal(t, tt.want, g[0].Includes(tt.mediaType), "%s includes %s", tt.rng, tt.mediaType)
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	jsonRange := Range{Type: "application", Subtype: "json"}
	wildcard := Range{Type: "*", Subtype: "*"}

	assert.True(t, Any().Accepts(jsonRange))
	assert.Equal(t, "*/*", Any().String())

	exact := Exact("Application/JSON")
	assert.True(t, exact.Accepts(jsonRange))
	assert.True(t, exact.Accepts(wildcard))
	assert.False(t, exact.Accepts(Range{Type: "text", Subtype: "plain"}))
	assert.Equal(t, "application/json", exact.String())

	oneOf := OneOf("text/plain", "application/json")
	assert.True(t, oneOf.Accepts(jsonRange))
	assert.False(t, oneOf.Accepts(Range{Type: "image", Subtype: "png"}))
	// Canonical form is order independent.
	assert.Equal(t, OneOf("application/json", "text/plain").String(), oneOf.String())

	assert.Equal(t, "*/*", OneOf().String())
	assert.Equal(t, "text/plain", OneOf("text/plain").String())
}
