package ldp

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ldp-go/rdf"
)

func TestParseLinks(t *testing.T) {
	t.Run("bracketed", func(t *testing.T) {
		links := ParseLinks(`<http://www.w3.org/ns/ldp#Resource>; rel="type"`)
		require.Len(t, links, 1)
		assert.Equal(t, "http://www.w3.org/ns/ldp#Resource", links[0].URI)
		assert.Equal(t, "type", links[0].Rel)
	})

	t.Run("bare", func(t *testing.T) {
		links := ParseLinks(`http://www.w3.org/ns/ldp#Resource;rel="type"`)
		require.Len(t, links, 1)
		assert.Equal(t, "http://www.w3.org/ns/ldp#Resource", links[0].URI)
		assert.True(t, links[0].HasRel("type"))
	})

	t.Run("several with separators inside", func(t *testing.T) {
		links := ParseLinks(`<http://example.org/a,b>; rel="describedby", <http://www.w3.org/ns/ldp#RDFSource>; rel="type canonical"`)
		require.Len(t, links, 2)
		assert.Equal(t, "http://example.org/a,b", links[0].URI)
		assert.True(t, links[1].HasRel("type"))
		assert.True(t, links[1].HasRel("canonical"))
		assert.False(t, links[0].HasRel("type"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ParseLinks(""))
	})
}

func TestParseHeader(t *testing.T) {
	raw := http.Header{}
	raw.Set("ETag", `"t1"`)
	raw.Set("Content-Type", "text/turtle; charset=utf-8")
	raw.Set("Location", "http://example.org/r")
	raw.Set("Cache-Control", "no-store, max-age=0")
	raw.Add("Link", `<http://www.w3.org/ns/ldp#Resource>; rel="type"`)
	raw.Add("Link", `<http://example.org/acl>; rel="acl"`)

	h := ParseHeader(raw)
	assert.Equal(t, `"t1"`, h.ETag)
	assert.Equal(t, "http://example.org/r", h.Location)
	assert.Len(t, h.Links, 2)
	require.NotNil(t, h.CacheControl)
	assert.True(t, h.CacheControl.NoStore)

	resp := &Response{Status: http.StatusOK, Header: h}
	assert.True(t, resp.OK())
	assert.True(t, resp.IsLDPResource())
	assert.True(t, resp.NoStore())
	format, ok := resp.Format()
	assert.True(t, ok)
	assert.Equal(t, rdf.FormatTurtle, format)
}

func TestResponseWithoutHeaders(t *testing.T) {
	resp := &Response{Status: http.StatusNotFound, Header: ParseHeader(http.Header{})}
	assert.False(t, resp.OK())
	assert.False(t, resp.IsLDPResource())
	assert.False(t, resp.NoStore())
	assert.Nil(t, resp.Header.CacheControl)
	_, ok := resp.Format()
	assert.False(t, ok)

	var missing *Response
	assert.False(t, missing.OK())
	assert.False(t, missing.IsLDPResource())
}
