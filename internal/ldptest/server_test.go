package ldptest

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ldp-go/rdf"
	"github.com/geoknoesis/ldp-go/vocab"
)

const doc = "@prefix dc: <http://purl.org/dc/terms/> .\n<> dc:title \"Hello, world!\" .\n"

func do(t *testing.T, s *Server, method, path string, body string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL(path), bytes.NewBufferString(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestGetServesStoredBody(t *testing.T) {
	s := NewServer(t)
	etag := s.Set("/r", "text/turtle", doc)

	resp, body := do(t, s, http.MethodGet, "/r", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, etag, resp.Header.Get("ETag"))
	assert.Equal(t, "text/turtle", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Link"), "ldp#Resource")
	assert.Equal(t, doc, body)
}

func TestGetMissingIs404(t *testing.T) {
	s := NewServer(t)
	resp, _ := do(t, s, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetNotModified(t *testing.T) {
	s := NewServer(t)
	etag := s.Set("/r", "text/turtle", doc)
	resp, body := do(t, s, http.MethodGet, "/r", "", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, body)
}

func TestPutWithStaleETagIsRejected(t *testing.T) {
	s := NewServer(t)
	s.Set("/r", "text/turtle", doc)
	resp, body := do(t, s, http.MethodPut, "/r", doc, http.Header{
		"Content-Type": {"text/turtle"},
		"If-Match":     {`"stale"`},
	})
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, `Bad If-Match header value: '"stale"'`, body)
}

func TestPutReplacesAndBumpsETag(t *testing.T) {
	s := NewServer(t)
	etag := s.Set("/r", "text/turtle", doc)
	resp, _ := do(t, s, http.MethodPut, "/r", doc, http.Header{
		"Content-Type": {"text/turtle"},
		"If-Match":     {etag},
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEqual(t, etag, s.ETag("/r"))
	assert.Equal(t, s.ETag("/r"), resp.Header.Get("ETag"))

	g := s.Graph("/r")
	require.NotNil(t, g)
	assert.True(t, g.Has(rdf.NewTriple(rdf.IRI{Value: s.URL("/r")}, vocab.DC.Title, rdf.NewLiteral("Hello, world!"))))
}

func TestPutCreateOnlyRefusesExisting(t *testing.T) {
	s := NewServer(t)
	header := http.Header{"Content-Type": {"text/turtle"}, "If-None-Match": {"*"}}
	resp, _ := do(t, s, http.MethodPut, "/new", doc, header)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, s, http.MethodPut, "/new", doc, header)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestAllowPredicatesDropsOthers(t *testing.T) {
	s := NewServer(t)
	s.AllowPredicates(vocab.DC.Title)
	body := doc + "<> <http://example.org/predicate> \"xyz\" .\n"
	resp, _ := do(t, s, http.MethodPut, "/r", body, http.Header{"Content-Type": {"text/turtle"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, s.Graph("/r").Len())
}

func TestUnsupportedContentType(t *testing.T) {
	s := NewServer(t)
	resp, _ := do(t, s, http.MethodPut, "/r", "<p>hi</p>", http.Header{"Content-Type": {"text/html"}})
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestGetNegotiatesFormat(t *testing.T) {
	s := NewServer(t)
	_, _ = do(t, s, http.MethodPut, "/r", doc, http.Header{"Content-Type": {"text/turtle"}})
	resp, _ := do(t, s, http.MethodGet, "/r", "", http.Header{"Accept": {"application/n-triples, text/turtle;q=0.9"}})
	assert.Equal(t, "application/n-triples", resp.Header.Get("Content-Type"))
}

func TestPostCreatesChild(t *testing.T) {
	s := NewServer(t)
	s.Set("/c/", "text/turtle", "")
	resp, _ := do(t, s, http.MethodPost, "/c/", doc, http.Header{"Content-Type": {"text/turtle"}, "Slug": {"child"}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, s.URL("/c/child"), resp.Header.Get("Location"))
	assert.True(t, s.Has("/c/child"))
}

func TestDeleteAndFailNext(t *testing.T) {
	s := NewServer(t)
	s.Set("/r", "text/turtle", doc)
	s.FailNext(http.MethodDelete, "/r", http.StatusInternalServerError, "boom")

	resp, body := do(t, s, http.MethodDelete, "/r", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "boom", body)
	assert.True(t, s.Has("/r"))

	resp, _ = do(t, s, http.MethodDelete, "/r", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, s.Has("/r"))
	assert.Len(t, s.Requests(), 2)
}

func TestETagsAreUnique(t *testing.T) {
	s := NewServer(t)
	s.SetWithETag("/a", "text/turtle", doc, `"t1"`)
	assert.NotEqual(t, `"t1"`, s.Set("/b", "text/turtle", doc))
}

func TestRespondNextSendsHeaders(t *testing.T) {
	s := NewServer(t)
	etag := s.Set("/r", "text/turtle", doc)
	s.RespondNext(http.MethodGet, "/r", http.StatusOK, http.Header{"Content-Type": {"text/turtle"}}, "not turtle")

	resp, body := do(t, s, http.MethodGet, "/r", "", nil)
	assert.Equal(t, "text/turtle", resp.Header.Get("Content-Type"))
	assert.Equal(t, "not turtle", body)
	assert.Equal(t, etag, s.ETag("/r"))

	_, body = do(t, s, http.MethodGet, "/r", "", nil)
	assert.Equal(t, doc, body)
}
