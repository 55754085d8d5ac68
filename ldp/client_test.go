package ldp

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ldp-go/internal/ldptest"
	"github.com/geoknoesis/ldp-go/rdf"
)

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"relative base", Config{BaseURL: "relative/path"}},
		{"negative timeout", Config{Timeout: -time.Second}},
		{"unknown format", Config{Format: "rdfxml"}},
		{"relative ignored predicate", Config{IgnoredPredicates: []string{"modified"}}},
		{"bad log level", Config{LogLevel: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, c.Config().UserAgent)
}

func TestResolveURI(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://example.org/base/"})
	require.NoError(t, err)

	uri, err := c.ResolveURI("doc")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/base/doc", uri)

	uri, err = c.ResolveURI("/other")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/other", uri)

	uri, err = c.ResolveURI("https://elsewhere.org/x")
	require.NoError(t, err)
	assert.Equal(t, "https://elsewhere.org/x", uri)

	bare, err := NewClient(Config{})
	require.NoError(t, err)
	_, err = bare.ResolveURI("doc")
	assert.True(t, errors.Is(err, ErrInvalidURI))
	_, err = bare.Resource("doc")
	assert.True(t, errors.Is(err, ErrInvalidURI))
}

func TestClientSendsNegotiationHeaders(t *testing.T) {
	s := ldptest.NewServer(t)
	s.Set("/r", "text/turtle", helloTurtle)
	c, err := NewClient(Config{BaseURL: s.URL("/"), Format: "ntriples", UserAgent: "test-agent"})
	require.NoError(t, err)
	c.SetHTTPClient(s.Client())

	resp, err := c.Get(context.Background(), s.URL("/r"), http.Header{"X-Extra": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	requests := s.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, rdf.AcceptHeader(rdf.FormatNTriples), requests[0].Header.Get("Accept"))
	assert.Equal(t, "test-agent", requests[0].Header.Get("User-Agent"))
	assert.Equal(t, "1", requests[0].Header.Get("X-Extra"))
}

func TestClientCallerHeadersOverrideAccept(t *testing.T) {
	s := ldptest.NewServer(t)
	s.Set("/r", "text/turtle", helloTurtle)
	c := newTestClient(t, s)

	_, err := c.Get(context.Background(), s.URL("/r"), http.Header{"Accept": {"application/ld+json"}})
	require.NoError(t, err)
	assert.Equal(t, "application/ld+json", s.Requests()[0].Header.Get("Accept"))
}

func TestClientNetworkError(t *testing.T) {
	c, err := NewClient(Config{Timeout: time.Second})
	require.NoError(t, err)

	// Nothing listens on port 1.
	_, err = c.Get(context.Background(), "http://127.0.0.1:1/r", nil)
	assert.Error(t, err)
	var rf *RequestFailedError
	assert.False(t, errors.As(err, &rf))
}

func TestClientLoadAppliesConfiguredIgnoredPredicates(t *testing.T) {
	s := ldptest.NewServer(t)
	s.Set("/r", "text/turtle", helloTurtle)
	s.AllowPredicates(rdf.IRI{Value: "http://purl.org/dc/terms/title"})
	c, err := NewClient(Config{
		BaseURL:           s.URL("/"),
		IgnoredPredicates: []string{exPredicate.Value},
	})
	require.NoError(t, err)
	c.SetHTTPClient(s.Client())

	o, err := c.Load(context.Background(), "r")
	require.NoError(t, err)
	o.Add(exPredicate, rdf.NewLiteral("managed"))
	require.NoError(t, o.SaveOrFail(context.Background()))
}
