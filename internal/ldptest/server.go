// Package ldptest provides an in-memory LDP server for tests.
//
// The server stores RDF sources by path, versions them with ETags, honors
// If-Match and If-None-Match on PUT and GET, and can be told to drop
// predicates it does not know or to fail the next request for a path.
package ldptest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/geoknoesis/ldp-go/rdf"
	"github.com/geoknoesis/ldp-go/vocab"
)

// Request is a request the server received.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type entry struct {
	raw         []byte // served verbatim when set
	contentType string
	graph       *rdf.Graph
	etag        string
}

type failure struct {
	method string
	path   string
	status int
	header http.Header
	body   string
}

// Server is an httptest-backed LDP server.
type Server struct {
	// BareLinks writes the type Link header without angle brackets, as some
	// servers do.
	BareLinks bool
	// CacheControl, when set, is sent with every representation.
	CacheControl string

	srv *httptest.Server

	mu       sync.Mutex
	entries  map[string]*entry
	allowed  map[string]bool
	failures []failure
	requests []Request
	tags     int
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{entries: map[string]*entry{}}
	s.srv = httptest.NewServer(s)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the absolute URL of path.
func (s *Server) URL(path string) string {
	return s.srv.URL + path
}

// Client returns an HTTP client wired to the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Set stores body verbatim at path and returns its new ETag.
func (s *Server) Set(path, contentType, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	etag := s.nextETag()
	s.entries[path] = &entry{raw: []byte(body), contentType: contentType, etag: etag}
	return etag
}

// SetWithETag is Set with a caller-chosen ETag.
func (s *Server) SetWithETag(path, contentType, body, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = &entry{raw: []byte(body), contentType: contentType, etag: etag}
}

// ETag returns the current ETag of path, or "".
func (s *Server) ETag(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[path]; ok {
		return e.etag
	}
	return ""
}

// Has reports whether something is stored at path.
func (s *Server) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[path]
	return ok
}

// Graph returns the graph stored at path, or nil.
func (s *Server) Graph(path string) *rdf.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if !ok {
		return nil
	}
	g, err := s.graphOf(context.Background(), path, e)
	if err != nil {
		return nil
	}
	return g.Clone()
}

// AllowPredicates makes the server keep only statements with one of the
// given predicates on PUT and POST. With no arguments every predicate is
// kept again.
func (s *Server) AllowPredicates(predicates ...rdf.IRI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(predicates) == 0 {
		s.allowed = nil
		return
	}
	s.allowed = make(map[string]bool, len(predicates))
	for _, p := range predicates {
		s.allowed[p.Value] = true
	}
}

// FailNext makes the next method request for path fail with status and body.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.RespondNext(method, path, status, nil, body)
}

// RespondNext answers the next method request for path with the given
// response instead of the stored state, which is left untouched.
func (s *Server) RespondNext(method, path string, status int, header http.Header, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: path, status: status, header: header, body: body})
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})

	for i, f := range s.failures {
		if f.method == r.Method && f.path == r.URL.Path {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			for k, v := range f.header {
				w.Header()[k] = v
			}
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleGet(w, r)
	case http.MethodPut:
		s.handlePut(w, r, body)
	case http.MethodPost:
		s.handlePost(w, r, body)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, PUT, POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entries[r.URL.Path]
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("ETag", e.etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == e.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	contentType, body := e.contentType, e.raw
	if body == nil {
		format := negotiate(r.Header.Get("Accept"))
		data, err := rdf.Serialize(e.graph, format, rdf.WithPrefixes(vocab.Prefixes()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		contentType, body = format.ContentType(), data
	}

	link := "<" + vocab.LDP.Resource.Value + `>; rel="type"`
	if s.BareLinks {
		link = vocab.LDP.Resource.Value + `;rel="type"`
	}
	w.Header().Add("Link", link)
	w.Header().Set("Content-Type", contentType)
	if s.CacheControl != "" {
		w.Header().Set("Cache-Control", s.CacheControl)
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(body)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request, body []byte) {
	path := r.URL.Path
	existing, exists := s.entries[path]
	if r.Header.Get("If-None-Match") == "*" && exists {
		http.Error(w, "Resource already exists", http.StatusPreconditionFailed)
		return
	}
	if im := r.Header.Get("If-Match"); im != "" && (!exists || im != existing.etag) {
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = fmt.Fprintf(w, "Bad If-Match header value: '%s'", im)
		return
	}

	g, status := s.readGraph(r, path, body)
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	e := &entry{graph: g, etag: s.nextETag()}
	s.entries[path] = e
	w.Header().Set("ETag", e.etag)
	if exists {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Location", s.URL(path))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, body []byte) {
	if _, ok := s.entries[r.URL.Path]; !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	slug := r.Header.Get("Slug")
	if slug == "" {
		slug = fmt.Sprintf("res%d", s.tags+1)
	}
	path := strings.TrimSuffix(r.URL.Path, "/") + "/" + slug
	if _, taken := s.entries[path]; taken {
		path = fmt.Sprintf("%s-%d", path, s.tags+1)
	}

	g, status := s.readGraph(r, path, body)
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	e := &entry{graph: g, etag: s.nextETag()}
	s.entries[path] = e
	w.Header().Set("ETag", e.etag)
	w.Header().Set("Location", s.URL(path))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.entries[r.URL.Path]; !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	delete(s.entries, r.URL.Path)
	w.WriteHeader(http.StatusNoContent)
}

// readGraph parses a request body stored at path and applies the predicate
// filter. A non-zero status reports why the body was refused.
func (s *Server) readGraph(r *http.Request, path string, body []byte) (*rdf.Graph, int) {
	format, ok := rdf.FormatFromContentType(r.Header.Get("Content-Type"))
	if !ok {
		return nil, http.StatusUnsupportedMediaType
	}
	g, err := rdf.Parse(r.Context(), body, format, rdf.WithBase(s.URL(path)))
	if err != nil {
		return nil, http.StatusBadRequest
	}
	if s.allowed != nil {
		for _, t := range g.Triples() {
			if !s.allowed[t.P.Value] {
				g.Remove(t)
			}
		}
	}
	return g, 0
}

func (s *Server) graphOf(ctx context.Context, path string, e *entry) (*rdf.Graph, error) {
	if e.raw == nil {
		return e.graph, nil
	}
	format, ok := rdf.FormatFromContentType(e.contentType)
	if !ok {
		if format, ok = rdf.DetectFormat(e.raw); !ok {
			format = rdf.FormatTurtle
		}
	}
	return rdf.Parse(ctx, e.raw, format, rdf.WithBase(s.URL(path)))
}

// nextETag returns a tag no stored entry currently carries.
func (s *Server) nextETag() string {
	for {
		s.tags++
		tag := fmt.Sprintf(`"t%d"`, s.tags)
		inUse := false
		for _, e := range s.entries {
			if e.etag == tag {
				inUse = true
				break
			}
		}
		if !inUse {
			return tag
		}
	}
}

// negotiate picks the first media type in accept the codec supports.
func negotiate(accept string) rdf.Format {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		if f, ok := rdf.FormatFromContentType(strings.TrimSpace(mediaType)); ok {
			return f
		}
	}
	return rdf.FormatTurtle
}
