package ldp

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
)

// Resource is a handle on one remote LDP resource. It remembers the last
// response and the ETag of the last representation it fetched.
//
// A Resource is not safe for concurrent use.
type Resource struct {
	client Transport
	uri    string
	err    error

	last    *Response // most recent response of any kind
	current *Response // most recent successful representation
	etag    string
}

// NewResource binds uri to client. A relative or unparsable uri makes every
// operation fail with ErrInvalidURI.
func NewResource(client Transport, uri string) *Resource {
	r := &Resource{client: client, uri: uri}
	if u, err := url.Parse(uri); err != nil || !u.IsAbs() {
		r.err = errors.Wrapf(ErrInvalidURI, "%q", uri)
	}
	return r
}

// URI returns the resource URI.
func (r *Resource) URI() string { return r.uri }

// ETag returns the validator of the last successful GET or write, or "".
func (r *Resource) ETag() string { return r.etag }

// LastResponse returns the most recent response, successful or not.
func (r *Resource) LastResponse() *Response { return r.last }

// IsLDPResource reports whether the last representation announced an LDP
// interaction model.
func (r *Resource) IsLDPResource() bool { return r.current.IsLDPResource() }

// Get fetches the representation. A 404 yields a *NotFoundError and any
// other non-2xx a *RequestFailedError.
func (r *Resource) Get(ctx context.Context) (*Response, error) {
	return r.get(ctx, nil)
}

// MustGet is Get for callers that treat any failure, 404 included, as fatal.
func (r *Resource) MustGet(ctx context.Context) *Response {
	resp, err := r.Get(ctx)
	if err != nil {
		panic(err)
	}
	return resp
}

// Revalidate fetches the representation conditionally. If the server
// answers 304 Not Modified the previous response is returned unchanged.
// Responses marked no-store are never revalidated, and neither is a
// representation a later write has superseded.
func (r *Resource) Revalidate(ctx context.Context) (*Response, error) {
	if r.etag == "" || r.current == nil || r.current.NoStore() || r.current.Header.ETag != r.etag {
		return r.get(ctx, nil)
	}
	header := http.Header{}
	header.Set("If-None-Match", r.etag)
	return r.get(ctx, header)
}

func (r *Resource) get(ctx context.Context, header http.Header) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	resp, err := r.client.Get(ctx, r.uri, header)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", r.uri)
	}
	r.last = resp
	switch {
	case resp.Status == http.StatusNotModified && r.current != nil:
		return r.current, nil
	case resp.OK():
		r.current = resp
		r.etag = resp.Header.ETag
		return resp, nil
	case resp.Status == http.StatusNotFound:
		return nil, &NotFoundError{URI: r.uri}
	default:
		return nil, r.failed(http.MethodGet, resp)
	}
}

// Delete removes the resource. A resource that is already absent (404 or
// 410) counts as deleted.
func (r *Resource) Delete(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	resp, err := r.client.Delete(ctx, r.uri, nil)
	if err != nil {
		return errors.Wrapf(err, "delete %s", r.uri)
	}
	r.last = resp
	switch {
	case resp.OK(), resp.Status == http.StatusNotFound, resp.Status == http.StatusGone:
		r.current = nil
		r.etag = ""
		return nil
	default:
		return r.failed(http.MethodDelete, resp)
	}
}

// Create stores body at the resource URI only if nothing exists there yet.
// A 412 means the resource already exists.
func (r *Resource) Create(ctx context.Context, body []byte, contentType string) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("If-None-Match", "*")
	resp, err := r.client.Put(ctx, r.uri, body, header)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", r.uri)
	}
	r.last = resp
	if !resp.OK() {
		return nil, r.failed(http.MethodPut, resp)
	}
	r.written(resp)
	return resp, nil
}

// Update replaces the stored representation. When etag is set the PUT is
// conditional on it. Every response is returned as is; classifying a
// non-2xx status is up to the caller.
func (r *Resource) Update(ctx context.Context, body []byte, contentType, etag string) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	if etag != "" {
		header.Set("If-Match", etag)
	}
	resp, err := r.client.Put(ctx, r.uri, body, header)
	if err != nil {
		return nil, errors.Wrapf(err, "put %s", r.uri)
	}
	r.last = resp
	if resp.OK() {
		r.written(resp)
	}
	return resp, nil
}

// CreateChild posts body to this resource, acting as a container, and
// returns a handle on the resource the server created. slug is an optional
// name hint.
func (r *Resource) CreateChild(ctx context.Context, body []byte, contentType, slug string) (*Resource, error) {
	if r.err != nil {
		return nil, r.err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	if slug != "" {
		header.Set("Slug", slug)
	}
	resp, err := r.client.Post(ctx, r.uri, body, header)
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", r.uri)
	}
	r.last = resp
	if !resp.OK() {
		return nil, r.failed(http.MethodPost, resp)
	}
	if resp.Header.Location == "" {
		return nil, errors.Newf("post %s: response has no Location", r.uri)
	}
	base, _ := url.Parse(r.uri)
	loc, err := url.Parse(resp.Header.Location)
	if err != nil {
		return nil, errors.Wrapf(err, "post %s: bad Location", r.uri)
	}
	child := NewResource(r.client, base.ResolveReference(loc).String())
	child.etag = resp.Header.ETag
	return child, nil
}

// written records a successful write. The cached representation no longer
// matches the server, so it is dropped along with any validator for it.
func (r *Resource) written(resp *Response) {
	r.current = nil
	r.etag = resp.Header.ETag
}

func (r *Resource) failed(method string, resp *Response) error {
	return &RequestFailedError{Method: method, URI: r.uri, Status: resp.Status, Body: resp.Body}
}
