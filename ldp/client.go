package ldp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/geoknoesis/ldp-go/rdf"
)

// Transport performs the HTTP exchanges a Resource needs. Each call is a
// single attempt; the returned Response carries the status whatever it is,
// and an error means no response was received.
type Transport interface {
	Get(ctx context.Context, uri string, header http.Header) (*Response, error)
	Put(ctx context.Context, uri string, body []byte, header http.Header) (*Response, error)
	Post(ctx context.Context, uri string, body []byte, header http.Header) (*Response, error)
	Delete(ctx context.Context, uri string, header http.Header) (*Response, error)
}

// Client is the net/http Transport.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	format     rdf.Format
	logger     *zap.SugaredLogger
}

var _ Transport = (*Client)(nil)

// NewClient creates a client from cfg. Zero fields take their defaults.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: cleanhttp.DefaultPooledClient(),
		config:     cfg,
		format:     cfg.format(),
		logger:     logger,
	}
	if cfg.BaseURL != "" {
		// Validate already checked that it parses.
		c.baseURL, _ = url.Parse(cfg.BaseURL)
	}
	return c, nil
}

// SetHTTPClient replaces the underlying HTTP client, e.g. with an
// httptest server's client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.config }

// ResolveURI resolves ref against the base URL. Absolute references are
// returned unchanged.
func (c *Client) ResolveURI(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidURI, "%q: %v", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if c.baseURL == nil {
		return "", errors.Wrapf(ErrInvalidURI, "%q is relative and no base URL is configured", ref)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// Resource returns a handle for the resource at ref.
func (c *Client) Resource(ref string) (*Resource, error) {
	uri, err := c.ResolveURI(ref)
	if err != nil {
		return nil, err
	}
	return NewResource(c, uri), nil
}

// Load fetches the resource at ref into an entity configured from the
// client's settings; opts override them.
func (c *Client) Load(ctx context.Context, ref string, opts ...Option) (*Orm, error) {
	res, err := c.Resource(ref)
	if err != nil {
		return nil, err
	}
	return NewOrm(ctx, res, append(c.ormOptions(), opts...)...)
}

// Create stores graph as a new resource at ref and loads it back.
func (c *Client) Create(ctx context.Context, ref string, graph *rdf.Graph, opts ...Option) (*Orm, error) {
	res, err := c.Resource(ref)
	if err != nil {
		return nil, err
	}
	return Create(ctx, res, graph, append(c.ormOptions(), opts...)...)
}

func (c *Client) ormOptions() []Option {
	return []Option{
		WithFormat(c.format),
		WithIgnoredPredicates(c.config.ignoredPredicates()...),
		WithCanonicalDiff(c.config.CanonicalDiff),
		WithLogger(c.logger),
	}
}

func (c *Client) Get(ctx context.Context, uri string, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, uri, nil, header)
}

func (c *Client) Put(ctx context.Context, uri string, body []byte, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPut, uri, body, header)
}

func (c *Client) Post(ctx context.Context, uri string, body []byte, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPost, uri, body, header)
}

func (c *Client) Delete(ctx context.Context, uri string, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodDelete, uri, nil, header)
}

func (c *Client) do(ctx context.Context, method, uri string, body []byte, header http.Header) (*Response, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Accept", rdf.AcceptHeader(c.format))
	req.Header.Set("User-Agent", c.config.UserAgent)
	for key, values := range header {
		req.Header[http.CanonicalHeaderKey(key)] = values
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debugw("ldp request failed", "method", method, "uri", uri, "error", err)
		return nil, errors.Wrapf(err, "%s %s", method, uri)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s: read body", method, uri)
	}
	c.logger.Debugw("ldp request",
		"method", method,
		"uri", uri,
		"status", resp.StatusCode,
		"etag", resp.Header.Get("ETag"),
		"duration", time.Since(start))
	return newResponse(resp, data), nil
}
