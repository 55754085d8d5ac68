package rdf

import (
	"bytes"
	"context"
	"io"

	"github.com/cockroachdb/errors"
)

// Decoder streams RDF triples from an input.
type Decoder interface {
	// Next returns the next triple, or io.EOF when the input is exhausted.
	Next() (Triple, error)
	Close() error
}

// Encoder streams RDF triples to an output.
type Encoder interface {
	Write(Triple) error
	Flush() error
	Close() error
}

// Option configures decoder and encoder behavior.
type Option func(*Options)

// Options configures decoder and encoder behavior.
type Options struct {
	// Context cancels long decodes.
	Context context.Context
	// Base resolves relative IRIs while decoding. The Turtle encoder also
	// emits it as @base.
	Base string
	// Prefixes abbreviates IRIs in Turtle output and compacts JSON-LD output.
	Prefixes map[string]string
	// MaxStatements limits the number of triples decoded. Zero means unlimited.
	MaxStatements int64
}

// WithContext sets the context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		opts.Context = ctx
	}
}

// WithBase sets the base IRI.
func WithBase(base string) Option {
	return func(opts *Options) {
		opts.Base = base
	}
}

// WithPrefixes sets the namespace prefixes used for output.
func WithPrefixes(prefixes map[string]string) Option {
	return func(opts *Options) {
		opts.Prefixes = prefixes
	}
}

// WithMaxStatements caps the number of decoded triples, for untrusted input.
func WithMaxStatements(n int64) Option {
	return func(opts *Options) {
		opts.MaxStatements = n
	}
}

func buildOptions(opts []Option) Options {
	options := Options{Context: context.Background()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}
	return options
}

// NewDecoder creates a decoder for the specified format.
func NewDecoder(r io.Reader, format Format, opts ...Option) (Decoder, error) {
	options := buildOptions(opts)
	var dec Decoder
	switch format {
	case FormatTurtle:
		dec = newTurtleDecoder(r, options)
	case FormatNTriples:
		dec = newNTriplesDecoder(r, options)
	case FormatJSONLD:
		dec = newJSONLDDecoder(r, options)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "decode %q", format)
	}
	return &guardedDecoder{inner: dec, opts: options}, nil
}

// NewEncoder creates an encoder for the specified format.
func NewEncoder(w io.Writer, format Format, opts ...Option) (Encoder, error) {
	options := buildOptions(opts)
	switch format {
	case FormatTurtle:
		return newTurtleEncoder(w, options), nil
	case FormatNTriples:
		return newNTriplesEncoder(w), nil
	case FormatJSONLD:
		return newJSONLDEncoder(w, options), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "encode %q", format)
	}
}

// Parse decodes a whole document into a graph.
func Parse(ctx context.Context, data []byte, format Format, opts ...Option) (*Graph, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dec, err := NewDecoder(bytes.NewReader(data), format, append(opts, WithContext(ctx))...)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	graph := NewGraph()
	for {
		triple, err := dec.Next()
		if err == io.EOF {
			return graph, nil
		}
		if err != nil {
			return nil, err
		}
		graph.Add(triple)
	}
}

// Serialize encodes a graph. Triples are written in key order so that equal
// graphs serialize identically.
func Serialize(g *Graph, format Format, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, format, opts...)
	if err != nil {
		return nil, err
	}
	for _, triple := range g.Triples() {
		if err := enc.Write(triple); err != nil {
			_ = enc.Close()
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// guardedDecoder applies context cancellation and the statement limit to
// any format decoder.
type guardedDecoder struct {
	inner Decoder
	opts  Options
	count int64
}

func (d *guardedDecoder) Next() (Triple, error) {
	if err := d.opts.Context.Err(); err != nil {
		return Triple{}, err
	}
	triple, err := d.inner.Next()
	if err != nil {
		return Triple{}, err
	}
	d.count++
	if d.opts.MaxStatements > 0 && d.count > d.opts.MaxStatements {
		return Triple{}, ErrStatementLimitExceeded
	}
	return triple, nil
}

func (d *guardedDecoder) Close() error { return d.inner.Close() }
