package rdf

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/piprate/json-gold/ld"
)

const (
	jsonldDefaultGraph = "@default"
	rdfLangStringIRI   = rdfNamespace + "langString"
)

// jsonldDecoder expands the document with json-gold and yields the triples
// of its default graph. Named graphs are ignored.
type jsonldDecoder struct {
	reader  io.Reader
	opts    Options
	loaded  bool
	pending []Triple
	err     error
}

func newJSONLDDecoder(r io.Reader, opts Options) Decoder {
	return &jsonldDecoder{reader: r, opts: opts}
}

func (d *jsonldDecoder) Next() (Triple, error) {
	if !d.loaded {
		d.loaded = true
		d.pending, d.err = d.load()
	}
	if d.err != nil {
		return Triple{}, d.err
	}
	if len(d.pending) == 0 {
		return Triple{}, io.EOF
	}
	triple := d.pending[0]
	d.pending = d.pending[1:]
	return triple, nil
}

func (d *jsonldDecoder) Close() error { return nil }

func (d *jsonldDecoder) load() ([]Triple, error) {
	data, err := io.ReadAll(d.reader)
	if err != nil {
		return nil, errors.Wrap(err, "jsonld: read input")
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Format: FormatJSONLD, Err: err}
	}

	proc := ld.NewJsonLdProcessor()
	goldOpts := ld.NewJsonLdOptions(d.opts.Base)
	result, err := proc.ToRDF(doc, goldOpts)
	if err != nil {
		return nil, &ParseError{Format: FormatJSONLD, Err: err}
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return nil, errors.Newf("jsonld: unexpected ToRDF result %T", result)
	}

	quads := dataset.Graphs[jsonldDefaultGraph]
	triples := make([]Triple, 0, len(quads))
	for _, quad := range quads {
		triple, err := tripleFromQuad(quad)
		if err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}
	return triples, nil
}

func tripleFromQuad(quad *ld.Quad) (Triple, error) {
	subject, err := termFromNode(quad.Subject)
	if err != nil {
		return Triple{}, err
	}
	predicate, err := termFromNode(quad.Predicate)
	if err != nil {
		return Triple{}, err
	}
	predicateIRI, ok := predicate.(IRI)
	if !ok {
		return Triple{}, errors.Wrapf(ErrInvalidStatement, "jsonld: predicate %s is not an IRI", predicate)
	}
	object, err := termFromNode(quad.Object)
	if err != nil {
		return Triple{}, err
	}
	return Triple{S: subject, P: predicateIRI, O: object}, nil
}

// termFromNode converts a json-gold node. The dataset may hold nodes by value
// or by pointer depending on how they were produced.
func termFromNode(node ld.Node) (Term, error) {
	switch value := node.(type) {
	case ld.IRI:
		return IRI{Value: value.Value}, nil
	case *ld.IRI:
		return IRI{Value: value.Value}, nil
	case ld.BlankNode:
		return BlankNode{ID: strings.TrimPrefix(value.Attribute, "_:")}, nil
	case *ld.BlankNode:
		return BlankNode{ID: strings.TrimPrefix(value.Attribute, "_:")}, nil
	case ld.Literal:
		return literalFromNode(value.Value, value.Datatype, value.Language), nil
	case *ld.Literal:
		return literalFromNode(value.Value, value.Datatype, value.Language), nil
	default:
		return nil, errors.Newf("jsonld: unsupported node %T", node)
	}
}

func literalFromNode(lexical, datatype, lang string) Literal {
	if lang != "" {
		return Literal{Lexical: lexical, Lang: lang}
	}
	if datatype == "" || datatype == xsdStringIRI || datatype == rdfLangStringIRI {
		return Literal{Lexical: lexical}
	}
	return Literal{Lexical: lexical, Datatype: IRI{Value: datatype}}
}

// jsonldEncoder buffers triples and writes one JSON-LD document on Close.
// With prefixes configured the document is compacted against them; otherwise
// it is written in expanded form.
type jsonldEncoder struct {
	writer  io.Writer
	opts    Options
	pending []Triple
	closed  bool
	err     error
}

func newJSONLDEncoder(w io.Writer, opts Options) Encoder {
	return &jsonldEncoder{writer: w, opts: opts}
}

func (e *jsonldEncoder) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if e.closed {
		return errors.New("jsonld: writer closed")
	}
	if !t.Valid() {
		return errors.Wrapf(ErrInvalidStatement, "jsonld: %s", t.Key())
	}
	e.pending = append(e.pending, t)
	return nil
}

// Flush is a no-op: a JSON-LD document can only be written as a whole.
func (e *jsonldEncoder) Flush() error { return e.err }

func (e *jsonldEncoder) Close() error {
	if e.closed || e.err != nil {
		return e.err
	}
	e.closed = true
	doc, err := e.document()
	if err != nil {
		e.err = err
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		e.err = errors.Wrap(err, "jsonld: marshal document")
		return e.err
	}
	if _, err := e.writer.Write(append(out, '\n')); err != nil {
		e.err = err
	}
	return e.err
}

func (e *jsonldEncoder) document() (interface{}, error) {
	nquads := NewGraph(e.pending...).String()
	proc := ld.NewJsonLdProcessor()
	goldOpts := ld.NewJsonLdOptions("")
	goldOpts.Format = "application/n-quads"
	expanded, err := proc.FromRDF(nquads, goldOpts)
	if err != nil {
		return nil, errors.Wrap(err, "jsonld: from rdf")
	}
	if len(e.opts.Prefixes) == 0 {
		return expanded, nil
	}

	context := make(map[string]interface{}, len(e.opts.Prefixes))
	for prefix, ns := range e.opts.Prefixes {
		if prefix == "" {
			continue
		}
		context[prefix] = ns
	}
	compacted, err := proc.Compact(expanded, map[string]interface{}{"@context": context}, ld.NewJsonLdOptions(""))
	if err != nil {
		return nil, errors.Wrap(err, "jsonld: compact")
	}
	return compacted, nil
}
