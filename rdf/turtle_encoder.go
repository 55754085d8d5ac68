package rdf

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// turtleEncoder buffers triples and writes them grouped by subject on Flush.
// Subjects and predicates are emitted in key order so equal graphs produce
// identical documents.
type turtleEncoder struct {
	writer  *bufio.Writer
	opts    Options
	pending []Triple
	started bool
	closed  bool
	err     error
}

func newTurtleEncoder(w io.Writer, opts Options) Encoder {
	return &turtleEncoder{writer: bufio.NewWriter(w), opts: opts}
}

func (e *turtleEncoder) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if e.closed {
		return errors.New("turtle: writer closed")
	}
	if !t.Valid() {
		return errors.Wrapf(ErrInvalidStatement, "turtle: %s", t.Key())
	}
	e.pending = append(e.pending, t)
	return nil
}

func (e *turtleEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if !e.started {
		e.started = true
		e.writeHeader()
	}
	e.writeBody()
	e.pending = e.pending[:0]
	if e.err == nil {
		e.err = e.writer.Flush()
	}
	return e.err
}

func (e *turtleEncoder) Close() error {
	if e.closed {
		return e.err
	}
	err := e.Flush()
	e.closed = true
	return err
}

func (e *turtleEncoder) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.writer.WriteString(s)
}

func (e *turtleEncoder) writeHeader() {
	if e.opts.Base != "" {
		e.writeString("@base " + renderIRI(IRI{Value: e.opts.Base}) + " .\n")
	}
	prefixes := make([]string, 0, len(e.opts.Prefixes))
	for prefix := range e.opts.Prefixes {
		if isValidPrefixName(prefix) {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		e.writeString("@prefix " + prefix + ": " + renderIRI(IRI{Value: e.opts.Prefixes[prefix]}) + " .\n")
	}
	if e.opts.Base != "" || len(prefixes) > 0 {
		e.writeString("\n")
	}
}

func (e *turtleEncoder) writeBody() {
	if len(e.pending) == 0 {
		return
	}
	triples := append([]Triple(nil), e.pending...)
	sort.Slice(triples, func(i, j int) bool {
		return triples[i].Key() < triples[j].Key()
	})

	for i := 0; i < len(triples); {
		subject := triples[i].S
		j := i
		for j < len(triples) && SameTerm(triples[j].S, subject) {
			j++
		}
		e.writeSubject(subject, triples[i:j])
		i = j
	}
}

func (e *turtleEncoder) writeSubject(subject Term, triples []Triple) {
	e.writeString(e.renderTerm(subject))
	for i := 0; i < len(triples); {
		predicate := triples[i].P
		if i == 0 {
			e.writeString(" ")
		} else {
			e.writeString(" ;\n    ")
		}
		e.writeString(e.renderPredicate(predicate))
		for j := i; j < len(triples) && triples[j].P == predicate; j++ {
			if j > i {
				e.writeString(" ,")
			}
			e.writeString(" " + e.renderTerm(triples[j].O))
			i = j + 1
		}
	}
	e.writeString(" .\n")
}

func (e *turtleEncoder) renderPredicate(p IRI) string {
	if p.Value == rdfTypeIRI {
		return "a"
	}
	return e.renderIRI(p)
}

func (e *turtleEncoder) renderIRI(iri IRI) string {
	if qname, ok := abbreviateQName(iri.Value, e.opts.Prefixes); ok {
		return qname
	}
	return renderIRI(iri)
}

func (e *turtleEncoder) renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return e.renderIRI(value)
	case Literal:
		quoted := `"` + escapeLiteral(value.Lexical) + `"`
		switch {
		case value.Lang != "":
			return quoted + "@" + value.Lang
		case value.Datatype.Value != "" && value.Datatype.Value != xsdStringIRI:
			return quoted + "^^" + e.renderIRI(value.Datatype)
		default:
			return quoted
		}
	default:
		return strings.TrimSpace(renderTerm(term))
	}
}
