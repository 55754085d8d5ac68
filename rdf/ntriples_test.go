package rdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNTriplesDecodeErrors(t *testing.T) {
	inputs := map[string]string{
		"missing object":   "<http://example.org/s> <http://example.org/p> .\n",
		"missing dot":      "<http://example.org/s> <http://example.org/p> <http://example.org/o>\n",
		"graph term":       "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n",
		"literal subject":  "\"s\" <http://example.org/p> <http://example.org/o> .\n",
		"unterminated iri": "<http://example.org/s <http://example.org/p> <http://example.org/o> .\n",
		"bad lang":         "<http://example.org/s> <http://example.org/p> \"v\"@1x .\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			dec, err := NewDecoder(strings.NewReader(input), FormatNTriples)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := dec.Next(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNTriplesParseErrorPosition(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n<http://example.org/s> <http://example.org/p> .\n"
	_, err := Parse(context.Background(), []byte(input), FormatNTriples)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Line != 2 {
		t.Fatalf("expected line 2, got %d", parseErr.Line)
	}
	if Code(err) != ErrCodeParseError {
		t.Fatalf("unexpected code %q", Code(err))
	}
}

func TestNTriplesDecodeBlankAndLiteral(t *testing.T) {
	line := "_:b1 <http://example.org/p> \"v\"@en.\n"
	dec, err := NewDecoder(strings.NewReader(line), FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	triple, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := triple.S.(BlankNode); !ok || b.ID != "b1" {
		t.Fatalf("expected blank node subject, got %#v", triple.S)
	}
	if lit, ok := triple.O.(Literal); !ok || lit.Lang != "en" || lit.Lexical != "v" {
		t.Fatalf("expected lang literal, got %#v", triple.O)
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNTriplesDecodeDatatypeAndEscapes(t *testing.T) {
	line := "<http://example.org/s> <http://example.org/p> \"a\\tb\\u00E9\"^^<http://example.org/dt> .\n"
	g, err := Parse(context.Background(), []byte(line), FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	triple := g.Triples()[0]
	lit, ok := triple.O.(Literal)
	if !ok || lit.Datatype.Value != "http://example.org/dt" {
		t.Fatalf("expected datatype literal, got %#v", triple.O)
	}
	if lit.Lexical != "a\tbé" {
		t.Fatalf("unexpected lexical form %q", lit.Lexical)
	}
}

func TestNTriplesSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# header\n\n<http://example.org/s> <http://example.org/p> <http://example.org/o> . # trailing\n"
	g, err := Parse(context.Background(), []byte(input), FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("expected 1 statement, got %d", g.Len())
	}
}

func TestNTriplesRelativeIRIWithBase(t *testing.T) {
	input := "<> <http://example.org/p> <child> .\n"
	g, err := Parse(context.Background(), []byte(input), FormatNTriples, WithBase("http://example.org/doc/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewTriple(IRI{Value: "http://example.org/doc/"}, exP, IRI{Value: "http://example.org/doc/child"})
	if !g.Has(want) {
		t.Fatalf("expected resolved statement, got %s", g)
	}
}

func TestNTriplesRoundTrip(t *testing.T) {
	g := NewGraph(
		NewTriple(exS, exP, NewLiteral("multi\nline \"quoted\"")),
		NewTriple(exS, exP, NewLangLiteral("hello", "en")),
		NewTriple(BlankNode{ID: "b0"}, exQ, NewTypedLiteral("42", IRI{Value: xsdIntegerIRI})),
	)
	data, err := Serialize(g, FormatNTriples)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	back, err := Parse(context.Background(), data, FormatNTriples)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !g.Equal(back) {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", g, back)
	}
	if string(data) != g.String() {
		t.Fatalf("serialized form must match Graph.String")
	}
}

func TestNTriplesEncoderRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := enc.Write(Triple{S: NewLiteral("x"), P: exP, O: exO}); !errors.Is(err, ErrInvalidStatement) {
		t.Fatalf("expected ErrInvalidStatement, got %v", err)
	}
}
