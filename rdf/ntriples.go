package rdf

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

type ntDecoder struct {
	reader *bufio.Reader
	base   string
	line   int
	err    error
}

func newNTriplesDecoder(r io.Reader, opts Options) Decoder {
	return &ntDecoder{reader: bufio.NewReader(r), base: opts.Base}
}

func (d *ntDecoder) Next() (Triple, error) {
	if d.err != nil {
		return Triple{}, d.err
	}
	for {
		line, err := d.readLine()
		if err != nil {
			d.err = err
			return Triple{}, err
		}
		d.line++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		triple, err := parseNTLine(trimmed, d.base)
		if err != nil {
			var cursorErr *ntError
			column := 0
			if errors.As(err, &cursorErr) {
				column = cursorErr.pos + 1 + strings.Index(line, trimmed)
			}
			d.err = &ParseError{Format: FormatNTriples, Line: d.line, Column: column, Err: err}
			return Triple{}, d.err
		}
		return triple, nil
	}
}

func (d *ntDecoder) Close() error { return nil }

func (d *ntDecoder) readLine() (string, error) {
	line, err := d.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func parseNTLine(line, base string) (Triple, error) {
	cursor := &ntCursor{input: line, base: base}
	subject, err := cursor.parseTerm(false)
	if err != nil {
		return Triple{}, err
	}
	predicate, err := cursor.parseIRI()
	if err != nil {
		return Triple{}, err
	}
	object, err := cursor.parseTerm(true)
	if err != nil {
		return Triple{}, err
	}
	if !cursor.consume('.') {
		return Triple{}, cursor.errorf("expected '.' at end of statement")
	}
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '#' {
		return Triple{}, cursor.errorf("unexpected content after statement")
	}
	return Triple{S: subject, P: predicate, O: object}, nil
}

type ntCursor struct {
	input string
	pos   int
	base  string
}

// ntError carries the cursor offset of an N-Triples syntax error.
type ntError struct {
	msg string
	pos int
}

func (e *ntError) Error() string { return "ntriples: " + e.msg }

func (c *ntCursor) errorf(msg string) error {
	return &ntError{msg: msg, pos: c.pos}
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) && (c.input[c.pos] == ' ' || c.input[c.pos] == '\t' || c.input[c.pos] == '\r' || c.input[c.pos] == '\n') {
		c.pos++
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token")
	}
}

func (c *ntCursor) parseIRI() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	end := strings.IndexByte(c.input[c.pos:], '>')
	if end < 0 {
		return IRI{}, c.errorf("unterminated IRI")
	}
	raw := c.input[c.pos : c.pos+end]
	value, err := unescapeString(raw)
	if err != nil || strings.ContainsAny(raw, " \t<\"{}|^`") {
		return IRI{}, c.errorf("invalid character in IRI")
	}
	c.pos += end + 1
	if c.base != "" && !IsAbsoluteIRI(value) {
		value = resolveIRI(c.base, value)
	}
	return IRI{Value: value}, nil
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isNTDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A label may not end with '.', which belongs to the statement instead.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	c.pos++
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '"' {
		if c.input[c.pos] == '\\' {
			c.pos++
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical, err := unescapeString(c.input[start:c.pos])
	if err != nil {
		return Literal{}, c.errorf(err.Error())
	}
	c.pos++
	if c.pos < len(c.input) && c.input[c.pos] == '@' {
		c.pos++
		langStart := c.pos
		for c.pos < len(c.input) && !isNTDelimiter(c.input[c.pos]) && c.input[c.pos] != '.' {
			c.pos++
		}
		lang :=c.input[langStart:c.pos]
		if !isValidLangTag(lang) {
			return Literal{}, c.errorf("invalid language tag")
		}
		return Literal{Lexical: lexical, Lang: lang}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func isNTDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '<', '"':
		return true
	default:
		return false
	}
}

type ntEncoder struct {
	writer *bufio.Writer
	err    error
}

func newNTriplesEncoder(w io.Writer) Encoder {
	return &ntEncoder{writer: bufio.NewWriter(w)}
}

func (e *ntEncoder) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if !t.Valid() {
		return errors.Wrapf(ErrInvalidStatement, "ntriples: %s", t.Key())
	}
	if _, err := e.writer.WriteString(t.Key() + " .\n"); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *ntEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

func (e *ntEncoder) Close() error {
	return e.Flush()
}
