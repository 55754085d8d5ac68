package rdf

import (
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// turtleDecoder reads the whole document once and then hands out triples
// statement by statement.
type turtleDecoder struct {
	reader  io.Reader
	opts    Options
	cursor  *turtleCursor
	pending []Triple
	err     error
}

func newTurtleDecoder(r io.Reader, opts Options) Decoder {
	return &turtleDecoder{reader: r, opts: opts}
}

func (d *turtleDecoder) Next() (Triple, error) {
	for {
		if len(d.pending) > 0 {
			triple := d.pending[0]
			d.pending = d.pending[1:]
			return triple, nil
		}
		if d.err != nil {
			return Triple{}, d.err
		}
		if d.cursor == nil {
			data, err := io.ReadAll(d.reader)
			if err != nil {
				d.err = errors.Wrap(err, "turtle: read input")
				return Triple{}, d.err
			}
			d.cursor = newTurtleCursor(string(data), d.opts.Base)
		}
		triples, err := d.cursor.nextStatement()
		if err != nil {
			d.err = err
			return Triple{}, err
		}
		d.pending = triples
	}
}

func (d *turtleDecoder) Close() error { return nil }

type turtleCursor struct {
	input    string
	pos      int
	base     string
	prefixes map[string]string
	bnodes   int
	labels   map[string]string // document label -> emitted ID
	used     map[string]bool   // every blank node ID emitted so far
	out      []Triple
}

func newTurtleCursor(input, base string) *turtleCursor {
	return &turtleCursor{
		input:    input,
		base:     base,
		prefixes: map[string]string{},
		labels:   map[string]string{},
		used:     map[string]bool{},
	}
}

// nextStatement parses one directive or triples statement. Directives yield
// no triples; the end of input yields io.EOF.
func (c *turtleCursor) nextStatement() ([]Triple, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, io.EOF
	}
	c.out = nil
	handled, err := c.parseDirective()
	if err != nil || handled {
		return nil, err
	}
	if err := c.parseTriples(); err != nil {
		return nil, err
	}
	if !c.consume('.') {
		return nil, c.errorf("expected '.' at end of statement")
	}
	return c.out, nil
}

func (c *turtleCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		case '#':
			for c.pos < len(c.input) && c.input[c.pos] != '\n' {
				c.pos++
			}
		default:
			return
		}
	}
}

func (c *turtleCursor) peek() byte {
	if c.pos >= len(c.input) {
		return 0
	}
	return c.input[c.pos]
}

func (c *turtleCursor) peekAt(offset int) byte {
	if c.pos+offset >= len(c.input) {
		return 0
	}
	return c.input[c.pos+offset]
}

func (c *turtleCursor) consume(ch byte) bool {
	c.skipWS()
	if c.peek() == ch {
		c.pos++
		return true
	}
	return false
}

// hasKeyword matches kw at the cursor, followed by whitespace.
func (c *turtleCursor) hasKeyword(kw string, caseInsensitive bool) bool {
	if len(c.input)-c.pos <= len(kw) {
		return false
	}
	word := c.input[c.pos : c.pos+len(kw)]
	if caseInsensitive {
		if !strings.EqualFold(word, kw) {
			return false
		}
	} else if word != kw {
		return false
	}
	return isWhitespace(c.input[c.pos+len(kw)])
}

func (c *turtleCursor) parseDirective() (bool, error) {
	switch {
	case c.hasKeyword("@prefix", false):
		c.pos += len("@prefix")
		if err := c.parsePrefixDecl(); err != nil {
			return true, err
		}
		if !c.consume('.') {
			return true, c.errorf("expected '.' after @prefix directive")
		}
	case c.hasKeyword("@base", false):
		c.pos += len("@base")
		if err := c.parseBaseDecl(); err != nil {
			return true, err
		}
		if !c.consume('.') {
			return true, c.errorf("expected '.' after @base directive")
		}
	case c.hasKeyword("PREFIX", true):
		c.pos += len("PREFIX")
		return true, c.parsePrefixDecl()
	case c.hasKeyword("BASE", true):
		c.pos += len("BASE")
		return true, c.parseBaseDecl()
	default:
		return false, nil
	}
	return true, nil
}

func (c *turtleCursor) parsePrefixDecl() error {
	c.skipWS()
	end := strings.IndexByte(c.input[c.pos:], ':')
	if end < 0 {
		return c.errorf("expected prefix name")
	}
	name := c.input[c.pos : c.pos+end]
	if !isValidPrefixName(name) {
		return c.errorf("invalid prefix name %q", name)
	}
	c.pos += end + 1
	c.skipWS()
	iri, err := c.parseIRIRef()
	if err != nil {
		return err
	}
	c.prefixes[name] = iri.Value
	return nil
}

func (c *turtleCursor) parseBaseDecl() error {
	c.skipWS()
	iri, err := c.parseIRIRef()
	if err != nil {
		return err
	}
	c.base = iri.Value
	return nil
}

func (c *turtleCursor) parseTriples() error {
	c.skipWS()
	if c.peek() == '[' {
		subject, err := c.parseBlankNodePropertyList()
		if err != nil {
			return err
		}
		c.skipWS()
		// A property list may stand alone as a statement.
		if c.peek() == '.' {
			return nil
		}
		return c.parsePredicateObjectList(subject)
	}
	subject, err := c.parseSubject()
	if err != nil {
		return err
	}
	return c.parsePredicateObjectList(subject)
}

func (c *turtleCursor) parseSubject() (Term, error) {
	c.skipWS()
	switch {
	case c.peek() == '<':
		return c.parseIRIRef()
	case c.peek() == '_' && c.peekAt(1) == ':':
		return c.parseBlankNodeLabel()
	case c.peek() == '(':
		return c.parseCollection()
	case c.peek() == '"' || c.peek() == '\'':
		return nil, c.errorf("literal not allowed as subject")
	default:
		return c.parsePrefixedName()
	}
}

func (c *turtleCursor) parsePredicateObjectList(subject Term) error {
	for {
		predicate, err := c.parseVerb()
		if err != nil {
			return err
		}
		if err := c.parseObjectList(subject, predicate); err != nil {
			return err
		}
		c.skipWS()
		if c.peek() != ';' {
			return nil
		}
		for c.peek() == ';' {
			c.pos++
			c.skipWS()
		}
		// Trailing semicolons before the end of the list are allowed.
		if ch := c.peek(); ch == '.' || ch == ']' || ch == 0 {
			return nil
		}
	}
}

func (c *turtleCursor) parseObjectList(subject Term, predicate IRI) error {
	for {
		object, err := c.parseObject()
		if err != nil {
			return err
		}
		c.emit(subject, predicate, object)
		if !c.consume(',') {
			return nil
		}
	}
}

func (c *turtleCursor) parseVerb() (IRI, error) {
	c.skipWS()
	if c.peek() == 'a' {
		switch next := c.peekAt(1); {
		case isWhitespace(next), next == '<', next == '[', next == '(', next == '"', next == '\'':
			c.pos++
			return IRI{Value: rdfTypeIRI}, nil
		}
	}
	if c.peek() == '<' {
		return c.parseIRIRef()
	}
	return c.parsePrefixedName()
}

func (c *turtleCursor) parseObject() (Term, error) {
	c.skipWS()
	switch ch := c.peek(); {
	case ch == 0:
		return nil, c.errorf("unexpected end of input")
	case ch == '<':
		return c.parseIRIRef()
	case ch == '_' && c.peekAt(1) == ':':
		return c.parseBlankNodeLabel()
	case ch == '[':
		return c.parseBlankNodePropertyList()
	case ch == '(':
		return c.parseCollection()
	case ch == '"' || ch == '\'':
		return c.parseLiteral()
	}
	if lit, ok := c.tryParseNumber(); ok {
		return lit, nil
	}
	if lit, ok := c.tryParseBoolean(); ok {
		return lit, nil
	}
	return c.parsePrefixedName()
}

func (c *turtleCursor) parseIRIRef() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		ch := c.input[c.pos]
		if ch != '\\' && isDisallowedIRIChar(rune(ch)) {
			return IRI{}, c.errorf("invalid character %q in IRI", ch)
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value, err := unescapeString(c.input[start:c.pos])
	if err != nil {
		return IRI{}, c.fail(err)
	}
	c.pos++
	if c.base != "" && !IsAbsoluteIRI(value) {
		value = resolveIRI(c.base, value)
	}
	return IRI{Value: value}, nil
}

func (c *turtleCursor) parsePrefixedName() (IRI, error) {
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != ':' && (isNameChar(c.input[c.pos]) || c.input[c.pos] >= 0x80) {
		c.pos++
	}
	if c.peek() != ':' {
		c.pos = start
		return IRI{}, c.errorf("expected term")
	}
	prefix := c.input[start:c.pos]
	ns, ok := c.prefixes[prefix]
	if !ok {
		c.pos = start
		return IRI{}, c.errorf("unknown prefix %q", prefix)
	}
	c.pos++

	var local strings.Builder
	end, keep := c.pos, 0
scan:
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		switch {
		case ch == '\\':
			if c.pos+1 >= len(c.input) || !isValidPNLocalEscape(c.input[c.pos+1]) {
				return IRI{}, c.errorf("invalid escape in local name")
			}
			local.WriteByte(c.input[c.pos+1])
			c.pos += 2
		case ch == '%':
			if c.pos+2 >= len(c.input) || !isHexDigit(c.input[c.pos+1]) || !isHexDigit(c.input[c.pos+2]) {
				return IRI{}, c.errorf("invalid percent encoding in local name")
			}
			local.WriteString(c.input[c.pos : c.pos+3])
			c.pos += 3
		case ch == '.':
			// Dots may not end a local name, so they only count once
			// something follows them.
			local.WriteByte(ch)
			c.pos++
			continue
		case ch == ':' || isNameChar(ch) || ch >= 0x80:
			local.WriteByte(ch)
			c.pos++
		default:
			break scan
		}
		end, keep = c.pos, local.Len()
	}
	c.pos = end
	return IRI{Value: ns + local.String()[:keep]}, nil
}

func isValidPNLocalEscape(ch byte) bool {
	switch ch {
	case '_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '/', '?', '#', '@', '%':
		return true
	default:
		return false
	}
}

func (c *turtleCursor) parseBlankNodeLabel() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	end := c.pos
	for c.pos < len(c.input) && (isNameChar(c.input[c.pos]) || c.input[c.pos] >= 0x80) {
		c.pos++
		if c.input[c.pos-1] != '.' {
			end = c.pos
		}
	}
	c.pos = end
	if end == start {
		return BlankNode{}, c.errorf("blank node label missing")
	}
	return c.labeledBlankNode(c.input[start:end]), nil
}

// labeledBlankNode keeps a document label as the node ID unless a generated
// node already took it, in which case the label is renamed consistently.
func (c *turtleCursor) labeledBlankNode(label string) BlankNode {
	if id, ok := c.labels[label]; ok {
		return BlankNode{ID: id}
	}
	id := label
	for n := 1; c.used[id]; n++ {
		id = label + "_" + strconv.Itoa(n)
	}
	c.labels[label] = id
	c.used[id] = true
	return BlankNode{ID: id}
}

func (c *turtleCursor) parseLiteral() (Literal, error) {
	quote := c.input[c.pos]
	var raw string
	if c.peekAt(1) == quote && c.peekAt(2) == quote {
		c.pos += 3
		start := c.pos
		for {
			if c.pos >= len(c.input) {
				return Literal{}, c.errorf("unterminated long string")
			}
			ch := c.input[c.pos]
			if ch == '\\' {
				c.pos += 2
				continue
			}
			if ch != quote {
				c.pos++
				continue
			}
			run := 0
			for c.pos+run < len(c.input) && c.input[c.pos+run] == quote {
				run++
			}
			if run >= 3 {
				raw = c.input[start : c.pos+run-3]
				c.pos += run
				break
			}
			c.pos += run
		}
	} else {
		c.pos++
		start := c.pos
		for {
			if c.pos >= len(c.input) {
				return Literal{}, c.errorf("unterminated string")
			}
			ch := c.input[c.pos]
			if ch == '\\' {
				c.pos += 2
				continue
			}
			if ch == '\n' || ch == '\r' {
				return Literal{}, c.errorf("line break in short string")
			}
			if ch == quote {
				raw = c.input[start:c.pos]
				c.pos++
				break
			}
			c.pos++
		}
	}
	lexical, err := unescapeString(raw)
	if err != nil {
		return Literal{}, c.fail(err)
	}

	switch {
	case c.peek() == '@':
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && (isNameStartChar(c.input[c.pos]) || c.input[c.pos] == '-' || (c.input[c.pos] >= '0' && c.input[c.pos] <= '9')) {
			c.pos++
		}
		lang := c.input[start:c.pos]
		if !isValidLangTag(lang) {
			return Literal{}, c.errorf("invalid language tag %q", lang)
		}
		return Literal{Lexical: lexical, Lang: lang}, nil
	case c.peek() == '^' && c.peekAt(1) == '^':
		c.pos += 2
		var datatype IRI
		if c.peek() == '<' {
			datatype, err = c.parseIRIRef()
		} else {
			datatype, err = c.parsePrefixedName()
		}
		if err != nil {
			return Literal{}, err
		}
		return Literal{Lexical: lexical, Datatype: datatype}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *turtleCursor) tryParseNumber() (Literal, bool) {
	i := c.pos
	if i < len(c.input) && (c.input[i] == '+' || c.input[i] == '-') {
		i++
	}
	intDigits := countDigits(c.input[i:])
	i += intDigits
	hasDot := false
	fracDigits := 0
	if i+1 < len(c.input) && c.input[i] == '.' && isDigit(c.input[i+1]) {
		hasDot = true
		fracDigits = countDigits(c.input[i+1:])
		i += 1 + fracDigits
	}
	if intDigits == 0 && fracDigits == 0 {
		return Literal{}, false
	}
	hasExp := false
	if i < len(c.input) && (c.input[i] == 'e' || c.input[i] == 'E') {
		j := i + 1
		if j < len(c.input) && (c.input[j] == '+' || c.input[j] == '-') {
			j++
		}
		expDigits := countDigits(c.input[j:])
		if expDigits == 0 {
			return Literal{}, false
		}
		hasExp = true
		i = j + expDigits
	}
	if i < len(c.input) && !isTurtleDelimiter(c.input[i]) {
		return Literal{}, false
	}
	lexical := c.input[c.pos:i]
	c.pos = i
	switch {
	case hasExp:
		return Literal{Lexical: lexical, Datatype: IRI{Value: xsdDoubleIRI}}, true
	case hasDot:
		return Literal{Lexical: lexical, Datatype: IRI{Value: xsdDecimalIRI}}, true
	default:
		return Literal{Lexical: lexical, Datatype: IRI{Value: xsdIntegerIRI}}, true
	}
}

func (c *turtleCursor) tryParseBoolean() (Literal, bool) {
	for _, word := range []string{"true", "false"} {
		end := c.pos + len(word)
		if !strings.HasPrefix(c.input[c.pos:], word) {
			continue
		}
		if end < len(c.input) && !isTurtleDelimiter(c.input[end]) {
			continue
		}
		c.pos = end
		return Literal{Lexical: word, Datatype: IRI{Value: xsdBooleanIRI}}, true
	}
	return Literal{}, false
}

// parseCollection parses ( object* ) into an rdf:first/rdf:rest chain and
// returns its head.
func (c *turtleCursor) parseCollection() (Term, error) {
	c.pos++
	var items []Term
	for {
		c.skipWS()
		if c.peek() == ')' {
			c.pos++
			break
		}
		item, err := c.parseObject()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return IRI{Value: rdfNilIRI}, nil
	}
	head := c.newBlankNode()
	current := head
	for i, item := range items {
		c.emit(current, IRI{Value: rdfFirstIRI}, item)
		if i == len(items)-1 {
			c.emit(current, IRI{Value: rdfRestIRI}, IRI{Value: rdfNilIRI})
			break
		}
		next := c.newBlankNode()
		c.emit(current, IRI{Value: rdfRestIRI}, next)
		current = next
	}
	return head, nil
}

// parseBlankNodePropertyList parses [ predicateObjectList? ] and returns the
// blank node it describes.
func (c *turtleCursor) parseBlankNodePropertyList() (Term, error) {
	c.pos++
	node := c.newBlankNode()
	c.skipWS()
	if c.peek() == ']' {
		c.pos++
		return node, nil
	}
	if err := c.parsePredicateObjectList(node); err != nil {
		return nil, err
	}
	if !c.consume(']') {
		return nil, c.errorf("expected ']'")
	}
	return node, nil
}

// newBlankNode names an anonymous node with an ID no label has used.
func (c *turtleCursor) newBlankNode() BlankNode {
	for {
		c.bnodes++
		id := "genid" + strconv.Itoa(c.bnodes)
		if !c.used[id] {
			c.used[id] = true
			return BlankNode{ID: id}
		}
	}
}

func (c *turtleCursor) emit(s Term, p IRI, o Term) {
	c.out = append(c.out, Triple{S: s, P: p, O: o})
}

func (c *turtleCursor) errorf(format string, args ...interface{}) error {
	return c.fail(errors.Newf(format, args...))
}

func (c *turtleCursor) fail(err error) error {
	return newParseError(FormatTurtle, c.input, c.pos, err)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func countDigits(s string) int {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}

func isTurtleDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ';', ',', ')', ']', '.', '#':
		return true
	default:
		return false
	}
}
