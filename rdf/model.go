package rdf

import "strings"

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

const (
	rdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xsdNamespace = "http://www.w3.org/2001/XMLSchema#"

	rdfTypeIRI  = rdfNamespace + "type"
	rdfFirstIRI = rdfNamespace + "first"
	rdfRestIRI  = rdfNamespace + "rest"
	rdfNilIRI   = rdfNamespace + "nil"

	xsdStringIRI  = xsdNamespace + "string"
	xsdIntegerIRI = xsdNamespace + "integer"
	xsdDecimalIRI = xsdNamespace + "decimal"
	xsdDoubleIRI  = xsdNamespace + "double"
	xsdBooleanIRI = xsdNamespace + "boolean"
)

// Term is a value that can appear in RDF statements.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return i.Value }

// IsZero reports whether the IRI is empty, i.e. the relative self reference <>.
func (i IRI) IsZero() bool { return i.Value == "" }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node identifier.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI, if any.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// NewLiteral returns a plain string literal.
func NewLiteral(lexical string) Literal { return Literal{Lexical: lexical} }

// NewLangLiteral returns a language-tagged literal.
func NewLangLiteral(lexical, lang string) Literal { return Literal{Lexical: lexical, Lang: lang} }

// NewTypedLiteral returns a literal with an explicit datatype.
func NewTypedLiteral(lexical string, datatype IRI) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns the N-Triples form of the literal.
func (l Literal) String() string { return renderLiteral(l) }

// Value returns the lexical form.
func (l Literal) Value() string { return l.Lexical }

// Triple is an RDF statement.
type Triple struct {
	// S is the subject.
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
}

// NewTriple builds a triple from its three parts.
func NewTriple(s Term, p IRI, o Term) Triple { return Triple{S: s, P: p, O: o} }

// Valid reports whether all three positions are filled and legal: the
// subject may not be a literal.
func (t Triple) Valid() bool {
	if t.S == nil || t.O == nil || t.P.Value == "" {
		return false
	}
	return t.S.Kind() != TermLiteral
}

// Key returns the canonical N-Triples rendering of the triple (without the
// trailing dot). Two triples are the same statement iff their keys match.
func (t Triple) Key() string {
	return termKey(t.S) + " " + renderIRI(t.P) + " " + termKey(t.O)
}

// String returns the triple as an N-Triples line without the newline.
func (t Triple) String() string { return t.Key() + " ." }

// SameTerm reports whether two terms denote the same RDF term.
func SameTerm(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return termKey(a) == termKey(b)
}

// termKey renders a term for hashing. Literals typed xsd:string collapse onto
// plain literals and language tags compare case-insensitively.
func termKey(term Term) string {
	if lit, ok := term.(Literal); ok {
		if lit.Datatype.Value == xsdStringIRI {
			lit.Datatype = IRI{}
		}
		lit.Lang = strings.ToLower(lit.Lang)
		return renderLiteral(lit)
	}
	return renderTerm(term)
}

func renderIRI(iri IRI) string {
	return "<" + escapeIRI(iri.Value) + ">"
}

func renderLiteral(lit Literal) string {
	quoted := `"` + escapeLiteral(lit.Lexical) + `"`
	if lit.Lang != "" {
		return quoted + "@" + lit.Lang
	}
	if lit.Datatype.Value != "" {
		return quoted + "^^" + renderIRI(lit.Datatype)
	}
	return quoted
}

func renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return renderIRI(value)
	case BlankNode:
		return value.String()
	case Literal:
		return renderLiteral(value)
	default:
		return ""
	}
}
