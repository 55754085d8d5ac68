// Package vocab holds the IRIs of the vocabularies used with LDP resources.
package vocab

import "github.com/geoknoesis/ldp-go/rdf"

const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	DCNamespace   = "http://purl.org/dc/terms/"
	DC11Namespace = "http://purl.org/dc/elements/1.1/"
	LDPNamespace  = "http://www.w3.org/ns/ldp#"
)

// RDF terms.
var RDF = struct {
	Type, First, Rest, Nil, LangString rdf.IRI
}{
	Type:       iri(RDFNamespace, "type"),
	First:      iri(RDFNamespace, "first"),
	Rest:       iri(RDFNamespace, "rest"),
	Nil:        iri(RDFNamespace, "nil"),
	LangString: iri(RDFNamespace, "langString"),
}

// RDFS terms.
var RDFS = struct {
	Label, Comment rdf.IRI
}{
	Label:   iri(RDFSNamespace, "label"),
	Comment: iri(RDFSNamespace, "comment"),
}

// XSD datatypes.
var XSD = struct {
	String, Integer, Decimal, Double, Boolean, DateTime rdf.IRI
}{
	String:   iri(XSDNamespace, "string"),
	Integer:  iri(XSDNamespace, "integer"),
	Decimal:  iri(XSDNamespace, "decimal"),
	Double:   iri(XSDNamespace, "double"),
	Boolean:  iri(XSDNamespace, "boolean"),
	DateTime: iri(XSDNamespace, "dateTime"),
}

// DC is Dublin Core terms.
var DC = struct {
	Title, Description, Creator, Created, Modified, Identifier rdf.IRI
}{
	Title:       iri(DCNamespace, "title"),
	Description: iri(DCNamespace, "description"),
	Creator:     iri(DCNamespace, "creator"),
	Created:     iri(DCNamespace, "created"),
	Modified:    iri(DCNamespace, "modified"),
	Identifier:  iri(DCNamespace, "identifier"),
}

// DC11 is the legacy Dublin Core elements vocabulary.
var DC11 = struct {
	Title, Description, Creator rdf.IRI
}{
	Title:       iri(DC11Namespace, "title"),
	Description: iri(DC11Namespace, "description"),
	Creator:     iri(DC11Namespace, "creator"),
}

// LDP holds the interaction model types and containment predicates.
var LDP = struct {
	Resource, RDFSource, NonRDFSource, Container, BasicContainer, Contains rdf.IRI
}{
	Resource:       iri(LDPNamespace, "Resource"),
	RDFSource:      iri(LDPNamespace, "RDFSource"),
	NonRDFSource:   iri(LDPNamespace, "NonRDFSource"),
	Container:      iri(LDPNamespace, "Container"),
	BasicContainer: iri(LDPNamespace, "BasicContainer"),
	Contains:       iri(LDPNamespace, "contains"),
}

func iri(ns, local string) rdf.IRI {
	return rdf.IRI{Value: ns + local}
}

// Prefixes returns a fresh prefix map for Turtle and JSON-LD output.
func Prefixes() map[string]string {
	return map[string]string{
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"xsd":  XSDNamespace,
		"dc":   DCNamespace,
		"dc11": DC11Namespace,
		"ldp":  LDPNamespace,
	}
}
