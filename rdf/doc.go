// Package rdf provides the RDF graph model used by the LDP client.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// A Graph is a set of triples keyed by their canonical N-Triples rendering,
// so two graphs holding the same statements are equal regardless of the
// order in which they were parsed. The set operations Union, Intersection,
// Difference and SymmetricDifference are what a client uses to compare what
// it sent with what a server stored.
//
// Three serializations are supported:
//   - Turtle, the default representation of LDP RDF sources.
//   - N-Triples, which is also the canonical text form of a graph.
//   - JSON-LD, through github.com/piprate/json-gold.
//
// Relative IRIs are resolved against Options.Base while decoding; an empty
// IRI reference <> becomes the base itself.
//
// Example (parsing a representation):
//
//	g, err := rdf.Parse(ctx, body, rdf.FormatTurtle, rdf.WithBase(uri))
//	if err != nil {
//	    // handle error
//	}
//	for title := range g.Objects(rdf.IRI{Value: uri}, dcTitle) {
//	    fmt.Println(title)
//	}
//
// Example (streaming decode):
//
//	dec, err := rdf.NewDecoder(r, rdf.FormatNTriples)
//	if err != nil {
//	    // handle error
//	}
//	defer dec.Close()
//
//	for {
//	    triple, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    // process triple.S, triple.P, triple.O
//	}
//
// Blank node labels are local to a document. Canonicalize relabels them with
// URDNA2015 when two graphs must be compared up to blank node renaming.
package rdf
