package rdf

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/piprate/json-gold/ld"
)

// Canonicalize relabels the blank nodes of g with the URDNA2015 algorithm so
// that isomorphic graphs become equal sets. A graph without blank nodes is
// already canonical and is returned as a copy.
func Canonicalize(g *Graph) (*Graph, error) {
	if !g.HasBlankNodes() {
		return g.Clone(), nil
	}
	dataset, err := (&ld.NQuadRDFSerializer{}).Parse(g.String())
	if err != nil {
		return nil, errors.Wrap(err, "canonicalize: load dataset")
	}

	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.Algorithm = ld.AlgorithmURDNA2015
	normalized, err := ld.NewJsonLdApi().Normalize(dataset, opts)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalize: normalize")
	}
	text, ok := normalized.(string)
	if !ok {
		return nil, errors.Newf("canonicalize: unexpected normalization result %T", normalized)
	}
	return Parse(context.Background(), []byte(text), FormatNTriples)
}

// Isomorphic reports whether a and b are equal up to blank node labels.
func Isomorphic(a, b *Graph) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	if !a.HasBlankNodes() && !b.HasBlankNodes() {
		return a.Equal(b), nil
	}
	ca, err := Canonicalize(a)
	if err != nil {
		return false, err
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false, err
	}
	return ca.Equal(cb), nil
}
