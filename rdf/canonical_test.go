package rdf

import "testing"

func TestCanonicalizeWithoutBlankNodes(t *testing.T) {
	g := NewGraph(NewTriple(exS, exP, exO))
	c, err := Canonicalize(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Equal(g) {
		t.Fatalf("graph without blank nodes must be unchanged, got %s", c)
	}
	c.Add(NewTriple(exS, exP, exO2))
	if g.Len() != 1 {
		t.Fatal("canonical copy must be independent")
	}
}

func TestCanonicalizeRelabelsBlankNodes(t *testing.T) {
	a := NewGraph(
		NewTriple(exS, exP, BlankNode{ID: "first"}),
		NewTriple(BlankNode{ID: "first"}, exQ, NewLiteral("v")),
	)
	b := NewGraph(
		NewTriple(exS, exP, BlankNode{ID: "genid7"}),
		NewTriple(BlankNode{ID: "genid7"}, exQ, NewLiteral("v")),
	)
	if a.Equal(b) {
		t.Fatal("graphs must differ before canonicalization")
	}
	ca, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("canonicalize a: %v", err)
	}
	cb, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("canonicalize b: %v", err)
	}
	if !ca.Equal(cb) {
		t.Fatalf("canonical forms differ:\n%s\nvs\n%s", ca, cb)
	}
}

func TestIsomorphic(t *testing.T) {
	a := NewGraph(NewTriple(exS, exP, BlankNode{ID: "x"}))
	b := NewGraph(NewTriple(exS, exP, BlankNode{ID: "y"}))
	c := NewGraph(NewTriple(exS, exQ, BlankNode{ID: "y"}))

	same, err := Isomorphic(a, b)
	if err != nil || !same {
		t.Fatalf("expected isomorphic, got %v (%v)", same, err)
	}
	same, err = Isomorphic(a, c)
	if err != nil || same {
		t.Fatalf("expected not isomorphic, got %v (%v)", same, err)
	}
	same, err = Isomorphic(NewGraph(NewTriple(exS, exP, exO)), NewGraph(NewTriple(exS, exP, exO2)))
	if err != nil || same {
		t.Fatalf("expected not isomorphic, got %v (%v)", same, err)
	}
}
