package rdf

import (
	"strings"
	"testing"
)

var (
	exS  = IRI{Value: "http://example.org/s"}
	exP  = IRI{Value: "http://example.org/p"}
	exQ  = IRI{Value: "http://example.org/q"}
	exO  = IRI{Value: "http://example.org/o"}
	exO2 = IRI{Value: "http://example.org/o2"}
)

func TestGraphAddDeduplicates(t *testing.T) {
	g := NewGraph()
	g.Add(NewTriple(exS, exP, exO), NewTriple(exS, exP, exO))
	if g.Len() != 1 {
		t.Fatalf("expected 1 statement, got %d", g.Len())
	}
	g.Add(NewTriple(exS, exP, NewLiteral("x")), NewTriple(exS, exP, NewTypedLiteral("x", IRI{Value: xsdStringIRI})))
	if g.Len() != 2 {
		t.Fatalf("xsd:string literal must collapse onto plain literal, got %d statements", g.Len())
	}
}

func TestGraphAddSkipsInvalid(t *testing.T) {
	g := NewGraph(NewTriple(NewLiteral("s"), exP, exO), Triple{})
	if !g.IsEmpty() {
		t.Fatalf("expected empty graph, got %d", g.Len())
	}
}

func TestGraphRemoveAndHas(t *testing.T) {
	triple := NewTriple(exS, exP, exO)
	g := NewGraph(triple)
	if !g.Has(triple) {
		t.Fatal("expected statement present")
	}
	g.Remove(triple)
	if g.Has(triple) || !g.IsEmpty() {
		t.Fatal("expected statement removed")
	}
}

func TestNilGraphIsEmpty(t *testing.T) {
	var g *Graph
	if g.Len() != 0 || !g.IsEmpty() || g.Has(NewTriple(exS, exP, exO)) {
		t.Fatal("nil graph must read as empty")
	}
	if !g.Equal(NewGraph()) {
		t.Fatal("nil graph must equal empty graph")
	}
	if g.Clone().Len() != 0 {
		t.Fatal("clone of nil graph must be empty")
	}
	g.Remove(NewTriple(exS, exP, exO))
}

func TestZeroGraphIsWritable(t *testing.T) {
	var g Graph
	g.Add(NewTriple(exS, exP, exO))
	if g.Len() != 1 || !g.Has(NewTriple(exS, exP, exO)) {
		t.Fatalf("unexpected graph: %s", &g)
	}
	g.Remove(NewTriple(exS, exP, exO))
	if !g.IsEmpty() {
		t.Fatalf("expected empty graph, got %s", &g)
	}
}

func TestGraphTriplesSorted(t *testing.T) {
	g := NewGraph(NewTriple(exS, exQ, exO), NewTriple(exS, exP, exO2), NewTriple(exS, exP, exO))
	triples := g.Triples()
	for i := 1; i < len(triples); i++ {
		if triples[i-1].Key() >= triples[i].Key() {
			t.Fatalf("triples not sorted: %s before %s", triples[i-1].Key(), triples[i].Key())
		}
	}
}

func TestGraphMatchAndObjects(t *testing.T) {
	g := NewGraph(
		NewTriple(exS, exP, exO),
		NewTriple(exS, exP, exO2),
		NewTriple(exS, exQ, NewLiteral("v")),
		NewTriple(exO, exP, exS),
	)

	count := 0
	for range g.Match(exS, nil, nil) {
		count++
	}
	if count != 3 {
		t.Fatalf("expected 3 statements about subject, got %d", count)
	}

	var objects []Term
	for o := range g.Objects(exS, exP) {
		objects = append(objects, o)
	}
	if len(objects) != 2 || !SameTerm(objects[0], exO) || !SameTerm(objects[1], exO2) {
		t.Fatalf("unexpected objects: %v", objects)
	}

	for range g.Match(nil, nil, NewLiteral("missing")) {
		t.Fatal("expected no match")
	}
}

func TestGraphObjectsIsLazy(t *testing.T) {
	g := NewGraph()
	seq := g.Objects(exS, exP)
	g.Add(NewTriple(exS, exP, exO))
	found := false
	for range seq {
		found = true
	}
	if !found {
		t.Fatal("sequence must observe statements added after it was created")
	}
}

func TestGraphEqualAndClone(t *testing.T) {
	a := NewGraph(NewTriple(exS, exP, exO))
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone must equal original")
	}
	b.Add(NewTriple(exS, exP, exO2))
	if a.Equal(b) {
		t.Fatal("graphs must differ after mutation")
	}
	if a.Len() != 1 {
		t.Fatal("clone must be independent")
	}
}

func TestGraphReplaceIRI(t *testing.T) {
	g := NewGraph(NewTriple(IRI{}, exP, exO), NewTriple(exO, exP, IRI{}))
	n := g.ReplaceIRI(IRI{}, exS)
	if n != 2 {
		t.Fatalf("expected 2 replacements, got %d", n)
	}
	if !g.Has(NewTriple(exS, exP, exO)) || !g.Has(NewTriple(exO, exP, exS)) || g.Len() != 2 {
		t.Fatalf("expected replaced statements, got %s", g)
	}

	h := NewGraph(NewTriple(exS, exP, exO))
	if h.ReplaceIRI(exO, exO2) != 1 || !h.Has(NewTriple(exS, exP, exO2)) {
		t.Fatalf("expected object replaced, got %s", h)
	}
}

func TestSetOperations(t *testing.T) {
	t1 := NewTriple(exS, exP, exO)
	t2 := NewTriple(exS, exP, exO2)
	t3 := NewTriple(exS, exQ, NewLiteral("v"))
	a := NewGraph(t1, t2)
	b := NewGraph(t2, t3)

	if u := Union(a, b); u.Len() != 3 {
		t.Fatalf("union: expected 3, got %d", u.Len())
	}
	if i := Intersection(a, b); i.Len() != 1 || !i.Has(t2) {
		t.Fatalf("intersection: unexpected %s", i)
	}
	if d := Difference(a, b); d.Len() != 1 || !d.Has(t1) {
		t.Fatalf("difference: unexpected %s", d)
	}
	sd := SymmetricDifference(a, b)
	if sd.Len() != 2 || !sd.Has(t1) || !sd.Has(t3) {
		t.Fatalf("symmetric difference: unexpected %s", sd)
	}
	if !SymmetricDifference(a, a.Clone()).IsEmpty() {
		t.Fatal("symmetric difference of equal graphs must be empty")
	}
	if !SymmetricDifference(b, a).Equal(sd) {
		t.Fatal("symmetric difference must be symmetric")
	}
	if SymmetricDifference(nil, a).Len() != 2 {
		t.Fatal("nil graph must behave as empty")
	}
}

func TestGraphHasBlankNodes(t *testing.T) {
	if NewGraph(NewTriple(exS, exP, exO)).HasBlankNodes() {
		t.Fatal("expected no blank nodes")
	}
	if !NewGraph(NewTriple(exS, exP, BlankNode{ID: "b"})).HasBlankNodes() {
		t.Fatal("expected blank nodes")
	}
}

func TestGraphString(t *testing.T) {
	g := NewGraph(NewTriple(exS, exQ, NewLiteral("v")), NewTriple(exS, exP, exO))
	lines := strings.Split(strings.TrimSpace(g.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", g.String())
	}
	if !strings.HasPrefix(lines[0], "<http://example.org/s> <http://example.org/p>") {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, " .") {
			t.Fatalf("line must end with ' .': %s", line)
		}
	}
}
