package rdf

import (
	"iter"
	"sort"
	"strings"
)

// Graph is an unordered set of triples. Statements are identified by
// Triple.Key, so adding the same statement twice keeps one copy and the
// set operations below are independent of insertion order.
//
// The zero Graph is an empty graph ready to use. A nil *Graph reads as the
// empty graph and ignores Remove, but Add on it panics. Graph is not safe
// for concurrent mutation.
type Graph struct {
	triples map[string]Triple
}

// NewGraph returns a graph holding the given triples.
func NewGraph(triples ...Triple) *Graph {
	g := &Graph{triples: make(map[string]Triple, len(triples))}
	g.Add(triples...)
	return g
}

// Add inserts triples into the graph. Invalid triples are ignored.
func (g *Graph) Add(triples ...Triple) {
	if g.triples == nil {
		g.triples = make(map[string]Triple, len(triples))
	}
	for _, t := range triples {
		if !t.Valid() {
			continue
		}
		g.triples[t.Key()] = t
	}
}

// Remove deletes triples from the graph.
func (g *Graph) Remove(triples ...Triple) {
	if g == nil {
		return
	}
	for _, t := range triples {
		delete(g.triples, t.Key())
	}
}

// Has reports whether the statement is in the graph.
func (g *Graph) Has(t Triple) bool {
	if g == nil {
		return false
	}
	_, ok := g.triples[t.Key()]
	return ok
}

// Len returns the number of statements.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.triples)
}

// IsEmpty reports whether the graph has no statements.
func (g *Graph) IsEmpty() bool { return g.Len() == 0 }

// Clone returns an independent copy.
func (g *Graph) Clone() *Graph {
	out := &Graph{triples: make(map[string]Triple, g.Len())}
	if g != nil {
		for k, t := range g.triples {
			out.triples[k] = t
		}
	}
	return out
}

func (g *Graph) sortedKeys() []string {
	if g == nil {
		return nil
	}
	keys := make([]string, 0, len(g.triples))
	for k := range g.triples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Triples returns the statements sorted by key.
func (g *Graph) Triples() []Triple {
	keys := g.sortedKeys()
	out := make([]Triple, len(keys))
	for i, k := range keys {
		out[i] = g.triples[k]
	}
	return out
}

// All iterates over the statements in key order.
func (g *Graph) All() iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		for _, t := range g.Triples() {
			if !yield(t) {
				return
			}
		}
	}
}

// Match iterates over the statements matching the pattern. A nil position
// is a wildcard.
func (g *Graph) Match(s Term, p Term, o Term) iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		for _, t := range g.Triples() {
			if s != nil && !SameTerm(s, t.S) {
				continue
			}
			if p != nil && !SameTerm(p, t.P) {
				continue
			}
			if o != nil && !SameTerm(o, t.O) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Objects iterates over the objects of statements with the given subject and
// predicate. The sequence is lazy: each iteration reads the graph as it is
// at that moment.
func (g *Graph) Objects(s Term, p IRI) iter.Seq[Term] {
	return func(yield func(Term) bool) {
		for t := range g.Match(s, p, nil) {
			if !yield(t.O) {
				return
			}
		}
	}
}

// Equal reports whether both graphs hold the same statements.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	if g == nil {
		return true
	}
	for k := range g.triples {
		if _, ok := other.triples[k]; !ok {
			return false
		}
	}
	return true
}

// ReplaceIRI rewrites every occurrence of from in subject or object position
// and returns the number of statements changed.
func (g *Graph) ReplaceIRI(from, to IRI) int {
	if g == nil {
		return 0
	}
	changed := 0
	for k, t := range g.triples {
		replaced := t
		if iri, ok := t.S.(IRI); ok && iri == from {
			replaced.S = to
		}
		if iri, ok := t.O.(IRI); ok && iri == from {
			replaced.O = to
		}
		if replaced == t {
			continue
		}
		delete(g.triples, k)
		g.triples[replaced.Key()] = replaced
		changed++
	}
	return changed
}

// HasBlankNodes reports whether any statement mentions a blank node.
func (g *Graph) HasBlankNodes() bool {
	if g == nil {
		return false
	}
	for _, t := range g.triples {
		if t.S.Kind() == TermBlankNode || t.O.Kind() == TermBlankNode {
			return true
		}
	}
	return false
}

// String renders the graph as sorted N-Triples.
func (g *Graph) String() string {
	var b strings.Builder
	for _, k := range g.sortedKeys() {
		b.WriteString(k)
		b.WriteString(" .\n")
	}
	return b.String()
}

// Union returns the statements in a or b.
func Union(a, b *Graph) *Graph {
	out := a.Clone()
	if b != nil {
		for k, t := range b.triples {
			out.triples[k] = t
		}
	}
	return out
}

// Intersection returns the statements in both a and b.
func Intersection(a, b *Graph) *Graph {
	out := NewGraph()
	if a == nil || b == nil {
		return out
	}
	for k, t := range a.triples {
		if _, ok := b.triples[k]; ok {
			out.triples[k] = t
		}
	}
	return out
}

// Difference returns the statements of a that are not in b.
func Difference(a, b *Graph) *Graph {
	out := NewGraph()
	if a == nil {
		return out
	}
	for k, t := range a.triples {
		if b != nil {
			if _, ok := b.triples[k]; ok {
				continue
			}
		}
		out.triples[k] = t
	}
	return out
}

// SymmetricDifference returns the statements present in exactly one of the
// two graphs: (a ∪ b) − (a ∩ b).
func SymmetricDifference(a, b *Graph) *Graph {
	return Union(Difference(a, b), Difference(b, a))
}
