package ldp

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/geoknoesis/ldp-go/rdf"
	"github.com/geoknoesis/ldp-go/vocab"
)

// State is the lifecycle state of an Orm.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Orm maps one LDP resource to a locally editable graph. Edit Graph, then
// Save to write it back under the ETag of the last fetch; the server's
// stored graph is re-read and compared with what was written.
//
// An Orm is not safe for concurrent use.
type Orm struct {
	resource  *Resource
	self      rdf.IRI
	graph     *rdf.Graph
	state     State
	format    rdf.Format
	ignored   []rdf.IRI
	canonical bool
	logger    *zap.SugaredLogger
}

// Option configures an Orm.
type Option func(*Orm)

// WithFormat sets the representation written on save. It is also how a
// response is read when neither its Content-Type nor its first bytes tell.
func WithFormat(format rdf.Format) Option {
	return func(o *Orm) {
		if format.Valid() {
			o.format = format
		}
	}
}

// WithIgnoredPredicates excludes server-managed predicates from save diffs.
func WithIgnoredPredicates(predicates ...rdf.IRI) Option {
	return func(o *Orm) {
		o.ignored = append(o.ignored, predicates...)
	}
}

// WithCanonicalDiff canonicalizes blank node labels before diffing, so a
// server that relabels blank nodes does not produce a divergence. Blank
// nodes in SaveResult.Diff then carry the canonical labels (_:c14n0, ...)
// rather than those of Graph, so diff statements that mention a blank node
// cannot be looked up in Graph directly.
func WithCanonicalDiff(enabled bool) Option {
	return func(o *Orm) {
		o.canonical = enabled
	}
}

// WithLogger sets the logger. nil means no logging.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Orm) {
		o.logger = nopIfNil(logger)
	}
}

func newOrm(res *Resource, opts []Option) *Orm {
	o := &Orm{
		resource: res,
		self:     rdf.IRI{Value: res.URI()},
		graph:    rdf.NewGraph(),
		format:   rdf.FormatTurtle,
		logger:   nopIfNil(nil),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOrm fetches res and returns the loaded entity. On failure no entity is
// returned.
func NewOrm(ctx context.Context, res *Resource, opts ...Option) (*Orm, error) {
	o := newOrm(res, opts)
	resp, err := res.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.load(ctx, resp); err != nil {
		return nil, err
	}
	return o, nil
}

// Create stores graph as a new resource at res and loads what the server
// kept. The empty IRI in graph stands for the resource itself.
func Create(ctx context.Context, res *Resource, graph *rdf.Graph, opts ...Option) (*Orm, error) {
	o := newOrm(res, opts)
	g := graph.Clone()
	g.ReplaceIRI(rdf.IRI{}, o.self)
	body, err := o.serialize(g)
	if err != nil {
		return nil, err
	}
	if _, err := res.Create(ctx, body, o.format.ContentType()); err != nil {
		return nil, err
	}
	resp, err := res.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.load(ctx, resp); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orm) load(ctx context.Context, resp *Response) error {
	g, err := o.parse(ctx, resp)
	if err != nil {
		return err
	}
	o.graph = g
	o.state = StateLoaded
	o.logger.Debugw("ldp entity loaded", "uri", o.self.Value, "etag", o.resource.ETag(), "statements", g.Len())
	return nil
}

func (o *Orm) parse(ctx context.Context, resp *Response) (*rdf.Graph, error) {
	format, ok := resp.Format()
	if !ok {
		if format, ok = rdf.DetectFormat(resp.Body); !ok {
			format = o.format
		}
	}
	g, err := rdf.Parse(ctx, resp.Body, format, rdf.WithBase(o.self.Value))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", o.self.Value)
	}
	g.ReplaceIRI(rdf.IRI{}, o.self)
	return g, nil
}

func (o *Orm) serialize(g *rdf.Graph) ([]byte, error) {
	body, err := rdf.Serialize(g, o.format, rdf.WithPrefixes(vocab.Prefixes()))
	if err != nil {
		return nil, errors.Wrapf(err, "serialize %s", o.self.Value)
	}
	return body, nil
}

func (o *Orm) checkLoaded() error {
	switch o.state {
	case StateLoaded:
		return nil
	case StateDeleted:
		return ErrDeleted
	default:
		return ErrNotLoaded
	}
}

// Resource returns the underlying resource.
func (o *Orm) Resource() *Resource { return o.resource }

// Self returns the resource URI as an IRI term.
func (o *Orm) Self() rdf.IRI { return o.self }

// State returns the lifecycle state.
func (o *Orm) State() State { return o.state }

// ETag returns the validator the next Save will send.
func (o *Orm) ETag() string { return o.resource.ETag() }

// Graph returns the entity's graph. Edits to it are what Save writes.
func (o *Orm) Graph() *rdf.Graph { return o.graph }

// Value iterates over the objects of (self, predicate). The sequence can be
// ranged over repeatedly and always reflects the current graph; it yields
// nothing unless the entity is loaded.
func (o *Orm) Value(predicate rdf.IRI) iter.Seq[rdf.Term] {
	return func(yield func(rdf.Term) bool) {
		if o.state != StateLoaded {
			return
		}
		for term := range o.graph.Objects(o.self, predicate) {
			if !yield(term) {
				return
			}
		}
	}
}

// Values collects Value(predicate).
func (o *Orm) Values(predicate rdf.IRI) []rdf.Term {
	var out []rdf.Term
	for term := range o.Value(predicate) {
		out = append(out, term)
	}
	return out
}

// First returns one object of (self, predicate), the first in key order.
func (o *Orm) First(predicate rdf.IRI) (rdf.Term, bool) {
	for term := range o.Value(predicate) {
		return term, true
	}
	return nil, false
}

// Add inserts (self, predicate, object) into the graph.
func (o *Orm) Add(predicate rdf.IRI, object rdf.Term) {
	o.graph.Add(rdf.NewTriple(o.self, predicate, object))
}

// Set replaces every object of (self, predicate) with objects.
func (o *Orm) Set(predicate rdf.IRI, objects ...rdf.Term) {
	for _, t := range o.graph.Triples() {
		if rdf.SameTerm(t.S, o.self) && t.P == predicate {
			o.graph.Remove(t)
		}
	}
	for _, object := range objects {
		o.Add(predicate, object)
	}
}

// SaveResult is the outcome of a Save the server answered.
type SaveResult struct {
	// Status of the PUT.
	Status int
	// Body of a rejected PUT.
	Body []byte
	// Failed is set when the PUT was answered with a non-2xx status. The
	// entity is unchanged in that case.
	Failed bool
	// Diff holds the statements present in exactly one of the written and
	// the stored graph. Empty when the server kept what was written. With
	// WithCanonicalDiff its blank nodes use canonical labels.
	Diff *rdf.Graph
}

// OK reports an accepted save whose stored graph matches the written one.
func (r SaveResult) OK() bool {
	return !r.Failed && r.Diff.IsEmpty()
}

// Save writes the graph with If-Match set to the current ETag, then fetches
// the stored representation and diffs it against what was written. The
// entity adopts the stored graph and its ETag whether or not they differ.
//
// A rejected PUT is reported through SaveResult.Failed, not as an error;
// errors mean the exchange itself failed.
func (o *Orm) Save(ctx context.Context) (SaveResult, error) {
	if err := o.checkLoaded(); err != nil {
		return SaveResult{}, err
	}
	written := o.graph.Clone()
	body, err := o.serialize(written)
	if err != nil {
		return SaveResult{}, err
	}

	resp, err := o.resource.Update(ctx, body, o.format.ContentType(), o.resource.ETag())
	if err != nil {
		return SaveResult{}, err
	}
	if !resp.OK() {
		o.logger.Warnw("ldp save rejected", "uri", o.self.Value, "status", resp.Status)
		return SaveResult{Status: resp.Status, Body: resp.Body, Failed: true}, nil
	}

	fresh, err := o.resource.Get(ctx)
	if err != nil {
		return SaveResult{Status: resp.Status}, errors.Wrapf(err, "verify save of %s", o.self.Value)
	}
	stored, err := o.parse(ctx, fresh)
	if err != nil {
		return SaveResult{Status: resp.Status}, err
	}
	diff, err := o.diff(written, stored)
	if err != nil {
		return SaveResult{Status: resp.Status}, err
	}
	o.graph = stored

	if !diff.IsEmpty() {
		o.logger.Warnw("ldp stored graph differs from saved graph",
			"uri", o.self.Value,
			"etag", o.resource.ETag(),
			"statements", diff.Len())
	}
	return SaveResult{Status: resp.Status, Diff: diff}, nil
}

// SaveOrFail is Save with every unsuccessful outcome as an error: a
// *SaveError for a rejected PUT and a *GraphDifferenceError when the server
// stored a different graph.
func (o *Orm) SaveOrFail(ctx context.Context) error {
	result, err := o.Save(ctx)
	if err != nil {
		return err
	}
	if result.Failed {
		return &SaveError{URI: o.self.Value, Status: result.Status, Body: result.Body}
	}
	if !result.Diff.IsEmpty() {
		return &GraphDifferenceError{URI: o.self.Value, Diff: result.Diff}
	}
	return nil
}

// MustSave is SaveOrFail for callers that treat any failure as fatal.
func (o *Orm) MustSave(ctx context.Context) {
	if err := o.SaveOrFail(ctx); err != nil {
		panic(err)
	}
}

func (o *Orm) diff(written, stored *rdf.Graph) (*rdf.Graph, error) {
	a, b := o.relevant(written), o.relevant(stored)
	if o.canonical {
		var err error
		if a, err = rdf.Canonicalize(a); err != nil {
			return nil, err
		}
		if b, err = rdf.Canonicalize(b); err != nil {
			return nil, err
		}
	}
	return rdf.SymmetricDifference(a, b), nil
}

// relevant drops statements whose predicate is server managed.
func (o *Orm) relevant(g *rdf.Graph) *rdf.Graph {
	if len(o.ignored) == 0 {
		return g
	}
	out := g.Clone()
	for _, p := range o.ignored {
		for t := range g.Match(nil, p, nil) {
			out.Remove(t)
		}
	}
	return out
}

// Reload refetches the resource, discarding local edits, and returns the
// receiver. An unchanged resource keeps its graph and ETag.
func (o *Orm) Reload(ctx context.Context) (*Orm, error) {
	if o.state == StateDeleted {
		return nil, ErrDeleted
	}
	resp, err := o.resource.Revalidate(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.load(ctx, resp); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete deletes the remote resource. Afterwards the entity is in
// StateDeleted and every other operation fails with ErrDeleted.
func (o *Orm) Delete(ctx context.Context) error {
	if err := o.checkLoaded(); err != nil {
		return err
	}
	if err := o.resource.Delete(ctx); err != nil {
		return err
	}
	o.state = StateDeleted
	o.logger.Debugw("ldp entity deleted", "uri", o.self.Value)
	return nil
}
