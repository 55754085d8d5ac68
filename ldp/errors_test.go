package ldp

import (
	"net/http"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/geoknoesis/ldp-go/rdf"
)

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := errors.Wrap(&NotFoundError{URI: "http://example.org/r"}, "load")
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "http://example.org/r", nf.URI)
	assert.False(t, errors.Is(&RequestFailedError{Status: 404}, ErrNotFound))
}

func TestErrorMessages(t *testing.T) {
	rf := &RequestFailedError{Method: http.MethodGet, URI: "http://example.org/r", Status: 500, Body: []byte("boom")}
	assert.Equal(t, "ldp: GET http://example.org/r failed: 500 Internal Server Error: boom", rf.Error())

	se := &SaveError{URI: "http://example.org/r", Status: 412, Body: []byte("Bad If-Match header value: 'x'")}
	assert.Contains(t, se.Error(), "412 Precondition Failed")
	assert.True(t, se.PreconditionFailed())

	diff := rdf.NewGraph(rdf.NewTriple(rdf.IRI{Value: "http://example.org/r"}, rdf.IRI{Value: "http://example.org/p"}, rdf.NewLiteral("x")))
	gd := &GraphDifferenceError{URI: "http://example.org/r", Diff: diff}
	assert.Contains(t, gd.Error(), "1 statements")
}

func TestLongBodiesAreTruncated(t *testing.T) {
	rf := &RequestFailedError{Method: http.MethodPut, URI: "u", Status: 400, Body: []byte(strings.Repeat("x", 500))}
	assert.True(t, strings.HasSuffix(rf.Error(), "..."))
	assert.Less(t, len(rf.Error()), 300)
}
