package ldp

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/geoknoesis/ldp-go/rdf"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("ldp: resource not found")
	// ErrNotLoaded is returned by entity operations before a successful load.
	ErrNotLoaded = errors.New("ldp: entity not loaded")
	// ErrDeleted is returned by entity operations after Delete.
	ErrDeleted = errors.New("ldp: entity deleted")
	// ErrInvalidURI is returned for resources whose URI is not absolute.
	ErrInvalidURI = errors.New("ldp: resource URI must be absolute")
)

// NotFoundError reports a 404 on GET.
type NotFoundError struct {
	URI string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ldp: %s not found", e.URI)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RequestFailedError reports a non-2xx response the operation cannot treat
// as success.
type RequestFailedError struct {
	Method string
	URI    string
	Status int
	Body   []byte
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("ldp: %s %s failed: %d %s%s", e.Method, e.URI, e.Status, http.StatusText(e.Status), bodySuffix(e.Body))
}

// SaveError reports a PUT that the server rejected, typically with 412
// Precondition Failed when the entity's ETag is stale.
type SaveError struct {
	URI    string
	Status int
	Body   []byte
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("ldp: save %s rejected: %d %s%s", e.URI, e.Status, http.StatusText(e.Status), bodySuffix(e.Body))
}

// PreconditionFailed reports whether the server refused the If-Match value.
func (e *SaveError) PreconditionFailed() bool {
	return e.Status == http.StatusPreconditionFailed
}

// GraphDifferenceError reports a save the server accepted but stored
// differently. Diff holds the statements present in exactly one of the
// written and the stored graph.
type GraphDifferenceError struct {
	URI  string
	Diff *rdf.Graph
}

func (e *GraphDifferenceError) Error() string {
	return fmt.Sprintf("ldp: %s stored graph differs from the saved one in %d statements", e.URI, e.Diff.Len())
}

const maxBodyInError = 200

func bodySuffix(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxBodyInError {
		return ": " + string(body[:maxBodyInError]) + "..."
	}
	return ": " + string(body)
}
