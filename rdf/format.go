package rdf

import (
	"mime"
	"strings"
)

// Format identifies RDF serialization formats.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatJSONLD   Format = "jsonld"
)

// Formats lists the supported formats in order of preference.
var Formats = []Format{FormatTurtle, FormatJSONLD, FormatNTriples}

// ParseFormat normalizes a format string.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "turtle", "ttl":
		return FormatTurtle, true
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, true
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromContentType infers the format from a Content-Type header value.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	switch mediaType {
	case "text/turtle", "application/x-turtle", "application/turtle":
		return FormatTurtle, true
	case "application/n-triples", "text/plain":
		return FormatNTriples, true
	case "application/ld+json", "application/json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// ContentType returns the registered media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatNTriples:
		return "application/n-triples"
	case FormatJSONLD:
		return "application/ld+json"
	default:
		return ""
	}
}

// Valid reports whether the format is supported.
func (f Format) Valid() bool { return f.ContentType() != "" }

// AcceptHeader builds an Accept value listing every supported media type,
// preferred first.
func AcceptHeader(preferred Format) string {
	parts := make([]string, 0, len(Formats))
	if preferred.Valid() {
		parts = append(parts, preferred.ContentType())
	}
	q := 9
	for _, f := range Formats {
		if f == preferred {
			continue
		}
		parts = append(parts, f.ContentType()+";q=0."+string(rune('0'+q)))
		q--
	}
	return strings.Join(parts, ", ")
}
