package ldp

import (
	"net/http"
	"strings"

	"github.com/pquerna/cachecontrol/cacheobject"

	"github.com/geoknoesis/ldp-go/rdf"
	"github.com/geoknoesis/ldp-go/vocab"
)

// Link is one entry of an RFC 8288 Link header.
type Link struct {
	URI string
	Rel string
}

// HasRel reports whether rel is one of the link's space separated relation
// types.
func (l Link) HasRel(rel string) bool {
	for _, r := range strings.Fields(l.Rel) {
		if strings.EqualFold(r, rel) {
			return true
		}
	}
	return false
}

// Header is the typed view of the response headers the mapper relies on.
type Header struct {
	ETag         string
	Links        []Link
	ContentType  string
	Location     string
	CacheControl *cacheobject.ResponseCacheDirectives // nil when absent or unparsable
	Raw          http.Header
}

// ParseHeader extracts the typed fields from raw headers.
func ParseHeader(raw http.Header) Header {
	h := Header{
		ETag:        raw.Get("ETag"),
		ContentType: raw.Get("Content-Type"),
		Location:    raw.Get("Location"),
		Raw:         raw,
	}
	for _, value := range raw.Values("Link") {
		h.Links = append(h.Links, ParseLinks(value)...)
	}
	if cc := raw.Get("Cache-Control"); cc != "" {
		if directives, err := cacheobject.ParseResponseCacheControl(cc); err == nil {
			h.CacheControl = directives
		}
	}
	return h
}

// ParseLinks parses a Link header value. Both the bracketed form
// <uri>; rel="type" and the bare uri;rel="type" are accepted.
func ParseLinks(value string) []Link {
	var links []Link
	for _, entry := range splitOutside(value, ',') {
		parts := splitOutside(entry, ';')
		target := strings.TrimSpace(parts[0])
		target = strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
		if target == "" {
			continue
		}
		link := Link{URI: target}
		for _, param := range parts[1:] {
			name, val, ok := strings.Cut(param, "=")
			if !ok {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(name), "rel") {
				link.Rel = strings.Trim(strings.TrimSpace(val), `"`)
			}
		}
		links = append(links, link)
	}
	return links
}

// splitOutside splits s on sep, ignoring separators inside <...> or "...".
func splitOutside(s string, sep byte) []string {
	var parts []string
	inAngle, inQuote := false, false
	start := 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == '"' && !inAngle:
			inQuote = !inQuote
		case ch == '<' && !inQuote:
			inAngle = true
		case ch == '>' && !inQuote:
			inAngle = false
		case ch == sep && !inAngle && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// Response is a completed HTTP exchange with its body fully read.
type Response struct {
	Status int
	Header Header
	Body   []byte
}

func newResponse(resp *http.Response, body []byte) *Response {
	return &Response{Status: resp.StatusCode, Header: ParseHeader(resp.Header), Body: body}
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// IsLDPResource reports whether a type link names an LDP interaction model.
func (r *Response) IsLDPResource() bool {
	if r == nil {
		return false
	}
	for _, link := range r.Header.Links {
		if link.HasRel("type") && strings.HasPrefix(link.URI, vocab.LDPNamespace) {
			return true
		}
	}
	return false
}

// Format returns the RDF format announced by Content-Type.
func (r *Response) Format() (rdf.Format, bool) {
	if r == nil {
		return "", false
	}
	return rdf.FormatFromContentType(r.Header.ContentType)
}

// NoStore reports whether the response forbids reuse.
func (r *Response) NoStore() bool {
	return r != nil && r.Header.CacheControl != nil && r.Header.CacheControl.NoStore
}
