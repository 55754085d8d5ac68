package rdf

import (
	"net/url"
	"strings"
)

// resolveIRI resolves a relative IRI against a base IRI according to RFC 3986.
// An empty relative reference resolves to the base itself, which is how the
// self reference <> of an LDP representation becomes the resource URI.
func resolveIRI(base, relative string) string {
	if base == "" {
		return relative
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return relative
	}
	// Absolute IRIs are returned untouched so their spelling is preserved.
	if relURL.Scheme != "" {
		return relative
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		if strings.HasSuffix(base, "/") {
			return base + relative
		}
		if lastSlash := strings.LastIndex(base, "/"); lastSlash >= 0 {
			return base[:lastSlash+1] + relative
		}
		return base + "/" + relative
	}
	return baseURL.ResolveReference(relURL).String()
}

// IsAbsoluteIRI reports whether value carries a scheme.
func IsAbsoluteIRI(value string) bool {
	u, err := url.Parse(value)
	return err == nil && u.Scheme != ""
}

func isQNameLocal(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if i == 0 {
			if !isNameStartChar(ch) && !(ch >= '0' && ch <= '9') {
				return false
			}
		} else if !isNameChar(ch) {
			return false
		}
	}
	return value[len(value)-1] != '.'
}

func isNameStartChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isNameChar(ch byte) bool {
	return isNameStartChar(ch) || (ch >= '0' && ch <= '9') || ch == '-' || ch == '.'
}

func isValidPrefixName(prefix string) bool {
	if prefix == "" {
		return true
	}
	if !isNameStartChar(prefix[0]) || prefix[len(prefix)-1] == '.' {
		return false
	}
	for i := 1; i < len(prefix); i++ {
		if !isNameChar(prefix[i]) {
			return false
		}
	}
	return true
}

// abbreviateQName shortens iri to prefix:local using the longest matching
// namespace whose remainder is a legal local name.
func abbreviateQName(iri string, prefixes map[string]string) (string, bool) {
	bestNS := ""
	bestPrefix := ""
	found := false
	for prefix, ns := range prefixes {
		if ns == "" || !strings.HasPrefix(iri, ns) {
			continue
		}
		if !isQNameLocal(iri[len(ns):]) {
			continue
		}
		if len(ns) > len(bestNS) || (len(ns) == len(bestNS) && prefix < bestPrefix) {
			bestNS = ns
			bestPrefix = prefix
			found = true
		}
	}
	if !found {
		return "", false
	}
	return bestPrefix + ":" + iri[len(bestNS):], true
}
