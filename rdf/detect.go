package rdf

import (
	"bytes"
	"strings"
)

// sniffLen bounds how much of a document DetectFormat looks at.
const sniffLen = 512

// DetectFormat guesses the serialization of data from its first bytes. It
// is meant for responses whose Content-Type is missing or wrong, and only
// distinguishes the formats this package reads.
func DetectFormat(data []byte) (Format, bool) {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	sample := strings.TrimSpace(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	if sample == "" {
		return "", false
	}

	switch sample[0] {
	case '{', '[':
		if sample[0] == '{' || strings.Contains(sample, "@") || strings.HasPrefix(sample, "[{") {
			return FormatJSONLD, true
		}
		// A Turtle blank node property list: [ ex:p ex:o ] .
		return FormatTurtle, true
	}

	upper := strings.ToUpper(sample)
	for _, directive := range []string{"@PREFIX", "@BASE", "PREFIX ", "BASE "} {
		if strings.HasPrefix(upper, directive) {
			return FormatTurtle, true
		}
	}

	// N-Triples lines only hold IRIs, blank node labels and literals. Any
	// Turtle abbreviation outside a literal settles it.
	for _, line := range strings.Split(sample, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		if !looksLikeNTriplesLine(line) {
			return FormatTurtle, true
		}
	}
	return FormatNTriples, true
}

func looksLikeNTriplesLine(line string) bool {
	if line[0] != '<' && !strings.HasPrefix(line, "_:") {
		return false
	}
	inIRI, inString := false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case inIRI:
			if c == '>' {
				inIRI = false
			}
		case c == '<':
			inIRI = true
		case c == '"':
			inString = true
		case c == ';' || c == ',' || c == '[' || c == '(':
			return false
		}
	}
	return true
}
