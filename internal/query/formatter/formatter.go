// Package formatter serialises parsed job queries to their canonical JSON
// form: keys in ParsedQuery field order, two-space indentation, and no
// HTML escaping so "₹" and "&" appear literally.
package formatter

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/medjobs/jobquery/internal/query/parser"
)

const indent = "  "

// FormatParsedQuery returns the canonical JSON form of parsed.
func FormatParsedQuery(parsed parser.ParsedQuery) string {
	data, err := Marshal(parsed)
	if err != nil {
		// ParsedQuery holds only strings and string slices.
		slog.Default().With("component", "query-formatter").Error("formatting parsed query failed", "error", err)
		return "{}"
	}
	return string(data)
}

// ParseQueryToJSON parses query and formats the result.
func ParseQueryToJSON(query string) string {
	return FormatParsedQuery(parser.ParseJobQuery(query))
}

// Marshal encodes parsed like FormatParsedQuery but reports encoder errors.
func Marshal(parsed parser.ParsedQuery) ([]byte, error) {
	parsed = normalizeNil(parsed)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(parsed); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// normalizeNil keeps hand-built values serialising sequences as [] rather
// than null.
func normalizeNil(p parser.ParsedQuery) parser.ParsedQuery {
	if p.Title == nil {
		p.Title = []string{}
	}
	if p.Qualification == nil {
		p.Qualification = []string{}
	}
	if p.Department == nil {
		p.Department = []string{}
	}
	if p.Synonyms == nil {
		p.Synonyms = []string{}
	}
	return p
}
