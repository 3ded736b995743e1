// Package parser turns a free-text job search query ("MBBS doctor in Mumbai
// 5-7 years 8 lakh") into structured filters. Parsing is a fixed sequence
// of dictionary lookups and regex extractions; later steps read what
// earlier steps produced, so the order in ParseJobQuery is significant.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/medjobs/jobquery/internal/query/dictionary"
)

// ParsedQuery is the structured form of a job search query. Sequence fields
// are never nil and hold no duplicates; single-valued fields are empty when
// nothing matched and are then omitted from JSON.
type ParsedQuery struct {
	Title         []string `json:"title"`
	Qualification []string `json:"qualification"`
	Department    []string `json:"department"`
	Location      string   `json:"location,omitempty"`
	Experience    string   `json:"experience,omitempty"`
	Salary        string   `json:"salary,omitempty"`
	JobType       string   `json:"job_type,omitempty"`
	Company       string   `json:"company,omitempty"`
	Synonyms      []string `json:"synonyms"`
}

func newParsedQuery() ParsedQuery {
	return ParsedQuery{
		Title:         make([]string, 0),
		Qualification: make([]string, 0),
		Department:    make([]string, 0),
		Synonyms:      make([]string, 0),
	}
}

// MatchedFields counts the filter fields that received a value. Synonyms
// are auxiliary and not counted.
func (p ParsedQuery) MatchedFields() int {
	n := 0
	for _, populated := range []bool{
		len(p.Title) > 0,
		len(p.Qualification) > 0,
		len(p.Department) > 0,
		p.Location != "",
		p.Experience != "",
		p.Salary != "",
		p.JobType != "",
		p.Company != "",
	} {
		if populated {
			n++
		}
	}
	return n
}

// ParseJobQuery extracts structured filters from query. It never fails: an
// input that matches nothing yields empty sequences and empty optionals.
// No length limit is applied.
func ParseJobQuery(query string) ParsedQuery {
	p := newParsedQuery()
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return p
	}

	extractQualifications(lower, &p)
	p.Department = matchAll(lower, dictionary.Departments)
	p.Location = matchFirst(lower, dictionary.Locations)
	extractRoles(lower, &p)
	if len(p.Title) == 0 {
		extractTitlePattern(query, &p)
	}
	p.Experience = extractExperience(query)
	p.Salary = extractSalary(query)
	if jt := matchFirst(lower, dictionary.JobTypes); jt != "" {
		p.JobType = strings.ReplaceAll(jt, "-", " ")
	}
	p.Company = matchFirst(lower, dictionary.CompanyKeywords)
	applyTypos(lower, &p)

	p.Title = unique(p.Title)
	p.Qualification = unique(p.Qualification)
	p.Department = unique(p.Department)
	p.Synonyms = unique(p.Synonyms)
	return p
}

func extractQualifications(lower string, p *ParsedQuery) {
	for _, q := range dictionary.Qualifications {
		if !containsFold(lower, q) {
			continue
		}
		p.Qualification = append(p.Qualification, q)
		p.Synonyms = append(p.Synonyms, dictionary.QualificationSynonyms[q]...)
	}
}

func extractRoles(lower string, p *ParsedQuery) {
	for _, rs := range dictionary.RoleSynonyms {
		if !containsFold(lower, rs.Key) {
			continue
		}
		p.Title = append(p.Title, rs.Expansions...)
		p.Synonyms = append(p.Synonyms, rs.Key)
		p.Synonyms = append(p.Synonyms, rs.Expansions...)
	}
}

// applyTypos records misspellings and their corrections as synonyms. The
// title check is a plain case-sensitive substring test, so a capitalised
// title such as "Doctor" does not suppress the "docter" correction.
func applyTypos(lower string, p *ParsedQuery) {
	for _, t := range dictionary.Typos {
		if !strings.Contains(lower, t.Typo) {
			continue
		}
		if anyContains(p.Title, t.Correction) {
			continue
		}
		p.Synonyms = append(p.Synonyms, t.Typo, t.Correction)
	}
}

// matchAll returns every entry of table found in lower, in table order.
func matchAll(lower string, table []string) []string {
	out := make([]string, 0)
	for _, v := range table {
		if containsFold(lower, v) {
			out = append(out, v)
		}
	}
	return out
}

// matchFirst returns the first entry of table found in lower, or "".
func matchFirst(lower string, table []string) string {
	for _, v := range table {
		if containsFold(lower, v) {
			return v
		}
	}
	return ""
}

// containsFold reports whether the already lower-cased haystack contains
// needle, ignoring needle's case.
func containsFold(lower, needle string) bool {
	return strings.Contains(lower, strings.ToLower(needle))
}

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if strings.Contains(v, sub) {
			return true
		}
	}
	return false
}

// unique keeps the first occurrence of every value.
func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// capitalize upper-cases the first rune and leaves the rest untouched.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
