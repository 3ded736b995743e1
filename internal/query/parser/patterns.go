package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// titlePatterns are tried in order against the original-case query when
// no role synonym matched. Group 1 is the seniority prefix, group 2 the role.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(junior|jr)\s+(\w+)`),
	regexp.MustCompile(`(?i)(senior|sr)\s+(\w+)`),
	regexp.MustCompile(`(?i)(assistant)\s+(\w+)`),
	regexp.MustCompile(`(?i)(associate)\s+(\w+)`),
	regexp.MustCompile(`(?i)(chief)\s+(\w+)`),
	regexp.MustCompile(`(?i)(head)\s+of\s+(\w+)`),
}

func extractTitlePattern(query string, p *ParsedQuery) {
	for _, re := range titlePatterns {
		m := re.FindStringSubmatch(query)
		if len(m) < 3 || m[1] == "" || m[2] == "" {
			continue
		}
		prefix, role := m[1], m[2]
		p.Title = append(p.Title, capitalize(prefix)+" "+role)
		p.Synonyms = append(p.Synonyms, strings.ToLower(prefix), role)
		return
	}
}

// experienceRule normalises a match. An empty result means the rule
// matched but yields no value; scanning still stops there.
type experienceRule struct {
	re        *regexp.Regexp
	normalize func(m []string) string
}

var experienceRules = []experienceRule{
	{
		re: regexp.MustCompile(`(?i)(\d+)\s*-\s*(\d+)\s*years?`),
		normalize: func(m []string) string {
			if len(m) < 3 {
				return ""
			}
			return fmt.Sprintf("%s-%s years", m[1], m[2])
		},
	},
	{
		re:        regexp.MustCompile(`(?i)(\d+)\s*\+\s*years?`),
		normalize: openEndedYears,
	},
	{
		// A bare "3 years" normalises to "3+ years", same as the "+" form.
		re:        regexp.MustCompile(`(?i)(\d+)\s*years?`),
		normalize: openEndedYears,
	},
	{
		re:        regexp.MustCompile(`(?i)fresher`),
		normalize: func([]string) string { return "0 years" },
	},
	{
		re:        regexp.MustCompile(`(?i)entry\s*level`),
		normalize: func([]string) string { return "0-1 years" },
	},
	{
		// No digits to normalise: the match is recorded as nothing.
		re:        regexp.MustCompile(`(?i)experienced`),
		normalize: func([]string) string { return "" },
	},
}

func openEndedYears(m []string) string {
	if len(m) < 2 || m[1] == "" {
		return ""
	}
	return m[1] + "+ years"
}

// extractExperience applies the first rule, in list order, that matches
// anywhere in query.
func extractExperience(query string) string {
	for _, rule := range experienceRules {
		m := rule.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		return rule.normalize(m)
	}
	return ""
}

const (
	lakh     = 100000
	thousand = 1000
)

// salaryPatterns capture the numeric amount in group 1. The unit is read
// from the whole match. The bare-number rule accepts any digits, so a query
// with no unit still takes its first number as the salary ("nurse 3 years"
// gives "₹3"); the labelled rule only fires when that one cannot.
var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`₹?\s*(\d+(?:\.\d+)?)\s*(lakh|lakhs|L|Lakh)`),
	regexp.MustCompile(`₹?\s*(\d+(?:\.\d+)?)\s*k`),
	regexp.MustCompile(`₹?\s*(\d+(?:,\d{3})*(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)salary\s*:\s*₹?\s*(\d+(?:,\d{3})*(?:\.\d+)?)`),
}

// extractSalary returns the first salary amount found, scaled by its unit
// and prefixed with the rupee sign, e.g. "8 lakh" becomes "₹800000".
func extractSalary(query string) string {
	for _, re := range salaryPatterns {
		m := re.FindStringSubmatch(query)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		matched := strings.ToLower(m[0])
		switch {
		case strings.Contains(matched, "lakh"):
			amount *= lakh
		case strings.Contains(matched, "k"):
			amount *= thousand
		}
		return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
	return ""
}
