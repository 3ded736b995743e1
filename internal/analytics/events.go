package analytics

import (
	"time"

	"github.com/medjobs/jobquery/internal/query/parser"
	"github.com/medjobs/jobquery/internal/query/tokenizer"
)

type EventType string

const (
	EventParse   EventType = "parse"
	EventSuggest EventType = "suggest"
)

// ParseEvent describes one parse request. Query is the normalised form of
// what the user typed; the filter fields mirror the parse result.
type ParseEvent struct {
	Type           EventType `json:"type"`
	Query          string    `json:"query"`
	Terms          []string  `json:"terms"`
	Titles         []string  `json:"titles,omitempty"`
	Qualifications []string  `json:"qualifications,omitempty"`
	Departments    []string  `json:"departments,omitempty"`
	Location       string    `json:"location,omitempty"`
	Experience     string    `json:"experience,omitempty"`
	Salary         string    `json:"salary,omitempty"`
	JobType        string    `json:"job_type,omitempty"`
	Company        string    `json:"company,omitempty"`
	MatchedFields  int       `json:"matched_fields"`
	CacheHit       bool      `json:"cache_hit"`
	LatencyUs      int64     `json:"latency_us"`
	Timestamp      time.Time `json:"timestamp"`
	RequestID      string    `json:"request_id,omitempty"`
}

// SuggestEvent describes one dropdown suggestion request.
type SuggestEvent struct {
	Type      EventType `json:"type"`
	Prefix    string    `json:"prefix"`
	Returned  int       `json:"returned"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewParseEvent builds the event for query and its parse result.
func NewParseEvent(query string, parsed parser.ParsedQuery) ParseEvent {
	return ParseEvent{
		Type:           EventParse,
		Query:          tokenizer.Normalize(query),
		Terms:          tokenizer.Terms(query),
		Titles:         parsed.Title,
		Qualifications: parsed.Qualification,
		Departments:    parsed.Department,
		Location:       parsed.Location,
		Experience:     parsed.Experience,
		Salary:         parsed.Salary,
		JobType:        parsed.JobType,
		Company:        parsed.Company,
		MatchedFields:  parsed.MatchedFields(),
		Timestamp:      time.Now().UTC(),
	}
}
