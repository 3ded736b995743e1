package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/medjobs/jobquery/internal/query/formatter"
	"github.com/medjobs/jobquery/internal/query/parser"
)

func TestParseArgs(t *testing.T) {
	var out bytes.Buffer
	if err := parseArgs([]string{"MBBS", "doctor", "in", "Mumbai"}, &out); err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	want := formatter.ParseQueryToJSON("MBBS doctor in Mumbai") + "\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}

	if err := parseArgs(nil, &out); err == nil {
		t.Error("parseArgs with no arguments should fail")
	}
}

func TestParseLines(t *testing.T) {
	in := strings.NewReader("fresher nurse\n\nsurgeon 8 lakh\n")
	var out bytes.Buffer
	if err := parseLines(in, &out); err != nil {
		t.Fatalf("parseLines: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	var last parser.ParsedQuery
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if last.Salary != "₹800000" {
		t.Errorf("salary = %q, want ₹800000", last.Salary)
	}
	if strings.Contains(lines[2], `\u20b9`) {
		t.Error("rupee sign was escaped")
	}
}
