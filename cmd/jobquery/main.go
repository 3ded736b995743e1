// Command jobquery parses job-search queries from the command line and
// prints the structured filters as JSON.
//
// Usage:
//
//	jobquery "MBBS doctor in Mumbai"
//	printf 'fresher nurse\nsr cardiology pune\n' | jobquery -stdin
//
// With -stdin every input line is parsed and printed as one compact JSON
// object per line.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/medjobs/jobquery/internal/query/formatter"
	"github.com/medjobs/jobquery/internal/query/parser"
	"github.com/medjobs/jobquery/pkg/logger"
)

func main() {
	fromStdin := flag.Bool("stdin", false, "read one query per line from stdin")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger.SetupWriter(os.Stderr, *logLevel, "text")

	var err error
	if *fromStdin {
		err = parseLines(os.Stdin, os.Stdout)
	} else {
		err = parseArgs(flag.Args(), os.Stdout)
	}
	if err != nil {
		slog.Error("jobquery failed", "error", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no query given; pass it as arguments or use -stdin")
	}
	_, err := fmt.Fprintln(out, formatter.ParseQueryToJSON(strings.Join(args, " ")))
	return err
}

func parseLines(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	for scanner.Scan() {
		if err := enc.Encode(parser.ParseJobQuery(scanner.Text())); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}
