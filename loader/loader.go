// Package loader reads retrieval-result files and writes answer files in
// the line-delimited JSON shape used by TREC-style RAG runs.
package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"raggen"
)

// maxLineSize bounds one JSONL line (64 MB); candidate lists with full
// documents get large.
const maxLineSize = 64 << 20

// ReadRequests decodes one request per line from r. Blank lines are
// skipped; a line that does not parse or has an empty query text fails with
// its line number.
func ReadRequests(r io.Reader) ([]raggen.Request, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var out []raggen.Request
	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		var req raggen.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("loader: line %d: %w", line, err)
		}
		if req.Query.Text == "" {
			return nil, fmt.Errorf("loader: line %d: empty query text", line)
		}
		out = append(out, req)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loader: read: %w", err)
	}
	return out, nil
}

// ReadRequestsFile reads requests from a JSONL file.
func ReadRequestsFile(path string) ([]raggen.Request, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the caller's flags
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadRequests(f)
}

// WriteResults encodes one result per line to w.
func WriteResults(w io.Writer, results []raggen.Result) error {
	enc := json.NewEncoder(w)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			return fmt.Errorf("loader: encode result %d: %w", i, err)
		}
	}
	return nil
}

// WriteResultsFile writes results to a JSONL file, creating or truncating
// it.
func WriteResultsFile(path string, results []raggen.Result) error {
	f, err := os.Create(path) // #nosec G304 -- path comes from the caller's flags
	if err != nil {
		return fmt.Errorf("loader: create %s: %w", path, err)
	}
	if err := WriteResults(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("loader: close %s: %w", path, err)
	}
	return nil
}
