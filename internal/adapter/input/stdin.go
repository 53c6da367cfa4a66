package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// StdinAdapter reads toast requests from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads requests from standard input.
// Supports three formats:
// 1. JSON array of requests
// 2. one JSON request object per line
// 3. one plain message per line
//
// Formats 2 and 3 may be mixed. Blank lines are skipped.
func (a *StdinAdapter) Import(ctx context.Context) ([]Request, error) {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 1024 * 1024 // 1MB per line
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var lines [][]byte
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}
	if lines[0][0] == '[' {
		return parseJSONArray(bytes.Join(lines, []byte("\n")))
	}

	requests := make([]Request, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := parseLine(line)
		if err != nil {
			return nil, &AdapterError{
				Source:  "stdin",
				Message: fmt.Sprintf("invalid request on line %d", i+1),
				Err:     err,
			}
		}
		requests = append(requests, r)
	}
	return requests, nil
}

// parseLine parses a JSON object line or treats the line as a message.
func parseLine(line []byte) (Request, error) {
	if line[0] != '{' {
		return Request{Message: sanitizeString(string(line))}, nil
	}
	var r Request
	if err := json.Unmarshal(line, &r); err != nil {
		return Request{}, err
	}
	r.Message = sanitizeString(r.Message)
	return r, nil
}

// parseJSONArray parses a JSON array of requests.
func parseJSONArray(data []byte) ([]Request, error) {
	var requests []Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to parse JSON input",
			Err:     err,
		}
	}
	for i := range requests {
		requests[i].Message = sanitizeString(requests[i].Message)
	}
	return requests, nil
}
