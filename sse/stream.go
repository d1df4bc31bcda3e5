package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/tagstream"
)

// Interface compliance check.
var _ tagstream.Source = (*stream)(nil)

const maxRecordSize = 1 << 20

// stream implements [tagstream.Source] by parsing SSE records from an HTTP
// response body.
type stream struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	finished bool
	closed   bool
	err      error // terminal error, if any
}

func newStream(body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return &stream{body: body, scanner: sc}
}

// Next returns the next non-empty text delta. It returns io.EOF after the
// finished marker or when the body ends cleanly.
func (s *stream) Next() (string, error) {
	switch {
	case s.closed:
		return "", fmt.Errorf("sse: %w", tagstream.ErrStreamClosed)
	case s.err != nil:
		return "", s.err
	case s.finished:
		return "", io.EOF
	}

	for {
		eventType, data, err := s.readRecord()
		if err == io.EOF {
			s.finished = true
			return "", io.EOF
		}
		if err != nil {
			s.err = err
			return "", err
		}

		delta, err := s.processRecord(eventType, data)
		if err != nil {
			s.err = err
			return "", err
		}
		if delta != "" {
			return delta, nil
		}
		if s.finished {
			return "", io.EOF
		}
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// readRecord reads lines until a complete SSE record is assembled.
func (s *stream) readRecord() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder
	hasData := false

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if hasData {
				return eventType, dataBuf.String(), nil
			}
			eventType = ""
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "":
			// Comment line.
		case "event":
			eventType = value
		case "data":
			if hasData {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(value)
			hasData = true
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("sse: %w", err)
	}
	if hasData {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processRecord returns the text carried by one record. It marks the stream
// finished when the record ends it.
func (s *stream) processRecord(eventType, data string) (string, error) {
	switch eventType {
	case "", "message", "chunk":
	case "error":
		var apiErr apiErrorResponse
		if err := json.Unmarshal([]byte(data), &apiErr); err != nil {
			return "", fmt.Errorf("sse: failed to parse error record: %w", err)
		}
		return "", fmt.Errorf("sse: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
	default:
		// Unknown record types such as ping are ignored.
		return "", nil
	}

	if strings.TrimSpace(data) == doneMarker {
		s.finished = true
		return "", nil
	}
	var chunk apiChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", fmt.Errorf("sse: failed to parse chunk: %w", err)
	}
	if chunk.Finished {
		s.finished = true
	}
	return chunk.Delta, nil
}
