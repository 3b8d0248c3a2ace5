// Package extract pulls JSON records out of model output that is not
// guaranteed to be well-formed around the edges: leading prose, markdown
// fences, a wrapping array or a bare run of objects, truncated tails.
//
// Malformed records are counted and skipped. The only hard failure is
// ErrNoPayload, returned when the text holds no structural boundary at all.
package extract

import (
	"encoding/json"
	"errors"
)

// ErrNoPayload means the text contained no '{' or '[' to anchor on.
var ErrNoPayload = errors.New("no JSON payload found")

// Result is the outcome of parsing one complete payload.
type Result struct {
	Records []json.RawMessage
	Skipped int
}

// Parse extracts every top-level object from text.
func Parse(text string) (Result, error) {
	var s Scanner
	records := s.Write(text)
	s.Flush()
	if !s.SawBoundary() {
		return Result{}, ErrNoPayload
	}
	return Result{Records: records, Skipped: s.Skipped()}, nil
}

// Scanner extracts top-level JSON objects from text delivered in chunks.
// Array brackets and separators between objects are ignored, so both
// `[{..},{..}]` and `{..}{..}` yield the same records. An object whose
// only job is to wrap a list (`{"articles":[...]}`) is unwrapped.
type Scanner struct {
	buf      []byte
	depth    int
	inString bool
	escaped  bool
	boundary bool
	skipped  int
}

// Write feeds chunk and returns the records it completed.
func (s *Scanner) Write(chunk string) []json.RawMessage {
	var out []json.RawMessage
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		if s.depth == 0 {
			switch c {
			case '{':
				s.boundary = true
				s.buf = append(s.buf[:0], c)
				s.depth = 1
			case '[', ']':
				s.boundary = true
			}
			continue
		}

		s.buf = append(s.buf, c)
		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}
		switch c {
		case '"':
			s.inString = true
		case '{':
			s.depth++
		case '}':
			s.depth--
			if s.depth == 0 {
				out = append(out, s.complete()...)
			}
		}
	}
	return out
}

// Flush discards an unterminated trailing object, counting it as skipped.
func (s *Scanner) Flush() {
	if s.depth > 0 {
		s.skipped++
	}
	s.buf = s.buf[:0]
	s.depth = 0
	s.inString = false
	s.escaped = false
}

// SawBoundary reports whether any '{' or '[' has been seen.
func (s *Scanner) SawBoundary() bool {
	return s.boundary
}

// Skipped returns how many malformed records have been dropped so far.
func (s *Scanner) Skipped() int {
	return s.skipped
}

func (s *Scanner) complete() []json.RawMessage {
	raw := make([]byte, len(s.buf))
	copy(raw, s.buf)
	s.buf = s.buf[:0]

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.skipped++
		return nil
	}
	if inner, ok := unwrap(fields); ok {
		return inner
	}
	return []json.RawMessage{raw}
}

// unwrap returns the object elements of the single list held by a
// wrapper object. Objects with a "title" are records, never wrappers.
func unwrap(fields map[string]json.RawMessage) ([]json.RawMessage, bool) {
	if _, ok := fields["title"]; ok || len(fields) != 1 {
		return nil, false
	}
	for _, v := range fields {
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return nil, false
		}
		out := make([]json.RawMessage, 0, len(items))
		for _, it := range items {
			if len(it) > 0 && it[0] == '{' {
				out = append(out, it)
			}
		}
		return out, true
	}
	return nil, false
}
