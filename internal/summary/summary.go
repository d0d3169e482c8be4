// Package summary reduces a result store into per-coefficient statistics.
package summary

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// UnknownMethod is reported when the last entry names no method.
const UnknownMethod = "unknown"

// Summary is the reduced view of a result store.
type Summary struct {
	Entries      int
	Method       string
	Coefficients []*Coefficient
}

// Coefficient returns the collection of kind k.
func (s *Summary) Coefficient(k Kind) *Coefficient {
	for _, c := range s.Coefficients {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// Load reads and reduces the result store at path.
func Load(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	defer f.Close()

	s, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read result store %s: %w", path, err)
	}
	return s, nil
}

type entry struct {
	key    string
	fields map[string]any
}

// Decode reduces a result store read from r. Entries are visited in
// document order; a key that appears twice keeps its first position and
// its last value.
func Decode(r io.Reader) (*Summary, error) {
	entries, err := readEntries(r)
	if err != nil {
		return nil, err
	}

	s := &Summary{Entries: len(entries), Method: UnknownMethod}
	for _, k := range Kinds {
		s.Coefficients = append(s.Coefficients, NewCoefficient(k))
	}
	for _, e := range entries {
		for _, c := range s.Coefficients {
			c.Push(number(e.fields[string(c.Kind)]))
		}
		if m, ok := e.fields["method"].(string); ok {
			s.Method = m
		} else {
			s.Method = UnknownMethod
		}
	}
	return s, nil
}

func readEntries(r io.Reader) ([]entry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var entries []entry
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		fields, _ := v.(map[string]any)

		if i, ok := index[key]; ok {
			entries[i].fields = fields
			continue
		}
		index[key] = len(entries)
		entries = append(entries, entry{key: key, fields: fields})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

// number accepts JSON numbers and numeric strings. Anything else is zero.
func number(v any) float64 {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err == nil {
			return f
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// Write prints the report.
func (s *Summary) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d entries found.\n", s.Entries)
	fmt.Fprintf(&b, "method: %s\n", s.Method)
	for _, c := range s.Coefficients {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
