package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Issue is a single validation problem tied to a dotted document key.
type Issue struct {
	Key     string
	Line    int
	Message string
}

func (i Issue) String() string {
	key := i.Key
	if key == "" {
		key = "<root>"
	}
	if i.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", key, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", key, i.Message)
}

// ValidationError reports every problem found in a configuration document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid config: " + e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("invalid config (%d problems): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Keys returns the offending keys in report order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		keys[i] = is.Key
	}
	return keys
}

// NewValidationError builds a single-issue error.
func NewValidationError(key, format string, args ...any) *ValidationError {
	return &ValidationError{Issues: []Issue{{Key: key, Message: fmt.Sprintf(format, args...)}}}
}

type validator struct {
	issues []Issue
}

func (v *validator) addf(key, format string, args ...any) {
	v.issues = append(v.issues, Issue{Key: key, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) typeMismatch(key, want string, n *yaml.Node) {
	v.issues = append(v.issues, Issue{
		Key:     key,
		Line:    n.Line,
		Message: fmt.Sprintf("expected %s, found %s", want, kindName(n)),
	})
}

func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: v.issues}
}
