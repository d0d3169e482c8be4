// Package config loads and validates the evaluation document (eval.yaml).
//
// The document is decoded section by section against a fixed schema so that
// every problem is reported with the dotted key it belongs to. The resulting
// Config is immutable for the rest of the invocation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up under the target directory.
const DefaultFileName = "eval.yaml"

// DefaultInputUnit is used when preprocess.input_unit is absent.
const DefaultInputUnit = "nm"

// Config holds a validated evaluation document.
type Config struct {
	Method     Method
	Load       LoadOptions
	Preprocess Preprocess
	Details    MethodDetails
	Evaluate   Evaluate

	// BeforeEvaluate and AfterEvaluate are raw statements interpolated
	// verbatim around the evaluation call.
	BeforeEvaluate StringList
	AfterEvaluate  StringList
}

// LoadOptions configures discovery and parsing of the raw data files.
type LoadOptions struct {
	Extensions      StringList
	ExcludePatterns StringList
	SkipFiles       StringList
	SkipRows        int
	MetaLen         int
	Decimal         string
	Delimiter       string
	Grouping        GroupingMode
	NoCommentCheck  bool
}

// Preprocess holds the transformations applied before evaluation.
type Preprocess struct {
	ChDomain   bool
	InputUnit  string
	SliceStart *float64
	SliceStop  *float64
}

// MethodDetails are method specific knobs. Every field is optional; the
// templates fall back to per-method defaults when a field is nil.
type MethodDetails struct {
	Heatmap  *bool
	Windows  *int
	FWHM     *float64
	Std      *float64
	Parallel *bool
	Plot     *bool
	Min      *bool
	Max      *bool
	Both     *bool
	Eager    *bool
	Detach   *bool
}

// Evaluate holds the evaluation parameters shared by every method.
type Evaluate struct {
	ReferenceFrequency *float64
	Order              *int
	OnlyPhase          *bool
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse validates a configuration document. All problems are reported at
// once in a *ValidationError.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	v := &validator{}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		v.addf("", "document must be a mapping, found %s", kindName(root))
		return nil, v.err()
	}

	cfg := defaults()
	sections := mappingIndex(root)
	for _, s := range cfg.schema() {
		node, ok := sections[s.key]
		if !ok || isNull(node) {
			if s.required {
				v.addf(s.key, "missing required key")
			}
			continue
		}
		s.decode(v, s.key, node)
	}

	cfg.check(v)
	if err := v.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Load: LoadOptions{
			Extensions:      StringList{},
			ExcludePatterns: StringList{},
			SkipFiles:       StringList{},
			Grouping:        AllAsPrimary,
		},
		Preprocess: Preprocess{
			InputUnit: DefaultInputUnit,
		},
		BeforeEvaluate: StringList{},
		AfterEvaluate:  StringList{},
	}
}

// check enforces constraints that span several keys or need the decoded value.
func (c *Config) check(v *validator) {
	if c.Load.SkipRows < 0 {
		v.addf("load_options.skiprows", "must not be negative, found %d", c.Load.SkipRows)
	}
	if c.Load.MetaLen < 0 {
		v.addf("load_options.meta_len", "must not be negative, found %d", c.Load.MetaLen)
	}
	for _, p := range c.Load.ExcludePatterns {
		if p == "" {
			v.addf("load_options.exclude_patterns", "empty pattern")
		}
	}
}

// IsAggregate reports whether the configured method needs the whole file set.
func (c *Config) IsAggregate() bool {
	return c.Method.IsAggregate()
}
