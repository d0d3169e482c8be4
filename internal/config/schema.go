package config

import (
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// field binds one document key to its decoder.
type field struct {
	key      string
	required bool
	decode   func(v *validator, key string, n *yaml.Node)
}

// schema describes the top-level sections of eval.yaml.
func (c *Config) schema() []field {
	return []field{
		{key: "method", required: true, decode: c.decodeMethod},
		{key: "load_options", required: true, decode: section(c.loadFields())},
		{key: "preprocess", decode: section(c.preprocessFields())},
		{key: "method_details", decode: section(c.detailFields())},
		{key: "evaluate", required: true, decode: section(c.evaluateFields())},
		{key: "before_evaluate", decode: list(&c.BeforeEvaluate)},
		{key: "after_evaluate", decode: list(&c.AfterEvaluate)},
	}
}

func (c *Config) loadFields() []field {
	l := &c.Load
	return []field{
		{key: "extensions", required: true, decode: list(&l.Extensions)},
		{key: "exclude_patterns", decode: list(&l.ExcludePatterns)},
		{key: "skip_files", decode: list(&l.SkipFiles)},
		{key: "skiprows", decode: integer(&l.SkipRows)},
		{key: "meta_len", decode: integer(&l.MetaLen)},
		{key: "decimal", decode: char(&l.Decimal)},
		{key: "delimiter", decode: char(&l.Delimiter)},
		{key: "mod", decode: grouping(&l.Grouping)},
		{key: "no_comment_check", decode: boolean(&l.NoCommentCheck)},
	}
}

func (c *Config) preprocessFields() []field {
	p := &c.Preprocess
	return []field{
		{key: "chdomain", decode: boolean(&p.ChDomain)},
		{key: "input_unit", decode: str(&p.InputUnit)},
		{key: "slice_start", decode: optFloat(&p.SliceStart)},
		{key: "slice_stop", decode: optFloat(&p.SliceStop)},
	}
}

func (c *Config) detailFields() []field {
	d := &c.Details
	return []field{
		{key: "heatmap", decode: optBool(&d.Heatmap)},
		{key: "windows", decode: optInt(&d.Windows)},
		{key: "fwhm", decode: optFloat(&d.FWHM)},
		{key: "std", decode: optFloat(&d.Std)},
		{key: "parallel", decode: optBool(&d.Parallel)},
		{key: "plot", decode: optBool(&d.Plot)},
		{key: "min", decode: optBool(&d.Min)},
		{key: "max", decode: optBool(&d.Max)},
		{key: "both", decode: optBool(&d.Both)},
		{key: "eager", decode: optBool(&d.Eager)},
		{key: "detach", decode: optBool(&d.Detach)},
	}
}

func (c *Config) evaluateFields() []field {
	e := &c.Evaluate
	return []field{
		{key: "reference_frequency", required: true, decode: optFloat(&e.ReferenceFrequency)},
		{key: "order", required: true, decode: optInt(&e.Order)},
		{key: "only_phase", decode: optBool(&e.OnlyPhase)},
	}
}

func (c *Config) decodeMethod(v *validator, key string, n *yaml.Node) {
	if !isTag(n, "!!str") {
		v.typeMismatch(key, "string", n)
		return
	}
	m, err := ParseMethod(n.Value)
	if err != nil {
		v.addf(key, "%v", err)
		return
	}
	c.Method = m
}

// section decodes a nested mapping. A section written as a list of
// single-key maps is flattened first.
func section(fields []field) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		entries, ok := flatten(n)
		if !ok {
			v.typeMismatch(key, "mapping", n)
			return
		}
		for _, f := range fields {
			child, ok := entries[f.key]
			if !ok || isNull(child) {
				if f.required {
					v.addf(key+"."+f.key, "missing required key")
				}
				continue
			}
			f.decode(v, key+"."+f.key, child)
		}
	}
}

func list(dst *StringList) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		var out StringList
		if err := out.UnmarshalYAML(n); err != nil {
			v.addf(key, "%v", err)
			return
		}
		*dst = out
	}
}

func str(dst *string) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		if !isTag(n, "!!str") {
			v.typeMismatch(key, "string", n)
			return
		}
		*dst = n.Value
	}
}

func char(dst *string) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		if !isTag(n, "!!str") {
			v.typeMismatch(key, "single character", n)
			return
		}
		if utf8.RuneCountInString(n.Value) != 1 {
			v.addf(key, "expected a single character, found %q", n.Value)
			return
		}
		*dst = n.Value
	}
}

func integer(dst *int) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		if !isTag(n, "!!int") {
			v.typeMismatch(key, "integer", n)
			return
		}
		if err := n.Decode(dst); err != nil {
			v.addf(key, "%v", err)
		}
	}
}

func optInt(dst **int) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		var i int
		integer(&i)(v, key, n)
		if isTag(n, "!!int") {
			*dst = &i
		}
	}
}

func optFloat(dst **float64) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		if !isTag(n, "!!float") && !isTag(n, "!!int") {
			v.typeMismatch(key, "number", n)
			return
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			v.addf(key, "%v", err)
			return
		}
		*dst = &f
	}
}

func boolean(dst *bool) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		if !isTag(n, "!!bool") {
			v.typeMismatch(key, "boolean", n)
			return
		}
		if err := n.Decode(dst); err != nil {
			v.addf(key, "%v", err)
		}
	}
}

func optBool(dst **bool) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		var b bool
		boolean(&b)(v, key, n)
		if isTag(n, "!!bool") {
			*dst = &b
		}
	}
}

func grouping(dst *GroupingMode) func(*validator, string, *yaml.Node) {
	return func(v *validator, key string, n *yaml.Node) {
		if n.Kind != yaml.ScalarNode {
			v.typeMismatch(key, "grouping mode", n)
			return
		}
		g, err := ParseGroupingMode(n.Value)
		if err != nil {
			v.addf(key, "%v", err)
			return
		}
		*dst = g
	}
}

// flatten returns the key/value pairs of a mapping, or of a sequence of
// mappings merged in order.
func flatten(n *yaml.Node) (map[string]*yaml.Node, bool) {
	switch n.Kind {
	case yaml.MappingNode:
		return mappingIndex(n), true
	case yaml.SequenceNode:
		out := make(map[string]*yaml.Node)
		for _, item := range n.Content {
			if item.Kind != yaml.MappingNode {
				return nil, false
			}
			for k, val := range mappingIndex(item) {
				out[k] = val
			}
		}
		return out, true
	}
	return nil, false
}

func mappingIndex(n *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out
}

func isTag(n *yaml.Node, tag string) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == tag
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return "string " + quote(n.Value)
		case "!!int":
			return "integer " + n.Value
		case "!!float":
			return "number " + n.Value
		case "!!bool":
			return "boolean " + n.Value
		case "!!null":
			return "null"
		}
		return n.ShortTag() + " " + n.Value
	case yaml.AliasNode:
		return "alias"
	}
	return "empty document"
}

func quote(s string) string {
	return "\"" + s + "\""
}
