package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Method is one of the five analysis methods understood by the runtime.
// The value is the runtime's class name.
type Method string

const (
	FFTMethod    Method = "FFTMethod"
	WFTMethod    Method = "WFTMethod"
	SPPMethod    Method = "SPPMethod"
	CosFitMethod Method = "CosFitMethod"
	MinMaxMethod Method = "MinMaxMethod"
)

// methodAliases maps the short document names to methods.
var methodAliases = map[string]Method{
	"fft": FFTMethod,
	"wft": WFTMethod,
	"spp": SPPMethod,
	"cff": CosFitMethod,
	"mm":  MinMaxMethod,
}

// ShortMethodNames lists the accepted short names in CLI order.
var ShortMethodNames = []string{"fft", "wft", "spp", "cff", "mm"}

// ParseMethod accepts either a short name (fft) or the class name (FFTMethod).
func ParseMethod(s string) (Method, error) {
	if m, ok := methodAliases[s]; ok {
		return m, nil
	}
	for _, m := range methodAliases {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("expected valid method name (%s), found %q", strings.Join(ShortMethodNames, ", "), s)
}

// IsAggregate reports whether the method evaluates the whole classified set
// in a single script instead of file by file.
func (m Method) IsAggregate() bool {
	return m == SPPMethod
}

// Short returns the document name of the method.
func (m Method) Short() string {
	for k, v := range methodAliases {
		if v == m {
			return k
		}
	}
	return string(m)
}

func (m Method) String() string { return string(m) }

// GroupingMode controls how discovered files are partitioned into arms.
type GroupingMode int

const (
	// AllAsPrimary treats every file as an interferogram.
	AllAsPrimary GroupingMode = 1
	// Triple groups consecutive files as (interferogram, sample, reference).
	Triple GroupingMode = 3
	// PrimaryOnly groups like Triple but only the interferograms are kept.
	PrimaryOnly GroupingMode = -1
)

// ParseGroupingMode accepts the numeric document form (3, 1, -1) or a name.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "3", "triple":
		return Triple, nil
	case "1", "all":
		return AllAsPrimary, nil
	case "-1", "primary":
		return PrimaryOnly, nil
	}
	return 0, fmt.Errorf("grouping mode should be 3, 1 or -1, found %q", s)
}

func (g GroupingMode) String() string {
	switch g {
	case Triple:
		return "triple"
	case AllAsPrimary:
		return "all"
	case PrimaryOnly:
		return "primary"
	}
	return fmt.Sprintf("GroupingMode(%d)", int(g))
}

// StringList is a list of strings that also accepts a single scalar.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return fmt.Errorf("expected string or list of strings, found %s", kindName(n))
		}
		*l = StringList{n.Value}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(n.Content))
		for i, item := range n.Content {
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return fmt.Errorf("item %d: expected string, found %s", i, kindName(item))
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	}
	return fmt.Errorf("expected string or list of strings, found %s", kindName(n))
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}
