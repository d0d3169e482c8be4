package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
method: fft
load_options:
  extensions: trt
evaluate:
  reference_frequency: 2.355
  order: 3
`

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, FFTMethod, cfg.Method)
	assert.Equal(t, StringList{"trt"}, cfg.Load.Extensions, "single scalar is coerced to a list")
	assert.Empty(t, cfg.Load.ExcludePatterns)
	assert.Empty(t, cfg.Load.SkipFiles)
	assert.False(t, cfg.Load.NoCommentCheck, "comment check is enabled by default")
	assert.Equal(t, AllAsPrimary, cfg.Load.Grouping)
	assert.Equal(t, "nm", cfg.Preprocess.InputUnit)
	assert.Empty(t, cfg.BeforeEvaluate)
	assert.Empty(t, cfg.AfterEvaluate)
	require.NotNil(t, cfg.Evaluate.ReferenceFrequency)
	assert.InDelta(t, 2.355, *cfg.Evaluate.ReferenceFrequency, 1e-12)
	require.NotNil(t, cfg.Evaluate.Order)
	assert.Equal(t, 3, *cfg.Evaluate.Order)
	assert.Nil(t, cfg.Details.Windows)
}

func TestParse_Scaffold(t *testing.T) {
	for _, m := range ShortMethodNames {
		t.Run(m, func(t *testing.T) {
			doc, err := DefaultDocument(m)
			require.NoError(t, err)

			cfg, err := Parse([]byte(doc))
			require.NoError(t, err)
			assert.Equal(t, m, cfg.Method.Short())
			assert.Equal(t, PrimaryOnly, cfg.Load.Grouping)
			assert.Equal(t, ",", cfg.Load.Decimal)
			assert.Equal(t, ";", cfg.Load.Delimiter)
			assert.Equal(t, 8, cfg.Load.SkipRows)
			assert.True(t, cfg.Preprocess.ChDomain)
			require.NotNil(t, cfg.Preprocess.SliceStop)
			assert.Equal(t, 4.0, *cfg.Preprocess.SliceStop)
			assert.Len(t, cfg.BeforeEvaluate, 2)
			assert.Equal(t, StringList{"print('and after evaluate too..')"}, cfg.AfterEvaluate)
		})
	}
}

func TestParse_MethodNames(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"wft", WFTMethod},
		{"spp", SPPMethod},
		{"cff", CosFitMethod},
		{"mm", MinMaxMethod},
		{"MinMaxMethod", MinMaxMethod},
	}
	for _, tt := range tests {
		m, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, m)
	}
	assert.True(t, SPPMethod.IsAggregate())
	assert.False(t, CosFitMethod.IsAggregate())
}

func TestParse_UnknownMethod(t *testing.T) {
	doc := `
method: dft
load_options:
  extensions: [trt]
evaluate:
  reference_frequency: 2.0
  order: 2
`
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []string{"method"}, verr.Keys())
	assert.Contains(t, err.Error(), "dft")
}

func TestParse_TypeMismatchNamesKey(t *testing.T) {
	doc := `
method: wft
load_options:
  extensions: [trt, 3]
  skiprows: eight
  decimal: ",,"
  mod: 2
  no_comment_check: "yes"
preprocess:
  slice_start: start
method_details:
  windows: 2.5
evaluate:
  reference_frequency: 2.0
`
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.ElementsMatch(t, []string{
		"load_options.extensions",
		"load_options.skiprows",
		"load_options.decimal",
		"load_options.mod",
		"load_options.no_comment_check",
		"preprocess.slice_start",
		"method_details.windows",
		"evaluate.order",
	}, verr.Keys())
}

func TestParse_MissingSections(t *testing.T) {
	_, err := Parse([]byte("preprocess:\n  chdomain: true\n"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"method", "load_options", "evaluate"}, verr.Keys())
}

func TestParse_NotAMapping(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "mapping")
}

func TestParse_SectionAsListOfMaps(t *testing.T) {
	doc := `
method: mm
load_options:
  - extensions: [txt]
  - skiprows: 2
evaluate:
  - reference_frequency: 2.1
  - order: 4
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Load.SkipRows)
	assert.Equal(t, 4, *cfg.Evaluate.Order)
}

func TestParse_GroupingNames(t *testing.T) {
	for in, want := range map[string]GroupingMode{"3": Triple, "1": AllAsPrimary, "-1": PrimaryOnly, "triple": Triple, "primary": PrimaryOnly} {
		g, err := ParseGroupingMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, g)
	}
}

func TestParse_NegativeCounts(t *testing.T) {
	doc := `
method: fft
load_options:
  extensions: trt
  skiprows: -1
evaluate:
  reference_frequency: 2.0
  order: 2
`
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"load_options.skiprows"}, verr.Keys())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir, "spp", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SPPMethod, cfg.Method)

	_, err = WriteDefault(dir, "fft", false)
	assert.ErrorIs(t, err, ErrConfigExists)

	_, err = WriteDefault(dir, "fft", true)
	require.NoError(t, err)
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, FFTMethod, cfg.Method)

	_, err = WriteDefault(dir, "xyz", true)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
