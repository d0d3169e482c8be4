package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrConfigExists is returned by WriteDefault when the target file exists
// and overriding was not requested.
var ErrConfigExists = errors.New("config file already exists")

const defaultDocument = `load_options:
  extensions:
    - "trt"
    - "txt"
  exclude_patterns:
    - "*_randomfile.trt"
  skip_files:
    - "my_file_to_skip.txt"
  skiprows: 8
  decimal: ","
  delimiter: ";"
  meta_len: 6 # lines
  mod: -1
  no_comment_check: true
preprocess:
  chdomain: true
  input_unit: "nm"
  slice_start: 2 # PHz
  slice_stop: 4 # PHz
method: {{METHOD}}
method_details:
  heatmap: false
  windows: 200
  fwhm: 0.05
  parallel: false
  plot: false
  min: false
  max: false
  both: false
  eager: false
  detach: true
before_evaluate:
  - print('before_evaluate')
  - print('you have access to the ` + "`ifg`" + ` variable')
evaluate:
  reference_frequency: 2.355
  order: 3
  only_phase: false
after_evaluate:
  - print('and after evaluate too..')
`

// DefaultDocument returns the scaffold written by "init" for the given
// method (short or class name).
func DefaultDocument(method string) (string, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return "", NewValidationError("method", "%v", err)
	}
	return strings.Replace(defaultDocument, "{{METHOD}}", m.Short(), 1), nil
}

// WriteDefault writes the scaffold to dir/eval.yaml and returns the path.
func WriteDefault(dir, method string, override bool) (string, error) {
	doc, err := DefaultDocument(method)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err == nil && !override {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return path, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return path, fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
