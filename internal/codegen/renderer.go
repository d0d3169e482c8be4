// Package codegen turns a validated configuration and a set of data files
// into script text for the external runtime.
package codegen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/Ptrskay3/pysprint-cli/internal/config"
	"github.com/Ptrskay3/pysprint-cli/internal/discovery"
)

// RenderError reports a template execution failure. Validated
// configurations never produce one.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Env carries the per-invocation values that are not part of the config.
type Env struct {
	Workdir    string
	ResultFile string
	Verbosity  int
	Audit      bool
}

// Unit is one per-file work item. Secondary and Tertiary are only set when
// the arms are paired (Triple grouping in audit mode).
type Unit struct {
	Primary   string
	Secondary string
	Tertiary  string
}

// Script is generated script text together with the values it was
// rendered from.
type Script struct {
	Name string
	Text string
	ctx  map[string]any
}

// Source returns the complete runnable file content, preamble included.
func (s *Script) Source() string {
	return Preamble + s.Text
}

// Value looks up a context value used to render the script.
func (s *Script) Value(key string) (any, bool) {
	v, ok := s.ctx[key]
	return v, ok
}

// Keys lists the context keys in sorted order.
func (s *Script) Keys() []string {
	keys := make([]string, 0, len(s.ctx))
	for k := range s.ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Renderer holds the compiled templates. Build it once and share it.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer compiles the script templates.
func NewRenderer() *Renderer {
	root := template.New("pysprint").Funcs(template.FuncMap{
		"pystr":  pyString,
		"pybool": pyBool,
	}).Option("missingkey=error")
	template.Must(root.Parse(partials))
	template.Must(root.New(fileTemplateName).Parse(fileTemplate))
	template.Must(root.New(setTemplateName).Parse(setTemplate))
	return &Renderer{tmpl: root}
}

// RenderFile renders the per-file script for unit.
func (r *Renderer) RenderFile(cfg *config.Config, unit Unit, env Env) (*Script, error) {
	ctx := Context(cfg, env)
	ctx["filename"] = unit.Primary
	ctx["filename_raw"] = filepath.Base(unit.Primary)
	ctx["filename2"] = optional(unit.Secondary)
	ctx["filename3"] = optional(unit.Tertiary)

	text, err := r.execute(fileTemplateName, ctx)
	if err != nil {
		return nil, err
	}
	return &Script{Name: stem(unit.Primary), Text: text, ctx: ctx}, nil
}

// RenderSet renders the single script of an aggregate method.
func (r *Renderer) RenderSet(cfg *config.Config, set discovery.ClassifiedSet, env Env) (*Script, error) {
	ctx := Context(cfg, env)
	ctx["ifg_files"] = nonNil(set.Primary)
	ctx["sam_files"] = nonNil(set.Secondary)
	ctx["ref_files"] = nonNil(set.Tertiary)

	text, err := r.execute(setTemplateName, ctx)
	if err != nil {
		return nil, err
	}
	return &Script{Name: "spp_eval", Text: text, ctx: ctx}, nil
}

func (r *Renderer) execute(name string, ctx map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", &RenderError{Template: name, Err: err}
	}
	return buf.String(), nil
}

// Context builds the substitution table shared by both templates. Every
// configuration scalar is present under its document key; absent optional
// values map to nil. The evaluation parameters are only inserted when set.
func Context(cfg *config.Config, env Env) map[string]any {
	l, p, d, e := cfg.Load, cfg.Preprocess, cfg.Details, cfg.Evaluate
	ctx := map[string]any{
		"methodname":  cfg.Method.String(),
		"workdir":     env.Workdir,
		"result_file": env.ResultFile,
		"result_path": resultPath(env),
		"verbosity":   env.Verbosity,
		"is_audit":    env.Audit,
		"bet":         []string(nonNil(cfg.BeforeEvaluate)),
		"aet":         []string(nonNil(cfg.AfterEvaluate)),

		"skiprows":         l.SkipRows,
		"meta_len":         l.MetaLen,
		"decimal":          l.Decimal,
		"delimiter":        l.Delimiter,
		"no_comment_check": l.NoCommentCheck,

		"chdomain":    p.ChDomain,
		"input_unit":  p.InputUnit,
		"slice_start": deref(p.SliceStart),
		"slice_stop":  deref(p.SliceStop),

		"heatmap":  deref(d.Heatmap),
		"windows":  deref(d.Windows),
		"fwhm":     deref(d.FWHM),
		"std":      deref(d.Std),
		"parallel": deref(d.Parallel),
		"plot":     deref(d.Plot),
		"min":      deref(d.Min),
		"max":      deref(d.Max),
		"both":     deref(d.Both),
		"eager":    deref(d.Eager),
		"detach":   deref(d.Detach),

		"only_phase": deref(e.OnlyPhase),
	}
	if e.ReferenceFrequency != nil {
		ctx["reference_frequency"] = *e.ReferenceFrequency
	}
	if e.Order != nil {
		ctx["order"] = *e.Order
	}
	return ctx
}

func resultPath(env Env) string {
	if env.ResultFile == "" || filepath.IsAbs(env.ResultFile) {
		return env.ResultFile
	}
	return filepath.Join(env.Workdir, env.ResultFile)
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil[S ~[]string](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pyString renders s as a double-quoted Python string literal.
func pyString(v any) string {
	return strconv.Quote(fmt.Sprint(v))
}

func pyBool(v any) string {
	if b, ok := v.(bool); ok && b {
		return "True"
	}
	return "False"
}
