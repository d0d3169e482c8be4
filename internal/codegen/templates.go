package codegen

// Preamble declares the library aliases every generated script relies on.
const Preamble = `import numpy as np
import pysprint as ps
import matplotlib.pyplot as plt

`

const (
	fileTemplateName = "pstemplate.py"
	setTemplateName  = "spp.py"
)

// fileTemplate evaluates a single interferogram.
const fileTemplate = `ifg = ps.{{ .methodname }}.parse_raw(
    {{ pystr .filename }},
{{- if .filename2 }}
    {{ pystr .filename2 }},
{{- end }}
{{- if .filename3 }}
    {{ pystr .filename3 }},
{{- end }}
    {{ template "loadargs" . }}
)
{{- if not .no_comment_check }}

SKIP_IF = ("ref", "sam", "reference", "sample", "noeval")

for entry in SKIP_IF:
    try:
        if entry in ifg.meta['comment']:
            import sys
            sys.exit(f"file skipped due to user comment contains '{entry}'.")
    except KeyError:
        pass
{{- end }}
{{- if ne .input_unit "nm" }}

ifg.chrange({{ pystr .input_unit }}, "{{ if .chdomain }}nm{{ else }}phz{{ end }}")
{{- end }}
{{- if .chdomain }}

ifg.chdomain()
{{- end }}
{{- if and .slice_start .slice_stop }}

ifg.slice({{ .slice_start }}, {{ .slice_stop }})
{{- else if .slice_start }}

ifg.slice(start={{ .slice_start }})
{{- else if .slice_stop }}

ifg.slice(stop={{ .slice_stop }})
{{- end }}

x_before_transform = np.copy(ifg.x)
y_before_transform = np.copy(ifg.y_norm)
{{- if .plot }}

ifg.plot()
plt.show(block=True)
{{- end }}
{{ template "hooks" .bet }}
{{ if eq .methodname "FFTMethod" -}}
import warnings
warnings.simplefilter("ignore")
ifg.autorun({{ .reference_frequency }}, {{ .order }}, show_graph=False, enable_printing={{ pybool (not .is_audit) }})
{{- else if eq .methodname "CosFitMethod" -}}
{{- if not .is_audit -}}
import sys
sys.exit("CosFit is not supported in watch mode")
{{ end -}}
ifg.GD_lookup({{ .reference_frequency }}, silent=True)
ifg._optimizer({{ .reference_frequency }}, {{ .order }}, initial_region_ratio=0.05, extend_by=0.05, show_endpoint=False, nofigure=True)
{{- else if eq .methodname "WFTMethod" -}}
ifg.cover(
    {{ if .windows }}{{ .windows }}{{ else }}300{{ end }},
    {{ if .fwhm }}fwhm={{ .fwhm }}{{ else if .std }}std={{ .std }}{{ else }}fwhm=0.05{{ end }},
)

ifg.{{ if .is_audit }}_{{ end }}calculate({{ .reference_frequency }}, {{ .order }}, silent={{ pybool .is_audit }}, parallel={{ pybool .parallel }}, fastmath=False)
{{- if .heatmap }}

ifg.heatmap()
plt.show(block=True)
{{- end }}
{{- else if eq .methodname "MinMaxMethod" -}}
{{- $side := "both" -}}
{{- if and .min .max }}{{ else if .min }}{{ $side = "min" }}{{ else if .max }}{{ $side = "max" }}{{ end -}}
ifg.init_edit_session(side="{{ $side }}")
plt.show(block=True)
ifg.calculate({{ .reference_frequency }}, {{ .order }}, scan=True, onesided={{ if eq $side "both" }}False{{ else }}True{{ end }})
{{- else -}}
print("{{ .methodname }} is not yet implemented..")
{{- end }}
{{ template "hooks" .aet }}

# if you are working with the generated file, the part below can be safely commented out

fragment = ps.utils._prepare_json_fragment(ifg, {{ pystr .filename_raw }}, x_before_transform, y_before_transform, verbosity={{ .verbosity }})
ps.utils._write_or_update_json_fragment({{ pystr .result_path }}, fragment, {{ pystr .filename_raw }})
`

// setTemplate evaluates the whole classified set at once.
const setTemplate = `ifg_files = [
{{- range .ifg_files }}
    {{ pystr . }},
{{- end }}
]

sam_files = [
{{- range .sam_files }}
    {{ pystr . }},
{{- end }}
]

ref_files = [
{{- range .ref_files }}
    {{ pystr . }},
{{- end }}
]

myspp = ps.SPPMethod(
    ifg_files,
    sam_files,
    ref_files,
    {{ template "loadargs" . }}
{{- if .eager }}
    callback=ps.eager_executor(reference_point={{ .reference_frequency }}, order={{ .order }}, logfile="spp.log", verbosity=1),
{{- end }}
)
{{ template "hooks" .bet }}
{{- if .detach }}

for ifg in myspp:
{{- if .chdomain }}
    ifg.chdomain()
{{- end }}
    ifg.open_SPP_panel(header="comment")
{{- end }}

myspp.calculate({{ .reference_frequency }}, {{ .order }}, show_graph=False)
{{ template "hooks" .aet }}
`

// partials shared by both templates.
const partials = `
{{- define "loadargs" -}}
skiprows={{ if .skiprows }}{{ .skiprows }}{{ else }}0{{ end }},
    decimal={{ if .decimal }}{{ pystr .decimal }}{{ else }}"."{{ end }},
    delimiter={{ if .delimiter }}{{ pystr .delimiter }}{{ else }}","{{ end }},
    meta_len={{ if .meta_len }}{{ .meta_len }}{{ else }}0{{ end }},
{{- end -}}

{{- define "hooks" -}}
{{- range . }}
{{ . }}
{{- end }}
{{- end -}}
`
