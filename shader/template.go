package shader

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch2d/render"
)

// Kind selects the vertex format a program consumes.
type Kind uint8

const (
	// Sprite vertices: x, y, u, v, texture id, packed color.
	Sprite Kind = iota
	// Polygon vertices: x, y, u, v, packed color.
	Polygon
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Sprite:
		return "sprite"
	case Polygon:
		return "polygon"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Words returns the number of 32-bit words per vertex.
func (k Kind) Words() int {
	if k == Polygon {
		return 5
	}
	return 6
}

// Layout returns the vertex buffer layout for the kind.
func (k Kind) Layout() gputypes.VertexBufferLayout {
	if k == Polygon {
		return gputypes.VertexBufferLayout{
			ArrayStride: 20,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
			},
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: 24,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 20, ShaderLocation: 3},
		},
	}
}

// Entry point names of every generated module.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Bind group layout of every generated module.
const (
	// GlobalsGroup holds the projection block, the sampler and the batch
	// texture table.
	GlobalsGroup = 0
	// CustomGroup holds the custom uniform block (binding 0) and custom
	// textures (bindings 1..n).
	CustomGroup = 1

	// FirstTextureBinding is the binding of tex0 in GlobalsGroup.
	FirstTextureBinding = 2
)

// ProjectionUniform is the name of the built-in projection matrix.
const ProjectionUniform = "projection"

var moduleTemplate = template.Must(template.New("module").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
}).Parse(`// {{.Label}}
struct Globals {
    projection: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> globals: Globals;
@group(0) @binding(1) var samp: sampler;
{{range .Slots}}@group(0) @binding({{add . 2}}) var tex{{.}}: texture_2d<f32>;
{{end}}
{{- if .Block}}
struct Uniforms {
{{- range .Block}}
    {{.Name}}: {{.Kind}},
{{- end}}
};

@group(1) @binding(0) var<uniform> u: Uniforms;
{{- end}}
{{- range $i, $d := .Textures}}
@group(1) @binding({{add $i 1}}) var {{$d.Name}}: texture_2d<f32>;
{{- end}}

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
{{- if .Sprite}}
    @location(2) texture_id: f32,
    @location(3) color: vec4<f32>,
{{- else}}
    @location(2) color: vec4<f32>,
{{- end}}
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) texture_id: f32,
    @location(2) color: vec4<f32>,
};

fn sample_batch(id: f32, uv: vec2<f32>) -> vec4<f32> {
    let slot = i32(id + 0.5);
    var c = textureSampleLevel(tex0, samp, uv, 0.0);
{{- range .Slots}}{{if .}}
    if slot == {{.}} {
        c = textureSampleLevel(tex{{.}}, samp, uv, 0.0);
    }
{{- end}}{{end}}
    return c;
}

@vertex
fn vs_main(vin: VertexInput) -> VertexOutput {
    var vout: VertexOutput;
    vout.clip = globals.projection * vec4<f32>(vin.position, 0.0, 1.0);
    vout.uv = vin.uv;
{{- if .Sprite}}
    vout.texture_id = vin.texture_id;
{{- else}}
    vout.texture_id = 0.0;
{{- end}}
    vout.color = vin.color;
{{- if .Vertex}}
    {{.Vertex}}
{{- end}}
    return vout;
}

@fragment
fn fs_main(vin: VertexOutput) -> @location(0) vec4<f32> {
    var color = sample_batch(vin.texture_id, vin.uv) * vin.color;
{{- if .Fragment}}
    {{.Fragment}}
{{- end}}
    return color;
}
`))

type templateData struct {
	Label    string
	Sprite   bool
	Slots    []int
	Block    []Decl
	Textures []Decl
	Vertex   string
	Fragment string
}

// Generate returns the WGSL module for spec with slots batch texture
// bindings.
func Generate(spec Spec, slots int) (string, error) {
	if slots < 1 {
		return "", fmt.Errorf("%w: need at least one texture slot, have %d", ErrShaderCompile, slots)
	}
	if err := validateDecls(spec.Decls); err != nil {
		return "", err
	}
	data := templateData{
		Label:    spec.label(),
		Sprite:   spec.Kind == Sprite,
		Vertex:   indent(spec.Vertex),
		Fragment: indent(spec.Fragment),
	}
	for i := 0; i < slots; i++ {
		data.Slots = append(data.Slots, i)
	}
	for _, d := range spec.Decls {
		if d.Kind == render.UniformSampler {
			data.Textures = append(data.Textures, d)
		} else {
			data.Block = append(data.Block, d)
		}
	}
	var sb strings.Builder
	if err := moduleTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("generate %s: %w", data.Label, err)
	}
	return sb.String(), nil
}

func indent(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	return strings.ReplaceAll(body, "\n", "\n    ")
}
