package shader

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// Sentinel errors.
var (
	// ErrShaderCompile is returned when a generated module fails to parse,
	// lower or validate.
	ErrShaderCompile = errors.New("shader: compile failed")

	// ErrInvalidDecl is returned for malformed custom uniform declarations.
	ErrInvalidDecl = errors.New("shader: invalid uniform declaration")
)

// Decl declares a custom uniform.
type Decl struct {
	Name string
	Kind render.UniformKind
}

// Spec describes a program to build.
type Spec struct {
	Label string
	Kind  Kind
	// Vertex is spliced at the end of vs_main, before the return.
	Vertex string
	// Fragment is spliced at the end of fs_main, before the return.
	Fragment string
	Decls    []Decl

	// GLSL additionally translates both entry points to GLSL 3.30.
	GLSL bool
}

func (s Spec) label() string {
	if s.Label != "" {
		return s.Label
	}
	if s.Vertex == "" && s.Fragment == "" && len(s.Decls) == 0 {
		return "default " + s.Kind.String()
	}
	return "custom " + s.Kind.String()
}

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var reservedNames = map[string]bool{
	"globals": true, "samp": true, "u": true, "vin": true, "vout": true,
	"color": true, "sample_batch": true, "vs_main": true, "fs_main": true,
}

func validateDecls(decls []Decl) error {
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		switch {
		case !identRe.MatchString(d.Name):
			return fmt.Errorf("%w: bad name %q", ErrInvalidDecl, d.Name)
		case reservedNames[d.Name], ProjectionUniform == d.Name:
			return fmt.Errorf("%w: %q is reserved", ErrInvalidDecl, d.Name)
		case seen[d.Name]:
			return fmt.Errorf("%w: duplicate %q", ErrInvalidDecl, d.Name)
		case d.Kind < render.UniformFloat || d.Kind > render.UniformSampler:
			return fmt.Errorf("%w: %q has unknown kind %d", ErrInvalidDecl, d.Name, d.Kind)
		}
		seen[d.Name] = true
	}
	return nil
}

// Layout computes the uniform fields of a module built from decls.
func Layout(decls []Decl) []render.UniformField {
	fields := []render.UniformField{{
		Name:  ProjectionUniform,
		Kind:  render.UniformMat4,
		Group: GlobalsGroup,
	}}
	offset := 0
	texture := uint32(1)
	for _, d := range decls {
		if d.Kind == render.UniformSampler {
			fields = append(fields, render.UniformField{
				Name: d.Name, Kind: d.Kind, Group: CustomGroup, Binding: texture,
			})
			texture++
			continue
		}
		align := d.Kind.Align()
		offset = (offset + align - 1) / align * align
		fields = append(fields, render.UniformField{
			Name: d.Name, Kind: d.Kind, Group: CustomGroup, Offset: offset,
		})
		offset += d.Kind.Size()
	}
	return fields
}

// TextureDecls counts the texture uniforms in decls.
func TextureDecls(decls []Decl) int {
	n := 0
	for _, d := range decls {
		if d.Kind == render.UniformSampler {
			n++
		}
	}
	return n
}

// Build generates, validates and compiles the module for spec.
func Build(spec Spec, slots int) (render.ProgramSource, error) {
	src, err := Generate(spec, slots)
	if err != nil {
		return render.ProgramSource{}, err
	}
	module, err := compile(src)
	if err != nil {
		return render.ProgramSource{}, fmt.Errorf("%w: %s: %w", ErrShaderCompile, spec.label(), err)
	}
	spv, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return render.ProgramSource{}, fmt.Errorf("%w: %s: %w", ErrShaderCompile, spec.label(), err)
	}
	out := render.ProgramSource{
		Label:         spec.label(),
		WGSL:          src,
		SPIRV:         words(spv),
		VertexEntry:   VertexEntry,
		FragmentEntry: FragmentEntry,
		TextureSlots:  slots,
		Uniforms:      Layout(spec.Decls),
	}
	if spec.GLSL {
		if out.GLSLVertex, err = translateGLSL(module, VertexEntry); err != nil {
			return render.ProgramSource{}, err
		}
		if out.GLSLFragment, err = translateGLSL(module, FragmentEntry); err != nil {
			return render.ProgramSource{}, err
		}
	}
	return out, nil
}

// compile parses, lowers and validates a WGSL module.
func compile(src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, err
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, err
	}
	if len(verrs) > 0 {
		return nil, verrs[0]
	}
	return module, nil
}

func translateGLSL(module *ir.Module, entry string) (string, error) {
	opts := glsl.DefaultOptions()
	opts.EntryPoint = entry
	out, _, err := glsl.Compile(module, opts)
	if err != nil {
		return "", fmt.Errorf("%w: glsl %s: %w", ErrShaderCompile, entry, err)
	}
	return out, nil
}

// words converts little-endian SPIR-V bytes to 32-bit words.
func words(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return out
}

// Program is a compiled program together with its description.
type Program struct {
	spec   Spec
	source render.ProgramSource
	dev    render.Device
	handle render.Program
}

// NewProgram builds spec and creates it on dev. The batch texture table
// gets every texture unit the custom texture uniforms leave free.
func NewProgram(dev render.Device, spec Spec) (*Program, error) {
	if dev == nil {
		return nil, render.ErrNoDevice
	}
	slots := dev.Limits().MaxTextureUnits - TextureDecls(spec.Decls)
	src, err := Build(spec, slots)
	if err != nil {
		return nil, err
	}
	handle, err := dev.CreateProgram(src)
	if err != nil {
		return nil, fmt.Errorf("create program %q: %w", src.Label, err)
	}
	batch2d.Logger().Info("shader: program created",
		"label", src.Label, "kind", spec.Kind.String(), "slots", slots, "decls", len(spec.Decls))
	return &Program{spec: spec, source: src, dev: dev, handle: handle}, nil
}

// Kind returns the vertex format of the program.
func (p *Program) Kind() Kind { return p.spec.Kind }

// Label returns the program label.
func (p *Program) Label() string { return p.source.Label }

// Source returns the generated source.
func (p *Program) Source() render.ProgramSource { return p.source }

// Handle returns the device program.
func (p *Program) Handle() render.Program { return p.handle }

// TextureSlots returns the size of the batch texture table.
func (p *Program) TextureSlots() int { return p.source.TextureSlots }

// Decls returns the custom uniform declarations.
func (p *Program) Decls() []Decl { return p.spec.Decls }

// Declared reports whether name is a custom uniform of the program.
func (p *Program) Declared(name string) (render.UniformKind, bool) {
	for _, d := range p.spec.Decls {
		if d.Name == name {
			return d.Kind, true
		}
	}
	return 0, false
}

// Destroy releases the device program.
func (p *Program) Destroy() {
	if p.handle == nil {
		return
	}
	p.dev.DeleteProgram(p.handle)
	p.handle = nil
}
