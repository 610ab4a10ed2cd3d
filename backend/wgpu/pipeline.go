package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// Bind group layout shared with the generated shader modules.
const (
	globalsGroup     = 0
	customGroup      = 1
	samplerBinding   = 1
	firstTextureSlot = 2
)

// uniformBlock is the uniform buffer of one bind group.
type uniformBlock struct {
	buf  hal.Buffer
	data []byte
}

type program struct {
	src            render.ProgramSource
	module         hal.ShaderModule
	groupLayouts   []hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	blocks         map[uint32]*uniformBlock
	values         map[string]render.Uniform
	deleted        bool
}

func (p *program) Label() string { return p.src.Label }

// customTextures returns the texture fields of the custom group.
func (p *program) customTextures() []render.UniformField {
	var out []render.UniformField
	for _, f := range p.src.Uniforms {
		if f.Group == customGroup && f.Kind == render.UniformSampler {
			out = append(out, f)
		}
	}
	return out
}

func (p *program) hasCustomGroup() bool {
	return p.src.BlockSize(customGroup) > 0 || len(p.customTextures()) > 0
}

func (d *Device) CreateProgram(src render.ProgramSource) (render.Program, error) {
	if src.TextureSlots < 1 {
		return nil, fmt.Errorf("wgpu: program %q has no texture slots", src.Label)
	}
	p := &program{
		src:    src,
		blocks: make(map[uint32]*uniformBlock),
		values: make(map[string]render.Uniform),
	}
	if err := d.buildProgram(p); err != nil {
		d.destroyProgram(p)
		return nil, err
	}
	batch2d.Logger().Debug("wgpu: program created", "label", src.Label, "slots", src.TextureSlots)
	return p, nil
}

func (d *Device) buildProgram(p *program) error {
	source := hal.ShaderSource{WGSL: p.src.WGSL}
	if d.info != nil && d.info.Backend == gputypes.BackendVulkan && len(p.src.SPIRV) > 0 {
		source = hal.ShaderSource{SPIRV: p.src.SPIRV}
	}
	var err error
	p.module, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.src.Label,
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("wgpu: compile %q: %w", p.src.Label, err)
	}

	visibility := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	texture := &gputypes.TextureBindingLayout{
		SampleType:    gputypes.TextureSampleTypeFloat,
		ViewDimension: gputypes.TextureViewDimension2D,
	}

	globals := []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: visibility, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: samplerBinding, Visibility: gputypes.ShaderStageFragment, Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}},
	}
	for slot := 0; slot < p.src.TextureSlots; slot++ {
		globals = append(globals, gputypes.BindGroupLayoutEntry{
			Binding: uint32(firstTextureSlot + slot), Visibility: gputypes.ShaderStageFragment, Texture: texture,
		})
	}
	if err := d.addGroup(p, globalsGroup, globals); err != nil {
		return err
	}

	if p.hasCustomGroup() {
		var custom []gputypes.BindGroupLayoutEntry
		if p.src.BlockSize(customGroup) > 0 {
			custom = append(custom, gputypes.BindGroupLayoutEntry{
				Binding: 0, Visibility: visibility, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		}
		for _, f := range p.customTextures() {
			custom = append(custom, gputypes.BindGroupLayoutEntry{
				Binding: f.Binding, Visibility: visibility, Texture: texture,
			})
		}
		if err := d.addGroup(p, customGroup, custom); err != nil {
			return err
		}
	}

	p.pipelineLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.src.Label + "_layout",
		BindGroupLayouts: p.groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	return nil
}

// addGroup creates the layout of group and its uniform buffer, if any.
func (d *Device) addGroup(p *program, group uint32, entries []gputypes.BindGroupLayoutEntry) error {
	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   fmt.Sprintf("%s_group%d", p.src.Label, group),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout %d: %w", group, err)
	}
	p.groupLayouts = append(p.groupLayouts, layout)

	size := p.src.BlockSize(group)
	if size == 0 {
		return nil
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("%s_uniforms%d", p.src.Label, group),
		Size:  uint64(size),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer %d: %w", group, err)
	}
	p.blocks[group] = &uniformBlock{buf: buf, data: make([]byte, size)}
	return nil
}

func (d *Device) destroyProgram(p *program) {
	for _, b := range p.blocks {
		d.device.DestroyBuffer(b.buf)
	}
	if p.pipelineLayout != nil {
		d.device.DestroyPipelineLayout(p.pipelineLayout)
	}
	for _, l := range p.groupLayouts {
		d.device.DestroyBindGroupLayout(l)
	}
	if p.module != nil {
		d.device.DestroyShaderModule(p.module)
	}
	p.blocks, p.pipelineLayout, p.groupLayouts, p.module = nil, nil, nil, nil
}

func (d *Device) UseProgram(rp render.Program) {
	if rp == nil {
		d.prog = nil
		return
	}
	p, ok := rp.(*program)
	if !ok || p.deleted {
		batch2d.Logger().Debug("wgpu: use of foreign or deleted program ignored")
		return
	}
	d.prog = p
}

func (d *Device) SetVertexLayout(layout gputypes.VertexBufferLayout) { d.layout = layout }

func (d *Device) SetUniform(name string, u render.Uniform) {
	if d.prog == nil {
		batch2d.Logger().Debug("wgpu: uniform without program ignored", "name", name)
		return
	}
	if _, ok := d.prog.src.Field(name); !ok {
		batch2d.Logger().Debug("wgpu: unknown uniform ignored", "name", name, "program", d.prog.src.Label)
		return
	}
	d.prog.values[name] = u
}

func (d *Device) DeleteProgram(rp render.Program) {
	p, ok := rp.(*program)
	if !ok || p.deleted {
		return
	}
	p.deleted = true
	if d.prog == p {
		d.prog = nil
	}
	var dead []hal.RenderPipeline
	for key, pipeline := range d.pipelines {
		if key.prog == p {
			dead = append(dead, pipeline)
			delete(d.pipelines, key)
		}
	}
	d.deferRelease(func() {
		for _, pipeline := range dead {
			d.device.DestroyRenderPipeline(pipeline)
		}
		d.destroyProgram(p)
	})
}

// pipelineKey is everything a render pipeline bakes in. The stencil
// reference is dynamic state and stays out of it.
type pipelineKey struct {
	prog       *program
	stride     uint64
	attributes int
	topology   gputypes.PrimitiveTopology
	strip      gputypes.IndexFormat
	stencil    bool
	compare    gputypes.CompareFunction
	passOp     gputypes.StencilOperation
	colorWrite bool
}

func (d *Device) key(topology gputypes.PrimitiveTopology, strip gputypes.IndexFormat) pipelineKey {
	k := pipelineKey{
		prog:       d.prog,
		stride:     d.layout.ArrayStride,
		attributes: len(d.layout.Attributes),
		topology:   topology,
		colorWrite: d.colorWrite,
	}
	if topology == gputypes.PrimitiveTopologyTriangleStrip || topology == gputypes.PrimitiveTopologyLineStrip {
		k.strip = strip
	}
	if d.stencil.Enabled {
		k.stencil = true
		k.compare = d.stencil.Compare
		k.passOp = d.stencil.PassOp
	}
	return k
}

// pipeline returns the cached pipeline for the current state, creating it
// on first use.
func (d *Device) pipeline(topology gputypes.PrimitiveTopology, strip gputypes.IndexFormat) (hal.RenderPipeline, error) {
	k := d.key(topology, strip)
	if p, ok := d.pipelines[k]; ok {
		return p, nil
	}

	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	var readMask, writeMask uint32
	if k.stencil {
		face.Compare = k.compare
		face.PassOp = stencilOp(k.passOp)
		readMask = 0xFF
		if face.PassOp != hal.StencilOperationKeep {
			writeMask = 0xFF
		}
	}
	writeColor := gputypes.ColorWriteMaskAll
	if !k.colorWrite {
		writeColor = gputypes.ColorWriteMaskNone
	}
	primitive := gputypes.PrimitiveState{
		Topology:  topology,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeNone,
	}
	if k.strip != gputypes.IndexFormatUndefined {
		strip := k.strip
		primitive.StripIndexFormat = &strip
	}
	blend := gputypes.BlendStateAlpha()

	label := fmt.Sprintf("%s_%d", d.prog.src.Label, len(d.pipelines))
	p, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: d.prog.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     d.prog.module,
			EntryPoint: d.prog.src.VertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{d.layout},
		},
		Fragment: &hal.FragmentState{
			Module:     d.prog.module,
			EntryPoint: d.prog.src.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    colorFormat,
				Blend:     &blend,
				WriteMask: writeColor,
			}},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            stencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   readMask,
			StencilWriteMask:  writeMask,
		},
		Primitive: primitive,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline %s: %w", label, err)
	}
	d.pipelines[k] = p
	batch2d.Logger().Debug("wgpu: pipeline created", "label", label, "stencil", k.stencil, "colorWrite", k.colorWrite)
	return p, nil
}

func stencilOp(op gputypes.StencilOperation) hal.StencilOperation {
	switch op {
	case gputypes.StencilOperationZero:
		return hal.StencilOperationZero
	case gputypes.StencilOperationReplace:
		return hal.StencilOperationReplace
	case gputypes.StencilOperationInvert:
		return hal.StencilOperationInvert
	case gputypes.StencilOperationIncrementClamp:
		return hal.StencilOperationIncrementClamp
	case gputypes.StencilOperationDecrementClamp:
		return hal.StencilOperationDecrementClamp
	case gputypes.StencilOperationIncrementWrap:
		return hal.StencilOperationIncrementWrap
	case gputypes.StencilOperationDecrementWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

// sampler returns the batch sampler for filter.
func (d *Device) sampler(filter gputypes.FilterMode) (hal.Sampler, error) {
	if s, ok := d.samplers[filter]; ok {
		return s, nil
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "batch_" + filter.String(),
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	d.samplers[filter] = s
	return s, nil
}

// unit returns the texture bound to unit, or the white texture.
func (d *Device) unit(u int) *texture {
	if t, ok := d.units[u]; ok && t.tex != nil {
		return t
	}
	return d.white
}

// bindGroups uploads the uniform blocks of the current program and
// creates its bind groups for one draw.
func (d *Device) bindGroups() ([]hal.BindGroup, error) {
	p := d.prog
	for group, block := range p.blocks {
		clear(block.data)
		for _, f := range p.src.Uniforms {
			if f.Group != group || f.Kind == render.UniformSampler {
				continue
			}
			if v, ok := p.values[f.Name]; ok && v.Kind == f.Kind {
				v.Encode(block.data[f.Offset:])
			}
		}
		if err := d.queue.WriteBuffer(block.buf, 0, block.data); err != nil {
			return nil, fmt.Errorf("wgpu: write uniforms: %w", err)
		}
	}

	samp, err := d.sampler(d.unit(0).filter)
	if err != nil {
		return nil, err
	}
	globals := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: p.blocks[globalsGroup].buf.NativeHandle(), Size: uint64(len(p.blocks[globalsGroup].data)),
		}},
		{Binding: samplerBinding, Resource: gputypes.SamplerBinding{Sampler: samp.NativeHandle()}},
	}
	for slot := 0; slot < p.src.TextureSlots; slot++ {
		globals = append(globals, gputypes.BindGroupEntry{
			Binding:  uint32(firstTextureSlot + slot),
			Resource: gputypes.TextureViewBinding{TextureView: d.unit(slot).view.NativeHandle()},
		})
	}
	groups := make([]hal.BindGroup, 0, len(p.groupLayouts))
	g, err := d.bindGroup(p, globalsGroup, globals)
	if err != nil {
		return nil, err
	}
	groups = append(groups, g)

	if len(p.groupLayouts) > customGroup {
		var custom []gputypes.BindGroupEntry
		if block, ok := p.blocks[customGroup]; ok {
			custom = append(custom, gputypes.BindGroupEntry{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: block.buf.NativeHandle(), Size: uint64(len(block.data)),
			}})
		}
		for _, f := range p.customTextures() {
			unit := -1
			if v, ok := p.values[f.Name]; ok {
				unit = int(v.I)
			}
			custom = append(custom, gputypes.BindGroupEntry{
				Binding:  f.Binding,
				Resource: gputypes.TextureViewBinding{TextureView: d.unit(unit).view.NativeHandle()},
			})
		}
		g, err := d.bindGroup(p, customGroup, custom)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (d *Device) bindGroup(p *program, group int, entries []gputypes.BindGroupEntry) (hal.BindGroup, error) {
	g, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s_bind%d", p.src.Label, group),
		Layout:  p.groupLayouts[group],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group %d: %w", group, err)
	}
	d.deferRelease(func() { d.device.DestroyBindGroup(g) })
	return g, nil
}
