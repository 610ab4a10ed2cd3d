package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// ErrNoAdapter is returned by Open when the selected backend exposes no
// adapter.
var ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

// ErrNoHAL is returned by NewFromProvider when the provider does not
// expose HAL types.
var ErrNoHAL = errors.New("wgpu: provider does not expose HAL types")

func init() {
	render.Register("wgpu", func(width, height int) (render.Device, error) {
		d, err := Open(width, height)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend gputypes.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

func infoFrom(a gputypes.AdapterInfo) *GPUInfo {
	return &GPUInfo{
		Name:       a.Name,
		Vendor:     a.Vendor,
		DeviceType: a.DeviceType,
		Backend:    a.Backend,
		Driver:     a.Driver,
	}
}

// Option configures a Device created by New.
type Option func(*Device)

// WithLimits sets the device limits reported through Limits. The default
// is gputypes.DefaultLimits.
func WithLimits(l gputypes.Limits) Option {
	return func(d *Device) { d.limits = render.LimitsFrom(l) }
}

// WithAdapterInfo records the adapter the device was opened on.
func WithAdapterInfo(info gputypes.AdapterInfo) Option {
	return func(d *Device) { d.info = infoFrom(info) }
}

// Device is a render.Device backed by a HAL device and queue.
type Device struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool

	info   *GPUInfo
	limits render.Limits

	samplers map[gputypes.FilterMode]hal.Sampler
	white    *texture
	screen   *renderTarget

	bound      [2]*buffer
	prog       *program
	layout     gputypes.VertexBufferLayout
	units      map[int]*texture
	target     *renderTarget
	stencil    render.StencilState
	colorWrite bool
	viewport   [4]int

	pipelines map[pipelineKey]hal.RenderPipeline
	frame     frameResources
	frames    int
}

var _ render.Device = (*Device)(nil)

// frameResources holds what must outlive the submissions of a frame.
type frameResources struct {
	cmdBufs []hal.CommandBuffer
	release []func()
}

// Open opens a headless device of width x height on the best available
// HAL backend.
func Open(width, height int) (*Device, error) {
	backend, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("wgpu: select backend: %w", err)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	d, err := New(openDev.Device, openDev.Queue, width, height,
		WithAdapterInfo(selected.Info), WithLimits(selected.Capabilities.Limits))
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	return d, nil
}

// NewFromProvider shares the HAL device of a host application. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. The host keeps ownership of the device.
func NewFromProvider(provider render.DeviceHandle, width, height int) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	d, err := New(device, queue, width, height)
	if err != nil {
		return nil, err
	}
	d.info = &GPUInfo{Name: provider.AdapterInfo().Name}
	return d, nil
}

// New wraps an open HAL device. The caller keeps ownership of device and
// queue; Destroy only releases what the Device created.
func New(device hal.Device, queue hal.Queue, width, height int, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, render.ErrNoDevice
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wgpu: invalid size %dx%d", width, height)
	}
	d := &Device{
		device:     device,
		queue:      queue,
		limits:     render.DefaultLimits(),
		samplers:   make(map[gputypes.FilterMode]hal.Sampler),
		units:      make(map[int]*texture),
		pipelines:  make(map[pipelineKey]hal.RenderPipeline),
		colorWrite: true,
		viewport:   [4]int{0, 0, width, height},
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	if d.white, err = d.newTexture(render.TextureDesc{Label: "white", Width: 1, Height: 1},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF}, 0); err != nil {
		return nil, fmt.Errorf("wgpu: create white texture: %w", err)
	}
	if d.screen, err = d.newRenderTarget("screen", width, height); err != nil {
		d.white.destroy(d.device)
		return nil, fmt.Errorf("wgpu: create screen: %w", err)
	}
	if d.info != nil {
		batch2d.Logger().Info("wgpu: device ready", "gpu", d.info.String(), "driver", d.info.Driver)
	}
	return d, nil
}

// Info returns the adapter description, or nil when it is unknown.
func (d *Device) Info() *GPUInfo { return d.info }

// Screen returns the default framebuffer.
func (d *Device) Screen() render.RenderTarget { return d.screen }

// Frames returns how many frames Finish has completed.
func (d *Device) Frames() int { return d.frames }

func (d *Device) Limits() render.Limits { return d.limits }

// Finish waits for the frame's submissions and releases the resources
// deleted or allocated for it.
func (d *Device) Finish() error {
	if d.device == nil {
		return render.ErrNoDevice
	}
	var err error
	if len(d.frame.cmdBufs) > 0 {
		if werr := d.device.WaitIdle(); werr != nil {
			err = fmt.Errorf("wgpu: wait for GPU: %w", werr)
		}
	}
	d.releaseFrame()
	d.frames++
	return err
}

func (d *Device) releaseFrame() {
	for _, cb := range d.frame.cmdBufs {
		d.device.FreeCommandBuffer(cb)
	}
	for _, fn := range d.frame.release {
		fn()
	}
	d.frame.cmdBufs = d.frame.cmdBufs[:0]
	d.frame.release = d.frame.release[:0]
}

// deferRelease runs fn at the end of the frame, after in-flight command
// buffers that may reference the resource have completed.
func (d *Device) deferRelease(fn func()) {
	d.frame.release = append(d.frame.release, fn)
}

// Destroy waits for the GPU, then releases every resource the device
// created. When the device was opened by Open the HAL device and instance
// are destroyed too.
func (d *Device) Destroy() {
	if d.device == nil {
		return
	}
	if err := d.device.WaitIdle(); err != nil {
		batch2d.Logger().Warn("wgpu: wait idle on destroy", "err", err)
	}
	d.releaseFrame()
	for key, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.pipelines, key)
	}
	for f, s := range d.samplers {
		d.device.DestroySampler(s)
		delete(d.samplers, f)
	}
	d.screen.destroy(d.device)
	d.white.destroy(d.device)
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
	if d.target != nil {
		return
	}
	w, h := max(d.screen.Width(), x+width), max(d.screen.Height(), y+height)
	if w == d.screen.Width() && h == d.screen.Height() {
		return
	}
	screen, err := d.newRenderTarget("screen", w, h)
	if err != nil {
		batch2d.Logger().Warn("wgpu: grow screen", "width", w, "height", h, "err", err)
		return
	}
	old := d.screen
	d.deferRelease(func() { old.destroy(d.device) })
	d.screen = screen
	batch2d.Logger().Debug("wgpu: screen resized", "width", w, "height", h)
}

func (d *Device) Clear(opts render.ClearOptions) {
	if d.device == nil || (opts.Color == nil && !opts.Stencil) {
		return
	}
	err := d.encodePass("clear", opts.Color, opts.Stencil, func(hal.RenderPassEncoder) {})
	if err != nil {
		batch2d.Logger().Warn("wgpu: clear", "err", err)
	}
}

func (d *Device) SetStencil(s render.StencilState) { d.stencil = s }

func (d *Device) SetColorWrite(enabled bool) { d.colorWrite = enabled }
