package app

import (
	"github.com/gekko3d/pathtracer"
	"github.com/gekko3d/pathtracer/pathtrace/rt/gpu"
	"github.com/gekko3d/pathtracer/pathtrace/rt/loader"
	"github.com/gekko3d/pathtracer/pathtrace/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

const (
	ScopeBVHBuild = "bvh build"
	ScopeUpload   = "upload"
	ScopeFrame    = "frame"
	ScopeCapture  = "capture"
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	ComputePipeline *wgpu.ComputePipeline
	RenderPipeline  *wgpu.RenderPipeline

	// Trace target, sized to the scene's output resolution.
	StorageTexture *wgpu.Texture
	StorageView    *wgpu.TextureView
	Sampler        *wgpu.Sampler

	BindGroup1 *wgpu.BindGroup // Output texture
	RenderBG   *wgpu.BindGroup // Blit

	BufferManager *gpu.GpuBufferManager
	Scene         *loader.Scene
	Profiler      *Profiler
	Logger        pathtracer.Logger

	VSync        bool
	CaptureCount int
	FrameCount   int
}

func NewApp(window *glfw.Window, scene *loader.Scene, logger pathtracer.Logger) *App {
	if logger == nil {
		logger = pathtracer.NewNopLogger()
	}
	return &App{
		Window:   window,
		Scene:    scene,
		Profiler: NewProfiler(),
		Logger:   logger,
		VSync:    true,
	}
}

func (a *App) Init() error {
	a.Profiler.Record(ScopeBVHBuild, a.Scene.BuildTime)
	a.Profiler.SetCount("triangles", a.Scene.TriangleCount)
	a.Profiler.SetCount("objects", a.Scene.ObjectCount)
	a.Profiler.SetCount("bvh nodes", a.Scene.Stats.Nodes)
	a.Profiler.SetCount("bvh leaves", a.Scene.Stats.Leaves)

	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return errors.Wrap(err, "requesting adapter")
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return errors.Wrap(err, "requesting device")
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]

	presentMode := wgpu.PresentModeImmediate
	if a.VSync {
		presentMode = wgpu.PresentModeFifo
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	if err := a.createPipelines(format); err != nil {
		return err
	}

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return errors.Wrap(err, "creating sampler")
	}

	out := a.Scene.Output
	if err := a.setupTextures(out.Width, out.Height); err != nil {
		return err
	}

	a.BufferManager = gpu.NewGpuBufferManager(a.Device)
	if err := a.upload(); err != nil {
		return err
	}
	a.Logger.Infof("uploaded %.1f MB of scene tables", float64(a.Scene.Uniform.Size())/(1024*1024))

	if err := a.BufferManager.CreateBindGroups(a.ComputePipeline); err != nil {
		return err
	}
	return a.setupBindGroups()
}

func (a *App) upload() error {
	a.Profiler.BeginScope(ScopeUpload)
	defer a.Profiler.EndScope(ScopeUpload)
	if a.BufferManager == nil {
		return errors.New("upload: buffer manager not initialized")
	}
	_, err := a.BufferManager.UploadScene(a.Scene)
	return err
}

func (a *App) createPipelines(format wgpu.TextureFormat) error {
	csModule, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Raytrace CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.RaytraceWGSL},
	})
	if err != nil {
		return errors.Wrap(err, "compiling raytrace shader")
	}
	fsModule, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		return errors.Wrap(err, "compiling fullscreen shader")
	}

	a.ComputePipeline, err = a.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Raytrace Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     csModule,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating raytrace pipeline")
	}

	a.RenderPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     fsModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     fsModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	return errors.Wrap(err, "creating blit pipeline")
}

func (a *App) setupTextures(w, h int) error {
	if a.StorageTexture != nil {
		a.StorageTexture.Release()
	}

	var err error
	a.StorageTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Trace Target",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
		SampleCount:   1,
	})
	if err != nil {
		return errors.Wrap(err, "creating trace target")
	}
	a.StorageView, err = a.StorageTexture.CreateView(nil)
	return errors.Wrap(err, "creating trace target view")
}

func (a *App) setupBindGroups() error {
	var err error
	a.BindGroup1, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.ComputePipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.StorageView},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating output bind group")
	}

	a.RenderBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.RenderPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.StorageView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	return errors.Wrap(err, "creating blit bind group")
}

// Resize reconfigures the surface. The trace target keeps the output resolution
// and is stretched by the blit.
func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
}

func (a *App) encodeTrace(encoder *wgpu.CommandEncoder) error {
	cPass := encoder.BeginComputePass(nil)
	cPass.SetPipeline(a.ComputePipeline)
	cPass.SetBindGroup(0, a.BufferManager.BindGroup0, nil)
	cPass.SetBindGroup(1, a.BindGroup1, nil)

	out := a.Scene.Output
	wgX := (uint32(out.Width) + 7) / 8
	wgY := (uint32(out.Height) + 7) / 8
	cPass.DispatchWorkgroups(wgX, wgY, 1)
	return errors.Wrap(cPass.End(), "trace pass")
}

func (a *App) Render() {
	a.Profiler.BeginScope(ScopeFrame)
	defer a.Profiler.EndScope(ScopeFrame)

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	if err := a.encodeTrace(encoder); err != nil {
		a.Logger.Errorf("%v", err)
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{0, 0, 0, 1},
		}},
	})
	rPass.SetPipeline(a.RenderPipeline)
	rPass.SetBindGroup(0, a.RenderBG, nil)
	rPass.Draw(3, 1, 0, 0)
	if err := rPass.End(); err != nil {
		a.Logger.Errorf("render pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.FrameCount++
	if a.Logger.DebugEnabled() && a.FrameCount%600 == 0 {
		a.Logger.Debugf("%s", a.Profiler.String())
	}
}

func (a *App) Release() {
	if a.BufferManager != nil {
		a.BufferManager.Release()
	}
	if a.BindGroup1 != nil {
		a.BindGroup1.Release()
	}
	if a.RenderBG != nil {
		a.RenderBG.Release()
	}
	if a.StorageView != nil {
		a.StorageView.Release()
	}
	if a.StorageTexture != nil {
		a.StorageTexture.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
