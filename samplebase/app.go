// Package samplebase is the shell every sample runs in. It opens a window,
// brings up Vulkan up to a swapchain, render pass and frame rotator, and
// drives the render loop. Samples plug in through the Sample interface.
package samplebase

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

// App runs a single Sample.
type App struct {
	cfg Config
	ctx *Context

	window             *glfw.Window
	frameBufferResized bool

	// cleanup releases everything created in initVulkan, swapchainCleanup
	// the objects which are rebuilt with the swapchain.
	cleanup          vkhandle.Stack
	swapchainCleanup vkhandle.Stack

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New returns an application for cfg.
func New(cfg Config) *App {
	return &App{
		cfg:  cfg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Run opens the window, initializes Vulkan and sample and renders until the
// window is closed, escape is pressed or the process is interrupted.
func (a *App) Run(sample Sample) error {
	defer close(a.done)

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	// On interrupt the loop is asked to stop and teardown happens here, on
	// the main thread.
	closer.Bind(func() {
		select {
		case <-a.done:
			return
		default:
		}
		a.requestStop()
		<-a.done
	})

	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		a.cleanupVulkan()
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer a.cleanupVulkan()

	if err := sample.Init(a.ctx); err != nil {
		a.ctx.sampleCleanup.Release()
		return fmt.Errorf("initializing sample: %w", err)
	}
	defer func() {
		if err := recipes.WaitIdle(a.ctx.Device.Handle); err != nil {
			log.Printf("%s", err)
		}
		sample.Destroy(a.ctx)
		a.ctx.sampleCleanup.Release()
	}()

	if err := a.mainLoop(sample); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *App) requestStop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
}

func (a *App) stopped() bool {
	select {
	case <-a.stop:
		return true
	default:
		return false
	}
}

func (a *App) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(a.cfg.Width, a.cfg.Height, a.cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	window.SetFramebufferSizeCallback(a.frameBufferResizeCallback)

	a.window = window
	return nil
}

func (a *App) frameBufferResizeCallback(
	w *glfw.Window,
	width int,
	height int,
) {
	a.frameBufferResized = true
}

func (a *App) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *App) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("vk.Init: %w", err)
	}

	ctx := &Context{
		Config: a.cfg,
		Window: a.window,
		Input:  &Input{},
		Timer:  NewTimer(),
	}
	a.ctx = ctx
	ctx.Input.Attach(a.window)

	if err := a.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	surfacePtr, err := a.window.CreateWindowSurface(ctx.Instance, nil)
	if err != nil {
		return fmt.Errorf("cannot create surface within GLFW window: %w", err)
	}
	ctx.Surface = vkhandle.Own(
		&a.cleanup,
		vkhandle.Surface(ctx.Instance, vk.SurfaceFromPointer(surfacePtr)),
	)

	if err := a.createDevice(); err != nil {
		return fmt.Errorf("createDevice: %w", err)
	}

	pool, err := recipes.CreateCommandPool(
		ctx.Device.Handle,
		ctx.Device.Families.Graphics.Get(),
	)
	if err != nil {
		return err
	}
	ctx.CommandPool = vkhandle.Own(&a.cleanup, vkhandle.CommandPool(ctx.Device.Handle, pool))

	if err := a.createSwapchain(vk.NullSwapchain); err != nil {
		return fmt.Errorf("createSwapchain: %w", err)
	}
	a.cleanup.Push(a.swapchainCleanup.Release)

	if err := a.createRenderPass(); err != nil {
		return fmt.Errorf("createRenderPass: %w", err)
	}

	rotator, err := frames.New(
		frames.NewVulkanDevice(ctx.Device.Handle),
		ctx.CommandPool,
		a.cfg.Frames,
	)
	if err != nil {
		return fmt.Errorf("creating frame rotator: %w", err)
	}
	rotator.FenceTimeout = a.cfg.FenceTimeout
	ctx.Rotator = rotator
	a.cleanup.Push(func() {
		if err := rotator.Destroy(); err != nil {
			log.Printf("destroying frame rotator: %s", err)
		}
	})

	if err := a.createDepthResources(); err != nil {
		return fmt.Errorf("createDepthResources: %w", err)
	}

	return nil
}

func (a *App) createInstance() error {
	extensions := a.window.GetRequiredInstanceExtensions()
	var layers []string

	if a.cfg.Debug {
		extensions = append(extensions, recipes.DebugExtension)
		layers = append(layers, recipes.ValidationLayer)
	}

	instance, err := recipes.CreateInstance(recipes.InstanceConfig{
		ApplicationName: a.cfg.Title,
		EngineName:      "Vulkan Cookbook",
		Extensions:      extensions,
		Layers:          layers,
	})
	if err != nil {
		return err
	}
	a.ctx.Instance = vkhandle.Own(&a.cleanup, vkhandle.Instance(instance))

	if !a.cfg.Debug {
		return nil
	}

	callback, err := recipes.CreateDebugReportCallback(instance, nil)
	if err != nil {
		return err
	}
	vkhandle.Own(&a.cleanup, vkhandle.DebugReportCallback(instance, callback))

	return nil
}

func (a *App) createDevice() error {
	ctx := a.ctx

	extensions := append([]string{vk.KhrSwapchainExtensionName}, a.cfg.DeviceExtensions...)

	physical, err := recipes.SelectPhysicalDevice(ctx.Instance, recipes.DeviceRequirements{
		Surface:           ctx.Surface,
		Extensions:        extensions,
		Compute:           a.cfg.Compute,
		SamplerAnisotropy: a.cfg.SamplerAnisotropy,
	}, a.cfg.Debug)
	if err != nil {
		return err
	}
	ctx.Physical = physical

	if a.cfg.Debug {
		log.Printf("Selected device: %s", recipes.DeviceName(physical))
	}

	features := vk.PhysicalDeviceFeatures{}
	if a.cfg.SamplerAnisotropy {
		features.SamplerAnisotropy = vk.True
	}

	var layers []string
	if a.cfg.Debug {
		layers = []string{recipes.ValidationLayer}
	}

	device, err := recipes.CreateLogicalDevice(recipes.DeviceConfig{
		Physical:   physical,
		Families:   recipes.FindQueueFamilies(physical, ctx.Surface),
		Extensions: extensions,
		Layers:     layers,
		Features:   &features,
	})
	if err != nil {
		return err
	}
	ctx.Device = device
	vkhandle.Own(&a.cleanup, vkhandle.Device(device.Handle))

	return nil
}

// createSwapchain creates the swapchain and registers its destruction with
// the swapchain cleanup stack. old is retired by the caller.
func (a *App) createSwapchain(old vk.Swapchain) error {
	width, height := a.window.GetFramebufferSize()

	swapchain, err := recipes.CreateSwapchain(a.ctx.Device, recipes.SwapchainConfig{
		Surface:           a.ctx.Surface,
		FramebufferWidth:  width,
		FramebufferHeight: height,
		PresentMode:       vk.PresentModeMailbox,
		Old:               old,
	})
	if err != nil {
		return err
	}

	a.ctx.Swapchain = swapchain
	a.swapchainCleanup.Push(swapchain.Destroy)

	return nil
}

func (a *App) createRenderPass() error {
	ctx := a.ctx
	ctx.DepthFormat = vk.FormatUndefined

	if a.cfg.Depth {
		depthFormat, err := recipes.FindDepthFormat(ctx.Physical)
		if err != nil {
			return err
		}
		ctx.DepthFormat = depthFormat
	}

	renderPass, err := recipes.CreateRenderPass(ctx.Device.Handle, recipes.RenderPassConfig{
		ColorFormat: ctx.Swapchain.Format,
		DepthFormat: ctx.DepthFormat,
	})
	if err != nil {
		return err
	}
	ctx.RenderPass = vkhandle.Own(&a.cleanup, vkhandle.RenderPass(ctx.Device.Handle, renderPass))

	return nil
}

// createDepthResources creates one depth image per frame slot so that a slot
// never shares its depth buffer with a frame still in flight.
func (a *App) createDepthResources() error {
	ctx := a.ctx
	ctx.Depth = nil

	if !a.cfg.Depth {
		return nil
	}

	for i := 0; i < ctx.Rotator.Len(); i++ {
		depth, err := recipes.CreateDepthAttachment(
			ctx.Device.Handle,
			ctx.Physical,
			ctx.Swapchain.Extent,
		)
		if err != nil {
			return err
		}
		a.swapchainCleanup.Push(depth.Destroy)
		ctx.Depth = append(ctx.Depth, depth)
	}

	return nil
}

func (a *App) cleanupVulkan() {
	a.cleanup.Release()
}

func (a *App) recreateSwapChain(sample Sample) error {
	for !a.stopped() && !a.window.ShouldClose() {
		width, height := a.window.GetFramebufferSize()
		if width != 0 && height != 0 {
			break
		}

		// Wake up now and then to notice an interrupt.
		glfw.WaitEventsTimeout(0.1)
	}
	if a.stopped() || a.window.ShouldClose() {
		return nil
	}

	ctx := a.ctx

	if err := ctx.Rotator.WaitIdle(); err != nil {
		return err
	}
	if err := recipes.WaitIdle(ctx.Device.Handle); err != nil {
		return err
	}

	ctx.Rotator.ReleaseFramebuffers()

	// The old swapchain has to stay alive until the new one is created from
	// it. Everything else built on top of it is released first.
	old := ctx.Swapchain
	oldCleanup := a.swapchainCleanup
	a.swapchainCleanup = vkhandle.Stack{}

	err := a.createSwapchain(old.Handle)
	oldCleanup.Release()
	if err != nil {
		return fmt.Errorf("createSwapchain: %w", err)
	}

	if ctx.Swapchain.Format != old.Format {
		return fmt.Errorf(
			"swapchain format changed from %d to %d",
			old.Format, ctx.Swapchain.Format,
		)
	}

	if err := a.createDepthResources(); err != nil {
		return fmt.Errorf("createDepthResources: %w", err)
	}

	if a.cfg.Debug {
		log.Printf("Swapchain recreated with extent %dx%d",
			ctx.Swapchain.Extent.Width, ctx.Swapchain.Extent.Height)
	}

	return sample.Resize(ctx)
}

func (a *App) mainLoop(sample Sample) error {
	ctx := a.ctx
	ctx.Timer.Reset()

	record := func(frame frames.Frame) error {
		return sample.Record(ctx, frame)
	}

	recreate := func() error {
		if err := a.recreateSwapChain(sample); err != nil {
			return fmt.Errorf("recreating swapchain: %w", err)
		}
		return nil
	}

	draw := func() error {
		if ctx.Timer.Tick() {
			a.window.SetTitle(fmt.Sprintf("%s (%.0f fps)", a.cfg.Title, ctx.Timer.FPS()))
		}
		sample.Update(ctx)
		return ctx.Rotator.Render(ctx.Target(), record)
	}

	for !a.window.ShouldClose() && !ctx.Input.Quit() && !a.stopped() {
		glfw.PollEvents()

		err := frameStep(ctx.Input, &a.frameBufferResized, recreate, draw)
		if err != nil {
			return err
		}
	}

	if err := ctx.Rotator.WaitIdle(); err != nil {
		return err
	}

	return recipes.WaitIdle(ctx.Device.Handle)
}

// frameStep runs one iteration of the main loop. Input collected during the
// iteration is consumed even when no frame was drawn.
func frameStep(in *Input, resized *bool, recreate, draw func() error) error {
	defer in.EndFrame()

	if *resized {
		*resized = false
		return recreate()
	}

	err := draw()
	if errors.Is(err, frames.ErrSwapchainOutOfDate) {
		return recreate()
	} else if err != nil {
		return fmt.Errorf("error drawing a frame: %w", err)
	}

	return nil
}
