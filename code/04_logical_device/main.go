package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "Enable Vulkan validation layers")
	flag.BoolVar(&args.compute, "compute", false, "Require a compute queue")
}

var args struct {
	debug   bool
	compute bool
}

const (
	title = "Vulkan Cookbook: Logical device and queues"
)

func main() {
	flag.Parse()

	app := &LogicalDeviceApp{
		width:  1024,
		height: 768,
	}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// LogicalDeviceApp selects a physical device which can present to its window,
// creates a logical device on it and shows the queues it got.
type LogicalDeviceApp struct {
	width  int
	height int

	window  *glfw.Window
	cleanup vkhandle.Stack

	instance vk.Instance
	surface  vk.Surface
	device   *recipes.Device
}

// Run runs the vulkan program.
func (a *LogicalDeviceApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		a.cleanup.Release()
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer a.cleanup.Release()

	a.mainLoop()
	return nil
}

func (a *LogicalDeviceApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(a.width, a.height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	a.window = window
	return nil
}

func (a *LogicalDeviceApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *LogicalDeviceApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	if err := a.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	surface, err := a.window.CreateWindowSurface(a.instance, nil)
	if err != nil {
		return fmt.Errorf("cannot create surface within GLFW window: %w", err)
	}
	a.surface = vkhandle.Own(
		&a.cleanup,
		vkhandle.Surface(a.instance, vk.SurfaceFromPointer(surface)),
	)

	if err := a.createLogicalDevice(); err != nil {
		return fmt.Errorf("createLogicalDevice: %w", err)
	}

	a.describeQueues()
	return nil
}

func (a *LogicalDeviceApp) createInstance() error {
	extensions := a.window.GetRequiredInstanceExtensions()
	var layers []string

	if args.debug {
		extensions = append(extensions, recipes.DebugExtension)
		layers = append(layers, recipes.ValidationLayer)
	}

	instance, err := recipes.CreateInstance(recipes.InstanceConfig{
		ApplicationName: title,
		EngineName:      "No Engine",
		Extensions:      extensions,
		Layers:          layers,
	})
	if err != nil {
		return err
	}
	a.instance = vkhandle.Own(&a.cleanup, vkhandle.Instance(instance))

	if args.debug {
		callback, err := recipes.CreateDebugReportCallback(instance, nil)
		if err != nil {
			return err
		}
		vkhandle.Own(&a.cleanup, vkhandle.DebugReportCallback(instance, callback))
	}

	return nil
}

func (a *LogicalDeviceApp) createLogicalDevice() error {
	extensions := []string{vk.KhrSwapchainExtensionName}

	physical, err := recipes.SelectPhysicalDevice(a.instance, recipes.DeviceRequirements{
		Surface:    a.surface,
		Extensions: extensions,
		Compute:    args.compute,
	}, true)
	if err != nil {
		return err
	}

	var layers []string
	if args.debug {
		layers = []string{recipes.ValidationLayer}
	}

	device, err := recipes.CreateLogicalDevice(recipes.DeviceConfig{
		Physical:   physical,
		Families:   recipes.FindQueueFamilies(physical, a.surface),
		Extensions: extensions,
		Layers:     layers,
	})
	if err != nil {
		return err
	}
	vkhandle.Own(&a.cleanup, vkhandle.Device(device.Handle))
	a.device = device

	return nil
}

func (a *LogicalDeviceApp) describeQueues() {
	families := a.device.Families

	log.Printf("Selected device: %s", recipes.DeviceName(a.device.Physical))
	for _, heap := range recipes.DescribeMemoryHeaps(a.device.Physical) {
		log.Printf("  %s", heap)
	}

	log.Printf("Graphics queue family: %d", families.Graphics.Get())
	log.Printf("Present queue family: %d", families.Present.Get())
	if families.Compute.HasValue() {
		log.Printf("Compute queue family: %d", families.Compute.Get())
	}
	if families.Shared() {
		log.Printf("Graphics and present share a queue")
	}
	log.Printf("Distinct queue families: %v", families.Unique())
}

func (a *LogicalDeviceApp) mainLoop() {
	log.Printf("main loop!\n")

	for !a.window.ShouldClose() {
		glfw.WaitEvents()
	}
}
