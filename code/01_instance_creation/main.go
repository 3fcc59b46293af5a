package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/tablewriter"

	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "Enable Vulkan validation layers")
}

var args struct {
	debug bool
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

func run() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}
	defer glfw.Terminate()

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vk.Init: %w", err)
	}

	extensions, err := recipes.AvailableInstanceExtensions()
	if err != nil {
		return err
	}
	layers, err := recipes.AvailableLayers()
	if err != nil {
		return err
	}

	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("VULKAN INSTANCE")
	table.AddRow("INSTANCE EXTENSIONS", "")
	for i, name := range extensions {
		table.AddRow(i+1, name)
	}
	if len(layers) > 0 {
		table.AddSeparator()
		table.AddRow("INSTANCE LAYERS", "")
		for i, name := range layers {
			table.AddRow(i+1, name)
		}
	}
	fmt.Println(table.Render())

	var cleanup vkhandle.Stack
	defer cleanup.Release()

	instance, err := createInstance(&cleanup, extensions)
	if err != nil {
		return err
	}

	return describeDevices(instance)
}

// createInstance creates an instance with every window system extension
// GLFW knows about, plus debug report when asked for.
func createInstance(cleanup *vkhandle.Stack, available []string) (vk.Instance, error) {
	var (
		extensions  []string
		layers      []string
		debugReport bool
	)

	if glfw.VulkanSupported() {
		extensions = append(extensions, glfw.GetCurrentContext().GetRequiredInstanceExtensions()...)
	}

	if args.debug {
		if missing := recipes.Missing([]string{recipes.DebugExtension}, available); len(missing) == 0 {
			extensions = append(extensions, recipes.DebugExtension)
			debugReport = true
		} else {
			log.Printf("debug report is not available")
		}

		if recipes.CheckValidationSupport([]string{recipes.ValidationLayer}) {
			layers = append(layers, recipes.ValidationLayer)
		} else {
			log.Printf("validation layers requested, but not available")
		}
	}

	instance, err := recipes.CreateInstance(recipes.InstanceConfig{
		ApplicationName: "Vulkan Cookbook: Instance",
		EngineName:      "No Engine",
		Extensions:      extensions,
		Layers:          layers,
	})
	if err != nil {
		return nil, err
	}
	vkhandle.Own(cleanup, vkhandle.Instance(instance))

	if debugReport {
		callback, err := recipes.CreateDebugReportCallback(instance, nil)
		if err != nil {
			return nil, err
		}
		vkhandle.Own(cleanup, vkhandle.DebugReportCallback(instance, callback))
	}

	return instance, nil
}

func describeDevices(instance vk.Instance) error {
	devices, err := recipes.EnumeratePhysicalDevices(instance)
	if err != nil {
		return err
	}

	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("PHYSICAL DEVICES")

	for i, device := range devices {
		if i > 0 {
			table.AddSeparator()
		}

		props := recipes.DeviceProperties(device)

		table.AddRow("Name", vk.ToString(props.DeviceName[:]))
		table.AddRow("Type", recipes.DeviceTypeName(props.DeviceType))
		table.AddRow("Vendor", fmt.Sprintf("%x", props.VendorID))
		table.AddRow("API Version", vk.Version(props.ApiVersion))
		table.AddRow("Driver Version", vk.Version(props.DriverVersion))
		table.AddRow("Max image size", props.Limits.MaxImageDimension2D)
		table.AddRow("Max push constants", props.Limits.MaxPushConstantsSize)

		for _, heap := range recipes.DescribeMemoryHeaps(device) {
			table.AddRow("Memory", heap)
		}

		for j, family := range recipes.QueueFamilies(device) {
			table.AddRow(
				fmt.Sprintf("Queue family %d", j),
				fmt.Sprintf("%d x %s", family.QueueCount, recipes.QueueFlagsString(family.QueueFlags)),
			)
		}

		deviceExtensions, err := recipes.AvailableDeviceExtensions(device)
		if err != nil {
			return err
		}
		table.AddRow("Device extensions", len(deviceExtensions))
	}

	fmt.Println(table.Render())
	return nil
}
