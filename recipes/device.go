package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/queues"
)

// DeviceConfig describes the logical device to create.
type DeviceConfig struct {
	Physical vk.PhysicalDevice
	Families queues.FamilyIndices

	Extensions []string
	Layers     []string

	// Features enables optional device features. Nil enables none.
	Features *vk.PhysicalDeviceFeatures
}

// Device is a logical device together with the queues retrieved from it.
type Device struct {
	Handle   vk.Device
	Physical vk.PhysicalDevice
	Families queues.FamilyIndices

	Graphics vk.Queue
	Present  vk.Queue
	Compute  vk.Queue
}

// CreateLogicalDevice creates a device with one queue for every distinct
// family in cfg.Families and fetches the graphics, present and compute
// queues.
func CreateLogicalDevice(cfg DeviceConfig) (*Device, error) {
	if !cfg.Families.Graphics.HasValue() {
		return nil, fmt.Errorf("a graphics queue family is required")
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{}
	for _, familyIndex := range cfg.Families.Unique() {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	deviceFeatures := []vk.PhysicalDeviceFeatures{{}}
	if cfg.Features != nil {
		deviceFeatures[0] = *cfg.Features
	}

	extensions := SafeStrings(cfg.Extensions)
	layers := SafeStrings(cfg.Layers)

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,

		EnabledLayerCount:   uint32(len(layers)),
		PpEnabledLayerNames: layers,
	}

	var device vk.Device
	err := vk.Error(vk.CreateDevice(cfg.Physical, &createInfo, nil, &device))
	if err != nil {
		return nil, fmt.Errorf("failed to create logical device: %w", err)
	}

	d := &Device{
		Handle:   device,
		Physical: cfg.Physical,
		Families: cfg.Families,
	}

	d.Graphics = GetQueue(device, cfg.Families.Graphics.Get())
	if cfg.Families.Present.HasValue() {
		d.Present = GetQueue(device, cfg.Families.Present.Get())
	}
	if cfg.Families.Compute.HasValue() {
		d.Compute = GetQueue(device, cfg.Families.Compute.Get())
	}

	return d, nil
}

// GetQueue returns the first queue of the given family.
func GetQueue(device vk.Device, family uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return queue
}

// WaitIdle blocks until the device has finished all submitted work.
func WaitIdle(device vk.Device) error {
	if err := vk.Error(vk.DeviceWaitIdle(device)); err != nil {
		return fmt.Errorf("waiting for device idle: %w", err)
	}
	return nil
}
