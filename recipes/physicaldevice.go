package recipes

import (
	"fmt"
	"log"
	"strings"

	gu "github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/queues"
)

// EnumeratePhysicalDevices returns all physical devices available to instance.
func EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to get the number of physical devices: %w", err)
	}
	if deviceCount == 0 {
		return nil, fmt.Errorf("failed to find GPUs with Vulkan support")
	}

	devices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, devices))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate the physical devices: %w", err)
	}

	return devices, nil
}

// DeviceProperties returns the dereferenced properties of device, limits
// included.
func DeviceProperties(device vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	properties.Limits.Deref()

	return properties
}

// DeviceName returns the human readable name of device.
func DeviceName(device vk.PhysicalDevice) string {
	properties := DeviceProperties(device)
	return vk.ToString(properties.DeviceName[:])
}

// DeviceFeatures returns the features supported by device.
func DeviceFeatures(device vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()

	return features
}

// MemoryProperties returns the memory types and heaps of device. All nested
// structures are dereferenced.
func MemoryProperties(device vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device, &memProperties)
	memProperties.Deref()

	for i := uint32(0); i < memProperties.MemoryTypeCount; i++ {
		memProperties.MemoryTypes[i].Deref()
	}
	for i := uint32(0); i < memProperties.MemoryHeapCount; i++ {
		memProperties.MemoryHeaps[i].Deref()
	}

	return memProperties
}

// DescribeMemoryHeaps returns one line per memory heap of device with its
// size in human readable form.
func DescribeMemoryHeaps(device vk.PhysicalDevice) []string {
	memProperties := MemoryProperties(device)

	lines := make([]string, 0, memProperties.MemoryHeapCount)
	for i := uint32(0); i < memProperties.MemoryHeapCount; i++ {
		heap := memProperties.MemoryHeaps[i]
		lines = append(lines, formatHeap(i, uint64(heap.Size), heap.Flags))
	}

	return lines
}

func formatHeap(index uint32, size uint64, flags vk.MemoryHeapFlags) string {
	kind := "host"
	if flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
		kind = "device local"
	}
	return fmt.Sprintf("heap %d: %s (%s)", index, gu.BytesSize(float64(size)), kind)
}

// AvailableDeviceExtensions returns the names of the extensions supported by
// device.
func AvailableDeviceExtensions(device vk.PhysicalDevice) ([]string, error) {
	var count uint32
	res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("enumerating device extension properties count: %w", err)
	}

	available := make([]vk.ExtensionProperties, count)
	res = vk.EnumerateDeviceExtensionProperties(device, "", &count, available)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting device extension properties: %w", err)
	}

	names := make([]string, 0, count)
	for _, extension := range available {
		extension.Deref()
		names = append(names, vk.ToString(extension.ExtensionName[:]))
	}

	return names, nil
}

// CheckDeviceExtensionSupport returns true if device supports all of the
// required extensions.
func CheckDeviceExtensionSupport(device vk.PhysicalDevice, required []string) bool {
	available, err := AvailableDeviceExtensions(device)
	if err != nil {
		log.Printf("WARNING: %s", err)
		return false
	}

	return len(Missing(required, available)) == 0
}

// QueueFamilies returns the properties of every queue family of device.
func QueueFamilies(device vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	families := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, families)

	for i := range families {
		families[i].Deref()
	}

	return families
}

// FindQueueFamilies returns a FamilyIndices populated with the queue families
// of device able to do graphics, compute and presenting to surface. Pass
// vk.NullSurface when presenting is not needed.
func FindQueueFamilies(device vk.PhysicalDevice, surface vk.Surface) queues.FamilyIndices {
	indices := queues.FamilyIndices{}

	for i, family := range QueueFamilies(device) {
		index := uint32(i)

		if family.QueueCount == 0 {
			continue
		}

		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 &&
			!indices.Graphics.HasValue() {
			indices.Graphics.Set(index)
		}

		if family.QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0 &&
			!indices.Compute.HasValue() {
			indices.Compute.Set(index)
		}

		if surface == vk.NullSurface || indices.Present.HasValue() {
			continue
		}

		var hasPresent vk.Bool32
		err := vk.Error(
			vk.GetPhysicalDeviceSurfaceSupport(device, index, surface, &hasPresent),
		)
		if err != nil {
			log.Printf("error querying surface support for queue family %d: %s", i, err)
		} else if hasPresent.B() {
			indices.Present.Set(index)
		}
	}

	return indices
}

// DeviceRequirements lists what a sample needs from a physical device.
type DeviceRequirements struct {
	Surface    vk.Surface
	Extensions []string

	// Compute requires a queue family with compute support.
	Compute bool

	// SamplerAnisotropy requires the samplerAnisotropy feature.
	SamplerAnisotropy bool
}

// ScoreDevice returns how suitable device is for the given requirements.
// Bigger is better and zero means the device cannot be used.
func ScoreDevice(device vk.PhysicalDevice, req DeviceRequirements) uint32 {
	indices := FindQueueFamilies(device, req.Surface)
	if req.Surface != vk.NullSurface && !indices.IsComplete() {
		return 0
	}
	if !indices.Graphics.HasValue() {
		return 0
	}
	if req.Compute && !indices.Compute.HasValue() {
		return 0
	}

	if !CheckDeviceExtensionSupport(device, req.Extensions) {
		return 0
	}

	if req.Surface != vk.NullSurface {
		support, err := QuerySwapchainSupport(device, req.Surface)
		if err != nil || !support.Adequate() {
			return 0
		}
	}

	if req.SamplerAnisotropy && !DeviceFeatures(device).SamplerAnisotropy.B() {
		return 0
	}

	return deviceTypeScore(DeviceProperties(device).DeviceType)
}

func deviceTypeScore(deviceType vk.PhysicalDeviceType) uint32 {
	switch deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 100
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 10
	default:
		return 1
	}
}

// SelectPhysicalDevice returns the best device of instance which satisfies
// req.
func SelectPhysicalDevice(
	instance vk.Instance,
	req DeviceRequirements,
	verbose bool,
) (vk.PhysicalDevice, error) {
	devices, err := EnumeratePhysicalDevices(instance)
	if err != nil {
		return nil, err
	}

	var (
		selected vk.PhysicalDevice
		best     uint32
	)

	for _, device := range devices {
		score := ScoreDevice(device, req)

		if verbose {
			log.Printf("Available device: %s (score: %d)", DeviceName(device), score)
		}

		if score > best {
			selected = device
			best = score
		}
	}

	if selected == vk.PhysicalDevice(vk.NullHandle) {
		return nil, fmt.Errorf("failed to find suitable physical devices")
	}

	return selected, nil
}

// DeviceTypeName returns a short description of a physical device type.
func DeviceTypeName(deviceType vk.PhysicalDeviceType) string {
	switch deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete GPU"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated GPU"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual GPU"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	default:
		return "other"
	}
}

// QueueFlagsString lists the capabilities in a queue family's flags.
func QueueFlagsString(flags vk.QueueFlags) string {
	var caps []string
	for _, c := range []struct {
		bit  vk.QueueFlagBits
		name string
	}{
		{vk.QueueGraphicsBit, "graphics"},
		{vk.QueueComputeBit, "compute"},
		{vk.QueueTransferBit, "transfer"},
		{vk.QueueSparseBindingBit, "sparse"},
	} {
		if flags&vk.QueueFlags(c.bit) != 0 {
			caps = append(caps, c.name)
		}
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, "|")
}
