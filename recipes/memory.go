package recipes

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// FindMemoryType returns the index of a memory type of physical which is
// allowed by typeFilter and has all the requested properties.
func FindMemoryType(
	physical vk.PhysicalDevice,
	typeFilter uint32,
	properties vk.MemoryPropertyFlags,
) (uint32, error) {
	memProperties := MemoryProperties(physical)
	return findMemoryTypeIndex(
		memProperties.MemoryTypes[:memProperties.MemoryTypeCount],
		typeFilter,
		properties,
	)
}

func findMemoryTypeIndex(
	memoryTypes []vk.MemoryType,
	typeFilter uint32,
	properties vk.MemoryPropertyFlags,
) (uint32, error) {
	for i, memType := range memoryTypes {
		if typeFilter&(1<<uint32(i)) == 0 {
			continue
		}

		if memType.PropertyFlags&properties != properties {
			continue
		}

		return uint32(i), nil
	}

	return 0, fmt.Errorf("failed to find suitable memory type")
}

// AllocateMemory allocates memory satisfying requirements with the given
// properties.
func AllocateMemory(
	device vk.Device,
	physical vk.PhysicalDevice,
	requirements vk.MemoryRequirements,
	properties vk.MemoryPropertyFlags,
) (vk.DeviceMemory, error) {
	memTypeIndex, err := FindMemoryType(physical, requirements.MemoryTypeBits, properties)
	if err != nil {
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	var memory vk.DeviceMemory
	res := vk.AllocateMemory(device, &allocInfo, nil, &memory)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to allocate memory: %w", err)
	}

	return memory, nil
}

// MapMemory maps size bytes of memory into host address space. The memory
// must be host visible.
func MapMemory(
	device vk.Device,
	memory vk.DeviceMemory,
	size vk.DeviceSize,
) (unsafe.Pointer, error) {
	var pData unsafe.Pointer
	res := vk.MapMemory(device, memory, 0, size, 0, &pData)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("mapping memory: %w", err)
	}
	return pData, nil
}

// MapAndCopy copies data to the beginning of a host visible, coherent memory
// object.
func MapAndCopy(device vk.Device, memory vk.DeviceMemory, data []byte) error {
	pData, err := MapMemory(device, memory, vk.DeviceSize(len(data)))
	if err != nil {
		return err
	}

	vk.Memcopy(pData, data)
	vk.UnmapMemory(device, memory)

	return nil
}
