package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

// HostVisible is the memory property combination used for staging and
// uniform buffers.
const HostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) |
	vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)

// DeviceLocal is the memory property for buffers and images the host never
// touches.
const DeviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

// Buffer is a buffer together with the memory bound to it.
type Buffer struct {
	Device vk.Device
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// CreateBuffer creates a buffer of size bytes and binds freshly allocated
// memory with the given properties to it.
func CreateBuffer(
	device vk.Device,
	physical vk.PhysicalDevice,
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	properties vk.MemoryPropertyFlags,
) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	buffer := &Buffer{Device: device, Size: size}

	res := vk.CreateBuffer(device, &bufferInfo, nil, &buffer.Handle)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create buffer: %w", err)
	}

	memory, err := AllocateAndBindBufferMemory(device, physical, buffer.Handle, properties)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	buffer.Memory = memory

	return buffer, nil
}

// AllocateAndBindBufferMemory allocates memory fitting buffer and binds it at
// offset zero.
func AllocateAndBindBufferMemory(
	device vk.Device,
	physical vk.PhysicalDevice,
	buffer vk.Buffer,
	properties vk.MemoryPropertyFlags,
) (vk.DeviceMemory, error) {
	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &memRequirements)
	memRequirements.Deref()

	memory, err := AllocateMemory(device, physical, memRequirements, properties)
	if err != nil {
		return nil, fmt.Errorf("allocating buffer memory: %w", err)
	}

	owned := vkhandle.Memory(device, memory)

	res := vk.BindBufferMemory(device, buffer, memory, 0)
	if err := vk.Error(res); err != nil {
		owned.Destroy()
		return nil, fmt.Errorf("failed to bind buffer memory: %w", err)
	}

	return memory, nil
}

// Destroy destroys the buffer and frees its memory.
func (b *Buffer) Destroy() {
	buffer := vkhandle.Buffer(b.Device, b.Handle)
	buffer.Destroy()
	b.Handle = vk.NullBuffer

	memory := vkhandle.Memory(b.Device, b.Memory)
	memory.Destroy()
	b.Memory = vk.NullDeviceMemory
}

// Upload copies data into a host visible buffer.
func (b *Buffer) Upload(data []byte) error {
	if vk.DeviceSize(len(data)) > b.Size {
		return fmt.Errorf("%d bytes do not fit in a buffer of %d", len(data), b.Size)
	}
	return MapAndCopy(b.Device, b.Memory, data)
}

// CopyBuffer copies size bytes from src to dst using a one-off command
// buffer.
func CopyBuffer(
	device *Device,
	pool vk.CommandPool,
	src vk.Buffer,
	dst vk.Buffer,
	size vk.DeviceSize,
) error {
	return OneTimeCommands(device.Handle, pool, device.Graphics, func(cmd vk.CommandBuffer) {
		copyRegion := vk.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		}
		vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{copyRegion})
	})
}

// CreateDeviceLocalBuffer creates a device local buffer filled with data. The
// data goes through a host visible staging buffer which is destroyed before
// returning. Transfer destination usage is added to usage.
func CreateDeviceLocalBuffer(
	device *Device,
	pool vk.CommandPool,
	data []byte,
	usage vk.BufferUsageFlags,
) (*Buffer, error) {
	bufferSize := vk.DeviceSize(len(data))

	staging, err := CreateBuffer(
		device.Handle,
		device.Physical,
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		HostVisible,
	)
	if err != nil {
		return nil, fmt.Errorf("creating the staging buffer: %w", err)
	}
	defer staging.Destroy()

	if err := staging.Upload(data); err != nil {
		return nil, fmt.Errorf("filling the staging buffer: %w", err)
	}

	buffer, err := CreateBuffer(
		device.Handle,
		device.Physical,
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		DeviceLocal,
	)
	if err != nil {
		return nil, fmt.Errorf("creating the device local buffer: %w", err)
	}

	if err := CopyBuffer(device, pool, staging.Handle, buffer.Handle, bufferSize); err != nil {
		buffer.Destroy()
		return nil, fmt.Errorf("failed to copy staging buffer: %w", err)
	}

	return buffer, nil
}
