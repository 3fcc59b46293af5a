package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CreateCommandPool creates a pool for command buffers submitted to queues of
// queueFamily. Buffers from it can be reset individually.
func CreateCommandPool(device vk.Device, queueFamily uint32) (vk.CommandPool, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType: vk.StructureTypeCommandPoolCreateInfo,
		Flags: vk.CommandPoolCreateFlags(
			vk.CommandPoolCreateResetCommandBufferBit,
		),
		QueueFamilyIndex: queueFamily,
	}

	var commandPool vk.CommandPool
	res := vk.CreateCommandPool(device, &poolInfo, nil, &commandPool)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create command pool: %w", err)
	}

	return commandPool, nil
}

// AllocateCommandBuffers allocates count primary command buffers from pool.
func AllocateCommandBuffers(
	device vk.Device,
	pool vk.CommandPool,
	count int,
) ([]vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	res := vk.AllocateCommandBuffers(device, &allocInfo, commandBuffers)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to allocate command buffers: %w", err)
	}

	return commandBuffers, nil
}

// FreeCommandBuffers returns buffers to pool.
func FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers ...vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}

// BeginCommandBuffer starts recording into commandBuffer.
func BeginCommandBuffer(
	commandBuffer vk.CommandBuffer,
	flags vk.CommandBufferUsageFlagBits,
) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(flags),
	}

	res := vk.BeginCommandBuffer(commandBuffer, &beginInfo)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("cannot add begin command to the buffer: %w", err)
	}
	return nil
}

// EndCommandBuffer finishes recording.
func EndCommandBuffer(commandBuffer vk.CommandBuffer) error {
	if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
		return fmt.Errorf("recording commands to buffer failed: %w", err)
	}
	return nil
}

// ResetCommandBuffer discards everything recorded into commandBuffer. Its
// pool must have been created with the reset command buffer flag.
func ResetCommandBuffer(commandBuffer vk.CommandBuffer) error {
	if err := vk.Error(vk.ResetCommandBuffer(commandBuffer, 0)); err != nil {
		return fmt.Errorf("resetting command buffer: %w", err)
	}
	return nil
}

// BeginSingleTimeCommands allocates a command buffer from pool and starts
// recording into it for a one-off submission.
func BeginSingleTimeCommands(device vk.Device, pool vk.CommandPool) (vk.CommandBuffer, error) {
	commandBuffers, err := AllocateCommandBuffers(device, pool, 1)
	if err != nil {
		return nil, err
	}
	commandBuffer := commandBuffers[0]

	err = BeginCommandBuffer(commandBuffer, vk.CommandBufferUsageOneTimeSubmitBit)
	if err != nil {
		FreeCommandBuffers(device, pool, commandBuffer)
		return nil, err
	}

	return commandBuffer, nil
}

// EndSingleTimeCommands submits commandBuffer to queue, waits for the queue
// to become idle and frees the buffer.
func EndSingleTimeCommands(
	device vk.Device,
	pool vk.CommandPool,
	queue vk.Queue,
	commandBuffer vk.CommandBuffer,
) error {
	defer FreeCommandBuffers(device, pool, commandBuffer)

	if err := EndCommandBuffer(commandBuffer); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}

	res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to submit to queue: %w", err)
	}

	if err := vk.Error(vk.QueueWaitIdle(queue)); err != nil {
		return fmt.Errorf("failed to wait on queue idle: %w", err)
	}

	return nil
}

// OneTimeCommands records commands with record and runs them synchronously
// on queue.
func OneTimeCommands(
	device vk.Device,
	pool vk.CommandPool,
	queue vk.Queue,
	record func(vk.CommandBuffer),
) error {
	commandBuffer, err := BeginSingleTimeCommands(device, pool)
	if err != nil {
		return fmt.Errorf("failed to begin single time commands: %w", err)
	}

	record(commandBuffer)

	return EndSingleTimeCommands(device, pool, queue, commandBuffer)
}

// SetViewportAndScissor makes the whole extent the drawing area. Used with
// pipelines which have dynamic viewport and scissor state.
func SetViewportAndScissor(commandBuffer vk.CommandBuffer, extent vk.Extent2D) {
	viewport := vk.Viewport{
		X: 0, Y: 0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vk.CmdSetViewport(commandBuffer, 0, 1, []vk.Viewport{viewport})

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	vk.CmdSetScissor(commandBuffer, 0, 1, []vk.Rect2D{scissor})
}
