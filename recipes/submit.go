package recipes

import (
	"errors"
	"fmt"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// ErrOutOfDate is returned when the swapchain no longer matches its surface,
// usually after a window resize. The swapchain has to be recreated.
var ErrOutOfDate = errors.New("swapchain is out of date")

// SubmitConfig lists what a queue submission waits on and signals.
type SubmitConfig struct {
	CommandBuffers []vk.CommandBuffer

	// WaitSemaphores and WaitStages must have the same length. Each semaphore
	// is waited on at the matching pipeline stage.
	WaitSemaphores []vk.Semaphore
	WaitStages     []vk.PipelineStageFlags

	SignalSemaphores []vk.Semaphore

	// Fence is signaled when the submitted work completes. May be
	// vk.NullFence.
	Fence vk.Fence
}

// SubmitCommandBuffers enqueues the command buffers in cfg on queue.
func SubmitCommandBuffers(queue vk.Queue, cfg SubmitConfig) error {
	if len(cfg.WaitSemaphores) != len(cfg.WaitStages) {
		return fmt.Errorf("got %d wait semaphores but %d wait stages",
			len(cfg.WaitSemaphores), len(cfg.WaitStages))
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(cfg.WaitSemaphores)),
		PWaitSemaphores:      cfg.WaitSemaphores,
		PWaitDstStageMask:    cfg.WaitStages,
		CommandBufferCount:   uint32(len(cfg.CommandBuffers)),
		PCommandBuffers:      cfg.CommandBuffers,
		SignalSemaphoreCount: uint32(len(cfg.SignalSemaphores)),
		PSignalSemaphores:    cfg.SignalSemaphores,
	}

	res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, cfg.Fence)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("queue submit error: %w", err)
	}

	return nil
}

// AcquireNextImage returns the index of the next swapchain image to render
// into. semaphore is signaled once the image may actually be written.
// Suboptimal swapchains still return an image, out of date ones return
// ErrOutOfDate.
func AcquireNextImage(
	device vk.Device,
	swapchain vk.Swapchain,
	timeout time.Duration,
	semaphore vk.Semaphore,
) (uint32, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(
		device,
		swapchain,
		timeoutNanoseconds(timeout),
		semaphore,
		vk.NullFence,
		&imageIndex,
	)

	switch res {
	case vk.Success, vk.Suboptimal:
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, ErrOutOfDate
	case vk.Timeout, vk.NotReady:
		return 0, fmt.Errorf("failed to acquire swap chain image: %w", ErrTimeout)
	default:
		return 0, fmt.Errorf("failed to acquire swap chain image: %w", vk.Error(res))
	}
}

// PresentImage queues image imageIndex of swapchain for presentation once
// all waitSemaphores are signaled. Both out of date and suboptimal results
// are reported as ErrOutOfDate since the swapchain should be recreated.
func PresentImage(
	queue vk.Queue,
	swapchain vk.Swapchain,
	imageIndex uint32,
	waitSemaphores ...vk.Semaphore,
) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waitSemaphores)),
		PWaitSemaphores:    waitSemaphores,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain},
		PImageIndices:      []uint32{imageIndex},
	}

	res := vk.QueuePresent(queue, &presentInfo)
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return ErrOutOfDate
	default:
		return fmt.Errorf("failed to present swap chain image: %w", vk.Error(res))
	}
}
