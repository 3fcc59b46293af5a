package recipes

import (
	"errors"
	"fmt"
	"math"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// ErrTimeout is returned by WaitForFences when the fences did not signal in
// time.
var ErrTimeout = errors.New("timed out waiting for fences")

// CreateSemaphore creates a binary semaphore.
func CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	res := vk.CreateSemaphore(device, &semaphoreInfo, nil, &semaphore)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create semaphore: %w", err)
	}

	return semaphore, nil
}

// CreateFence creates a fence. Fences which guard per-frame resources are
// created signaled so that the first wait on them returns immediately.
func CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(device, &fenceInfo, nil, &fence)); err != nil {
		return nil, fmt.Errorf("failed to create fence: %w", err)
	}

	return fence, nil
}

// WaitForFences blocks until all fences are signaled or timeout passes. A
// negative timeout waits forever.
func WaitForFences(device vk.Device, timeout time.Duration, fences ...vk.Fence) error {
	res := vk.WaitForFences(
		device,
		uint32(len(fences)),
		fences,
		vk.True,
		timeoutNanoseconds(timeout),
	)
	if res == vk.Timeout {
		return ErrTimeout
	}
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("waiting for fences: %w", err)
	}

	return nil
}

// ResetFences returns fences to the unsignaled state.
func ResetFences(device vk.Device, fences ...vk.Fence) error {
	res := vk.ResetFences(device, uint32(len(fences)), fences)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("resetting fences: %w", err)
	}
	return nil
}

// FenceSignaled reports whether fence is currently signaled.
func FenceSignaled(device vk.Device, fence vk.Fence) (bool, error) {
	res := vk.GetFenceStatus(device, fence)
	switch res {
	case vk.Success:
		return true, nil
	case vk.NotReady:
		return false, nil
	default:
		return false, fmt.Errorf("getting fence status: %w", vk.Error(res))
	}
}

func timeoutNanoseconds(timeout time.Duration) uint64 {
	if timeout < 0 {
		return math.MaxUint64
	}
	return uint64(timeout.Nanoseconds())
}
