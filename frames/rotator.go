// Package frames rotates per-frame resources so that the CPU can record a
// frame while the GPU is still busy with the previous ones.
package frames

import (
	"errors"
	"fmt"
	"time"

	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultSlots is the number of frames which may be in flight at once.
const DefaultSlots = 3

// DefaultFenceTimeout is how long Render waits for a slot to become free.
const DefaultFenceTimeout = 2 * time.Second

var (
	// ErrFenceTimeout is returned when a slot's previous frame did not finish
	// in time.
	ErrFenceTimeout = errors.New("timed out waiting for frame fence")

	// ErrSwapchainOutOfDate is returned when acquiring or presenting found
	// the swapchain no longer matching the surface. The caller has to
	// recreate it before rendering again.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
)

// Slot is the set of resources used by one frame in flight.
type Slot struct {
	// CommandBuffer belongs to the command pool and is freed with it.
	CommandBuffer   vk.CommandBuffer
	ImageAcquired   vk.Semaphore
	ReadyToPresent  vk.Semaphore
	DrawingFinished vk.Fence

	DepthView   vk.ImageView
	Framebuffer vk.Framebuffer

	// Submissions counts the frames rendered with this slot.
	Submissions uint64
	// Waited is the total time spent blocked on DrawingFinished.
	Waited time.Duration
}

// Target is the swapchain state a frame is rendered into. It changes only
// when the swapchain is recreated.
type Target struct {
	Swapchain  vk.Swapchain
	Views      []vk.ImageView
	Extent     vk.Extent2D
	RenderPass vk.RenderPass

	// DepthViews holds one depth attachment per slot. Empty when the render
	// pass has no depth attachment.
	DepthViews []vk.ImageView

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
}

// Frame is handed to a RecordFunc. The command buffer is already in the
// recording state.
type Frame struct {
	Number        uint64
	Slot          int
	ImageIndex    uint32
	CommandBuffer vk.CommandBuffer
	Framebuffer   vk.Framebuffer
	RenderPass    vk.RenderPass
	Extent        vk.Extent2D
}

// RecordFunc records the commands of one frame.
type RecordFunc func(Frame) error

// Rotator cycles through a fixed number of slots.
type Rotator struct {
	device Device
	pool   vk.CommandPool
	slots  []Slot

	current int
	frame   uint64

	// FenceTimeout bounds the wait for a free slot. Negative waits forever.
	FenceTimeout time.Duration

	// AcquireTimeout bounds the wait for a swapchain image.
	AcquireTimeout time.Duration
}

// New allocates count slots using command buffers from pool.
func New(device Device, pool vk.CommandPool, count int) (*Rotator, error) {
	if count < 1 {
		return nil, fmt.Errorf("need at least one frame slot, got %d", count)
	}

	r := &Rotator{
		device:         device,
		pool:           pool,
		FenceTimeout:   DefaultFenceTimeout,
		AcquireTimeout: -1,
	}

	if err := r.allocate(count); err != nil {
		r.Destroy()
		return nil, err
	}

	return r, nil
}

func (r *Rotator) allocate(count int) error {
	commandBuffers, err := r.device.AllocateCommandBuffers(r.pool, count)
	if err != nil {
		return fmt.Errorf("allocating frame command buffers: %w", err)
	}

	r.slots = make([]Slot, count)
	for i := range r.slots {
		slot := &r.slots[i]
		slot.CommandBuffer = commandBuffers[i]

		if slot.ImageAcquired, err = r.device.CreateSemaphore(); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if slot.ReadyToPresent, err = r.device.CreateSemaphore(); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if slot.DrawingFinished, err = r.device.CreateFence(true); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}

	return nil
}

// Len returns the number of slots.
func (r *Rotator) Len() int {
	return len(r.slots)
}

// Slots returns a snapshot of all slots, useful for statistics.
func (r *Rotator) Slots() []Slot {
	return append([]Slot(nil), r.slots...)
}

// Frame returns the number of frames submitted so far.
func (r *Rotator) Frame() uint64 {
	return r.frame
}

// Render produces one frame into target. On ErrSwapchainOutOfDate the
// target has to be rebuilt; any other error should be treated as fatal.
func (r *Rotator) Render(target Target, record RecordFunc) error {
	if len(target.DepthViews) != 0 && len(target.DepthViews) != len(r.slots) {
		return fmt.Errorf("got %d depth views for %d frame slots",
			len(target.DepthViews), len(r.slots))
	}

	slotIndex := r.current
	slot := &r.slots[slotIndex]

	waitStart := time.Now()
	if err := r.device.WaitForFence(slot.DrawingFinished, r.FenceTimeout); err != nil {
		if errors.Is(err, recipes.ErrTimeout) {
			return fmt.Errorf("frame slot %d: %w", slotIndex, ErrFenceTimeout)
		}
		return fmt.Errorf("waiting for frame slot %d: %w", slotIndex, err)
	}
	slot.Waited += time.Since(waitStart)

	imageIndex, err := r.device.AcquireNextImage(
		target.Swapchain,
		r.AcquireTimeout,
		slot.ImageAcquired,
	)
	if errors.Is(err, recipes.ErrOutOfDate) {
		return ErrSwapchainOutOfDate
	} else if err != nil {
		return err
	}

	if err := r.recordFrame(slotIndex, target, imageIndex, record); err != nil {
		if drainErr := r.drainAcquire(slot, target.GraphicsQueue); drainErr != nil {
			return errors.Join(err, drainErr)
		}
		return err
	}

	// Only now is it certain that the fence will be signaled again.
	if err := r.device.ResetFence(slot.DrawingFinished); err != nil {
		return err
	}

	err = r.device.Submit(target.GraphicsQueue, recipes.SubmitConfig{
		CommandBuffers: []vk.CommandBuffer{slot.CommandBuffer},
		WaitSemaphores: []vk.Semaphore{slot.ImageAcquired},
		WaitStages: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		SignalSemaphores: []vk.Semaphore{slot.ReadyToPresent},
		Fence:            slot.DrawingFinished,
	})
	if err != nil {
		return err
	}

	slot.Submissions++
	r.frame++
	r.current = (r.current + 1) % len(r.slots)

	err = r.device.Present(
		target.PresentQueue,
		target.Swapchain,
		imageIndex,
		slot.ReadyToPresent,
	)
	if errors.Is(err, recipes.ErrOutOfDate) {
		return ErrSwapchainOutOfDate
	}

	return err
}

// recordFrame fills the slot's command buffer for the acquired image.
func (r *Rotator) recordFrame(
	slotIndex int,
	target Target,
	imageIndex uint32,
	record RecordFunc,
) error {
	slot := &r.slots[slotIndex]

	if int(imageIndex) >= len(target.Views) {
		return fmt.Errorf("acquired image %d but the target has %d views",
			imageIndex, len(target.Views))
	}

	if err := r.rebuildFramebuffer(slotIndex, target, imageIndex); err != nil {
		return err
	}

	if err := r.device.ResetCommandBuffer(slot.CommandBuffer); err != nil {
		return err
	}
	if err := r.device.BeginCommandBuffer(slot.CommandBuffer); err != nil {
		return err
	}

	err := record(Frame{
		Number:        r.frame,
		Slot:          slotIndex,
		ImageIndex:    imageIndex,
		CommandBuffer: slot.CommandBuffer,
		Framebuffer:   slot.Framebuffer,
		RenderPass:    target.RenderPass,
		Extent:        target.Extent,
	})
	if err != nil {
		return fmt.Errorf("recording frame %d: %w", r.frame, err)
	}

	return r.device.EndCommandBuffer(slot.CommandBuffer)
}

// drainAcquire consumes the pending signal of the slot's ImageAcquired
// semaphore with an empty batch when no frame is submitted after a
// successful acquire. The slot fence tracks that batch, so the next Render
// on this slot waits for it before acquiring into the semaphore again.
func (r *Rotator) drainAcquire(slot *Slot, queue vk.Queue) error {
	if err := r.device.ResetFence(slot.DrawingFinished); err != nil {
		return err
	}

	return r.device.Submit(queue, recipes.SubmitConfig{
		WaitSemaphores: []vk.Semaphore{slot.ImageAcquired},
		WaitStages: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		},
		Fence: slot.DrawingFinished,
	})
}

func (r *Rotator) rebuildFramebuffer(slotIndex int, target Target, imageIndex uint32) error {
	slot := &r.slots[slotIndex]
	r.releaseFramebuffer(slot)

	attachments := []vk.ImageView{target.Views[imageIndex]}
	slot.DepthView = vk.NullImageView
	if len(target.DepthViews) > 0 {
		slot.DepthView = target.DepthViews[slotIndex]
		attachments = append(attachments, slot.DepthView)
	}

	framebuffer, err := r.device.CreateFramebuffer(
		target.RenderPass,
		target.Extent,
		attachments...,
	)
	if err != nil {
		return fmt.Errorf("frame slot %d: %w", slotIndex, err)
	}
	slot.Framebuffer = framebuffer

	return nil
}

// WaitIdle blocks until every slot's last submission finished.
func (r *Rotator) WaitIdle() error {
	for i, slot := range r.slots {
		if slot.DrawingFinished == vk.NullFence {
			continue
		}
		err := r.device.WaitForFence(slot.DrawingFinished, r.FenceTimeout)
		if errors.Is(err, recipes.ErrTimeout) {
			return fmt.Errorf("frame slot %d: %w", i, ErrFenceTimeout)
		} else if err != nil {
			return err
		}
	}
	return nil
}

// ReleaseFramebuffers destroys the framebuffers of all slots. They reference
// swapchain image views, so this has to happen before the swapchain is
// recreated. The slots must be idle.
func (r *Rotator) ReleaseFramebuffers() {
	for i := range r.slots {
		r.releaseFramebuffer(&r.slots[i])
	}
}

func (r *Rotator) releaseFramebuffer(slot *Slot) {
	framebuffer := vkhandle.New(r.device, slot.Framebuffer, Device.DestroyFramebuffer)
	framebuffer.Destroy()
	slot.Framebuffer = vk.NullFramebuffer
	slot.DepthView = vk.NullImageView
}

// Destroy waits for all frames to finish and releases every slot resource.
// The rotator must not be used afterwards.
func (r *Rotator) Destroy() error {
	waitErr := r.WaitIdle()

	r.ReleaseFramebuffers()

	var (
		cleanup        vkhandle.Stack
		commandBuffers []vk.CommandBuffer
	)
	for i := range r.slots {
		slot := &r.slots[i]
		for _, semaphore := range []vk.Semaphore{slot.ImageAcquired, slot.ReadyToPresent} {
			vkhandle.Own(&cleanup, vkhandle.New(r.device, semaphore, Device.DestroySemaphore))
		}
		vkhandle.Own(&cleanup, vkhandle.New(r.device, slot.DrawingFinished, Device.DestroyFence))
		if slot.CommandBuffer != nil {
			commandBuffers = append(commandBuffers, slot.CommandBuffer)
		}
	}
	cleanup.Release()
	r.device.FreeCommandBuffers(r.pool, commandBuffers...)
	r.slots = nil

	return waitErr
}
