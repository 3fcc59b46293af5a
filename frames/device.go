package frames

import (
	"time"

	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
	vk "github.com/vulkan-go/vulkan"
)

// Device is the subset of Vulkan the rotator drives. Errors follow the
// recipes package: fence waits time out with recipes.ErrTimeout and
// acquire/present report recipes.ErrOutOfDate.
type Device interface {
	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(vk.Semaphore)
	CreateFence(signaled bool) (vk.Fence, error)
	DestroyFence(vk.Fence)
	AllocateCommandBuffers(pool vk.CommandPool, count int) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(pool vk.CommandPool, buffers ...vk.CommandBuffer)

	WaitForFence(fence vk.Fence, timeout time.Duration) error
	ResetFence(fence vk.Fence) error

	AcquireNextImage(
		swapchain vk.Swapchain,
		timeout time.Duration,
		signal vk.Semaphore,
	) (uint32, error)

	CreateFramebuffer(
		renderPass vk.RenderPass,
		extent vk.Extent2D,
		attachments ...vk.ImageView,
	) (vk.Framebuffer, error)
	DestroyFramebuffer(vk.Framebuffer)

	BeginCommandBuffer(vk.CommandBuffer) error
	EndCommandBuffer(vk.CommandBuffer) error
	ResetCommandBuffer(vk.CommandBuffer) error

	Submit(queue vk.Queue, cfg recipes.SubmitConfig) error
	Present(
		queue vk.Queue,
		swapchain vk.Swapchain,
		imageIndex uint32,
		wait vk.Semaphore,
	) error
}

// NewVulkanDevice returns a Device issuing real Vulkan calls on device.
func NewVulkanDevice(device vk.Device) Device {
	return vulkanDevice{device: device}
}

type vulkanDevice struct {
	device vk.Device
}

func (d vulkanDevice) CreateSemaphore() (vk.Semaphore, error) {
	return recipes.CreateSemaphore(d.device)
}

func (d vulkanDevice) DestroySemaphore(semaphore vk.Semaphore) {
	h := vkhandle.Semaphore(d.device, semaphore)
	h.Destroy()
}

func (d vulkanDevice) CreateFence(signaled bool) (vk.Fence, error) {
	return recipes.CreateFence(d.device, signaled)
}

func (d vulkanDevice) DestroyFence(fence vk.Fence) {
	h := vkhandle.Fence(d.device, fence)
	h.Destroy()
}

func (d vulkanDevice) AllocateCommandBuffers(
	pool vk.CommandPool,
	count int,
) ([]vk.CommandBuffer, error) {
	return recipes.AllocateCommandBuffers(d.device, pool, count)
}

func (d vulkanDevice) FreeCommandBuffers(pool vk.CommandPool, buffers ...vk.CommandBuffer) {
	recipes.FreeCommandBuffers(d.device, pool, buffers...)
}

func (d vulkanDevice) WaitForFence(fence vk.Fence, timeout time.Duration) error {
	return recipes.WaitForFences(d.device, timeout, fence)
}

func (d vulkanDevice) ResetFence(fence vk.Fence) error {
	return recipes.ResetFences(d.device, fence)
}

func (d vulkanDevice) AcquireNextImage(
	swapchain vk.Swapchain,
	timeout time.Duration,
	signal vk.Semaphore,
) (uint32, error) {
	return recipes.AcquireNextImage(d.device, swapchain, timeout, signal)
}

func (d vulkanDevice) CreateFramebuffer(
	renderPass vk.RenderPass,
	extent vk.Extent2D,
	attachments ...vk.ImageView,
) (vk.Framebuffer, error) {
	return recipes.CreateFramebuffer(d.device, renderPass, extent, attachments...)
}

func (d vulkanDevice) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	h := vkhandle.Framebuffer(d.device, framebuffer)
	h.Destroy()
}

func (d vulkanDevice) BeginCommandBuffer(cb vk.CommandBuffer) error {
	return recipes.BeginCommandBuffer(cb, vk.CommandBufferUsageOneTimeSubmitBit)
}

func (d vulkanDevice) EndCommandBuffer(cb vk.CommandBuffer) error {
	return recipes.EndCommandBuffer(cb)
}

func (d vulkanDevice) ResetCommandBuffer(cb vk.CommandBuffer) error {
	return recipes.ResetCommandBuffer(cb)
}

func (d vulkanDevice) Submit(queue vk.Queue, cfg recipes.SubmitConfig) error {
	return recipes.SubmitCommandBuffers(queue, cfg)
}

func (d vulkanDevice) Present(
	queue vk.Queue,
	swapchain vk.Swapchain,
	imageIndex uint32,
	wait vk.Semaphore,
) error {
	return recipes.PresentImage(queue, swapchain, imageIndex, wait)
}
