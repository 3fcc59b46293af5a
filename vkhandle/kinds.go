package vkhandle

import (
	vk "github.com/vulkan-go/vulkan"
)

// Instance owns a Vulkan instance.
func Instance(instance vk.Instance) Handle[vk.Instance, vk.Instance] {
	return Self(instance, func(i vk.Instance) {
		vk.DestroyInstance(i, nil)
	})
}

// Device owns a logical device.
func Device(device vk.Device) Handle[vk.Device, vk.Device] {
	return Self(device, func(d vk.Device) {
		vk.DestroyDevice(d, nil)
	})
}

// Surface owns a presentation surface created from instance.
func Surface(instance vk.Instance, surface vk.Surface) Handle[vk.Instance, vk.Surface] {
	return New(instance, surface, func(i vk.Instance, s vk.Surface) {
		vk.DestroySurface(i, s, nil)
	})
}

// DebugReportCallback owns a debug report callback registered on instance.
func DebugReportCallback(
	instance vk.Instance,
	callback vk.DebugReportCallback,
) Handle[vk.Instance, vk.DebugReportCallback] {
	return New(instance, callback, func(i vk.Instance, c vk.DebugReportCallback) {
		vk.DestroyDebugReportCallback(i, c, nil)
	})
}

// Swapchain owns a swapchain. The images it returns are owned by the
// swapchain itself and must not be destroyed separately.
func Swapchain(device vk.Device, swapchain vk.Swapchain) Handle[vk.Device, vk.Swapchain] {
	return New(device, swapchain, func(d vk.Device, s vk.Swapchain) {
		vk.DestroySwapchain(d, s, nil)
	})
}

func ImageView(device vk.Device, view vk.ImageView) Handle[vk.Device, vk.ImageView] {
	return New(device, view, func(d vk.Device, v vk.ImageView) {
		vk.DestroyImageView(d, v, nil)
	})
}

func Image(device vk.Device, image vk.Image) Handle[vk.Device, vk.Image] {
	return New(device, image, func(d vk.Device, i vk.Image) {
		vk.DestroyImage(d, i, nil)
	})
}

// Memory owns a device memory allocation. Destroying it frees the memory.
func Memory(device vk.Device, memory vk.DeviceMemory) Handle[vk.Device, vk.DeviceMemory] {
	return New(device, memory, func(d vk.Device, m vk.DeviceMemory) {
		vk.FreeMemory(d, m, nil)
	})
}

func Buffer(device vk.Device, buffer vk.Buffer) Handle[vk.Device, vk.Buffer] {
	return New(device, buffer, func(d vk.Device, b vk.Buffer) {
		vk.DestroyBuffer(d, b, nil)
	})
}

func Sampler(device vk.Device, sampler vk.Sampler) Handle[vk.Device, vk.Sampler] {
	return New(device, sampler, func(d vk.Device, s vk.Sampler) {
		vk.DestroySampler(d, s, nil)
	})
}

func RenderPass(device vk.Device, renderPass vk.RenderPass) Handle[vk.Device, vk.RenderPass] {
	return New(device, renderPass, func(d vk.Device, r vk.RenderPass) {
		vk.DestroyRenderPass(d, r, nil)
	})
}

func Framebuffer(device vk.Device, framebuffer vk.Framebuffer) Handle[vk.Device, vk.Framebuffer] {
	return New(device, framebuffer, func(d vk.Device, f vk.Framebuffer) {
		vk.DestroyFramebuffer(d, f, nil)
	})
}

func ShaderModule(device vk.Device, module vk.ShaderModule) Handle[vk.Device, vk.ShaderModule] {
	return New(device, module, func(d vk.Device, m vk.ShaderModule) {
		vk.DestroyShaderModule(d, m, nil)
	})
}

func PipelineLayout(
	device vk.Device,
	layout vk.PipelineLayout,
) Handle[vk.Device, vk.PipelineLayout] {
	return New(device, layout, func(d vk.Device, l vk.PipelineLayout) {
		vk.DestroyPipelineLayout(d, l, nil)
	})
}

func Pipeline(device vk.Device, pipeline vk.Pipeline) Handle[vk.Device, vk.Pipeline] {
	return New(device, pipeline, func(d vk.Device, p vk.Pipeline) {
		vk.DestroyPipeline(d, p, nil)
	})
}

func PipelineCache(device vk.Device, cache vk.PipelineCache) Handle[vk.Device, vk.PipelineCache] {
	return New(device, cache, func(d vk.Device, c vk.PipelineCache) {
		vk.DestroyPipelineCache(d, c, nil)
	})
}

func DescriptorSetLayout(
	device vk.Device,
	layout vk.DescriptorSetLayout,
) Handle[vk.Device, vk.DescriptorSetLayout] {
	return New(device, layout, func(d vk.Device, l vk.DescriptorSetLayout) {
		vk.DestroyDescriptorSetLayout(d, l, nil)
	})
}

// DescriptorPool owns a descriptor pool. Sets allocated from it are released
// together with the pool.
func DescriptorPool(
	device vk.Device,
	pool vk.DescriptorPool,
) Handle[vk.Device, vk.DescriptorPool] {
	return New(device, pool, func(d vk.Device, p vk.DescriptorPool) {
		vk.DestroyDescriptorPool(d, p, nil)
	})
}

// CommandPool owns a command pool. Command buffers allocated from it are
// released together with the pool.
func CommandPool(device vk.Device, pool vk.CommandPool) Handle[vk.Device, vk.CommandPool] {
	return New(device, pool, func(d vk.Device, p vk.CommandPool) {
		vk.DestroyCommandPool(d, p, nil)
	})
}

func Semaphore(device vk.Device, semaphore vk.Semaphore) Handle[vk.Device, vk.Semaphore] {
	return New(device, semaphore, func(d vk.Device, s vk.Semaphore) {
		vk.DestroySemaphore(d, s, nil)
	})
}

func Fence(device vk.Device, fence vk.Fence) Handle[vk.Device, vk.Fence] {
	return New(device, fence, func(d vk.Device, f vk.Fence) {
		vk.DestroyFence(d, f, nil)
	})
}
