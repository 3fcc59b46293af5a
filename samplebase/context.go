package samplebase

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

// Sample is a demo driven by App.
type Sample interface {
	// Init creates the sample's own resources. The swapchain, render pass
	// and rotator are ready by then.
	Init(ctx *Context) error

	// Resize is called after the swapchain was recreated.
	Resize(ctx *Context) error

	// Update advances the sample state once per frame, before recording.
	Update(ctx *Context)

	// Record records the commands of one frame.
	Record(ctx *Context, frame frames.Frame) error

	// Destroy releases what Init created. The device is idle.
	Destroy(ctx *Context)
}

// BaseSample implements the optional Sample methods as no-ops. Embed it and
// override what is needed.
type BaseSample struct{}

func (BaseSample) Resize(*Context) error { return nil }
func (BaseSample) Update(*Context)       {}
func (BaseSample) Destroy(*Context)      {}

// Context is everything a sample gets to work with.
type Context struct {
	Config Config
	Window *glfw.Window

	Instance vk.Instance
	Surface  vk.Surface
	Physical vk.PhysicalDevice
	Device   *recipes.Device

	Swapchain   *recipes.Swapchain
	CommandPool vk.CommandPool
	RenderPass  vk.RenderPass

	// DepthFormat is vk.FormatUndefined unless Config.Depth is set.
	DepthFormat vk.Format

	// Depth holds one depth image per frame slot.
	Depth []*recipes.Image

	Rotator *frames.Rotator
	Input   *Input
	Timer   *Timer

	sampleCleanup vkhandle.Stack
}

// Target describes the current swapchain for the rotator.
func (c *Context) Target() frames.Target {
	target := frames.Target{
		Swapchain:     c.Swapchain.Handle,
		Views:         c.Swapchain.Views,
		Extent:        c.Swapchain.Extent,
		RenderPass:    c.RenderPass,
		GraphicsQueue: c.Device.Graphics,
		PresentQueue:  c.Device.Present,
	}
	for _, depth := range c.Depth {
		target.DepthViews = append(target.DepthViews, depth.View)
	}
	return target
}

// Extent is the size of the swapchain images.
func (c *Context) Extent() vk.Extent2D {
	return c.Swapchain.Extent
}

// AspectRatio of the swapchain images.
func (c *Context) AspectRatio() float32 {
	return c.Swapchain.AspectRatio()
}

// Asset returns the path of a file in the assets directory.
func (c *Context) Asset(elem ...string) string {
	return c.Config.Asset(elem...)
}

// Defer registers fn to run when the sample is torn down, after
// Sample.Destroy and before the device goes away. Functions run in reverse
// order of registration.
func (c *Context) Defer(fn func()) {
	c.sampleCleanup.Push(fn)
}

// LoadShader reads a SPIR-V file from the assets directory and creates a
// shader module which is destroyed with the sample.
func (c *Context) LoadShader(elem ...string) (vk.ShaderModule, error) {
	module, err := recipes.LoadShaderModule(c.Device.Handle, c.Asset(elem...))
	if err != nil {
		return nil, err
	}
	return Own(c, vkhandle.ShaderModule(c.Device.Handle, module)), nil
}

// Own hands h over to ctx. It is destroyed with the sample, like functions
// registered with Defer.
func Own[P, T comparable](ctx *Context, h vkhandle.Handle[P, T]) T {
	return vkhandle.Own(&ctx.sampleCleanup, h)
}

// OneTimeCommands records with fn and runs the result on the graphics queue,
// waiting for it to finish.
func (c *Context) OneTimeCommands(fn func(vk.CommandBuffer)) error {
	return recipes.OneTimeCommands(
		c.Device.Handle,
		c.CommandPool,
		c.Device.Graphics,
		fn,
	)
}
