package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// RenderPassConfig describes a single subpass render pass with one colour
// attachment and an optional depth attachment.
type RenderPassConfig struct {
	ColorFormat vk.Format

	// DepthFormat adds a depth attachment when not FormatUndefined.
	DepthFormat vk.Format

	// FinalLayout of the colour attachment. Defaults to present source.
	FinalLayout vk.ImageLayout
}

// HasDepth tells whether the render pass has a depth attachment.
func (c RenderPassConfig) HasDepth() bool {
	return c.DepthFormat != vk.FormatUndefined
}

func (c RenderPassConfig) attachments() []vk.AttachmentDescription {
	finalLayout := c.FinalLayout
	if finalLayout == vk.ImageLayoutUndefined {
		finalLayout = vk.ImageLayoutPresentSrc
	}

	attachments := []vk.AttachmentDescription{
		{
			Format:         c.ColorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    finalLayout,
		},
	}

	if c.HasDepth() {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         c.DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
	}

	return attachments
}

func (c RenderPassConfig) dependency() vk.SubpassDependency {
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	access := vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
	if c.HasDepth() {
		stages |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
		access |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	}

	return vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		SrcAccessMask: 0,
		DstStageMask:  stages,
		DstAccessMask: access,
	}
}

// CreateRenderPass creates the render pass described by cfg.
func CreateRenderPass(device vk.Device, cfg RenderPassConfig) (vk.RenderPass, error) {
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorAttachmentRef},
	}

	if cfg.HasDepth() {
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	attachments := cfg.attachments()

	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{cfg.dependency()},
	}

	var renderPass vk.RenderPass
	res := vk.CreateRenderPass(device, &renderPassInfo, nil, &renderPass)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create render pass: %w", err)
	}

	return renderPass, nil
}

// CreateFramebuffer creates a framebuffer for renderPass with the attachments
// in the order the render pass declares them.
func CreateFramebuffer(
	device vk.Device,
	renderPass vk.RenderPass,
	extent vk.Extent2D,
	attachments ...vk.ImageView,
) (vk.Framebuffer, error) {
	frameBufferInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var frameBuffer vk.Framebuffer
	res := vk.CreateFramebuffer(device, &frameBufferInfo, nil, &frameBuffer)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create frame buffer: %w", err)
	}

	return frameBuffer, nil
}

// ClearValues returns clear values for a render pass: one colour and, when
// depth is true, a depth of 1.
func ClearValues(color [4]float32, depth bool) []vk.ClearValue {
	values := make([]vk.ClearValue, 0, 2)

	var clearColor vk.ClearValue
	clearColor.SetColor(color[:])
	values = append(values, clearColor)

	if depth {
		var clearDepth vk.ClearValue
		clearDepth.SetDepthStencil(1, 0)
		values = append(values, clearDepth)
	}

	return values
}

// BeginRenderPass starts renderPass on framebuffer covering the whole extent.
func BeginRenderPass(
	commandBuffer vk.CommandBuffer,
	renderPass vk.RenderPass,
	framebuffer vk.Framebuffer,
	extent vk.Extent2D,
	clearValues []vk.ClearValue,
) {
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(commandBuffer, &renderPassInfo, vk.SubpassContentsInline)
}
