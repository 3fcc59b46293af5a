package recipes

import (
	"testing"

	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

func TestRenderPassAttachments(t *testing.T) {
	g := NewWithT(t)

	colorOnly := RenderPassConfig{ColorFormat: vk.FormatB8g8r8a8Srgb}
	g.Expect(colorOnly.HasDepth()).To(BeFalse())

	attachments := colorOnly.attachments()
	g.Expect(attachments).To(HaveLen(1))
	g.Expect(attachments[0].FinalLayout).To(Equal(vk.ImageLayoutPresentSrc))
	g.Expect(colorOnly.dependency().DstAccessMask).
		To(Equal(vk.AccessFlags(vk.AccessColorAttachmentWriteBit)))

	withDepth := RenderPassConfig{
		ColorFormat: vk.FormatB8g8r8a8Srgb,
		DepthFormat: vk.FormatD32Sfloat,
		FinalLayout: vk.ImageLayoutTransferSrcOptimal,
	}
	attachments = withDepth.attachments()
	g.Expect(attachments).To(HaveLen(2))
	g.Expect(attachments[0].FinalLayout).To(Equal(vk.ImageLayoutTransferSrcOptimal))
	g.Expect(attachments[1].Format).To(Equal(vk.FormatD32Sfloat))
	g.Expect(attachments[1].StoreOp).To(Equal(vk.AttachmentStoreOpDontCare))

	dep := withDepth.dependency()
	g.Expect(dep.SrcSubpass).To(Equal(uint32(vk.SubpassExternal)))
	g.Expect(dep.DstStageMask & vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)).
		NotTo(BeZero())
}

func TestClearValues(t *testing.T) {
	g := NewWithT(t)

	g.Expect(ClearValues([4]float32{0, 0, 0, 1}, false)).To(HaveLen(1))
	g.Expect(ClearValues([4]float32{0, 0, 0, 1}, true)).To(HaveLen(2))
}
