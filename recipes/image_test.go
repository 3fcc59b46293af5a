package recipes

import (
	"image"
	"image/color"
	"testing"

	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

func TestStencilFormats(t *testing.T) {
	g := NewWithT(t)

	g.Expect(HasStencilComponent(vk.FormatD32Sfloat)).To(BeFalse())
	g.Expect(HasStencilComponent(vk.FormatD32SfloatS8Uint)).To(BeTrue())
	g.Expect(HasStencilComponent(vk.FormatD24UnormS8Uint)).To(BeTrue())

	g.Expect(DepthAspect(vk.FormatD32Sfloat)).
		To(Equal(vk.ImageAspectFlags(vk.ImageAspectDepthBit)))
	g.Expect(DepthAspect(vk.FormatD24UnormS8Uint)).
		To(Equal(vk.ImageAspectFlags(vk.ImageAspectDepthBit) |
			vk.ImageAspectFlags(vk.ImageAspectStencilBit)))
}

func TestFormatSupports(t *testing.T) {
	g := NewWithT(t)

	attachment := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	props := vk.FormatProperties{OptimalTilingFeatures: attachment}

	g.Expect(formatSupports(props, vk.ImageTilingOptimal, attachment)).To(BeTrue())
	g.Expect(formatSupports(props, vk.ImageTilingLinear, attachment)).To(BeFalse())
}

func TestLayoutTransition(t *testing.T) {
	g := NewWithT(t)

	upload, err := layoutTransition(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(upload.srcAccess).To(BeZero())
	g.Expect(upload.dstStage).To(Equal(vk.PipelineStageFlags(vk.PipelineStageTransferBit)))

	read, err := layoutTransition(
		vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal,
	)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(read.srcStage).To(Equal(upload.dstStage))
	g.Expect(read.dstAccess).To(Equal(vk.AccessFlags(vk.AccessShaderReadBit)))

	depth, err := layoutTransition(
		vk.ImageLayoutUndefined,
		vk.ImageLayoutDepthStencilAttachmentOptimal,
	)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(depth.dstStage).
		To(Equal(vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)))

	_, err = layoutTransition(vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutUndefined)
	g.Expect(err).To(MatchError(ContainSubstring("unsupported layout transition")))
}

func TestToRGBA(t *testing.T) {
	g := NewWithT(t)

	src := image.NewNRGBA(image.Rect(2, 3, 4, 5))
	src.Set(2, 3, color.NRGBA{R: 255, A: 255})

	rgba := ToRGBA(src)
	g.Expect(rgba.Rect).To(Equal(image.Rect(0, 0, 2, 2)))
	g.Expect(rgba.Pix).To(HaveLen(2 * 2 * 4))
	g.Expect(rgba.Pix[:4]).To(Equal([]byte{255, 0, 0, 255}))

	same := image.NewRGBA(image.Rect(0, 0, 2, 2))
	g.Expect(ToRGBA(same)).To(BeIdenticalTo(same))
}
