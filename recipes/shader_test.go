package recipes

import (
	"testing"

	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

func TestValidateSPIRV(t *testing.T) {
	g := NewWithT(t)

	valid := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	g.Expect(ValidateSPIRV(valid)).To(Succeed())

	g.Expect(ValidateSPIRV(nil)).To(MatchError(ErrInvalidSPIRV))
	g.Expect(ValidateSPIRV(valid[:6])).To(MatchError(ErrInvalidSPIRV))
	g.Expect(ValidateSPIRV([]byte{0x07, 0x23, 0x02, 0x03})).To(MatchError(ErrInvalidSPIRV))
}

func TestShaderStage(t *testing.T) {
	g := NewWithT(t)

	stage := ShaderStage(vk.ShaderStageFragmentBit, nil)
	g.Expect(stage.Stage).To(Equal(vk.ShaderStageFragmentBit))
	g.Expect(stage.PName).To(Equal("main\x00"))
}
