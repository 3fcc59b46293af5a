package shaders

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestSPIRV(t *testing.T) {
	g := NewWithT(t)
	g.Expect(SPIRV(TriangleVert)).To(Equal("shaders/triangle.vert.spv"))
}

func TestSources(t *testing.T) {
	g := NewWithT(t)

	names, err := List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(names).To(ConsistOf(
		TriangleVert, TriangleFrag,
		ModelVert, ModelFrag,
		ParticlesComp, ParticlesVert, ParticlesFrag,
	))

	for _, name := range names {
		src, err := Sources.ReadFile(name)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(bytes.HasPrefix(src, []byte("#version 450"))).To(BeTrue(), name)
		g.Expect(string(src)).To(ContainSubstring("void main()"), name)
	}
}
