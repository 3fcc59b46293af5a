package models

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"

	"github.com/ironsmile/vulkan-cookbook-go/mesh"
)

func TestLoadCube(t *testing.T) {
	g := NewWithT(t)

	m, err := Load(Cube, mesh.LoadOptions{
		Normals:   true,
		TexCoords: true,
		Tangents:  true,
		Unify:     true,
	})
	g.Expect(err).NotTo(HaveOccurred())

	// Six quads, two triangles each.
	g.Expect(m.VertexCount()).To(Equal(36))
	g.Expect(m.Parts).To(HaveLen(2))
	g.Expect(m.Parts[0].Material).To(Equal("Sides"))
	g.Expect(m.Parts[0].Count).To(Equal(uint32(24)))
	g.Expect(m.Parts[1].Material).To(Equal("Caps"))
	g.Expect(m.Parts[1].Count).To(Equal(uint32(12)))

	min, max := m.Bounds()
	g.Expect(min.ApproxEqualThreshold(mgl32.Vec3{-1, -1, -1}, 1e-6)).To(BeTrue())
	g.Expect(max.ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, 1e-6)).To(BeTrue())

	for i := 0; i < m.VertexCount(); i++ {
		n := m.Normal(i)
		g.Expect(n.Len()).To(BeNumerically("~", 1, 1e-5))
		g.Expect(n.Dot(m.Tangent(i))).To(BeNumerically("~", 0, 1e-5))
	}
}

func TestLoadMissing(t *testing.T) {
	g := NewWithT(t)

	_, err := Load("missing.obj", mesh.LoadOptions{})
	g.Expect(err).To(HaveOccurred())
}
