package mesh

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

const quadOBJ = `
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl plain
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const twoMaterialsOBJ = `
o box
v 0 0 0
v 4 0 0
v 4 2 0
v 0 2 0
v 0 0 1
vn 0 0 1
usemtl red
f 1//1 2//1 3//1
usemtl blue
f 1//1 3//1 4//1
f 1//1 4//1 5//1
`

const positionsOnlyOBJ = `
o tri
v 0 0 0
v 1 0 0
v 0 1 0
usemtl none
f 1 2 3
`

const noFacesOBJ = `
o nothing
v 0 0 0
v 1 0 0
`

const eps = 1e-5

func TestLoadTriangulatesPolygons(t *testing.T) {
	g := NewWithT(t)

	m, err := Load(strings.NewReader(quadOBJ), LoadOptions{Normals: true, TexCoords: true})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(m.VertexCount()).To(Equal(6))
	g.Expect(m.Layout.Stride()).To(Equal(8))
	g.Expect(m.Parts).To(Equal([]Part{
		{Object: "quad", Material: "plain", Offset: 0, Count: 6},
	}))

	// Fan around the first vertex.
	g.Expect(m.Position(0)).To(Equal(mgl32.Vec3{0, 0, 0}))
	g.Expect(m.Position(2)).To(Equal(mgl32.Vec3{1, 1, 0}))
	g.Expect(m.Position(3)).To(Equal(mgl32.Vec3{0, 0, 0}))
	g.Expect(m.Position(5)).To(Equal(mgl32.Vec3{0, 1, 0}))
	g.Expect(m.TexCoord(1)).To(Equal(mgl32.Vec2{1, 0}))
	g.Expect(m.Normal(4)).To(Equal(mgl32.Vec3{0, 0, 1}))

	g.Expect(m.Bytes()).To(HaveLen(len(m.Data) * 4))
}

func TestLoadParts(t *testing.T) {
	g := NewWithT(t)

	m, err := Load(strings.NewReader(twoMaterialsOBJ), LoadOptions{Normals: true})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(m.Parts).To(HaveLen(2))
	g.Expect(m.Parts[0].Material).To(Equal("red"))
	g.Expect(m.Parts[0].Offset).To(Equal(uint32(0)))
	g.Expect(m.Parts[0].Count).To(Equal(uint32(3)))
	g.Expect(m.Parts[1].Material).To(Equal("blue"))
	g.Expect(m.Parts[1].Offset).To(Equal(uint32(3)))
	g.Expect(m.Parts[1].Count).To(Equal(uint32(6)))
}

func TestTangentsAreOrthogonal(t *testing.T) {
	g := NewWithT(t)

	m, err := Load(strings.NewReader(quadOBJ), LoadOptions{
		Normals:   true,
		TexCoords: true,
		Tangents:  true,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(m.Layout.Tangents).To(BeTrue())
	g.Expect(m.Layout.Stride()).To(Equal(14))

	for i := 0; i < m.VertexCount(); i++ {
		n, tan, bit := m.Normal(i), m.Tangent(i), m.Bitangent(i)

		g.Expect(n.Dot(tan)).To(BeNumerically("~", 0, eps))
		g.Expect(n.Dot(bit)).To(BeNumerically("~", 0, eps))
		g.Expect(tan.Len()).To(BeNumerically("~", 1, eps))
		g.Expect(tan.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps)).To(BeTrue())
		g.Expect(bit.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, eps)).To(BeTrue())
	}
}

func TestOrthogonalizeSkewedTangent(t *testing.T) {
	g := NewWithT(t)

	normal := mgl32.Vec3{0, 1, 1}
	tan, bit := orthogonalize(normal, mgl32.Vec3{1, 1, 0}, mgl32.Vec3{0, 0, -1})

	g.Expect(tan.Dot(normal.Normalize())).To(BeNumerically("~", 0, eps))
	g.Expect(bit.Dot(tan)).To(BeNumerically("~", 0, eps))
	g.Expect(bit.Dot(mgl32.Vec3{0, 0, -1})).To(BeNumerically(">", 0))

	// A tangent parallel to the normal is replaced by some perpendicular one.
	tan, _ = orthogonalize(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 0, 0}, mgl32.Vec3{})
	g.Expect(tan.Dot(mgl32.Vec3{1, 0, 0})).To(BeNumerically("~", 0, eps))
	g.Expect(tan.Len()).To(BeNumerically("~", 1, eps))
}

func TestTangentsNeedNormalsAndTexCoords(t *testing.T) {
	g := NewWithT(t)

	m, err := Load(strings.NewReader(twoMaterialsOBJ), LoadOptions{
		Normals:  true,
		Tangents: true,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(m.Layout.Tangents).To(BeFalse())
	g.Expect(m.Layout.Stride()).To(Equal(6))
}

func TestUnify(t *testing.T) {
	g := NewWithT(t)

	m, err := Load(strings.NewReader(twoMaterialsOBJ), LoadOptions{Unify: true})
	g.Expect(err).NotTo(HaveOccurred())

	min, max := m.Bounds()
	center := min.Add(max).Mul(0.5)
	g.Expect(center.Len()).To(BeNumerically("~", 0, eps))

	// x is the dominant axis, 4 units wide.
	g.Expect(min.X()).To(BeNumerically("~", -1, eps))
	g.Expect(max.X()).To(BeNumerically("~", 1, eps))
	g.Expect(max.Y()).To(BeNumerically("~", 0.5, eps))
	g.Expect(max.Z()).To(BeNumerically("~", 0.25, eps))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		opts     LoadOptions
		expected error
	}{
		{
			name:     "no faces",
			source:   noFacesOBJ,
			expected: ErrEmptyModel,
		},
		{
			name:     "missing normals",
			source:   positionsOnlyOBJ,
			opts:     LoadOptions{Normals: true},
			expected: ErrMissingNormals,
		},
		{
			name:     "missing texture coordinates",
			source:   twoMaterialsOBJ,
			opts:     LoadOptions{TexCoords: true},
			expected: ErrMissingTexCoords,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := NewWithT(t)

			_, err := Load(strings.NewReader(test.source), test.opts)
			g.Expect(err).To(MatchError(test.expected))
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	g := NewWithT(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.obj"), LoadOptions{})
	g.Expect(err).To(MatchError(fs.ErrNotExist))
}

func TestLayout(t *testing.T) {
	g := NewWithT(t)

	positions := Layout{}
	g.Expect(positions.Stride()).To(Equal(3))
	g.Expect(positions.NormalOffset()).To(Equal(-1))
	g.Expect(positions.AttributeDescriptions(0)).To(HaveLen(1))

	uvOnly := Layout{TexCoords: true}
	g.Expect(uvOnly.TexCoordOffset()).To(Equal(3))

	full := Layout{Normals: true, TexCoords: true, Tangents: true}
	g.Expect(full.Stride()).To(Equal(14))
	g.Expect(full.TangentOffset()).To(Equal(8))

	binding := full.BindingDescription(0)
	g.Expect(binding.Stride).To(Equal(uint32(14 * 4)))

	attributes := full.AttributeDescriptions(0)
	g.Expect(attributes).To(HaveLen(5))
	g.Expect(attributes[2].Format).To(Equal(vk.FormatR32g32Sfloat))
	g.Expect(attributes[2].Offset).To(Equal(uint32(6 * 4)))
	g.Expect(attributes[4].Location).To(Equal(uint32(4)))
	g.Expect(attributes[4].Offset).To(Equal(uint32(11 * 4)))
}

func TestBoundsEmpty(t *testing.T) {
	g := NewWithT(t)

	var m Mesh
	min, max := m.Bounds()
	g.Expect(min).To(Equal(mgl32.Vec3{}))
	g.Expect(max).To(Equal(mgl32.Vec3{}))
}
