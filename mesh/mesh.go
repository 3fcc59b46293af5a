// Package mesh loads Wavefront OBJ models into interleaved vertex data ready
// for upload into a vertex buffer.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ironsmile/vulkan-cookbook-go/unsafer"
)

// Part is a range of vertices sharing one material.
type Part struct {
	Object   string
	Material string

	// Offset and Count are in vertices.
	Offset uint32
	Count  uint32
}

// Mesh is a non-indexed triangle list.
type Mesh struct {
	Data   []float32
	Parts  []Part
	Layout Layout
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Data) / m.Layout.Stride()
}

// Bytes returns the vertex data without copying it.
func (m *Mesh) Bytes() []byte {
	return unsafer.SliceToBytes(m.Data)
}

func (m *Mesh) vec3(vertex, offset int) mgl32.Vec3 {
	i := vertex*m.Layout.Stride() + offset
	return mgl32.Vec3{m.Data[i], m.Data[i+1], m.Data[i+2]}
}

func (m *Mesh) setVec3(vertex, offset int, v mgl32.Vec3) {
	i := vertex*m.Layout.Stride() + offset
	copy(m.Data[i:i+3], v[:])
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) mgl32.Vec3 {
	return m.vec3(i, 0)
}

// Normal returns the normal of vertex i. The mesh must have normals.
func (m *Mesh) Normal(i int) mgl32.Vec3 {
	return m.vec3(i, m.Layout.NormalOffset())
}

// TexCoord returns the texture coordinate of vertex i. The mesh must have
// texture coordinates.
func (m *Mesh) TexCoord(i int) mgl32.Vec2 {
	off := i*m.Layout.Stride() + m.Layout.TexCoordOffset()
	return mgl32.Vec2{m.Data[off], m.Data[off+1]}
}

// Tangent returns the tangent of vertex i. The mesh must have tangents.
func (m *Mesh) Tangent(i int) mgl32.Vec3 {
	return m.vec3(i, m.Layout.TangentOffset())
}

// Bitangent returns the bitangent of vertex i. The mesh must have tangents.
func (m *Mesh) Bitangent(i int) mgl32.Vec3 {
	return m.vec3(i, m.Layout.TangentOffset()+3)
}

// Bounds returns the corners of the axis aligned bounding box. An empty mesh
// has zero bounds.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	count := m.VertexCount()
	if count == 0 {
		return min, max
	}

	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}

	for i := 0; i < count; i++ {
		p := m.Position(i)
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
	}

	return min, max
}

// Unify moves the centre of the bounding box to the origin and scales the
// mesh uniformly so that its largest dimension spans [-1, 1].
func (m *Mesh) Unify() {
	min, max := m.Bounds()
	center := min.Add(max).Mul(0.5)

	size := max.Sub(min)
	largest := mgl32.Abs(size[0])
	for _, s := range size[1:] {
		if s > largest {
			largest = s
		}
	}

	scale := float32(1)
	if largest > 0 {
		scale = 2 / largest
	}

	for i := 0; i < m.VertexCount(); i++ {
		m.setVec3(i, 0, m.Position(i).Sub(center).Mul(scale))
	}
}
