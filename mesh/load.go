package mesh

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mokiat/go-data-front/decoder/obj"
)

var (
	// ErrEmptyModel is returned for models without a single triangle.
	ErrEmptyModel = errors.New("model has no geometry")

	// ErrMissingNormals is returned when normals were requested but some
	// face vertex has none.
	ErrMissingNormals = errors.New("model has no normals")

	// ErrMissingTexCoords is returned when texture coordinates were requested
	// but some face vertex has none.
	ErrMissingTexCoords = errors.New("model has no texture coordinates")
)

// LoadOptions selects the attributes stored in the loaded mesh.
type LoadOptions struct {
	Normals   bool
	TexCoords bool

	// Tangents generates a tangent and bitangent per vertex. It needs both
	// normals and texture coordinates and is ignored otherwise.
	Tangents bool

	// Unify centres the model at the origin and scales it into [-1, 1].
	Unify bool
}

// LoadFile loads the OBJ model at path.
func LoadFile(path string, opts LoadOptions) (*Mesh, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer fh.Close()

	m, err := Load(fh, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return m, nil
}

// vertexKey identifies a unique combination of OBJ attributes. Tangents are
// accumulated per key so that faces sharing a vertex get smooth tangents.
type vertexKey = obj.Reference

// Load decodes an OBJ model from r. Polygons are triangulated as fans. Every
// OBJ mesh with faces becomes one Part.
func Load(r io.Reader, opts LoadOptions) (*Mesh, error) {
	decoder := obj.NewDecoder(obj.DefaultLimits())
	model, err := decoder.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}

	if opts.Tangents && !(opts.Normals && opts.TexCoords) {
		log.Printf("tangents need normals and texture coordinates, not generating them")
		opts.Tangents = false
	}

	m := &Mesh{
		Layout: Layout{
			Normals:   opts.Normals,
			TexCoords: opts.TexCoords,
			Tangents:  opts.Tangents,
		},
	}
	stride := m.Layout.Stride()

	var keys []vertexKey

	for _, object := range model.Objects {
		for _, objMesh := range object.Meshes {
			part := Part{
				Object:   object.Name,
				Material: objMesh.MaterialName,
				Offset:   uint32(len(m.Data) / stride),
			}

			for _, face := range objMesh.Faces {
				refs := face.References
				if len(refs) < 3 {
					continue
				}

				for i := 1; i+1 < len(refs); i++ {
					for _, k := range [3]int{0, i, i + 1} {
						ref := refs[k]
						vertex := make([]float32, 0, stride)

						v := model.GetVertexFromReference(ref)
						vertex = append(vertex, float32(v.X), float32(v.Y), float32(v.Z))

						if opts.Normals {
							if !ref.HasNormal() {
								return nil, ErrMissingNormals
							}
							n := model.GetNormalFromReference(ref)
							vertex = append(vertex, float32(n.X), float32(n.Y), float32(n.Z))
						}

						if opts.TexCoords {
							if !ref.HasTexCoord() {
								return nil, ErrMissingTexCoords
							}
							t := model.GetTexCoordFromReference(ref)
							vertex = append(vertex, float32(t.U), float32(t.V))
						}

						if opts.Tangents {
							// Filled in by generateTangents.
							vertex = append(vertex, 0, 0, 0, 0, 0, 0)
							keys = append(keys, ref)
						}

						m.Data = append(m.Data, vertex...)
					}
				}
			}

			part.Count = uint32(len(m.Data)/stride) - part.Offset
			if part.Count > 0 {
				m.Parts = append(m.Parts, part)
			}
		}
	}

	if len(m.Data) == 0 {
		return nil, ErrEmptyModel
	}

	if opts.Tangents {
		generateTangents(m, keys)
	}

	if opts.Unify {
		m.Unify()
	}

	return m, nil
}

// generateTangents computes per triangle tangents and bitangents from the
// texture coordinate derivatives, sums them for vertices sharing a key and
// orthogonalizes the result against each vertex normal.
func generateTangents(m *Mesh, keys []vertexKey) {
	type basis struct {
		tangent   mgl32.Vec3
		bitangent mgl32.Vec3
	}
	sums := make(map[vertexKey]basis, len(keys))

	count := m.VertexCount()
	for tri := 0; tri+2 < count; tri += 3 {
		t, b := triangleBasis(
			m.Position(tri), m.Position(tri+1), m.Position(tri+2),
			m.TexCoord(tri), m.TexCoord(tri+1), m.TexCoord(tri+2),
		)
		for v := tri; v < tri+3; v++ {
			acc := sums[keys[v]]
			acc.tangent = acc.tangent.Add(t)
			acc.bitangent = acc.bitangent.Add(b)
			sums[keys[v]] = acc
		}
	}

	for i := 0; i < count; i++ {
		acc := sums[keys[i]]
		t, b := orthogonalize(m.Normal(i), acc.tangent, acc.bitangent)
		m.setVec3(i, m.Layout.TangentOffset(), t)
		m.setVec3(i, m.Layout.TangentOffset()+3, b)
	}
}

func triangleBasis(p0, p1, p2 mgl32.Vec3, uv0, uv1, uv2 mgl32.Vec2) (mgl32.Vec3, mgl32.Vec3) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	d1 := uv1.Sub(uv0)
	d2 := uv2.Sub(uv0)

	det := d1[0]*d2[1] - d2[0]*d1[1]
	if mgl32.Abs(det) < 1e-12 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	r := 1 / det

	tangent := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
	bitangent := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)

	return tangent, bitangent
}

// orthogonalize makes tangent perpendicular to normal with Gram-Schmidt and
// rebuilds the bitangent as cross(normal, tangent), flipped when the
// accumulated bitangent points the other way.
func orthogonalize(normal, tangent, bitangent mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	n := safeNormalize(normal, mgl32.Vec3{0, 0, 1})

	t := tangent.Sub(n.Mul(n.Dot(tangent)))
	if t.Len() < 1e-6 {
		t = anyPerpendicular(n)
	}
	t = t.Normalize()

	b := n.Cross(t)
	if b.Dot(bitangent) < 0 {
		b = b.Mul(-1)
	}

	return t, b
}

func safeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-12 {
		return fallback
	}
	return v.Normalize()
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if mgl32.Abs(n.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis)))
}
