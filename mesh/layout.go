package mesh

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const floatSize = uint32(unsafe.Sizeof(float32(0)))

// Layout tells which attributes are interleaved in a mesh's vertex data. The
// position always comes first; normal, texture coordinate, tangent and
// bitangent follow in that order when present.
type Layout struct {
	Normals   bool
	TexCoords bool
	Tangents  bool
}

// Stride is the number of floats per vertex.
func (l Layout) Stride() int {
	stride := 3
	if l.Normals {
		stride += 3
	}
	if l.TexCoords {
		stride += 2
	}
	if l.Tangents {
		stride += 6
	}
	return stride
}

// NormalOffset is the float offset of the normal within a vertex, or -1.
func (l Layout) NormalOffset() int {
	if !l.Normals {
		return -1
	}
	return 3
}

// TexCoordOffset is the float offset of the texture coordinate, or -1.
func (l Layout) TexCoordOffset() int {
	if !l.TexCoords {
		return -1
	}
	if l.Normals {
		return 6
	}
	return 3
}

// TangentOffset is the float offset of the tangent, or -1. The bitangent
// follows it directly.
func (l Layout) TangentOffset() int {
	if !l.Tangents {
		return -1
	}
	return l.Stride() - 6
}

// BindingDescription describes the interleaved vertex data as a single per
// vertex binding.
func (l Layout) BindingDescription(binding uint32) vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   binding,
		Stride:    uint32(l.Stride()) * floatSize,
		InputRate: vk.VertexInputRateVertex,
	}
}

// AttributeDescriptions returns one attribute per component in layout order.
// Locations are consecutive starting from zero.
func (l Layout) AttributeDescriptions(binding uint32) []vk.VertexInputAttributeDescription {
	attr := func(location uint32, format vk.Format, offset int) vk.VertexInputAttributeDescription {
		return vk.VertexInputAttributeDescription{
			Binding:  binding,
			Location: location,
			Format:   format,
			Offset:   uint32(offset) * floatSize,
		}
	}

	attributes := []vk.VertexInputAttributeDescription{
		attr(0, vk.FormatR32g32b32Sfloat, 0),
	}

	if l.Normals {
		attributes = append(attributes,
			attr(uint32(len(attributes)), vk.FormatR32g32b32Sfloat, l.NormalOffset()))
	}
	if l.TexCoords {
		attributes = append(attributes,
			attr(uint32(len(attributes)), vk.FormatR32g32Sfloat, l.TexCoordOffset()))
	}
	if l.Tangents {
		attributes = append(attributes,
			attr(uint32(len(attributes)), vk.FormatR32g32b32Sfloat, l.TangentOffset()),
			attr(uint32(len(attributes))+1, vk.FormatR32g32b32Sfloat, l.TangentOffset()+3),
		)
	}

	return attributes
}
