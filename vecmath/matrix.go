// Package vecmath holds the matrix helpers shared by the samples.
package vecmath

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/linmath"
)

// Transforms is the uniform block most samples pass to their vertex shader.
type Transforms struct {
	Model linmath.Mat4x4
	View  linmath.Mat4x4
	Proj  linmath.Mat4x4
}

// Perspective returns a projection for Vulkan clip space. Y is flipped since
// Vulkan's points down.
func Perspective(fovDegrees, aspect, near, far float32) linmath.Mat4x4 {
	var proj linmath.Mat4x4
	proj.Perspective(linmath.DegreesToRadians(fovDegrees), aspect, near, far)
	proj[1][1] *= -1
	return proj
}

// Rotation returns a rotation of angle radians around axis.
func Rotation(axis mgl32.Vec3, angle float32) linmath.Mat4x4 {
	var identity, rot linmath.Mat4x4
	identity.Identity()
	rot.Rotate(&identity, axis.X(), axis.Y(), axis.Z(), angle)
	return rot
}

// Identity returns the identity matrix.
func Identity() linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Identity()
	return m
}

// Mul returns a*b.
func Mul(a, b linmath.Mat4x4) linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Mult(&a, &b)
	return m
}

// ToLinmath converts a mathgl vector.
func ToLinmath(v mgl32.Vec3) linmath.Vec3 {
	return linmath.Vec3{v[0], v[1], v[2]}
}

// TransformPoint applies m to the point p. Matrices are column major.
func TransformPoint(m linmath.Mat4x4, p mgl32.Vec3) mgl32.Vec3 {
	var out [4]float32
	in := [4]float32{p[0], p[1], p[2], 1}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row] += m[col][row] * in[col]
		}
	}
	if out[3] != 0 && out[3] != 1 {
		return mgl32.Vec3{out[0] / out[3], out[1] / out[3], out[2] / out[3]}
	}
	return mgl32.Vec3{out[0], out[1], out[2]}
}
