package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/linmath"
)

const maxPitch = 89 * math.Pi / 180

// OrbitCamera looks at Target from Distance away. Yaw turns around the Y
// axis and Pitch tilts towards it, both in radians.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	MinDistance float32
	MaxDistance float32

	// Sensitivity converts pointer movement in pixels to radians.
	Sensitivity float32
}

// NewOrbitCamera returns a camera distance units in front of the origin.
func NewOrbitCamera(distance float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:    distance,
		MinDistance: 0.5,
		MaxDistance: 50,
		Sensitivity: 0.01,
	}
}

// Rotate turns the camera by a pointer movement of dx, dy pixels. The pitch
// stays short of the poles so the up vector is never parallel to the view.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+dy*c.Sensitivity, -maxPitch, maxPitch)
}

// Zoom moves the camera closer for positive steps.
func (c *OrbitCamera) Zoom(steps float32) {
	c.Distance = mgl32.Clamp(c.Distance*float32(math.Pow(0.9, float64(steps))),
		c.MinDistance, c.MaxDistance)
}

// Eye returns the camera position.
func (c *OrbitCamera) Eye() mgl32.Vec3 {
	sinYaw, cosYaw := math.Sincos(float64(c.Yaw))
	sinPitch, cosPitch := math.Sincos(float64(c.Pitch))

	dir := mgl32.Vec3{
		float32(cosPitch * sinYaw),
		float32(sinPitch),
		float32(cosPitch * cosYaw),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

// View returns the view matrix.
func (c *OrbitCamera) View() linmath.Mat4x4 {
	eye := ToLinmath(c.Eye())
	center := ToLinmath(c.Target)
	up := linmath.Vec3{0, 1, 0}

	var view linmath.Mat4x4
	view.LookAt(&eye, &center, &up)
	return view
}
