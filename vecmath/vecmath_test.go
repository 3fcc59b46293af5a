package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
)

const eps = 1e-4

func expectVec(g Gomega, got, want mgl32.Vec3) {
	g.ExpectWithOffset(1, got.X()).To(BeNumerically("~", want.X(), eps))
	g.ExpectWithOffset(1, got.Y()).To(BeNumerically("~", want.Y(), eps))
	g.ExpectWithOffset(1, got.Z()).To(BeNumerically("~", want.Z(), eps))
}

func TestPerspectiveFlipsY(t *testing.T) {
	g := NewWithT(t)

	proj := Perspective(45, 16.0/9.0, 0.1, 10)
	g.Expect(proj[1][1]).To(BeNumerically("<", 0))
	g.Expect(proj[0][0]).To(BeNumerically(">", 0))

	// A point straight ahead on the near plane lands at depth zero.
	near := TransformPoint(proj, mgl32.Vec3{0, 0, -0.1})
	g.Expect(near.X()).To(BeNumerically("~", 0, eps))
	g.Expect(near.Y()).To(BeNumerically("~", 0, eps))
}

func TestRotation(t *testing.T) {
	g := NewWithT(t)

	rot := Rotation(mgl32.Vec3{0, 0, 1}, math.Pi/2)
	p := TransformPoint(rot, mgl32.Vec3{1, 0, 0})
	expectVec(g, p, mgl32.Vec3{0, 1, 0})

	id := Identity()
	g.Expect(Mul(id, rot)).To(Equal(rot))
}

func TestOrbitCameraEye(t *testing.T) {
	g := NewWithT(t)

	cam := NewOrbitCamera(3)
	expectVec(g, cam.Eye(), mgl32.Vec3{0, 0, 3})

	cam.Yaw = math.Pi / 2
	expectVec(g, cam.Eye(), mgl32.Vec3{3, 0, 0})

	cam.Target = mgl32.Vec3{1, 1, 1}
	g.Expect(cam.Eye().Sub(cam.Target).Len()).To(BeNumerically("~", 3, eps))
}

func TestOrbitCameraView(t *testing.T) {
	g := NewWithT(t)

	cam := NewOrbitCamera(4)
	cam.Rotate(40, -25)
	view := cam.View()

	eye := TransformPoint(view, cam.Eye())
	g.Expect(eye.Len()).To(BeNumerically("~", 0, eps))

	target := TransformPoint(view, cam.Target)
	expectVec(g, target, mgl32.Vec3{0, 0, -4})
}

func TestOrbitCameraClamps(t *testing.T) {
	g := NewWithT(t)

	cam := NewOrbitCamera(2)
	cam.Rotate(0, 1e6)
	g.Expect(cam.Pitch).To(BeNumerically("~", maxPitch, eps))
	cam.Rotate(0, -1e7)
	g.Expect(cam.Pitch).To(BeNumerically("~", -maxPitch, eps))

	cam.Zoom(100)
	g.Expect(cam.Distance).To(Equal(cam.MinDistance))
	cam.Zoom(-100)
	g.Expect(cam.Distance).To(Equal(cam.MaxDistance))

	cam.Distance = 2
	cam.Zoom(1)
	g.Expect(cam.Distance).To(BeNumerically("~", 1.8, eps))
}
