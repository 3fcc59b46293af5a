package main

import (
	"math/rand"
	"testing"
	"unsafe"

	. "github.com/onsi/gomega"
)

func TestParticleLayout(t *testing.T) {
	g := NewWithT(t)

	// std430 layout of two vec4 members.
	g.Expect(unsafe.Sizeof(particle{})).To(Equal(uintptr(32)))
	g.Expect(unsafe.Offsetof(particle{}.Velocity)).To(Equal(uintptr(16)))
	g.Expect(unsafe.Sizeof(step{})).To(Equal(uintptr(8)))
}

func TestNewParticles(t *testing.T) {
	g := NewWithT(t)

	particles := newParticles(1000, rand.New(rand.NewSource(7)))
	g.Expect(particles).To(HaveLen(1000))

	for _, p := range particles {
		x, y := p.Position[0], p.Position[1]
		g.Expect(x*x + y*y).To(BeNumerically("<=", 0.25*0.25+1e-6))
		g.Expect(p.Position[3]).To(Equal(float32(1)))

		// Velocity is perpendicular to the position.
		dot := x*p.Velocity[0] + y*p.Velocity[1]
		g.Expect(dot).To(BeNumerically("~", 0, 1e-6))
	}
}
