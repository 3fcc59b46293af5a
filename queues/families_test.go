package queues

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestFamilyIndices(t *testing.T) {
	g := NewWithT(t)

	var f FamilyIndices
	g.Expect(f.IsComplete()).To(BeFalse())
	g.Expect(f.Unique()).To(BeEmpty())

	f.Graphics.Set(2)
	g.Expect(f.IsComplete()).To(BeFalse())

	f.Present.Set(2)
	g.Expect(f.IsComplete()).To(BeTrue())
	g.Expect(f.Shared()).To(BeTrue())
	g.Expect(f.Unique()).To(Equal([]uint32{2}))

	f.Compute.Set(0)
	f.Present.Set(1)
	g.Expect(f.Shared()).To(BeFalse())
	g.Expect(f.Unique()).To(Equal([]uint32{0, 1, 2}))
}
