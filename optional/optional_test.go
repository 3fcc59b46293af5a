package optional

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestOptional(t *testing.T) {
	g := NewWithT(t)

	var o Optional[uint32]
	g.Expect(o.HasValue()).To(BeFalse())
	g.Expect(o.GetOr(7)).To(Equal(uint32(7)))

	o.Set(0)
	g.Expect(o.HasValue()).To(BeTrue())
	g.Expect(o.Get()).To(Equal(uint32(0)))
	g.Expect(o.GetOr(7)).To(Equal(uint32(0)))

	g.Expect(Of("graphics").Get()).To(Equal("graphics"))
}
