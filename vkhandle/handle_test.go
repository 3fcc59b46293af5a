package vkhandle

import (
	"testing"

	. "github.com/onsi/gomega"
)

type owner struct{ name string }

type object struct{ id int }

func countingDestroy(calls *[]int) func(*owner, *object) {
	return func(_ *owner, o *object) {
		*calls = append(*calls, o.id)
	}
}

func TestDestroyOnce(t *testing.T) {
	g := NewWithT(t)

	var calls []int
	h := New(&owner{"device"}, &object{1}, countingDestroy(&calls))
	g.Expect(h.Valid()).To(BeTrue())

	h.Destroy()
	h.Destroy()

	g.Expect(calls).To(Equal([]int{1}))
	g.Expect(h.Valid()).To(BeFalse())
	g.Expect(h.Get()).To(BeNil())
}

func TestDestroyNeedsParentAndHandle(t *testing.T) {
	g := NewWithT(t)

	var calls []int

	noParent := New[*owner](nil, &object{1}, countingDestroy(&calls))
	g.Expect(noParent.Valid()).To(BeFalse())
	noParent.Destroy()

	noHandle := New[*owner, *object](&owner{"device"}, nil, countingDestroy(&calls))
	g.Expect(noHandle.Valid()).To(BeFalse())
	noHandle.Destroy()

	var empty Handle[*owner, *object]
	empty.Destroy()

	g.Expect(calls).To(BeEmpty())
}

func TestNilDestroyFunction(t *testing.T) {
	g := NewWithT(t)

	h := New(&owner{"device"}, &object{1}, nil)
	g.Expect(h.Destroy).NotTo(Panic())
	g.Expect(h.Valid()).To(BeFalse())
}

func TestMoveTransfersOwnership(t *testing.T) {
	g := NewWithT(t)

	var calls []int
	src := New(&owner{"device"}, &object{7}, countingDestroy(&calls))

	dst := src.Move()
	g.Expect(src.Valid()).To(BeFalse())
	g.Expect(src.Get()).To(BeNil())
	g.Expect(dst.Valid()).To(BeTrue())
	g.Expect(dst.Get().id).To(Equal(7))

	src.Destroy()
	g.Expect(calls).To(BeEmpty(), "the moved-from handle must not destroy anything")

	dst.Destroy()
	dst.Destroy()
	g.Expect(calls).To(Equal([]int{7}))
}

func TestReset(t *testing.T) {
	g := NewWithT(t)

	var calls []int
	h := New(&owner{"device"}, &object{1}, countingDestroy(&calls))

	h.Reset(&object{2})
	g.Expect(calls).To(Equal([]int{1}))
	g.Expect(h.Get().id).To(Equal(2))

	moved := h.Move()
	h.Reset(&object{3})
	g.Expect(calls).To(Equal([]int{1}), "resetting an empty handle destroys nothing")

	h.Destroy()
	moved.Destroy()
	g.Expect(calls).To(Equal([]int{1, 3, 2}))
}

func TestSelf(t *testing.T) {
	g := NewWithT(t)

	var destroyed []*object
	instance := &object{42}
	h := Self(instance, func(o *object) { destroyed = append(destroyed, o) })

	g.Expect(h.Parent()).To(BeIdenticalTo(instance))
	h.Destroy()
	g.Expect(destroyed).To(ConsistOf(instance))
}

func TestStack(t *testing.T) {
	g := NewWithT(t)

	var (
		calls []int
		stack Stack
	)
	parent := &owner{"device"}

	first := Own(&stack, New(parent, &object{1}, countingDestroy(&calls)))
	second := Own(&stack, New(parent, &object{2}, countingDestroy(&calls)))
	stack.Push(func() { calls = append(calls, 0) })

	g.Expect(first.id).To(Equal(1))
	g.Expect(second.id).To(Equal(2))
	g.Expect(stack.Len()).To(Equal(3))

	stack.Release()
	g.Expect(calls).To(Equal([]int{0, 2, 1}))
	g.Expect(stack.Len()).To(BeZero())

	stack.Release()
	g.Expect(calls).To(HaveLen(3))
}

type destroyer interface {
	Destroy(*object)
}

type recorder struct{ ids []int }

func (r *recorder) Destroy(o *object) {
	r.ids = append(r.ids, o.id)
}

func TestInterfaceParent(t *testing.T) {
	g := NewWithT(t)

	rec := &recorder{}
	var stack Stack
	Own(&stack, New[destroyer](rec, &object{4}, destroyer.Destroy))
	Own(&stack, New[destroyer](rec, &object{5}, destroyer.Destroy))
	Own(&stack, New[destroyer](rec, nil, destroyer.Destroy))

	var noParent destroyer
	orphan := New(noParent, &object{6}, destroyer.Destroy)
	g.Expect(orphan.Valid()).To(BeFalse())
	orphan.Destroy()

	stack.Release()
	g.Expect(rec.ids).To(Equal([]int{5, 4}))
}
