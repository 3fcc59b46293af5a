// Package vkhandle pairs native Vulkan handles with the object needed to
// destroy them.
//
// Most Vulkan objects are destroyed through their parent: a fence needs the
// device which created it, a surface needs the instance. A Handle keeps both
// together with the matching destroy function so that cleanup code does not
// have to remember which call frees which object.
//
//	fence := vkhandle.Fence(device, rawFence)
//	defer fence.Destroy()
//
// A Handle has a single owner. Pass it around by pointer and use Move to hand
// the resource to somebody else.
package vkhandle

// Handle owns a native handle of type T which is destroyed through its
// parent of type P. The zero value holds nothing.
type Handle[P, T comparable] struct {
	parent  P
	value   T
	destroy func(P, T)
}

// New returns a handle owning value. destroy is called with parent and value
// when the handle is destroyed.
func New[P, T comparable](parent P, value T, destroy func(P, T)) Handle[P, T] {
	return Handle[P, T]{
		parent:  parent,
		value:   value,
		destroy: destroy,
	}
}

// Self returns a handle for top level objects such as the instance and the
// device. They are their own parent.
func Self[T comparable](value T, destroy func(T)) Handle[T, T] {
	var destroyFn func(T, T)
	if destroy != nil {
		destroyFn = func(_ T, v T) { destroy(v) }
	}
	return New(value, value, destroyFn)
}

// Get returns the raw handle for passing into Vulkan calls.
func (h *Handle[P, T]) Get() T {
	return h.value
}

// Parent returns the object which destroys the handle.
func (h *Handle[P, T]) Parent() P {
	return h.parent
}

// Valid reports whether h holds a live handle, that is both the parent and
// the handle are set.
func (h *Handle[P, T]) Valid() bool {
	var (
		nullParent P
		nullValue  T
	)
	return h.parent != nullParent && h.value != nullValue
}

// Move transfers ownership to the returned handle. h is left empty but keeps
// its parent and destroy function so Reset can be used on it again.
func (h *Handle[P, T]) Move() Handle[P, T] {
	moved := *h

	var null T
	h.value = null

	return moved
}

// Reset destroys the currently held handle, if any, and takes ownership of
// value instead.
func (h *Handle[P, T]) Reset(value T) {
	h.Destroy()
	h.value = value
}

// Destroy frees the native object. It does nothing for empty handles and for
// handles without a destroy function. Calling it more than once is safe.
func (h *Handle[P, T]) Destroy() {
	if !h.Valid() {
		return
	}

	if h.destroy != nil {
		h.destroy(h.parent, h.value)
	}

	var null T
	h.value = null
}
