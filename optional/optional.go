// Package optional implements a value which may or may not be set.
package optional

// Optional holds a value of type T together with a flag telling whether it has
// been set. The zero value is an unset Optional.
type Optional[T any] struct {
	value T
	set   bool
}

// Of returns an Optional which holds val.
func Of[T any](val T) Optional[T] {
	return Optional[T]{value: val, set: true}
}

// Set stores val and marks the optional as set.
func (o *Optional[T]) Set(val T) {
	o.value = val
	o.set = true
}

// HasValue returns true if a value has been set.
func (o Optional[T]) HasValue() bool {
	return o.set
}

// Get returns the stored value. It returns the zero value of T if nothing has
// been set, so callers should check HasValue first.
func (o Optional[T]) Get() T {
	return o.value
}

// GetOr returns the stored value or def when nothing has been set.
func (o Optional[T]) GetOr(def T) T {
	if !o.set {
		return def
	}
	return o.value
}
