package vkhandle

// Stack collects cleanup functions and runs them in reverse order of
// registration. Samples push every object they create on a stack so teardown
// always happens child first.
type Stack struct {
	fns []func()
}

// Push registers fn to be called on Release.
func (s *Stack) Push(fn func()) {
	s.fns = append(s.fns, fn)
}

// Len returns the number of pending cleanup functions.
func (s *Stack) Len() int {
	return len(s.fns)
}

// Release calls all registered functions, last pushed first, and empties the
// stack.
func (s *Stack) Release() {
	for i := len(s.fns) - 1; i >= 0; i-- {
		s.fns[i]()
	}
	s.fns = nil
}

// Own moves h into a heap allocated handle, registers its destruction on s
// and returns the raw value.
func Own[P, T comparable](s *Stack, h Handle[P, T]) T {
	owned := h.Move()
	s.Push(owned.Destroy)
	return owned.Get()
}
