package queues

import (
	"sort"

	"github.com/ironsmile/vulkan-cookbook-go/optional"
)

// FamilyIndices holds the indexes of Vulkan queue families needed by the programs.
type FamilyIndices struct {

	// Graphics is the index of the graphics queue family.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting to the drawing
	// surface.
	Present optional.Optional[uint32]

	// Compute is the index of a queue family which supports compute dispatches.
	// Samples which do not use compute shaders never look at it.
	Compute optional.Optional[uint32]
}

// IsComplete returns true if the graphics and present families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}

// Unique returns the distinct family indexes which have been set, in
// ascending order. One queue is created for each of them.
func (f *FamilyIndices) Unique() []uint32 {
	seen := make(map[uint32]struct{})
	for _, family := range []optional.Optional[uint32]{f.Graphics, f.Present, f.Compute} {
		if family.HasValue() {
			seen[family.Get()] = struct{}{}
		}
	}

	unique := make([]uint32, 0, len(seen))
	for index := range seen {
		unique = append(unique, index)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	return unique
}

// Shared returns true when graphics and present work go to the same family.
// Swapchain images may then use exclusive sharing mode.
func (f *FamilyIndices) Shared() bool {
	return f.Graphics.Get() == f.Present.Get()
}
