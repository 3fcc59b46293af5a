package unsafer

import (
	"unsafe"
)

// SliceToBytes interprets an arbitrary input slice as a byte slice.
//
// Note that the returned slice points to the same underlying data in memory. It
// does not make a copy.
func SliceToBytes[T any](input []T) []byte {
	if len(input) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(input[0])) * len(input)
	return unsafe.Slice((*byte)(unsafe.Pointer(&input[0])), size)
}

// StructToBytes interprets the memory of the value pointed to by input as a
// byte slice. Used for copying uniform buffer objects into mapped memory.
func StructToBytes[T any](input *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(input)), unsafe.Sizeof(*input))
}

// BytesToUint32 repacks SPIR-V byte code into the 32 bit words Vulkan expects.
// Trailing bytes which do not form a whole word are dropped.
func BytesToUint32(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	if len(words) == 0 {
		return words
	}
	copy(SliceToBytes(words), data[:len(words)*4])
	return words
}
