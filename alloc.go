package allocguard

import (
	"unsafe"

	"github.com/wippyai/alloc-guard/errors"
)

const alignment = 64

// Allocator is the allocation contract tracked by this library. A failed
// request returns a non-nil error and performs no allocation; Free always
// succeeds, matching the deallocation contract of the Go runtime.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Reallocate(size int, buf []byte) ([]byte, error)
	Free(buf []byte)
}

// GoAllocator delegates to the Go runtime. Buffers are 64-byte aligned and
// Free is a no-op, leaving reclamation to the garbage collector.
//
// GoAllocator is safe to use from multiple goroutines.
type GoAllocator struct{}

// NewGoAllocator creates a Go-runtime-backed allocator
func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

func (a *GoAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.InvalidSize(size)
	}
	buf := make([]byte, size+alignment) // padding for 64-byte alignment
	addr := int(addressOf(buf))
	next := roundUpToMultipleOf64(addr)
	if addr != next {
		shift := next - addr
		return buf[shift : size+shift : size+shift], nil
	}
	return buf[:size:size], nil
}

func (a *GoAllocator) Reallocate(size int, buf []byte) ([]byte, error) {
	if size < 0 {
		return nil, errors.InvalidSize(size)
	}
	if size == len(buf) {
		return buf, nil
	}
	newBuf, err := a.Allocate(size)
	if err != nil {
		return nil, err
	}
	copy(newBuf, buf)
	return newBuf, nil
}

func (a *GoAllocator) Free([]byte) {}

func addressOf(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
}

func roundUpToMultipleOf64(v int) int {
	return (v + alignment - 1) &^ (alignment - 1)
}
