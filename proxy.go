package allocguard

import (
	"sync/atomic"

	"github.com/wippyai/alloc-guard/errors"
)

// CountingAllocator forwards every request unchanged to an underlying
// allocator and bumps the matching global counter. A failed allocation or
// reallocation performed no operation and is not counted; Free is counted
// unconditionally before forwarding. The proxy itself never fails: upstream
// errors propagate unchanged and are never mistaken for policy violations.
type CountingAllocator struct {
	upstream Allocator
}

// NewCounting wraps upstream with operation counting
func NewCounting(upstream Allocator) *CountingAllocator {
	return &CountingAllocator{upstream: upstream}
}

func (c *CountingAllocator) Allocate(size int) ([]byte, error) {
	buf, err := c.upstream.Allocate(size)
	if err != nil {
		return nil, err
	}
	RecordAlloc()
	return buf, nil
}

func (c *CountingAllocator) Reallocate(size int, buf []byte) ([]byte, error) {
	// Counted once as a realloc even when the upstream allocates, copies,
	// and frees internally.
	newBuf, err := c.upstream.Reallocate(size, buf)
	if err != nil {
		return nil, err
	}
	RecordRealloc()
	return newBuf, nil
}

func (c *CountingAllocator) Free(buf []byte) {
	RecordDealloc()
	c.upstream.Free(buf)
}

var (
	installed        atomic.Bool
	defaultAllocator atomic.Pointer[CountingAllocator]
)

// Install makes a counting proxy over upstream the module-wide default
// allocator. It is a one-time configuration decision: it must happen before
// any tracked activity and a second call panics.
func Install(upstream Allocator) {
	if !installed.CompareAndSwap(false, true) {
		panic(errors.AlreadyInstalled())
	}
	defaultAllocator.Store(NewCounting(upstream))
}

// Installed reports whether a default allocator has been installed
func Installed() bool {
	return defaultAllocator.Load() != nil
}

// Default returns the installed counting allocator. If Install was never
// called it installs a counting GoAllocator on first use.
func Default() Allocator {
	for {
		if c := defaultAllocator.Load(); c != nil {
			return c
		}
		if installed.CompareAndSwap(false, true) {
			defaultAllocator.Store(NewCounting(NewGoAllocator()))
		}
	}
}
