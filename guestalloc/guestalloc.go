package guestalloc

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/errors"
)

// callFn invokes a guest function through its argument/result stack. It is
// the narrow seam between the accounting logic and wazero's api.Function.
type callFn func(ctx context.Context, stack []uint64) error

// GuestAllocator drives a guest module's exported allocation functions and
// records each successful operation in the global counters.
//
// The shared call stack is guarded by a mutex, so a GuestAllocator is safe
// for concurrent use, though the guest instance behind it usually is not.
type GuestAllocator struct {
	allocFn   callFn
	reallocFn callFn
	freeFn    callFn
	stackBuf  []uint64
	stackMu   sync.Mutex
	cabi      bool
}

// New discovers the allocation exports of mod. It prefers the Component
// Model's cabi_realloc and falls back to malloc/realloc/free exports.
func New(mod api.Module) (*GuestAllocator, error) {
	if f := mod.ExportedFunction("cabi_realloc"); f != nil {
		fn := f.CallWithStack
		return &GuestAllocator{
			allocFn:   fn,
			reallocFn: fn,
			freeFn:    fn,
			stackBuf:  make([]uint64, 4),
			cabi:      true,
		}, nil
	}

	malloc := mod.ExportedFunction("malloc")
	free := mod.ExportedFunction("free")
	if malloc == nil || free == nil {
		return nil, errors.MissingExport("cabi_realloc")
	}
	g := &GuestAllocator{
		allocFn:  malloc.CallWithStack,
		freeFn:   free.CallWithStack,
		stackBuf: make([]uint64, 4),
	}
	if realloc := mod.ExportedFunction("realloc"); realloc != nil {
		g.reallocFn = realloc.CallWithStack
	}
	return g, nil
}

// Alloc requests size bytes from the guest. A successful nonzero pointer is
// counted as one allocation; a null pointer is the guest's failure signal
// and is returned unchanged without counting. A trap surfaces as an error.
func (g *GuestAllocator) Alloc(ctx context.Context, size, align uint32) (uint32, error) {
	g.stackMu.Lock()
	defer g.stackMu.Unlock()

	var ptr uint32
	if g.cabi {
		// cabi_realloc(old_ptr=0, old_size=0, align, new_size)
		g.stackBuf[0] = 0
		g.stackBuf[1] = 0
		g.stackBuf[2] = uint64(align)
		g.stackBuf[3] = uint64(size)
		if err := g.allocFn(ctx, g.stackBuf[:4]); err != nil {
			return 0, errors.GuestTrap("cabi_realloc", err)
		}
		ptr = uint32(g.stackBuf[0])
	} else {
		g.stackBuf[0] = uint64(size)
		if err := g.allocFn(ctx, g.stackBuf[:1]); err != nil {
			return 0, errors.GuestTrap("malloc", err)
		}
		ptr = uint32(g.stackBuf[0])
	}

	if ptr != 0 {
		allocguard.RecordAlloc()
	}
	return ptr, nil
}

// Realloc resizes an existing guest allocation. A successful call is
// counted once, as a reallocation, never as an alloc/dealloc pair.
func (g *GuestAllocator) Realloc(ctx context.Context, ptr, oldSize, align, newSize uint32) (uint32, error) {
	if g.reallocFn == nil {
		return 0, errors.MissingExport("realloc")
	}

	g.stackMu.Lock()
	defer g.stackMu.Unlock()

	var newPtr uint32
	if g.cabi {
		g.stackBuf[0] = uint64(ptr)
		g.stackBuf[1] = uint64(oldSize)
		g.stackBuf[2] = uint64(align)
		g.stackBuf[3] = uint64(newSize)
		if err := g.reallocFn(ctx, g.stackBuf[:4]); err != nil {
			return 0, errors.GuestTrap("cabi_realloc", err)
		}
		newPtr = uint32(g.stackBuf[0])
	} else {
		g.stackBuf[0] = uint64(ptr)
		g.stackBuf[1] = uint64(newSize)
		if err := g.reallocFn(ctx, g.stackBuf[:2]); err != nil {
			return 0, errors.GuestTrap("realloc", err)
		}
		newPtr = uint32(g.stackBuf[0])
	}

	if newPtr != 0 {
		allocguard.RecordRealloc()
	}
	return newPtr, nil
}

// Free releases a guest allocation. The deallocation is counted
// unconditionally; a guest trap is logged instead of raised, matching the
// contract that a free cannot fail.
func (g *GuestAllocator) Free(ctx context.Context, ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	allocguard.RecordDealloc()

	g.stackMu.Lock()
	defer g.stackMu.Unlock()

	var err error
	if g.cabi {
		// cabi_realloc(ptr, size, align, new_size=0)
		g.stackBuf[0] = uint64(ptr)
		g.stackBuf[1] = uint64(size)
		g.stackBuf[2] = uint64(align)
		g.stackBuf[3] = 0
		err = g.freeFn(ctx, g.stackBuf[:4])
	} else {
		g.stackBuf[0] = uint64(ptr)
		err = g.freeFn(ctx, g.stackBuf[:1])
	}
	if err != nil {
		Logger().Warn("Free: guest deallocation trapped",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}
