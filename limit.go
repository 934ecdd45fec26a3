package allocguard

import (
	"sync/atomic"

	"github.com/wippyai/alloc-guard/errors"
)

// LimitAllocator caps the number of live bytes an upstream allocator will
// hand out. Requests past the budget fail with an exhausted error without
// touching the upstream, which makes out-of-memory conditions reproducible
// in tests.
type LimitAllocator struct {
	upstream  Allocator
	remaining atomic.Int64
}

// NewLimitAllocator wraps upstream with a byte budget
func NewLimitAllocator(budget int, upstream Allocator) *LimitAllocator {
	l := &LimitAllocator{upstream: upstream}
	l.remaining.Store(int64(budget))
	return l
}

// Remaining returns the unreserved portion of the budget in bytes
func (l *LimitAllocator) Remaining() int {
	return int(l.remaining.Load())
}

func (l *LimitAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.InvalidSize(size)
	}
	if err := l.reserve(int64(size)); err != nil {
		return nil, err
	}
	buf, err := l.upstream.Allocate(size)
	if err != nil {
		l.remaining.Add(int64(size))
		return nil, err
	}
	return buf, nil
}

func (l *LimitAllocator) Reallocate(size int, buf []byte) ([]byte, error) {
	if size < 0 {
		return nil, errors.InvalidSize(size)
	}
	grow := int64(size - len(buf))
	if grow > 0 {
		if err := l.reserve(grow); err != nil {
			return nil, err
		}
	}
	newBuf, err := l.upstream.Reallocate(size, buf)
	if err != nil {
		if grow > 0 {
			l.remaining.Add(grow)
		}
		return nil, err
	}
	if grow < 0 {
		l.remaining.Add(-grow)
	}
	return newBuf, nil
}

func (l *LimitAllocator) Free(buf []byte) {
	l.upstream.Free(buf)
	l.remaining.Add(int64(len(buf)))
}

func (l *LimitAllocator) reserve(n int64) error {
	for {
		rem := l.remaining.Load()
		if n > rem {
			return errors.Exhausted(int(n), int(rem))
		}
		if l.remaining.CompareAndSwap(rem, rem-n) {
			return nil
		}
	}
}
