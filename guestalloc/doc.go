// Package guestalloc counts heap traffic inside a WebAssembly guest
// instance.
//
// A GuestAllocator drives the guest's exported allocation functions (the
// Component Model's cabi_realloc, or classic malloc/realloc/free exports)
// and records every successful operation in the process-wide counters, so
// guards in the guard package police guest heap activity exactly like host
// activity.
//
// Guest allocation failure is signalled the guest's way: a null pointer is
// returned unchanged and never counted, and a trap surfaces as a structured
// error. Deallocation is counted unconditionally before the guest runs,
// matching the contract that a free cannot fail; a trap during free is
// logged rather than raised.
package guestalloc
