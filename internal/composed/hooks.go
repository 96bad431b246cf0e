// Hooks a completion handler may implement to customise how a reactor treats
// it. A reactor never calls these directly, it goes through Allocate,
// Deallocate, IsContinuation and Invoke, which fall back to the defaults
// when a handler implements nothing.
package composed

import (
	c "mooio/internal"
	"unsafe"
)

// Allocator supplies memory the reactor needs for an in-flight operation
// (bounce buffers, scratch space). Memory is handed back through
// DeallocateHandlerMemory before the handler is invoked.
type Allocator interface {
	AllocateHandlerMemory(size int) []byte
	DeallocateHandlerMemory(mem []byte)
}

// ContinuationHinter tells the reactor the handler continues earlier
// asynchronous work, so it may run inline instead of being queued.
type ContinuationHinter interface {
	IsContinuation() bool
}

// Invoker runs fn in whatever context the handler requires, e.g. under a
// lock it shares with other handlers.
type Invoker interface {
	InvokeHandler(fn func())
}

func Allocate(h any, size int) []byte {
	if a, ok := h.(Allocator); ok {
		return a.AllocateHandlerMemory(size)
	}
	return defaultAllocate(size)
}

func Deallocate(h any, mem []byte) {
	if a, ok := h.(Allocator); ok {
		a.DeallocateHandlerMemory(mem)
	}
	// default memory is left to the GC
}

func IsContinuation(h any) bool {
	if ch, ok := h.(ContinuationHinter); ok {
		return ch.IsContinuation()
	}
	return false
}

func Invoke(h any, fn func()) {
	if inv, ok := h.(Invoker); ok {
		inv.InvokeHandler(fn)
		return
	}
	fn()
}

// defaultAllocate returns size bytes starting on an ALIGN boundary, good
// enough for direct I/O.
func defaultAllocate(size int) []byte {
	if size <= 0 {
		return nil
	}
	raw := make([]byte, size+c.ALIGN)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) & (c.ALIGN - 1)); rem != 0 {
		off = c.ALIGN - rem
	}
	return raw[off : off+size : off+size]
}
