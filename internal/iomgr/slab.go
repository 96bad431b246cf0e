package iomgr

import (
	"log/slog"
	"sync/atomic"
	"unsafe"

	c "mooio/internal"
	"mooio/internal/composed"
)

// SlabAllocator carves one page aligned slab into fixed-size blocks and hands
// them out through the allocation hook. Embed it in a completion handler and
// every buffer the reactor or a composed operation allocates for that handler
// comes from the slab. Requests that don't fit, or arrive while every block
// is out, fall back to the default allocation.
type SlabAllocator struct {
	log			*slog.Logger
	slab		[]byte
	blockSize	int
	free		chan int
	misses		atomic.Uint64
}

var _ composed.Allocator = (*SlabAllocator)(nil)

func CreateSlabAllocator(blockSize int, blocks int) (*SlabAllocator, error) {
	blockSize = c.AlignUp(blockSize)
	slab, err := AllocSlab(blockSize * blocks)
	if err != nil { return nil, err }

	a := &SlabAllocator{
		log:		slog.With("src", "SlabAllocator"),
		slab:		slab,
		blockSize:	blockSize,
		free:		make(chan int, blocks),
	}
	for i := range blocks {
		a.free <- i
	}
	a.log.Debug("CreateSlabAllocator", "bytes", len(slab), "blocks", blocks, "blockSize", blockSize)
	return a, nil
}

func (a *SlabAllocator) AllocateHandlerMemory(size int) []byte {
	if size <= a.blockSize {
		select {
		case i := <- a.free:
			off := i * a.blockSize
			return a.slab[off : off+size : off+a.blockSize]
		default:
		}
	}
	a.misses.Add(1)
	return composed.Allocate(nil, size)
}

func (a *SlabAllocator) DeallocateHandlerMemory(mem []byte) {
	if cap(mem) == 0 || len(a.slab) == 0 { return }
	base := uintptr(unsafe.Pointer(&a.slab[0]))
	p := uintptr(unsafe.Pointer(&mem[:1][0]))
	if p < base || p >= base+uintptr(len(a.slab)) {
		// one of the fallback allocations
		return
	}
	a.free <- int(p-base) / a.blockSize
}

// Allocations that didn't come from the slab
func (a *SlabAllocator) Misses() uint64 {
	return a.misses.Load()
}

func (a *SlabAllocator) Available() int {
	return len(a.free)
}

// Close unmaps the slab. Every block must have been handed back.
func (a *SlabAllocator) Close() error {
	if len(a.free) != cap(a.free) {
		a.log.Warn("closing with blocks still out", "out", cap(a.free)-len(a.free))
	}
	err := DeallocSlab(a.slab)
	a.slab = nil
	return err
}
