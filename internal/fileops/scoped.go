package fileops

import (
	"fmt"
	"runtime"
)

// ScopedHandle owns a Handle and closes it exactly once. The bare functions
// of this package stay ownership-agnostic; this is the boundary type for
// callers that want guaranteed release.
type ScopedHandle struct {
	h       Handle
	cleanup runtime.Cleanup
}

func OpenScoped(path string, flags OpenFlags, perms FilePerms, attrs FileAttrs) (*ScopedHandle, error) {
	s := &ScopedHandle{h: InvalidHandle}
	if err := s.Open(path, flags, perms, attrs); err != nil {
		return nil, err
	}
	return s, nil
}

// MustOpenScoped is OpenScoped for callers that treat failure as fatal.
func MustOpenScoped(path string, flags OpenFlags, perms FilePerms, attrs FileAttrs) *ScopedHandle {
	s, err := OpenScoped(path, flags, perms, attrs)
	if err != nil {
		panic(fmt.Errorf("open %s: %w", path, err))
	}
	return s
}

// Adopt takes ownership of an existing handle.
func Adopt(h Handle) *ScopedHandle {
	s := &ScopedHandle{h: InvalidHandle}
	s.set(h)
	return s
}

func (s *ScopedHandle) set(h Handle) {
	s.h = h
	if h != InvalidHandle {
		// a leaked ScopedHandle still releases its descriptor
		s.cleanup = runtime.AddCleanup(s, func(h Handle) { Close(h) }, h)
	}
}

// Open opens path into s. A handle s already holds is closed first, and if
// that close fails s is left empty and the open isn't attempted.
func (s *ScopedHandle) Open(path string, flags OpenFlags, perms FilePerms, attrs FileAttrs) error {
	if s.IsOpen() {
		if err := s.Close(); err != nil {
			return err
		}
	}
	h, err := Open(path, flags, perms, attrs)
	if err != nil {
		return err
	}
	s.set(h)
	return nil
}

func (s *ScopedHandle) Handle() Handle { return s.h }

func (s *ScopedHandle) IsOpen() bool { return s.h != InvalidHandle }

// Close is idempotent. The handle is given up even when the close fails.
func (s *ScopedHandle) Close() error {
	h := s.Release()
	if h == InvalidHandle {
		return nil
	}
	return Close(h)
}

// Release hands the handle back to the caller without closing it.
func (s *ScopedHandle) Release() Handle {
	h := s.h
	if h != InvalidHandle {
		s.cleanup.Stop()
	}
	s.h = InvalidHandle
	return h
}

func (s *ScopedHandle) Duplicate() (*ScopedHandle, error) {
	h, err := Duplicate(s.h)
	if err != nil {
		return nil, err
	}
	return Adopt(h), nil
}
