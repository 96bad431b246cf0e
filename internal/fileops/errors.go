package fileops

import (
	"errors"
	"io"
	"io/fs"
	"syscall"
)

var (
	// ErrEOF is returned when a read of a non-empty buffer transfers nothing.
	ErrEOF = io.EOF

	// ErrInvalidArgument is returned by Open for malformed OpenFlags. No
	// system call has been issued when it is returned.
	ErrInvalidArgument error = syscall.EINVAL
)

// IsEOF reports whether err is the end-of-file sentinel. Native errors never are.
func IsEOF(err error) bool {
	return errors.Is(err, ErrEOF)
}

// Code returns the system error code carried by err. Errors from this package
// already are a syscall.Errno, errors from the os package are unwrapped.
// Errors without a system code map to EIO, and nil to 0.
func Code(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	switch {
	case errors.Is(err, fs.ErrInvalid):
		return syscall.EINVAL
	case errors.Is(err, fs.ErrPermission):
		return syscall.EPERM
	case errors.Is(err, fs.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, fs.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, fs.ErrClosed):
		return syscall.EBADF
	}
	return syscall.EIO
}

func bufsLen(bufs [][]byte) int {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	return n
}

// readResult applies the end-of-file policy shared by every read variant: a
// successful transfer of zero bytes into a non-empty request means the
// stream is exhausted.
func readResult(n int, requested int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if n == 0 && requested != 0 {
		return 0, ErrEOF
	}
	return n, nil
}

func writeResult(n int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return n, nil
}
