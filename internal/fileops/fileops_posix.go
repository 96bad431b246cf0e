//go:build linux || darwin || freebsd || netbsd || openbsd

package fileops

import (
	"math"

	"golang.org/x/sys/unix"
)

// Handle is a file descriptor. The caller owns it, nothing here keeps it.
type Handle = int

const InvalidHandle Handle = -1

// Retry fn for as long as the kernel interrupts it. Only for calls that are
// safe to repeat; close(2) is not one of them.
func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}

func ignoringEINTRIO(fn func() (int, error)) (int, error) {
	for {
		n, err := fn()
		if err != unix.EINTR {
			return n, err
		}
	}
}

func checkHandle(h Handle) error {
	_, err := unix.FcntlInt(uintptr(h), unix.F_GETFD, 0)
	return err
}

func offsetArg(off uint64) (int64, error) {
	if off > math.MaxInt64 {
		return 0, unix.EINVAL
	}
	return int64(off), nil
}

func Open(path string, flags OpenFlags, perms FilePerms, attrs FileAttrs) (Handle, error) {
	native, ok := nativeOpenFlags(flags)
	if !ok {
		return InvalidHandle, ErrInvalidArgument
	}

	var fd int
	err := ignoringEINTR(func() (err error) {
		fd, err = unix.Open(path, native, nativePerms(perms))
		return err
	})
	if err != nil {
		return InvalidHandle, err
	}

	if flags&Direct != 0 {
		if err := applyDirect(fd); err != nil {
			unix.Close(fd)
			return InvalidHandle, err
		}
	}
	if attrs != AttrNone {
		if err := applyAttrs(fd, attrs); err != nil {
			unix.Close(fd)
			return InvalidHandle, err
		}
	}
	return fd, nil
}

// Close releases h. The descriptor is gone once this returns, even on error:
// retrying could close a descriptor another goroutine has just been handed.
func Close(h Handle) error {
	return unix.Close(h)
}

func Duplicate(h Handle) (Handle, error) {
	fd, err := unix.FcntlInt(uintptr(h), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return InvalidHandle, err
	}
	return fd, nil
}

func stdHandle(fd int) (Handle, error) {
	if err := checkHandle(fd); err != nil {
		return InvalidHandle, err
	}
	return fd, nil
}

func Stdin() (Handle, error)  { return stdHandle(unix.Stdin) }
func Stdout() (Handle, error) { return stdHandle(unix.Stdout) }
func Stderr() (Handle, error) { return stdHandle(unix.Stderr) }

func Size(h Handle) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(h, &st); err != nil {
		return 0, err
	}
	return uint64(st.Size), nil
}

func SetSize(h Handle, size uint64) error {
	off, err := offsetArg(size)
	if err != nil {
		return err
	}
	return ignoringEINTR(func() error { return unix.Ftruncate(h, off) })
}

func Seek(h Handle, origin SeekOrigin, offset int64) (uint64, error) {
	pos, err := unix.Seek(h, offset, int(origin))
	if err != nil {
		return 0, err
	}
	return uint64(pos), nil
}

func Sync(h Handle) error {
	return ignoringEINTR(func() error { return unix.Fsync(h) })
}

func Read(h Handle, buf []byte) (int, error) {
	n, err := ignoringEINTRIO(func() (int, error) { return unix.Read(h, buf) })
	return readResult(n, len(buf), err)
}

func Write(h Handle, buf []byte) (int, error) {
	return writeResult(ignoringEINTRIO(func() (int, error) { return unix.Write(h, buf) }))
}

func Pread(h Handle, buf []byte, offset uint64) (int, error) {
	off, err := offsetArg(offset)
	if err != nil {
		return 0, err
	}
	n, err := ignoringEINTRIO(func() (int, error) { return unix.Pread(h, buf, off) })
	return readResult(n, len(buf), err)
}

func Pwrite(h Handle, buf []byte, offset uint64) (int, error) {
	off, err := offsetArg(offset)
	if err != nil {
		return 0, err
	}
	return writeResult(ignoringEINTRIO(func() (int, error) { return unix.Pwrite(h, buf, off) }))
}

func Permissions(h Handle) (FilePerms, error) {
	var st unix.Stat_t
	if err := unix.Fstat(h, &st); err != nil {
		return PermsNone, err
	}
	return FilePerms(st.Mode) & PermsMask, nil
}

func SetPermissions(h Handle, perms FilePerms, opts PermOptions) error {
	var cur FilePerms
	if opts != PermsReplace {
		var err error
		if cur, err = Permissions(h); err != nil {
			return err
		}
	}
	mode := nativePerms(combinePerms(cur, perms, opts))
	return ignoringEINTR(func() error { return unix.Fchmod(h, mode) })
}
