//go:build linux || darwin || freebsd || netbsd || openbsd

package fileops

import "golang.org/x/sys/unix"

// nativeOpenFlags maps OpenFlags onto open(2) flags. Share flags have no
// POSIX equivalent and are dropped.
func nativeOpenFlags(flags OpenFlags) (int, bool) {
	if !flags.IsValid() {
		return 0, false
	}

	native := unix.O_CLOEXEC
	if flags&Direct != 0 {
		native |= nativeDirect
	}
	switch flags.disposition() {
	case CreateNew:
		native |= unix.O_CREAT | unix.O_EXCL
	case CreateAlways:
		native |= unix.O_CREAT | unix.O_TRUNC
	case OpenExisting:
	case OpenAlways:
		native |= unix.O_CREAT
	case TruncateExisting:
		native |= unix.O_TRUNC
	}

	switch flags.access() {
	case AccessReadWrite:
		native |= unix.O_RDWR
	case AccessRead:
		native |= unix.O_RDONLY
	case AccessWrite:
		native |= unix.O_WRONLY
	}
	return native, true
}

func nativePerms(perms FilePerms) uint32 {
	return uint32(perms & PermsMask)
}
