package fileops

import "golang.org/x/sys/unix"

// No O_DIRECT on darwin, F_NOCACHE on the open descriptor is the equivalent.
const nativeDirect = 0

func applyDirect(fd int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_NOCACHE, 1)
	return err
}
