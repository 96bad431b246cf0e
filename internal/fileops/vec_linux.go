package fileops

import "golang.org/x/sys/unix"

func Readv(h Handle, bufs [][]byte) (int, error) {
	n, err := ignoringEINTRIO(func() (int, error) { return unix.Readv(h, bufs) })
	return readResult(n, bufsLen(bufs), err)
}

func Writev(h Handle, bufs [][]byte) (int, error) {
	return writeResult(ignoringEINTRIO(func() (int, error) { return unix.Writev(h, bufs) }))
}

func Preadv(h Handle, bufs [][]byte, offset uint64) (int, error) {
	off, err := offsetArg(offset)
	if err != nil {
		return 0, err
	}
	n, err := ignoringEINTRIO(func() (int, error) { return unix.Preadv(h, bufs, off) })
	return readResult(n, bufsLen(bufs), err)
}

func Pwritev(h Handle, bufs [][]byte, offset uint64) (int, error) {
	off, err := offsetArg(offset)
	if err != nil {
		return 0, err
	}
	return writeResult(ignoringEINTRIO(func() (int, error) { return unix.Pwritev(h, bufs, off) }))
}
