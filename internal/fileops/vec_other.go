//go:build darwin || freebsd || netbsd || openbsd || windows

package fileops

func Readv(h Handle, bufs [][]byte) (int, error) {
	return readvSeq(bufs, func(b []byte, _ uint64) (int, error) { return Read(h, b) })
}

func Writev(h Handle, bufs [][]byte) (int, error) {
	return writevSeq(bufs, func(b []byte, _ uint64) (int, error) { return Write(h, b) })
}

func Preadv(h Handle, bufs [][]byte, offset uint64) (int, error) {
	return readvSeq(bufs, func(b []byte, done uint64) (int, error) { return Pread(h, b, offset+done) })
}

func Pwritev(h Handle, bufs [][]byte, offset uint64) (int, error) {
	return writevSeq(bufs, func(b []byte, done uint64) (int, error) { return Pwrite(h, b, offset+done) })
}
