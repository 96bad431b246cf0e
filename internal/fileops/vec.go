package fileops

// readvSeq and writevSeq emulate gather/scatter I/O one segment at a time for
// platforms without a native call. The result has the shape of the native
// one: a single count and a single error. A short segment ends the transfer,
// and a failure after some bytes already moved is reported as a short count.
func readvSeq(bufs [][]byte, read func(buf []byte, done uint64) (int, error)) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := read(b, uint64(total))
		total += n
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if n < len(b) {
			break
		}
	}
	return readResult(total, bufsLen(bufs), nil)
}

func writevSeq(bufs [][]byte, write func(buf []byte, done uint64) (int, error)) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := write(b, uint64(total))
		total += n
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if n < len(b) {
			break
		}
	}
	return total, nil
}
