package fileops

// openbsd has no way to bypass the buffer cache, Direct is dropped.
const nativeDirect = 0

func applyDirect(fd int) error { return nil }
