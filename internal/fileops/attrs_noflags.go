//go:build linux || netbsd || openbsd

package fileops

// No file flags here that map onto FileAttrs; requests are dropped.
func applyAttrs(fd int, attrs FileAttrs) error { return nil }

func Attributes(h Handle) (FileAttrs, error) {
	if err := checkHandle(h); err != nil {
		return AttrNone, err
	}
	return AttrNone, nil
}

func SetAttributes(h Handle, attrs FileAttrs, opts AttrOptions) error {
	return checkHandle(h)
}
