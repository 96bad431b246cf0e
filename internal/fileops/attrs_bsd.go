//go:build darwin || freebsd

package fileops

import "golang.org/x/sys/unix"

func fileAttrsToNative(attrs FileAttrs) uint32 {
	var native uint32
	for _, a := range nativeAttrs {
		if attrs&a.attr != 0 {
			native |= a.native
		}
	}
	return native
}

func nativeToFileAttrs(native uint32) FileAttrs {
	var attrs FileAttrs
	for _, a := range nativeAttrs {
		if native&a.native != 0 {
			attrs |= a.attr
		}
	}
	return attrs
}

// There is no way to set file flags atomically as part of open(2).
func applyAttrs(fd int, attrs FileAttrs) error {
	native := fileAttrsToNative(attrs)
	if native == 0 {
		return nil
	}
	return ignoringEINTR(func() error { return unix.Fchflags(fd, int(native)) })
}

func Attributes(h Handle) (FileAttrs, error) {
	var st unix.Stat_t
	if err := unix.Fstat(h, &st); err != nil {
		return AttrNone, err
	}
	return nativeToFileAttrs(st.Flags), nil
}

func SetAttributes(h Handle, attrs FileAttrs, opts AttrOptions) error {
	var st unix.Stat_t
	if err := unix.Fstat(h, &st); err != nil {
		return err
	}
	// keep the bits we don't model (UF_APPEND, UF_OPAQUE, ...) untouched
	modelled := fileAttrsToNative(^AttrNone)
	next := fileAttrsToNative(combineAttrs(nativeToFileAttrs(st.Flags), attrs, opts))
	native := st.Flags&^modelled | next
	return unix.Fchflags(h, int(native))
}
