package iomgr

import (
	"fmt"
	"strings"
)

func (o *Op) String() string {
	if o == nil {
		return "<nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Op | Opcode: %v, Fd: 0x%x, Off: 0x%08x, Len: 0x%08x, Bounced: %v",
		o.Opcode, o.Fd, o.Off, len(o.Buf), o.user != nil)
	if len(o.Buf) > 0 {
		fmt.Fprintf(&b, " | Buf: @%p", &o.Buf[0])
	}
	return b.String()
}
