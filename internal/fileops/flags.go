package fileops

import (
	"io"
	"strconv"
	"strings"
)

// OpenFlags describes how Open creates and accesses a file. Exactly one
// disposition flag and at least one access flag must be set. The share flags
// only mean something on windows.
type OpenFlags uint32

const (
	// Create a new file, fail if it already exists.
	CreateNew OpenFlags = 1 << iota
	// Create a new file, truncating an existing one.
	CreateAlways
	// Open an existing file, fail if it doesn't exist.
	OpenExisting
	// Open a file, creating it if it doesn't exist.
	OpenAlways
	// Open an existing file and truncate it.
	TruncateExisting

	AccessRead
	AccessWrite

	ShareRead
	ShareWrite
	ShareDelete

	// Bypass the page cache. Buffers, lengths and offsets must then be
	// aligned to the device's logical block size.
	Direct
)

const (
	AccessReadWrite = AccessRead | AccessWrite

	dispositionMask = CreateNew | CreateAlways | OpenExisting | OpenAlways | TruncateExisting
	accessMask      = AccessReadWrite
	shareMask       = ShareRead | ShareWrite | ShareDelete
)

func (f OpenFlags) disposition() OpenFlags { return f & dispositionMask }
func (f OpenFlags) access() OpenFlags      { return f & accessMask }
func (f OpenFlags) share() OpenFlags       { return f & shareMask }

// IsValid reports whether exactly one disposition flag and at least one
// access flag are set. Open rejects anything else before touching the OS.
func (f OpenFlags) IsValid() bool {
	d := f.disposition()
	if d == 0 || d&(d-1) != 0 {
		return false
	}
	return f.access() != 0
}

var openFlagNames = [...]string{
	"CreateNew",
	"CreateAlways",
	"OpenExisting",
	"OpenAlways",
	"TruncateExisting",
	"AccessRead",
	"AccessWrite",
	"ShareRead",
	"ShareWrite",
	"ShareDelete",
	"Direct",
}

func (f OpenFlags) String() string {
	if f == 0 {
		return "0"
	}
	var b strings.Builder
	for i, name := range openFlagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	if rest := f &^ (1<<len(openFlagNames) - 1); rest != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString("0x")
		b.WriteString(strconv.FormatUint(uint64(rest), 16))
	}
	return b.String()
}

// FilePerms are POSIX permission bits. Windows only honours owner write.
type FilePerms uint32

const (
	OthersExec  FilePerms = 0o001
	OthersWrite FilePerms = 0o002
	OthersRead  FilePerms = 0o004
	GroupExec   FilePerms = 0o010
	GroupWrite  FilePerms = 0o020
	GroupRead   FilePerms = 0o040
	OwnerExec   FilePerms = 0o100
	OwnerWrite  FilePerms = 0o200
	OwnerRead   FilePerms = 0o400
	Sticky      FilePerms = 0o1000
	SetGID      FilePerms = 0o2000
	SetUID      FilePerms = 0o4000

	PermsNone    FilePerms = 0
	PermsAll     FilePerms = 0o777
	PermsMask    FilePerms = 0o7777
	PermsDefault FilePerms = 0o644
)

// FileAttrs are extended file attributes. Whatever a platform can't express
// is dropped without an error.
type FileAttrs uint32

const (
	AttrHidden FileAttrs = 1 << iota
	AttrSystem
	AttrArchive
	AttrNoDump
	AttrUserImmutable
	AttrSystemImmutable
	AttrUserNoUnlink
	AttrSystemNoUnlink

	AttrNone FileAttrs = 0
)

// PermOptions and AttrOptions control how the setters combine the new
// bits with the current ones.
type PermOptions uint8

const (
	PermsReplace PermOptions = iota
	PermsAdd
	PermsRemove
)

type AttrOptions uint8

const (
	AttrsReplace AttrOptions = iota
	AttrsAdd
	AttrsRemove
)

// SeekOrigin matches io.SeekStart and friends, which in turn match the
// SEEK_* and FILE_* values of every platform we build for.
type SeekOrigin int

const (
	SeekBegin   SeekOrigin = io.SeekStart
	SeekCurrent SeekOrigin = io.SeekCurrent
	SeekEnd     SeekOrigin = io.SeekEnd
)

func combinePerms(cur, perms FilePerms, opts PermOptions) FilePerms {
	perms &= PermsMask
	switch opts {
	case PermsAdd:
		return cur | perms
	case PermsRemove:
		return cur &^ perms
	default:
		return perms
	}
}

func combineAttrs(cur, attrs FileAttrs, opts AttrOptions) FileAttrs {
	switch opts {
	case AttrsAdd:
		return cur | attrs
	case AttrsRemove:
		return cur &^ attrs
	default:
		return attrs
	}
}
