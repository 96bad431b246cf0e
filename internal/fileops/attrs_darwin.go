package fileops

// chflags(2) bits from <sys/stat.h>. Darwin has no UF_SYSTEM, UF_ARCHIVE or
// UF_NOUNLINK, those attributes are dropped.
var nativeAttrs = [...]struct {
	attr   FileAttrs
	native uint32
}{
	{AttrHidden, 0x00008000},          // UF_HIDDEN
	{AttrNoDump, 0x00000001},          // UF_NODUMP
	{AttrUserImmutable, 0x00000002},   // UF_IMMUTABLE
	{AttrSystemImmutable, 0x00020000}, // SF_IMMUTABLE
	{AttrSystemNoUnlink, 0x00100000},  // SF_NOUNLINK
}
