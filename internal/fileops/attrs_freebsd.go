package fileops

// chflags(2) bits from <sys/stat.h>.
var nativeAttrs = [...]struct {
	attr   FileAttrs
	native uint32
}{
	{AttrHidden, 0x00008000},          // UF_HIDDEN
	{AttrSystem, 0x00000080},          // UF_SYSTEM
	{AttrArchive, 0x00000800},         // UF_ARCHIVE
	{AttrNoDump, 0x00000001},          // UF_NODUMP
	{AttrUserImmutable, 0x00000002},   // UF_IMMUTABLE
	{AttrSystemImmutable, 0x00020000}, // SF_IMMUTABLE
	{AttrUserNoUnlink, 0x00000010},    // UF_NOUNLINK
	{AttrSystemNoUnlink, 0x00100000},  // SF_NOUNLINK
}
