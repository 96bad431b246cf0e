package fileops

import "golang.org/x/sys/windows"

type createFileArgs struct {
	creationDisposition uint32
	desiredAccess       uint32
	shareMode           uint32
	flagsAndAttrs       uint32
}

// parseOpenFlags maps the portable flags onto CreateFileW arguments. With no
// share flag the file is opened exclusively.
func parseOpenFlags(flags OpenFlags, perms FilePerms, attrs FileAttrs) (createFileArgs, bool) {
	var args createFileArgs
	if !flags.IsValid() {
		return args, false
	}

	switch flags.disposition() {
	case CreateNew:
		args.creationDisposition = windows.CREATE_NEW
	case CreateAlways:
		args.creationDisposition = windows.CREATE_ALWAYS
	case OpenExisting:
		args.creationDisposition = windows.OPEN_EXISTING
	case OpenAlways:
		args.creationDisposition = windows.OPEN_ALWAYS
	case TruncateExisting:
		args.creationDisposition = windows.TRUNCATE_EXISTING
	}

	if flags&AccessRead != 0 {
		args.desiredAccess |= windows.GENERIC_READ
	}
	if flags&AccessWrite != 0 {
		args.desiredAccess |= windows.GENERIC_WRITE
	}

	if flags&ShareRead != 0 {
		args.shareMode |= windows.FILE_SHARE_READ
	}
	if flags&ShareWrite != 0 {
		args.shareMode |= windows.FILE_SHARE_WRITE
	}
	if flags&ShareDelete != 0 {
		args.shareMode |= windows.FILE_SHARE_DELETE
	}

	args.flagsAndAttrs = fileAttrsToNative(attrs)
	// only applied when the file gets created, like the mode of open(2)
	if perms&OwnerWrite == 0 {
		args.flagsAndAttrs |= windows.FILE_ATTRIBUTE_READONLY
	}
	if args.flagsAndAttrs == 0 {
		args.flagsAndAttrs = windows.FILE_ATTRIBUTE_NORMAL
	}
	if flags&Direct != 0 {
		args.flagsAndAttrs |= windows.FILE_FLAG_NO_BUFFERING
	}
	return args, true
}

func fileAttrsToNative(attrs FileAttrs) uint32 {
	var native uint32
	if attrs&AttrHidden != 0 {
		native |= windows.FILE_ATTRIBUTE_HIDDEN
	}
	if attrs&AttrSystem != 0 {
		native |= windows.FILE_ATTRIBUTE_SYSTEM
	}
	if attrs&AttrArchive != 0 {
		native |= windows.FILE_ATTRIBUTE_ARCHIVE
	}
	return native
}

func nativeToFileAttrs(native uint32) FileAttrs {
	var attrs FileAttrs
	if native&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		attrs |= AttrHidden
	}
	if native&windows.FILE_ATTRIBUTE_SYSTEM != 0 {
		attrs |= AttrSystem
	}
	if native&windows.FILE_ATTRIBUTE_ARCHIVE != 0 {
		attrs |= AttrArchive
	}
	return attrs
}
