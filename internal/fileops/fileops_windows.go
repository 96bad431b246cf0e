package fileops

import (
	"io"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Handle is a kernel object handle. The caller owns it, nothing here keeps it.
type Handle = windows.Handle

const InvalidHandle Handle = windows.InvalidHandle

// FileBasicInfo class for SetFileInformationByHandle, see FILE_INFO_BY_HANDLE_CLASS
const fileBasicInfoClass = 0

type fileBasicInfo struct {
	CreationTime   int64
	LastAccessTime int64
	LastWriteTime  int64
	ChangeTime     int64
	FileAttributes uint32
	_              uint32
}

// Transfers are capped so the byte count always fits a DWORD.
const maxRW = 1 << 30

func clampLen(buf []byte) []byte {
	if len(buf) > maxRW {
		return buf[:maxRW]
	}
	return buf
}

// ReadFile reports the end of a file or of a closed pipe as an error.
func readError(err error) error {
	switch err {
	case windows.ERROR_HANDLE_EOF, windows.ERROR_BROKEN_PIPE:
		return nil
	}
	return err
}

func Open(path string, flags OpenFlags, perms FilePerms, attrs FileAttrs) (Handle, error) {
	args, ok := parseOpenFlags(flags, perms, attrs)
	if !ok {
		return InvalidHandle, ErrInvalidArgument
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return InvalidHandle, err
	}
	h, err := windows.CreateFile(p, args.desiredAccess, args.shareMode, nil,
		args.creationDisposition, args.flagsAndAttrs, 0)
	if err != nil {
		return InvalidHandle, err
	}
	return h, nil
}

func Close(h Handle) error {
	return windows.CloseHandle(h)
}

func Duplicate(h Handle) (Handle, error) {
	proc := windows.CurrentProcess()
	dup := InvalidHandle
	err := windows.DuplicateHandle(proc, h, proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return InvalidHandle, err
	}
	return dup, nil
}

func stdHandle(which uint32) (Handle, error) {
	h, err := windows.GetStdHandle(which)
	if err != nil {
		return InvalidHandle, err
	}
	// a process without an attached console gets a null handle and no error
	if h == 0 {
		return InvalidHandle, windows.ERROR_INVALID_HANDLE
	}
	return h, nil
}

func Stdin() (Handle, error)  { return stdHandle(windows.STD_INPUT_HANDLE) }
func Stdout() (Handle, error) { return stdHandle(windows.STD_OUTPUT_HANDLE) }
func Stderr() (Handle, error) { return stdHandle(windows.STD_ERROR_HANDLE) }

func fileInfo(h Handle) (windows.ByHandleFileInformation, error) {
	var info windows.ByHandleFileInformation
	err := windows.GetFileInformationByHandle(h, &info)
	return info, err
}

func Size(h Handle) (uint64, error) {
	info, err := fileInfo(h)
	if err != nil {
		return 0, err
	}
	return uint64(info.FileSizeHigh)<<32 | uint64(info.FileSizeLow), nil
}

// SetSize moves the end of file through the file pointer, which is restored
// afterwards.
func SetSize(h Handle, size uint64) error {
	if size > math.MaxInt64 {
		return windows.ERROR_INVALID_PARAMETER
	}
	cur, err := windows.Seek(h, 0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := windows.Seek(h, int64(size), io.SeekStart); err != nil {
		return err
	}
	err = windows.SetEndOfFile(h)
	if _, serr := windows.Seek(h, cur, io.SeekStart); err == nil {
		err = serr
	}
	return err
}

func Seek(h Handle, origin SeekOrigin, offset int64) (uint64, error) {
	pos, err := windows.Seek(h, offset, int(origin))
	if err != nil {
		return 0, err
	}
	return uint64(pos), nil
}

func Sync(h Handle) error {
	return windows.FlushFileBuffers(h)
}

func Read(h Handle, buf []byte) (int, error) {
	buf = clampLen(buf)
	var done uint32
	err := readError(windows.ReadFile(h, buf, &done, nil))
	return readResult(int(done), len(buf), err)
}

func Write(h Handle, buf []byte) (int, error) {
	buf = clampLen(buf)
	var done uint32
	err := windows.WriteFile(h, buf, &done, nil)
	return writeResult(int(done), err)
}

func overlappedAt(offset uint64) *windows.Overlapped {
	return &windows.Overlapped{
		Offset:     uint32(offset),
		OffsetHigh: uint32(offset >> 32),
	}
}

// Positional calls on the same handle take the same stripe, so two of them
// can't interleave their save and restore.
var positionLocks [64]sync.Mutex

func positionLock(h Handle) *sync.Mutex {
	// handle values are multiples of 4
	return &positionLocks[(uintptr(h)>>2)%uintptr(len(positionLocks))]
}

// A synchronous handle moves its file pointer even for OVERLAPPED transfers,
// so positional calls put it back where they found it. Concurrent positional
// calls on one handle are serialized here. Read, Write and Seek don't take the
// lock, and neither does a Duplicate sharing the file pointer; mixing those
// with positional calls in flight leaves the position undefined.
func keepingPosition(h Handle, fn func() error) error {
	mu := positionLock(h)
	mu.Lock()
	defer mu.Unlock()

	cur, err := windows.Seek(h, 0, io.SeekCurrent)
	if err != nil {
		return err
	}
	err = fn()
	if _, serr := windows.Seek(h, cur, io.SeekStart); err == nil {
		err = serr
	}
	return err
}

func Pread(h Handle, buf []byte, offset uint64) (int, error) {
	buf = clampLen(buf)
	var done uint32
	err := keepingPosition(h, func() error {
		return readError(windows.ReadFile(h, buf, &done, overlappedAt(offset)))
	})
	return readResult(int(done), len(buf), err)
}

func Pwrite(h Handle, buf []byte, offset uint64) (int, error) {
	buf = clampLen(buf)
	var done uint32
	err := keepingPosition(h, func() error {
		return windows.WriteFile(h, buf, &done, overlappedAt(offset))
	})
	return writeResult(int(done), err)
}

func setFileAttributes(h Handle, native uint32) error {
	// zero timestamps leave the current ones alone
	info := fileBasicInfo{FileAttributes: native}
	if info.FileAttributes == 0 {
		info.FileAttributes = windows.FILE_ATTRIBUTE_NORMAL
	}
	return windows.SetFileInformationByHandle(h, fileBasicInfoClass,
		(*byte)(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)))
}

// Only owner write survives the trip: read-only files report 0o444, all others 0o666.
func Permissions(h Handle) (FilePerms, error) {
	info, err := fileInfo(h)
	if err != nil {
		return PermsNone, err
	}
	if info.FileAttributes&windows.FILE_ATTRIBUTE_READONLY != 0 {
		return OwnerRead | GroupRead | OthersRead, nil
	}
	return OwnerRead | OwnerWrite | GroupRead | GroupWrite | OthersRead | OthersWrite, nil
}

func SetPermissions(h Handle, perms FilePerms, opts PermOptions) error {
	info, err := fileInfo(h)
	if err != nil {
		return err
	}
	cur := OwnerRead | GroupRead | OthersRead
	if info.FileAttributes&windows.FILE_ATTRIBUTE_READONLY == 0 {
		cur |= OwnerWrite | GroupWrite | OthersWrite
	}
	native := info.FileAttributes
	if combinePerms(cur, perms, opts)&OwnerWrite == 0 {
		native |= windows.FILE_ATTRIBUTE_READONLY
	} else {
		native &^= windows.FILE_ATTRIBUTE_READONLY
	}
	if native == info.FileAttributes {
		return nil
	}
	return setFileAttributes(h, native)
}

func Attributes(h Handle) (FileAttrs, error) {
	info, err := fileInfo(h)
	if err != nil {
		return AttrNone, err
	}
	return nativeToFileAttrs(info.FileAttributes), nil
}

func SetAttributes(h Handle, attrs FileAttrs, opts AttrOptions) error {
	info, err := fileInfo(h)
	if err != nil {
		return err
	}
	modelled := fileAttrsToNative(^AttrNone)
	next := fileAttrsToNative(combineAttrs(nativeToFileAttrs(info.FileAttributes), attrs, opts))
	native := info.FileAttributes&^modelled | next
	if native == info.FileAttributes {
		return nil
	}
	return setFileAttributes(h, native)
}
