package fileops

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func Test_Parse_Open_Flags(t *testing.T) {
	args, ok := parseOpenFlags(CreateNew|AccessReadWrite|ShareRead, PermsDefault, AttrNone)
	require.True(t, ok)
	assert.Equal(t, uint32(windows.CREATE_NEW), args.creationDisposition)
	assert.Equal(t, uint32(windows.GENERIC_READ|windows.GENERIC_WRITE), args.desiredAccess)
	assert.Equal(t, uint32(windows.FILE_SHARE_READ), args.shareMode)
	assert.Equal(t, uint32(windows.FILE_ATTRIBUTE_NORMAL), args.flagsAndAttrs)

	args, ok = parseOpenFlags(TruncateExisting|AccessWrite, PermsNone, AttrHidden|AttrArchive)
	require.True(t, ok)
	assert.Equal(t, uint32(windows.TRUNCATE_EXISTING), args.creationDisposition)
	assert.Equal(t, uint32(0), args.shareMode, "exclusive without share flags")
	assert.Equal(t,
		uint32(windows.FILE_ATTRIBUTE_READONLY|windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_ARCHIVE),
		args.flagsAndAttrs)

	args, ok = parseOpenFlags(OpenExisting|AccessRead|Direct, PermsDefault, AttrNone)
	require.True(t, ok)
	assert.Equal(t, uint32(windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_NO_BUFFERING), args.flagsAndAttrs)

	_, ok = parseOpenFlags(OpenAlways|OpenExisting|AccessRead, PermsDefault, AttrNone)
	assert.False(t, ok)
}

func Test_Native_Attrs_Roundtrip(t *testing.T) {
	attrs := AttrHidden | AttrSystem | AttrArchive
	assert.Equal(t, attrs, nativeToFileAttrs(fileAttrsToNative(attrs)))
	// no windows equivalent
	assert.Equal(t, uint32(0), fileAttrsToNative(AttrNoDump|AttrUserImmutable))
}

func Test_Permissions_Owner_Write_Only(t *testing.T) {
	h := withFile(t, nil)

	require.NoError(t, SetPermissions(h, OwnerWrite, PermsRemove))
	perms, err := Permissions(h)
	assert.NoError(t, err)
	assert.Equal(t, FilePerms(0o444), perms)

	require.NoError(t, SetPermissions(h, PermsDefault, PermsReplace))
	perms, err = Permissions(h)
	assert.NoError(t, err)
	assert.Equal(t, FilePerms(0o666), perms)
}

func Test_Attributes(t *testing.T) {
	h := withFile(t, nil)

	require.NoError(t, SetAttributes(h, AttrHidden, AttrsAdd))
	attrs, err := Attributes(h)
	assert.NoError(t, err)
	assert.NotZero(t, attrs&AttrHidden)

	require.NoError(t, SetAttributes(h, AttrHidden, AttrsRemove))
	attrs, err = Attributes(h)
	assert.NoError(t, err)
	assert.Zero(t, attrs&AttrHidden)
}

func Test_Concurrent_Positional_Keeps_Position(t *testing.T) {
	const WORKERS = 8
	const OPS = 200
	h := withFile(t, make([]byte, WORKERS*OPS))

	pos, err := Seek(h, SeekBegin, 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := range WORKERS {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := []byte{byte(w)}
			for i := range OPS {
				off := uint64(w*OPS + i)
				_, err := Pwrite(h, buf, off)
				assert.NoError(t, err)
				_, err = Pread(h, make([]byte, 1), off)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	cur, err := Seek(h, SeekCurrent, 0)
	assert.NoError(t, err)
	assert.Equal(t, pos, cur)
}
