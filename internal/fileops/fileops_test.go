package fileops

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempfile(t *testing.T) string {
	dir := t.TempDir()
	return filepath.Join(dir, fmt.Sprintf("moootest%016x.moo", rand.Uint64()))
}

func newFaker() *gofakeit.Faker {
	seed := [32]byte{0}
	return gofakeit.NewFaker(rand.NewChaCha8(seed), true)
}

// opens a fresh read/write file holding data
func withFile(t *testing.T, data []byte) Handle {
	h, err := Open(tempfile(t), CreateNew|AccessReadWrite, PermsDefault, AttrNone)
	require.NoError(t, err)
	t.Cleanup(func() { Close(h) })

	if len(data) > 0 {
		n, err := Pwrite(h, data, 0)
		require.NoError(t, err)
		require.Equal(t, len(data), n)
	}
	return h
}

func Test_Open_Invalid_Flags_Creates_Nothing(t *testing.T) {
	fp := tempfile(t)
	for _, flags := range []OpenFlags{0, AccessReadWrite, CreateNew, CreateNew | CreateAlways | AccessWrite} {
		h, err := Open(fp, flags, PermsDefault, AttrNone)
		assert.Equal(t, InvalidHandle, h)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	_, err := os.Stat(fp)
	assert.True(t, os.IsNotExist(err))
}

func Test_Open_Dispositions(t *testing.T) {
	fp := tempfile(t)

	_, err := Open(fp, OpenExisting|AccessRead, PermsNone, AttrNone)
	assert.Error(t, err)
	assert.False(t, IsEOF(err))
	_, err = Open(fp, TruncateExisting|AccessWrite, PermsNone, AttrNone)
	assert.Error(t, err)

	h, err := Open(fp, CreateNew|AccessWrite, PermsDefault, AttrNone)
	require.NoError(t, err)
	_, err = Write(h, []byte("moo"))
	assert.NoError(t, err)
	assert.NoError(t, Close(h))

	_, err = Open(fp, CreateNew|AccessWrite, PermsDefault, AttrNone)
	assert.Error(t, err, "CreateNew on an existing file")

	h, err = Open(fp, OpenAlways|AccessRead, PermsDefault, AttrNone)
	require.NoError(t, err)
	size, err := Size(h)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), size)
	assert.NoError(t, Close(h))

	h, err = Open(fp, TruncateExisting|AccessReadWrite, PermsNone, AttrNone)
	require.NoError(t, err)
	size, err = Size(h)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), size)
	assert.NoError(t, Close(h))

	h, err = Open(fp, CreateAlways|AccessWrite, PermsDefault, AttrNone)
	require.NoError(t, err)
	assert.NoError(t, Close(h))
}

func Test_Pread_Pwrite_Roundtrip(t *testing.T) {
	faker := newFaker()
	h := withFile(t, nil)

	var offsets []uint64
	var chunks [][]byte
	var off uint64
	for range 32 {
		chunk := []byte(faker.LetterN(uint(faker.IntRange(1, 300))))
		n, err := Pwrite(h, chunk, off)
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
		offsets = append(offsets, off)
		chunks = append(chunks, chunk)
		off += uint64(len(chunk))
	}

	// read back out of order
	for _, i := range rand.Perm(len(chunks)) {
		buf := make([]byte, len(chunks[i]))
		n, err := Pread(h, buf, offsets[i])
		assert.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, chunks[i], buf)
	}

	size, err := Size(h)
	assert.NoError(t, err)
	assert.Equal(t, off, size)
}

func Test_Positional_Leaves_Position_Alone(t *testing.T) {
	h := withFile(t, []byte("0123456789"))

	pos, err := Seek(h, SeekBegin, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), pos)

	buf := make([]byte, 3)
	_, err = Pread(h, buf, 6)
	assert.NoError(t, err)
	assert.Equal(t, []byte("678"), buf)

	_, err = Pwrite(h, []byte("xy"), 8)
	assert.NoError(t, err)

	pos, err = Seek(h, SeekCurrent, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), pos)

	n, err := Read(h, buf)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte("234"), buf)
}

func Test_Read_Write_Sequential(t *testing.T) {
	h := withFile(t, nil)

	n, err := Write(h, []byte("moo"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = Write(h, []byte("cow"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	pos, err := Seek(h, SeekBegin, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), pos)

	buf := make([]byte, 16)
	n, err = Read(h, buf)
	assert.NoError(t, err)
	assert.Equal(t, "moocow", string(buf[:n]))

	n, err = Read(h, buf)
	assert.Equal(t, 0, n)
	assert.True(t, IsEOF(err))
}

func Test_EOF_Rules(t *testing.T) {
	h := withFile(t, []byte("moo"))

	buf := make([]byte, 8)
	n, err := Pread(h, buf, 0)
	assert.NoError(t, err, "short read is not EOF")
	assert.Equal(t, 3, n)

	n, err = Pread(h, buf, 3)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrEOF)

	n, err = Pread(h, buf, 1<<20)
	assert.Equal(t, 0, n)
	assert.True(t, IsEOF(err))

	// zero length requests succeed anywhere
	n, err = Pread(h, nil, 1<<20)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = Read(h, []byte{})
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = Pwrite(h, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func Test_Errors_Are_Not_EOF(t *testing.T) {
	h := withFile(t, []byte("moo"))

	_, err := Seek(h, SeekBegin, -1)
	assert.Error(t, err)
	assert.False(t, IsEOF(err))

	dup, err := Duplicate(h)
	require.NoError(t, err)
	require.NoError(t, Close(dup))

	_, err = Read(dup, make([]byte, 4))
	assert.Error(t, err)
	assert.False(t, IsEOF(err))
	_, err = Size(dup)
	assert.Error(t, err)
}

func Test_Write_On_Read_Only(t *testing.T) {
	fp := tempfile(t)
	require.NoError(t, os.WriteFile(fp, []byte("moo"), 0o644))

	h, err := Open(fp, OpenExisting|AccessRead, PermsNone, AttrNone)
	require.NoError(t, err)
	defer Close(h)

	n, err := Pwrite(h, []byte("cow"), 0)
	assert.Equal(t, 0, n)
	assert.Error(t, err)
}

func Test_Duplicate_Shares_File(t *testing.T) {
	h := withFile(t, nil)

	dup, err := Duplicate(h)
	require.NoError(t, err)
	assert.NotEqual(t, h, dup)

	_, err = Pwrite(dup, []byte("moo"), 0)
	assert.NoError(t, err)
	require.NoError(t, Close(dup))

	// the original survives closing the duplicate
	buf := make([]byte, 3)
	_, err = Pread(h, buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "moo", string(buf))
}

func Test_Seek_Origins(t *testing.T) {
	h := withFile(t, []byte("0123456789"))

	pos, err := Seek(h, SeekEnd, -4)
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), pos)
	pos, err = Seek(h, SeekCurrent, 2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(8), pos)
	pos, err = Seek(h, SeekBegin, 20)
	assert.NoError(t, err, "past the end is fine")
	assert.Equal(t, uint64(20), pos)

	n, err := Read(h, make([]byte, 1))
	assert.Equal(t, 0, n)
	assert.True(t, IsEOF(err))
}

func Test_SetSize(t *testing.T) {
	h := withFile(t, []byte("moocow"))

	require.NoError(t, SetSize(h, 3))
	size, err := Size(h)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), size)

	require.NoError(t, SetSize(h, 0x2000))
	size, err = Size(h)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x2000), size)

	buf := make([]byte, 4)
	n, err := Pread(h, buf, 0x1000)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, make([]byte, 4), buf)

	assert.NoError(t, Sync(h))
}

func Test_Vectored_Roundtrip(t *testing.T) {
	h := withFile(t, nil)

	n, err := Pwritev(h, [][]byte{[]byte("moo"), nil, []byte("cow"), []byte("!")}, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	a, b := make([]byte, 2), make([]byte, 8)
	n, err = Preadv(h, [][]byte{a, b}, 4)
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "mo", string(a))
	assert.Equal(t, "ocow!", string(b[:5]))

	n, err = Preadv(h, [][]byte{a, b}, 11)
	assert.Equal(t, 0, n)
	assert.True(t, IsEOF(err))

	// sequential variants move the position
	_, err = Seek(h, SeekBegin, 0)
	require.NoError(t, err)
	n, err = Writev(h, [][]byte{[]byte("ab"), []byte("cd")})
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	pos, err := Seek(h, SeekCurrent, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(4), pos)

	_, err = Seek(h, SeekBegin, 0)
	require.NoError(t, err)
	c, d := make([]byte, 3), make([]byte, 3)
	n, err = Readv(h, [][]byte{c, d})
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "abc", string(c))
	assert.Equal(t, "dmo", string(d))
}

func Test_Stdio(t *testing.T) {
	for _, get := range []func() (Handle, error){Stdin, Stdout, Stderr} {
		h, err := get()
		if err != nil {
			// go test may run us without one of them
			t.Log("stdio handle not bound:", err)
			continue
		}
		assert.NotEqual(t, InvalidHandle, h)
	}
}

func Test_Open_Direct(t *testing.T) {
	h, err := Open(tempfile(t), CreateNew|AccessReadWrite|Direct, PermsDefault, AttrNone)
	if err != nil {
		// tmpfs and friends refuse O_DIRECT
		t.Skip("direct I/O unsupported here:", err)
	}
	defer Close(h)

	raw := make([]byte, 3*0x1000)
	base := int(uintptr(unsafe.Pointer(&raw[0])) & 0xfff)
	buf := raw[0x1000-base:][:0x1000]
	copy(buf, "moo")

	n, err := Pwrite(h, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	clear(buf)
	n, err = Pread(h, buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, "moo", string(buf[:3]))
}
